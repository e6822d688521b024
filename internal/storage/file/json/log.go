package json

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/drakos74/free-learn/internal/storage"
)

const journalFile = "events.log"

// Logger is a journal appending json encoded entries, one per line,
// under <path>/runs/<folder>/<dataset>/<learner>.
type Logger struct {
	path   string
	folder string
}

// NewLogger creates a new journal in the given folder under the default dir.
func NewLogger(folder string) *Logger {
	return &Logger{
		path:   storage.DefaultDir,
		folder: folder,
	}
}

// WithPath sets the root dir of the journal.
func (l *Logger) WithPath(path string) *Logger {
	l.path = path
	return l
}

func (l *Logger) filePath(k storage.K) string {
	return filepath.Join(l.path, storage.RunsDir, l.folder, k.Dataset, k.Learner)
}

// Add appends the value to the journal of the given key.
func (l *Logger) Add(k storage.K, value interface{}) error {
	filePath := l.filePath(k)
	if err := mkdir(filePath); err != nil {
		return err
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode value '%+v': %w", value, err)
	}
	f, err := os.OpenFile(filepath.Join(filePath, journalFile), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("could not open journal: %w", err)
	}
	defer f.Close()

	if _, err = f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("could not write journal for '%+v': %w", k, err)
	}
	return nil
}

// GetAll decodes all entries for the given key into the slice the values point to.
func (l *Logger) GetAll(k storage.K, values interface{}) error {
	ptr := reflect.ValueOf(values)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("only accepting pointers to slices as placeholder for the results, got %T", values)
	}
	slice := ptr.Elem()
	t := slice.Type().Elem()

	fileName := filepath.Join(l.filePath(k), journalFile)
	f, err := os.Open(fileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no journal for '%+v': %w", k, storage.NotFoundErr)
		}
		return fmt.Errorf("could not open journal '%s': %s: %w", fileName, err.Error(), storage.CouldNotLoadErr)
	}
	defer f.Close()

	entries := reflect.MakeSlice(slice.Type(), 0, 10)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		entry := reflect.New(t)
		if err := json.Unmarshal(line, entry.Interface()); err != nil {
			return fmt.Errorf("could not decode entry '%s': %s: %w", string(line), err.Error(), storage.CouldNotLoadErr)
		}
		entries = reflect.Append(entries, entry.Elem())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read journal '%s': %s: %w", fileName, err.Error(), storage.CouldNotLoadErr)
	}
	slice.Set(entries)
	return nil
}

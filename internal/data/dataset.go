package data

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/drakos74/free-learn/internal/api"
	learnmath "github.com/drakos74/free-learn/internal/math"
	"github.com/rs/zerolog/log"
)

const (
	// ClassField is the reserved name of the supervised target variable.
	ClassField = "ClassField"
	// SchemaExt is the extension of the schema file.
	SchemaExt = ".dfn"
	// DataExt is the extension of the data file.
	DataExt = ".dat"

	maxLineSize = 1024 * 1024
)

// Dataset holds the schema, the raw records and the normalized records of a data file pair.
type Dataset struct {
	name       string
	path       string
	fields     []*Variable
	variables  map[string]*Variable
	raw        [][]string
	normalized [][]float64
	normSize   int
	sink       api.Sink
}

// New creates an empty dataset for the given file stem.
// The path can be given with or without the schema or data file extension.
func New(name, path string, sink api.Sink) *Dataset {
	return &Dataset{
		name:      name,
		path:      Stem(path),
		fields:    make([]*Variable, 0),
		variables: make(map[string]*Variable),
		raw:       make([][]string, 0),
		sink:      api.OrVoid(sink),
	}
}

// Load creates a dataset for the given path, loads the schema and data and normalizes the records.
func Load(name, path string, sink api.Sink) (*Dataset, error) {
	ds := New(name, path, sink)
	if err := ds.LoadData(); err != nil {
		return nil, err
	}
	if err := ds.Normalize(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Stem strips the schema or data file extension from the path.
func Stem(path string) string {
	if strings.HasSuffix(path, SchemaExt) || strings.HasSuffix(path, DataExt) {
		return path[:len(path)-len(DataExt)]
	}
	return path
}

// Name returns the dataset name.
func (ds *Dataset) Name() string {
	return ds.name
}

// Path returns the file stem of the dataset.
func (ds *Dataset) Path() string {
	return ds.path
}

// AddVariable appends a variable to the schema and assigns its column.
func (ds *Dataset) AddVariable(v *Variable) {
	v.column = len(ds.fields)
	ds.fields = append(ds.fields, v)
	ds.variables[v.name] = v
}

// LoadSchema reads the schema file of the dataset.
func (ds *Dataset) LoadSchema() error {
	fileName := ds.path + SchemaExt
	api.Emitf(ds.sink, "Reading file definition %s", fileName)
	f, err := os.Open(fileName)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			api.Emitf(ds.sink, "Error: Cannot find definition file %s", fileName)
			return fmt.Errorf("could not open '%s': %w", fileName, SchemaNotFoundErr)
		}
		return fmt.Errorf("could not open '%s': %s: %w", fileName, err.Error(), DataReadErr)
	}
	defer f.Close()
	return ds.ReadSchema(f)
}

// ReadSchema reads the '<type> <name>' definitions from the reader.
// Any previously loaded schema is replaced.
func (ds *Dataset) ReadSchema(r io.Reader) error {
	fields, err := ds.readSchema(r)
	if err != nil {
		return err
	}
	ds.reset()
	for _, v := range fields {
		ds.AddVariable(v)
	}
	return nil
}

func (ds *Dataset) readSchema(r io.Reader) ([]*Variable, error) {
	fields := make([]*Variable, 0)
	names := make(map[string]struct{})
	scanner := newScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != 2 {
			return nil, fmt.Errorf("expected '<type> <name>' at schema line %d but got %v: %w", line, tokens, CorruptRowErr)
		}
		kind, ok := ParseKind(tokens[0])
		if !ok {
			return nil, fmt.Errorf("unknown variable type '%s' at schema line %d: %w", tokens[0], line, CorruptRowErr)
		}
		if _, ok := names[tokens[1]]; ok {
			return nil, fmt.Errorf("duplicate variable '%s' at schema line %d: %w", tokens[1], line, CorruptRowErr)
		}
		names[tokens[1]] = struct{}{}
		var v *Variable
		if kind == Discrete {
			v = NewDiscrete(tokens[1])
		} else {
			v = NewContinuous(tokens[1])
		}
		fields = append(fields, v)
		api.Emitf(ds.sink, "  Record %d: %s %s", len(fields)-1, tokens[0], tokens[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read schema: %s: %w", err.Error(), DataReadErr)
	}
	api.Emitf(ds.sink, "Created %d variables.", len(fields))
	return fields, nil
}

// LoadData loads the schema and then the records from the data file.
// On failure the dataset is left empty.
func (ds *Dataset) LoadData() error {
	if err := ds.LoadSchema(); err != nil {
		return err
	}
	fileName := ds.path + DataExt
	api.Emitf(ds.sink, "Reading file %s with %d fields per record", fileName, len(ds.fields))
	f, err := os.Open(fileName)
	if err != nil {
		ds.reset()
		if errors.Is(err, os.ErrNotExist) {
			api.Emitf(ds.sink, "Error: Cannot find data record file %s", fileName)
			return fmt.Errorf("could not open '%s': %w", fileName, DataFileNotFoundErr)
		}
		return fmt.Errorf("could not open '%s': %s: %w", fileName, err.Error(), DataReadErr)
	}
	defer f.Close()
	if err := ds.readData(f); err != nil {
		ds.reset()
		return err
	}
	return nil
}

// ReadData reads the schema and the records from the given readers.
// On failure the dataset is left empty.
func (ds *Dataset) ReadData(schema, data io.Reader) error {
	if err := ds.ReadSchema(schema); err != nil {
		return err
	}
	if err := ds.readData(data); err != nil {
		ds.reset()
		return err
	}
	return nil
}

func (ds *Dataset) readData(r io.Reader) error {
	raw := make([][]string, 0)
	scanner := newScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != len(ds.fields) {
			return fmt.Errorf("expected %d fields at data line %d but got %d: %w", len(ds.fields), line, len(tokens), CorruptRowErr)
		}
		for i, v := range ds.fields {
			if err := v.ComputeStatistics(tokens[i]); err != nil {
				return fmt.Errorf("invalid value '%s' for '%s' at data line %d: %s: %w", tokens[i], v.name, line, err.Error(), CorruptRowErr)
			}
		}
		api.NewMessage(fmt.Sprintf("  Record %d:", len(raw))).Add(strings.Join(tokens, " ")).Send(ds.sink)
		raw = append(raw, tokens)
	}
	if err := scanner.Err(); err != nil {
		api.Emitf(ds.sink, "Error reading file: %s", ds.path+DataExt)
		return fmt.Errorf("could not read records: %s: %w", err.Error(), DataReadErr)
	}
	ds.raw = raw
	api.Emitf(ds.sink, "Loaded %d records into memory.", len(raw))
	log.Info().
		Str("dataset", ds.name).
		Str("path", ds.path).
		Int("fields", len(ds.fields)).
		Int("records", len(raw)).
		Msg("loaded data")
	return nil
}

// Normalize converts every raw record into its numeric form.
// It must run after all records have been loaded, as discrete variables
// can only be encoded once all their labels are known.
func (ds *Dataset) Normalize() error {
	if len(ds.fields) == 0 {
		return fmt.Errorf("no schema for '%s': %w", ds.name, NotLoadedErr)
	}
	ds.normSize = ds.NormalizedRecordSize()
	normalized := make([][]float64, len(ds.raw))
	for r, record := range ds.raw {
		row := make([]float64, ds.normSize)
		inx := 0
		for i, v := range ds.fields {
			inx = v.Normalize(record[i], row, inx)
		}
		normalized[r] = row
	}
	ds.normalized = normalized
	ds.traceVariables()
	ds.traceNormalized()
	return nil
}

func (ds *Dataset) traceVariables() {
	ds.sink.Emit("Variables:")
	for _, v := range ds.fields {
		ds.sink.Emit(" " + v.String())
	}
}

func (ds *Dataset) traceNormalized() {
	ds.sink.Emit("Normalized data:")
	for i, row := range ds.normalized {
		api.Emitf(ds.sink, "  Record %d: %s", i, learnmath.FormatAll(row))
	}
}

// Fields returns the schema variables in column order.
func (ds *Dataset) Fields() []*Variable {
	fields := make([]*Variable, len(ds.fields))
	copy(fields, ds.fields)
	return fields
}

// Variable returns the variable with the given name.
func (ds *Dataset) Variable(name string) (*Variable, bool) {
	v, ok := ds.variables[name]
	return v, ok
}

// FieldsPerRecord is the number of raw fields in each record.
func (ds *Dataset) FieldsPerRecord() int {
	return len(ds.fields)
}

// NormalizedRecordSize is the sum of the normalized sizes of all variables.
func (ds *Dataset) NormalizedRecordSize() int {
	sum := 0
	for _, v := range ds.fields {
		sum += v.NormalizedSize()
	}
	return sum
}

// NumRecords is the number of loaded records.
func (ds *Dataset) NumRecords() int {
	return len(ds.raw)
}

// Raw returns the raw records.
func (ds *Dataset) Raw() [][]string {
	return ds.raw
}

// Normalized returns the normalized records, nil before normalization.
func (ds *Dataset) Normalized() [][]float64 {
	return ds.normalized
}

// IsCategorical checks if all the variables are discrete.
func (ds *Dataset) IsCategorical() bool {
	for _, v := range ds.fields {
		if !v.IsCategorical() {
			return false
		}
	}
	return true
}

// ClassField returns the supervised target variable, if the schema defines one.
func (ds *Dataset) ClassField() (*Variable, bool) {
	return ds.Variable(ClassField)
}

// ClassFieldSize returns the normalized width of the class field, 0 if there is none.
func (ds *Dataset) ClassFieldSize() int {
	v, ok := ds.ClassField()
	if !ok {
		api.Emitf(ds.sink, "DataSet %s does not have a ClassField", ds.name)
		return 0
	}
	return v.NormalizedSize()
}

// ClassFieldValue returns the raw class value of the given record.
func (ds *Dataset) ClassFieldValue(record int) (string, bool) {
	v, ok := ds.ClassField()
	if !ok || record < 0 || record >= len(ds.raw) {
		return "", false
	}
	return ds.raw[record][v.column], true
}

// DecodeClassField transforms the activations starting at the given index into a class value.
func (ds *Dataset) DecodeClassField(act []float64, start int) (string, bool) {
	v, ok := ds.ClassField()
	if !ok {
		return "", false
	}
	return v.Decode(act, start), true
}

func (ds *Dataset) String() string {
	names := make([]string, len(ds.fields))
	for i, v := range ds.fields {
		names[i] = v.name
	}
	return fmt.Sprintf("Dataset: extracted from file %s\n\t%d Variables: %v", ds.path, len(names), names)
}

func (ds *Dataset) reset() {
	ds.fields = make([]*Variable, 0)
	ds.variables = make(map[string]*Variable)
	ds.raw = make([][]string, 0)
	ds.normalized = nil
	ds.normSize = 0
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}

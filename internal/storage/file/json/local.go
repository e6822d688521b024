package json

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/drakos74/free-learn/internal/storage"
)

// LocalShard creates one in-memory store per dataset.
func LocalShard() storage.Shard {
	return func(dataset string) (storage.Persistence, error) {
		return &LocalStorage{
			dataset: dataset,
			blobs:   make(map[string][]byte),
			mutex:   new(sync.RWMutex),
		}, nil
	}
}

// LocalStorage keeps encoded snapshots in memory, keyed by their path.
type LocalStorage struct {
	dataset string
	blobs   map[string][]byte
	mutex   *sync.RWMutex
}

func (l *LocalStorage) Store(k storage.Key, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode '%s' for %s: %w", k.Path(), l.dataset, err)
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.blobs[k.Path()] = b
	return nil
}

func (l *LocalStorage) Load(k storage.Key, value interface{}) error {
	l.mutex.RLock()
	b, ok := l.blobs[k.Path()]
	l.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("no '%s' for %s: %w", k.Path(), l.dataset, storage.NotFoundErr)
	}
	if err := json.Unmarshal(b, value); err != nil {
		return fmt.Errorf("could not decode '%s': %s: %w", k.Path(), err.Error(), storage.CouldNotLoadErr)
	}
	return nil
}

// Paths returns the sorted paths of the stored values.
func (l *LocalStorage) Paths() []string {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	paths := make([]string, 0, len(l.blobs))
	for p := range l.blobs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

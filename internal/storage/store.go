package storage

import (
	"errors"
	"fmt"
)

const (
	// ModelsDir holds the trained model snapshots.
	ModelsDir = "models"
	// RunsDir holds the run journals.
	RunsDir = "runs"
)

var (
	// DefaultDir is the root directory of the file storage.
	DefaultDir = "file-storage"
)

// Shard creates a new storage implementation for the given shard.
type Shard func(shard string) (Persistence, error)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key of a trained model.
type Key struct {
	Dataset string `json:"dataset"`
	Learner string `json:"learner"`
	Label   string `json:"label"`
}

// K is a simplified key grouping all entries of a learner on a dataset.
type K struct {
	Dataset string `json:"dataset"`
	Learner string `json:"learner"`
}

// Path returns the file name for the key.
func (k Key) Path() string {
	if k.Label == "" {
		return fmt.Sprintf("%s_%s", k.Dataset, k.Learner)
	}
	return fmt.Sprintf("%s_%s_%s", k.Dataset, k.Learner, k.Label)
}

// Persistence stores and loads single values.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}

// Journal appends entries and reads them back in order.
type Journal interface {
	Add(key K, value interface{}) error
	GetAll(key K, values interface{}) error
}

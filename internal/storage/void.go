package storage

import "fmt"

// VoidStorage is a noop storage
type VoidStorage struct {
}

func (d VoidStorage) Store(k Key, value interface{}) error {
	return nil
}

func (d VoidStorage) Load(k Key, value interface{}) error {
	return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
}

// NewVoidStorage creates a new noop storage
func NewVoidStorage() *VoidStorage {
	return &VoidStorage{}
}

// VoidShard creates a new noop shard
func VoidShard() Shard {
	return func(shard string) (Persistence, error) {
		return NewVoidStorage(), nil
	}
}

// VoidJournal is a dummy journal which ignores all calls
type VoidJournal struct {
}

// NewVoidJournal creates a new noop journal
func NewVoidJournal() *VoidJournal {
	return &VoidJournal{}
}

func (v VoidJournal) Add(key K, value interface{}) error {
	return nil
}

func (v VoidJournal) GetAll(key K, values interface{}) error {
	return nil
}

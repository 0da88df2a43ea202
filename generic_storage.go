/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entityquery

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// TypedStorage holds the repositories of one entity type T by entity name
type TypedStorage[T any] struct {
	mu    sync.RWMutex
	repos map[string]*Repository[T]
}

// NewTypedStorage creates a new TypedStorage for type T
func NewTypedStorage[T any]() *TypedStorage[T] {
	return &TypedStorage[T]{
		repos: make(map[string]*Repository[T]),
	}
}

// Register adds a repository under the given entity name
func (ts *TypedStorage[T]) Register(name string, repo *Repository[T]) error {
	if repo == nil {
		return fmt.Errorf("repository for %q must not be nil", name)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.repos[name]; exists {
		return fmt.Errorf("repository with name %q already registered", name)
	}
	ts.repos[name] = repo
	return nil
}

// Get retrieves a repository by entity name
func (ts *TypedStorage[T]) Get(name string) (*Repository[T], error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	repo, exists := ts.repos[name]
	if !exists {
		return nil, fmt.Errorf("repository with name %q not found", name)
	}
	return repo, nil
}

// Remove deletes a repository by entity name
func (ts *TypedStorage[T]) Remove(name string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.repos[name]; !exists {
		return fmt.Errorf("repository with name %q not found", name)
	}
	delete(ts.repos, name)
	return nil
}

// List returns all registered entity names, sorted
func (ts *TypedStorage[T]) List() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	names := make([]string, 0, len(ts.repos))
	for k := range ts.repos {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// MultiTypeStorage manages TypedStorage instances for different entity types
type MultiTypeStorage struct {
	mu       sync.RWMutex
	storages map[reflect.Type]any
}

// NewMultiTypeStorage creates a new MultiTypeStorage
func NewMultiTypeStorage() *MultiTypeStorage {
	return &MultiTypeStorage{
		storages: make(map[reflect.Type]any),
	}
}

// GetTypedStorage returns the TypedStorage for type T, creating it if necessary
func GetTypedStorage[T any](mts *MultiTypeStorage) *TypedStorage[T] {
	mts.mu.Lock()
	defer mts.mu.Unlock()

	typ := reflect.TypeFor[T]()
	if storage, exists := mts.storages[typ]; exists {
		return storage.(*TypedStorage[T])
	}

	newStorage := NewTypedStorage[T]()
	mts.storages[typ] = newStorage
	return newStorage
}

// RegisterRepository registers repo for entities of type T under name
func RegisterRepository[T any](mts *MultiTypeStorage, name string, repo *Repository[T]) error {
	return GetTypedStorage[T](mts).Register(name, repo)
}

// GetRepository returns the repository of type T registered under name
func GetRepository[T any](mts *MultiTypeStorage, name string) (*Repository[T], error) {
	return GetTypedStorage[T](mts).Get(name)
}

// RemoveRepository removes the repository of type T registered under name
func RemoveRepository[T any](mts *MultiTypeStorage, name string) error {
	return GetTypedStorage[T](mts).Remove(name)
}

// ListRepositories lists the entity names registered for type T
func ListRepositories[T any](mts *MultiTypeStorage) []string {
	return GetTypedStorage[T](mts).List()
}

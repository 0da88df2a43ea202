/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sync"
)

// TableBinding names the DynamoDB table holding an entity type and the attribute
// that identifies its items.
type TableBinding struct {
	TableName   string
	IDAttribute string
	// Indexes maps secondary index names to their key attributes.
	Indexes map[string]IndexBinding
}

// IndexBinding holds the key attribute names of a secondary index.
type IndexBinding struct {
	PartitionKey string
	SortKey      string
}

// Index returns the key attributes of the named secondary index.
func (b TableBinding) Index(name string) (IndexBinding, error) {
	idx, ok := b.Indexes[name]
	if !ok || idx.PartitionKey == "" {
		return IndexBinding{}, fmt.Errorf("table registry: table %q has no index %q", b.TableName, name)
	}
	return idx, nil
}

var (
	tableRegistry = make(map[reflect.Type]TableBinding)
	mu            sync.RWMutex
)

// RegisterTable associates a Go type T with its table. Registering T again replaces
// the previous binding.
func RegisterTable[T any](binding TableBinding) error {
	if binding.TableName == "" || binding.IDAttribute == "" {
		return fmt.Errorf("table registry: %s needs both a table name and an id attribute", typeOf[T]())
	}

	mu.Lock()
	defer mu.Unlock()
	tableRegistry[typeOf[T]()] = binding
	return nil
}

// GetTable retrieves the binding for type T, if any.
func GetTable[T any]() (TableBinding, bool) {
	mu.RLock()
	defer mu.RUnlock()
	b, ok := tableRegistry[typeOf[T]()]
	return b, ok
}

// MustGetTable is GetTable for callers that registered T during initialization.
func MustGetTable[T any]() TableBinding {
	b, ok := GetTable[T]()
	if !ok {
		panic(fmt.Sprintf("table registry: no table registered for %s", typeOf[T]()))
	}
	return b
}

// UnregisterTable removes the binding for type T.
func UnregisterTable[T any]() {
	mu.Lock()
	defer mu.Unlock()
	delete(tableRegistry, typeOf[T]())
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/entityquery/storagemodels"
)

type DataStore[T any] interface {
	// Put writes entity and returns it unchanged.
	Put(ctx context.Context, entity T) (T, error)

	// Get returns the entity keyed by id, or nil, nil when there is none.
	Get(ctx context.Context, id string) (*T, error)

	Delete(ctx context.Context, id string) error

	// ReadAll scans the whole table and returns every matching item.
	ReadAll(ctx context.Context, opts storagemodels.ReadOptions) ([]T, error)

	// ReadFromQuery queries a secondary index and returns every matching item.
	ReadFromQuery(ctx context.Context, query storagemodels.QueryParameters, opts storagemodels.ReadOptions) ([]T, error)

	// Stream delivers the items of a scan one by one. An error terminates the stream.
	Stream(ctx context.Context, opts storagemodels.ReadOptions, streamOpts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
}

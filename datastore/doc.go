/*
Package datastore defines the storage interface shared by the DynamoDB store and the
in-memory mock.

	type DataStore[T any] interface {
	    Put(ctx context.Context, entity T) (T, error)
	    Get(ctx context.Context, id string) (*T, error)
	    Delete(ctx context.Context, id string) error
	    ReadAll(ctx context.Context, opts storagemodels.ReadOptions) ([]T, error)
	    ReadFromQuery(ctx context.Context, query storagemodels.QueryParameters, opts storagemodels.ReadOptions) ([]T, error)
	    Stream(ctx context.Context, opts storagemodels.ReadOptions, streamOpts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
	}

ReadAll and ReadFromQuery follow LastEvaluatedKey until the last page and return the
concatenation of every page. A failing page aborts the read: the caller gets the
error and no items.

Implementations:
  - ddb: DynamoDB implementation
  - mock: in-memory implementation evaluating the same filter expressions
*/
package datastore

/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

A DynamodbDataStore reads and writes one table whose items are identified by a
single string attribute. Reads compile ReadOptions through the expression package
and aggregate every page:

  - ReadAll issues Scan requests until LastEvaluatedKey is empty
  - ReadFromQuery does the same with Query requests on a secondary index
  - Stream and StreamQuery deliver the same items one by one on a channel

Pages are fetched sequentially. The first failing page aborts the read: ReadAll
returns nil items with the error, Stream sends the error as its final result.

Secondary indexes come from the table binding and are queried with a builder:

	users, err := store.QueryIndex("UserTimeIndex").
	    WithPartitionKey("ada").
	    WithSortKeyPrefix("2025-").
	    WithReadOptions(storagemodels.ReadOptions{
	        Filters: storagemodels.NewFilters().Add("status", storagemodels.Eq("active")),
	    }).
	    Execute(ctx)

Indexes sorted by RFC 3339 timestamps also support QueryByTimeRange and
QueryTimeWindows.

Streaming options:

	results := store.Stream(ctx, opts,
	    storagemodels.WithBufferSize(100),
	    storagemodels.WithPageSize(25),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        log.Printf("Processed %d items", p.ItemsProcessed)
	    }),
	)
*/
package ddb

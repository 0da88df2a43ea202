/*
Package entityquery reads and writes entities stored in DynamoDB tables keyed by a
single string attribute, with declarative filters compiled into DynamoDB
expressions.

Reads take ReadOptions: Filters keep items matching every attribute group (the
predicates of one attribute are OR-combined), NegationFilters drop items matching
every group, and Fields restricts the returned attributes. The identity attribute
is always projected. Every read follows LastEvaluatedKey until the last page and
fails as a whole when any page fails.

Key Features:
  - Type-safe repositories using Go generics
  - Filter, negation and projection compilation (package expression)
  - Paginated scans and secondary index queries (package datastore/ddb)
  - Streaming reads with progress tracking
  - Semantic error types (package errors)
  - In-memory store for tests (package datastore/mock)

Basic Usage:

	client, _ := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{Region: "us-east-1"})
	repo, _ := entityquery.NewDynamoRepository[User](client, registry.TableBinding{
	    TableName:   "users",
	    IDAttribute: "userId",
	    Indexes: map[string]registry.IndexBinding{
	        "UserNameIndex": {PartitionKey: "userName"},
	    },
	}, log)

	adults, err := repo.ReadAllEntities(ctx, storagemodels.ReadOptions{
	    Filters:         storagemodels.NewFilters().Add("age", storagemodels.Gte(18)),
	    NegationFilters: storagemodels.NewFilters().Add("status", storagemodels.Eq("banned")),
	    Fields:          []string{"userName", "email"},
	})

	does, err := repo.ReadByIndex(ctx, "UserNameIndex", "John Doe", storagemodels.ReadOptions{})

Repositories for several entity types can be kept in a MultiTypeStorage:

	mts := entityquery.NewMultiTypeStorage()
	entityquery.RegisterRepository(mts, "users", repo)
	users, _ := entityquery.GetRepository[User](mts, "users")
*/
package entityquery

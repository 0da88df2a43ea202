/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ddbexpr "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/suparena/entityquery/errors"
	"github.com/suparena/entityquery/storagemodels"
)

// KeyCondition compiles a key condition on indexName into query parameters.
func KeyCondition(indexName string, cond ddbexpr.KeyConditionBuilder) (storagemodels.QueryParameters, error) {
	if indexName == "" {
		return storagemodels.QueryParameters{}, errors.NewContractViolation("indexName", "query requires an index name")
	}
	expr, err := ddbexpr.NewBuilder().WithKeyCondition(cond).Build()
	if err != nil {
		return storagemodels.QueryParameters{}, errors.NewContractViolation("keyCondition", err.Error())
	}
	return storagemodels.QueryParameters{
		IndexName:                 indexName,
		KeyConditionExpression:    aws.ToString(expr.KeyCondition()),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

// IndexQueryBuilder provides a fluent interface for querying a secondary index
// registered in the table binding.
type IndexQueryBuilder[T any] struct {
	store     *DynamodbDataStore[T]
	indexName string
	pkName    string
	skName    string
	pkValue   any
	skCond    func(ddbexpr.KeyBuilder) ddbexpr.KeyConditionBuilder
	opts      storagemodels.ReadOptions
	forward   *bool
	err       error
}

// QueryIndex creates a query builder on the named index.
func (d *DynamodbDataStore[T]) QueryIndex(indexName string) *IndexQueryBuilder[T] {
	q := &IndexQueryBuilder[T]{store: d, indexName: indexName}
	idx, err := d.binding.Index(indexName)
	if err != nil {
		q.err = errors.NewContractViolation("indexName", err.Error())
		return q
	}
	q.pkName, q.skName = idx.PartitionKey, idx.SortKey
	return q
}

// WithPartitionKey sets the partition key value
func (q *IndexQueryBuilder[T]) WithPartitionKey(value any) *IndexQueryBuilder[T] {
	q.pkValue = value
	return q
}

// WithSortKey sets the sort key value with equals operator
func (q *IndexQueryBuilder[T]) WithSortKey(value any) *IndexQueryBuilder[T] {
	return q.sortKey(func(k ddbexpr.KeyBuilder) ddbexpr.KeyConditionBuilder {
		return k.Equal(ddbexpr.Value(value))
	})
}

// WithSortKeyPrefix sets the sort key to use begins_with
func (q *IndexQueryBuilder[T]) WithSortKeyPrefix(prefix string) *IndexQueryBuilder[T] {
	return q.sortKey(func(k ddbexpr.KeyBuilder) ddbexpr.KeyConditionBuilder {
		return k.BeginsWith(prefix)
	})
}

// WithSortKeyGreaterThan sets the sort key to use >
func (q *IndexQueryBuilder[T]) WithSortKeyGreaterThan(value any) *IndexQueryBuilder[T] {
	return q.sortKey(func(k ddbexpr.KeyBuilder) ddbexpr.KeyConditionBuilder {
		return k.GreaterThan(ddbexpr.Value(value))
	})
}

// WithSortKeyLessThan sets the sort key to use <
func (q *IndexQueryBuilder[T]) WithSortKeyLessThan(value any) *IndexQueryBuilder[T] {
	return q.sortKey(func(k ddbexpr.KeyBuilder) ddbexpr.KeyConditionBuilder {
		return k.LessThan(ddbexpr.Value(value))
	})
}

// WithSortKeyBetween sets the sort key to use BETWEEN
func (q *IndexQueryBuilder[T]) WithSortKeyBetween(start, end any) *IndexQueryBuilder[T] {
	return q.sortKey(func(k ddbexpr.KeyBuilder) ddbexpr.KeyConditionBuilder {
		return k.Between(ddbexpr.Value(start), ddbexpr.Value(end))
	})
}

func (q *IndexQueryBuilder[T]) sortKey(cond func(ddbexpr.KeyBuilder) ddbexpr.KeyConditionBuilder) *IndexQueryBuilder[T] {
	if q.err == nil && q.skName == "" {
		q.err = errors.NewContractViolation("sortKey", fmt.Sprintf("index %q has no sort key", q.indexName))
	}
	q.skCond = cond
	return q
}

// WithReadOptions sets the filters, projection and page size applied to the query
func (q *IndexQueryBuilder[T]) WithReadOptions(opts storagemodels.ReadOptions) *IndexQueryBuilder[T] {
	q.opts = opts
	return q
}

// Descending returns items in descending sort key order
func (q *IndexQueryBuilder[T]) Descending() *IndexQueryBuilder[T] {
	q.forward = aws.Bool(false)
	return q
}

// Build constructs the query parameters
func (q *IndexQueryBuilder[T]) Build() (storagemodels.QueryParameters, error) {
	if q.err != nil {
		return storagemodels.QueryParameters{}, q.err
	}
	if q.pkValue == nil {
		return storagemodels.QueryParameters{}, errors.NewContractViolation(q.pkName, "partition key value is required")
	}

	cond := ddbexpr.Key(q.pkName).Equal(ddbexpr.Value(q.pkValue))
	if q.skCond != nil {
		cond = cond.And(q.skCond(ddbexpr.Key(q.skName)))
	}

	params, err := KeyCondition(q.indexName, cond)
	if err != nil {
		return storagemodels.QueryParameters{}, err
	}
	params.ScanIndexForward = q.forward
	return params, nil
}

// Execute runs the query and returns every matching item
func (q *IndexQueryBuilder[T]) Execute(ctx context.Context) ([]T, error) {
	params, err := q.Build()
	if err != nil {
		return nil, err
	}
	return q.store.ReadFromQuery(ctx, params, q.opts)
}

// Stream executes the query as a stream
func (q *IndexQueryBuilder[T]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	params, err := q.Build()
	if err != nil {
		return FailedStream[T](err)
	}
	return q.store.StreamQuery(ctx, params, q.opts, opts...)
}

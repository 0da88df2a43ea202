/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of the DataStore interface
// for testing. Reads go through the same expression compiler as the DynamoDB store
// and the compiled expressions are evaluated against the stored items.
package mock

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/entityquery/datastore/ddb"
	"github.com/suparena/entityquery/errors"
	"github.com/suparena/entityquery/expression"
	"github.com/suparena/entityquery/storagemodels"
)

// DataStore is a mock implementation of datastore.DataStore[T] for testing
type DataStore[T any] struct {
	mu          sync.RWMutex
	table       string
	idAttribute string
	items       map[string]map[string]types.AttributeValue
	requests    []storagemodels.RequestDescriptor
	putError    error
	deleteError error
	readError   error
}

// New creates an empty mock DataStore whose items are keyed by idAttribute
func New[T any](table, idAttribute string) *DataStore[T] {
	return &DataStore[T]{
		table:       table,
		idAttribute: idAttribute,
		items:       make(map[string]map[string]types.AttributeValue),
	}
}

// WithPutError makes Put operations return an error
func (m *DataStore[T]) WithPutError(err error) *DataStore[T] {
	m.putError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *DataStore[T]) WithDeleteError(err error) *DataStore[T] {
	m.deleteError = err
	return m
}

// WithReadError makes every page fetched by a read fail with err
func (m *DataStore[T]) WithReadError(err error) *DataStore[T] {
	m.readError = err
	return m
}

// Put stores an entity
func (m *DataStore[T]) Put(ctx context.Context, entity T) (T, error) {
	var zero T
	if m.putError != nil {
		return zero, m.putError
	}

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal entity: %w", err)
	}
	id, ok := av[m.idAttribute].(*types.AttributeValueMemberS)
	if !ok || id.Value == "" {
		return zero, errors.NewContractViolation(m.idAttribute, "entity has no identity attribute")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id.Value] = av
	return entity, nil
}

// Get retrieves an entity by id
func (m *DataStore[T]) Get(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, errors.NewContractViolation(m.idAttribute, "id must not be empty")
	}

	m.mu.RLock()
	item, exists := m.items[id]
	m.mu.RUnlock()
	if !exists {
		return nil, nil
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// Delete removes an entity by id
func (m *DataStore[T]) Delete(ctx context.Context, id string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	if id == "" {
		return errors.NewContractViolation(m.idAttribute, "id must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// ReadAll evaluates the compiled filter against every stored item
func (m *DataStore[T]) ReadAll(ctx context.Context, opts storagemodels.ReadOptions) ([]T, error) {
	desc, err := expression.Assemble(m.table, m.idAttribute, opts)
	if err != nil {
		return nil, err
	}
	return ddb.CollectPages(ctx, m.decoded(m.pages(desc)))
}

// ReadFromQuery evaluates the compiled key condition and filter against every
// stored item. Items are ordered by id, reversed when ScanIndexForward is false.
func (m *DataStore[T]) ReadFromQuery(ctx context.Context, query storagemodels.QueryParameters, opts storagemodels.ReadOptions) ([]T, error) {
	desc, err := expression.AssembleQuery(m.table, m.idAttribute, query, opts)
	if err != nil {
		return nil, err
	}
	return ddb.CollectPages(ctx, m.decoded(m.pages(desc)))
}

// Stream delivers the items ReadAll would return one by one
func (m *DataStore[T]) Stream(ctx context.Context, opts storagemodels.ReadOptions, streamOpts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.NewStreamOptions(streamOpts...)
	if opts.Limit == nil {
		opts.Limit = &options.PageSize
	}

	desc, err := expression.Assemble(m.table, m.idAttribute, opts)
	if err != nil {
		return ddb.FailedStream[T](err)
	}
	return ddb.StreamPages[T](ctx, m.pages(desc), streamOpts...)
}

// pages serves the stored items in id order, Limit items per page. As in DynamoDB
// the limit applies before the filter, so a page may come back short or empty.
func (m *DataStore[T]) pages(desc storagemodels.RequestDescriptor) ddb.PageFetcher[ddb.Item] {
	m.mu.Lock()
	m.requests = append(m.requests, desc)
	m.mu.Unlock()

	return func(ctx context.Context, startKey map[string]types.AttributeValue) (storagemodels.Page[ddb.Item], error) {
		if m.readError != nil {
			return storagemodels.Page[ddb.Item]{}, m.readError
		}

		m.mu.RLock()
		ids := make([]string, 0, len(m.items))
		for id := range m.items {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		if desc.ScanIndexForward != nil && !*desc.ScanIndexForward {
			slices.Reverse(ids)
		}
		snapshot := make([]ddb.Item, len(ids))
		for i, id := range ids {
			snapshot[i] = m.items[id]
		}
		m.mu.RUnlock()

		start := 0
		if after, ok := startKey[m.idAttribute].(*types.AttributeValueMemberS); ok {
			// the start key item may be gone, so seek past where it would be
			start = sort.Search(len(ids), func(i int) bool { return after.Value < ids[i] })
			if desc.ScanIndexForward != nil && !*desc.ScanIndexForward {
				start = sort.Search(len(ids), func(i int) bool { return ids[i] < after.Value })
			}
		}
		end := len(ids)
		if desc.Limit != nil && *desc.Limit > 0 && start+int(*desc.Limit) < end {
			end = start + int(*desc.Limit)
		}

		var page storagemodels.Page[ddb.Item]
		for _, item := range snapshot[start:end] {
			keep, err := m.matches(desc, item)
			if err != nil {
				return storagemodels.Page[ddb.Item]{}, err
			}
			if !keep {
				continue
			}
			projected, err := expression.Project(item, aws.ToString(desc.ProjectionExpression), desc.ExpressionAttributeNames)
			if err != nil {
				return storagemodels.Page[ddb.Item]{}, err
			}
			page.Items = append(page.Items, projected)
		}
		if end < len(ids) {
			page.LastEvaluatedKey = map[string]types.AttributeValue{
				m.idAttribute: &types.AttributeValueMemberS{Value: ids[end-1]},
			}
		}
		return page, nil
	}
}

func (m *DataStore[T]) matches(desc storagemodels.RequestDescriptor, item ddb.Item) (bool, error) {
	ok, err := expression.Matches(aws.ToString(desc.KeyConditionExpression), item, desc.ExpressionAttributeNames, desc.ExpressionAttributeValues)
	if err != nil || !ok {
		return false, err
	}
	return expression.Matches(aws.ToString(desc.FilterExpression), item, desc.ExpressionAttributeNames, desc.ExpressionAttributeValues)
}

func (m *DataStore[T]) decoded(raw ddb.PageFetcher[ddb.Item]) ddb.PageFetcher[T] {
	return func(ctx context.Context, startKey map[string]types.AttributeValue) (storagemodels.Page[T], error) {
		page, err := raw(ctx, startKey)
		if err != nil {
			return storagemodels.Page[T]{}, err
		}
		items := make([]T, 0, len(page.Items))
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return storagemodels.Page[T]{}, fmt.Errorf("failed to unmarshal page: %w", err)
		}
		return storagemodels.Page[T]{Items: items, LastEvaluatedKey: page.LastEvaluatedKey}, nil
	}
}

// Helper methods for testing

// Requests returns the request descriptors assembled by reads so far
func (m *DataStore[T]) Requests() []storagemodels.RequestDescriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.requests)
}

// Count returns the number of stored entities
func (m *DataStore[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Clear removes all data
func (m *DataStore[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]map[string]types.AttributeValue)
	m.requests = nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/suparena/entityquery/errors"
	"github.com/suparena/entityquery/expression"
	"github.com/suparena/entityquery/registry"
	"github.com/suparena/entityquery/storagemodels"
)

// DynamodbDataStore implements datastore.DataStore[T] on a single DynamoDB table
// whose items are keyed by one string attribute.
type DynamodbDataStore[T any] struct {
	client  Client
	binding registry.TableBinding
	logger  zerolog.Logger
}

// NewDynamodbDataStore constructs a store for type T on the table described by
// binding.
func NewDynamodbDataStore[T any](client Client, binding registry.TableBinding, logger zerolog.Logger) (*DynamodbDataStore[T], error) {
	if client == nil {
		return nil, errors.NewContractViolation("client", "DynamoDB client must not be nil")
	}
	if binding.TableName == "" {
		return nil, errors.NewContractViolation("table", "table name must not be empty")
	}
	if binding.IDAttribute == "" {
		return nil, errors.NewContractViolation("idAttribute", "identity attribute must not be empty")
	}

	return &DynamodbDataStore[T]{
		client:  client,
		binding: binding,
		logger:  logger.With().Str("table", binding.TableName).Logger(),
	}, nil
}

// NewRegisteredDataStore constructs a store for type T on the table registered for T.
func NewRegisteredDataStore[T any](client Client, logger zerolog.Logger) (*DynamodbDataStore[T], error) {
	binding, ok := registry.GetTable[T]()
	if !ok {
		var zero T
		return nil, errors.NewContractViolation("table", fmt.Sprintf("no table registered for %T", zero))
	}
	return NewDynamodbDataStore[T](client, binding, logger)
}

// TableName returns the name of the backing table.
func (d *DynamodbDataStore[T]) TableName() string {
	return d.binding.TableName
}

// IDAttribute returns the attribute identifying items.
func (d *DynamodbDataStore[T]) IDAttribute() string {
	return d.binding.IDAttribute
}

// Binding returns the table binding the store was built with.
func (d *DynamodbDataStore[T]) Binding() registry.TableBinding {
	return d.binding
}

func (d *DynamodbDataStore[T]) key(id string) (map[string]types.AttributeValue, error) {
	if id == "" {
		return nil, errors.NewContractViolation(d.binding.IDAttribute, "id must not be empty")
	}
	return map[string]types.AttributeValue{
		d.binding.IDAttribute: &types.AttributeValueMemberS{Value: id},
	}, nil
}

// Put writes entity as a whole item, replacing any item with the same id.
func (d *DynamodbDataStore[T]) Put(ctx context.Context, entity T) (T, error) {
	var zero T

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal entity: %w", err)
	}
	if _, ok := av[d.binding.IDAttribute]; !ok {
		return zero, errors.NewContractViolation(d.binding.IDAttribute, "entity has no identity attribute")
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.binding.TableName,
		Item:      av,
	})
	if err != nil {
		return zero, errors.NewStoreError("PutItem", d.binding.TableName, err)
	}
	return entity, nil
}

// Get retrieves a single item by id. It returns nil, nil if no item is found.
func (d *DynamodbDataStore[T]) Get(ctx context.Context, id string) (*T, error) {
	key, err := d.key(id)
	if err != nil {
		return nil, err
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.binding.TableName,
		Key:       key,
	})
	if err != nil {
		return nil, errors.NewStoreError("GetItem", d.binding.TableName, err)
	}
	if out.Item == nil {
		return nil, nil
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// Delete removes the item keyed by id. Deleting an absent item is not an error.
func (d *DynamodbDataStore[T]) Delete(ctx context.Context, id string) error {
	key, err := d.key(id)
	if err != nil {
		return err
	}

	_, err = d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &d.binding.TableName,
		Key:       key,
	})
	if err != nil {
		return errors.NewStoreError("DeleteItem", d.binding.TableName, err)
	}
	return nil
}

// ReadAll scans the table and returns every item matching opts, across all pages.
func (d *DynamodbDataStore[T]) ReadAll(ctx context.Context, opts storagemodels.ReadOptions) ([]T, error) {
	desc, err := expression.Assemble(d.binding.TableName, d.binding.IDAttribute, opts)
	if err != nil {
		return nil, err
	}
	return CollectPages(ctx, d.decoded(d.scanPages(desc)))
}

// ReadFromQuery queries a secondary index and returns every item matching opts,
// across all pages.
func (d *DynamodbDataStore[T]) ReadFromQuery(ctx context.Context, query storagemodels.QueryParameters, opts storagemodels.ReadOptions) ([]T, error) {
	desc, err := expression.AssembleQuery(d.binding.TableName, d.binding.IDAttribute, query, opts)
	if err != nil {
		return nil, err
	}
	return CollectPages(ctx, d.decoded(d.queryPages(desc)))
}

// Item is a raw DynamoDB item.
type Item = map[string]types.AttributeValue

// scanPages returns a fetcher issuing Scan requests for desc.
func (d *DynamodbDataStore[T]) scanPages(desc storagemodels.RequestDescriptor) PageFetcher[Item] {
	pageNumber := 0
	return func(ctx context.Context, startKey map[string]types.AttributeValue) (storagemodels.Page[Item], error) {
		pageNumber++
		desc.ExclusiveStartKey = startKey

		out, err := d.client.Scan(ctx, desc.ScanInput())
		if err != nil {
			return storagemodels.Page[Item]{}, errors.NewStoreError("Scan", d.binding.TableName, err)
		}
		d.logPage("Scan", pageNumber, len(out.Items), out.LastEvaluatedKey)
		return storagemodels.Page[Item]{Items: out.Items, LastEvaluatedKey: out.LastEvaluatedKey}, nil
	}
}

// queryPages returns a fetcher issuing Query requests for desc.
func (d *DynamodbDataStore[T]) queryPages(desc storagemodels.RequestDescriptor) PageFetcher[Item] {
	pageNumber := 0
	return func(ctx context.Context, startKey map[string]types.AttributeValue) (storagemodels.Page[Item], error) {
		pageNumber++
		desc.ExclusiveStartKey = startKey

		out, err := d.client.Query(ctx, desc.QueryInput())
		if err != nil {
			return storagemodels.Page[Item]{}, errors.NewStoreError("Query", d.binding.TableName, err)
		}
		d.logPage("Query", pageNumber, len(out.Items), out.LastEvaluatedKey)
		return storagemodels.Page[Item]{Items: out.Items, LastEvaluatedKey: out.LastEvaluatedKey}, nil
	}
}

// decoded unmarshals every page fetched by raw into T.
func (d *DynamodbDataStore[T]) decoded(raw PageFetcher[Item]) PageFetcher[T] {
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

func (d *DynamodbDataStore[T]) logPage(op string, pageNumber, items int, lastKey map[string]types.AttributeValue) {
	d.logger.Debug().
		Str("op", op).
		Int("page", pageNumber).
		Int("items", items).
		Bool("has_more", len(lastKey) > 0).
		Msg("page fetched")
}

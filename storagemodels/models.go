/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ReadOptions narrows a scan or query. Every field is optional.
type ReadOptions struct {
	// Filters keeps items matching every attribute group.
	Filters *Filters
	// NegationFilters drops items matching every attribute group.
	NegationFilters *Filters
	// Fields restricts the returned attributes. nil returns whole items; a non-nil
	// empty slice returns only the identity attribute.
	Fields []string
	// Limit is the page size requested from DynamoDB. It does not bound the total.
	Limit *int32
}

// QueryParameters defines the key condition of a DynamoDB Query operation.
type QueryParameters struct {
	// IndexName is the secondary index to query.
	IndexName string
	// KeyConditionExpression is the equality/range condition on the index keys.
	KeyConditionExpression string
	// ExpressionAttributeNames contains name placeholders used by the key condition.
	ExpressionAttributeNames map[string]string
	// ExpressionAttributeValues contains value placeholders used by the key condition.
	ExpressionAttributeValues map[string]types.AttributeValue
	// ScanIndexForward specifies the order for index traversal.
	ScanIndexForward *bool
}

// RequestDescriptor is an assembled read or single-item request. Optional fields are
// nil when absent; DynamoDB rejects empty expression strings and maps.
type RequestDescriptor struct {
	TableName                 string
	IndexName                 *string
	Key                       map[string]types.AttributeValue
	FilterExpression          *string
	ProjectionExpression      *string
	KeyConditionExpression    *string
	ExpressionAttributeNames  map[string]string
	ExpressionAttributeValues map[string]types.AttributeValue
	ExclusiveStartKey         map[string]types.AttributeValue
	Limit                     *int32
	ScanIndexForward          *bool
}

// ScanInput converts the descriptor into a Scan request.
func (r RequestDescriptor) ScanInput() *dynamodb.ScanInput {
	return &dynamodb.ScanInput{
		TableName:                 &r.TableName,
		IndexName:                 r.IndexName,
		FilterExpression:          r.FilterExpression,
		ProjectionExpression:      r.ProjectionExpression,
		ExpressionAttributeNames:  r.ExpressionAttributeNames,
		ExpressionAttributeValues: r.ExpressionAttributeValues,
		ExclusiveStartKey:         r.ExclusiveStartKey,
		Limit:                     r.Limit,
	}
}

// QueryInput converts the descriptor into a Query request.
func (r RequestDescriptor) QueryInput() *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:                 &r.TableName,
		IndexName:                 r.IndexName,
		KeyConditionExpression:    r.KeyConditionExpression,
		FilterExpression:          r.FilterExpression,
		ProjectionExpression:      r.ProjectionExpression,
		ExpressionAttributeNames:  r.ExpressionAttributeNames,
		ExpressionAttributeValues: r.ExpressionAttributeValues,
		ExclusiveStartKey:         r.ExclusiveStartKey,
		Limit:                     r.Limit,
		ScanIndexForward:          r.ScanIndexForward,
	}
}

// Page is one batch of results. A nil or empty LastEvaluatedKey marks the last page.
type Page[T any] struct {
	Items            []T
	LastEvaluatedKey map[string]types.AttributeValue
}

// HasMore reports whether another page follows.
func (p Page[T]) HasMore() bool {
	return len(p.LastEvaluatedKey) > 0
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"strconv"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/mock"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sdk.GetItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sdk.PutItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sdk.DeleteItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sdk.ScanOutput)
	return out, args.Error(1)
}

func (m *mockClient) Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sdk.QueryOutput)
	return out, args.Error(1)
}

func userItem(id, name string, age int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId":   &types.AttributeValueMemberS{Value: id},
		"userName": &types.AttributeValueMemberS{Value: name},
		"age":      &types.AttributeValueMemberN{Value: strconv.Itoa(age)},
	}
}

func lastKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"userId": &types.AttributeValueMemberS{Value: id}}
}

// firstPage matches a request without a start key.
func firstPage[In any](start func(In) map[string]types.AttributeValue) any {
	return mock.MatchedBy(func(in In) bool { return start(in) == nil })
}

// pageAfter matches a request resuming after id.
func pageAfter[In any](start func(In) map[string]types.AttributeValue, id string) any {
	return mock.MatchedBy(func(in In) bool {
		key, ok := start(in)["userId"].(*types.AttributeValueMemberS)
		return ok && key.Value == id
	})
}

func scanStart(in *sdk.ScanInput) map[string]types.AttributeValue   { return in.ExclusiveStartKey }
func queryStart(in *sdk.QueryInput) map[string]types.AttributeValue { return in.ExclusiveStartKey }

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltersKeepInsertionOrder(t *testing.T) {
	f := NewFilters().
		Add("status", Eq("active")).
		Add("age", Gt(18)).
		Add("status", Eq("pending"))

	assert.Equal(t, []string{"status", "age"}, f.Keys())
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []FilterExpression{Eq("active"), Eq("pending")}, f.Get("status"))
}

func TestFiltersZeroValueIsUsable(t *testing.T) {
	var f Filters
	f.Add("age", Gt(1))
	assert.Equal(t, 1, f.Len())

	var nilFilters *Filters
	assert.Equal(t, 0, nilFilters.Len())
	assert.Nil(t, nilFilters.Keys())
	assert.Nil(t, nilFilters.Get("age"))
}

func TestFiltersUnmarshalJSONKeepsKeyOrder(t *testing.T) {
	data := []byte(`{
		"zeta": [{"operator": "=", "value": "z"}],
		"age": [{"operator": ">", "value": 18}, {"operator": "<", "value": 65.5}],
		"deletedAt": [{"conditionFunction": "attribute_not_exists"}]
	}`)

	var f Filters
	require.NoError(t, json.Unmarshal(data, &f))

	assert.Equal(t, []string{"zeta", "age", "deletedAt"}, f.Keys())
	assert.Equal(t, []FilterExpression{Eq("z")}, f.Get("zeta"))
	assert.Equal(t, []FilterExpression{Gt(int64(18)), Lt(65.5)}, f.Get("age"))
	assert.Equal(t, []FilterExpression{NotExists()}, f.Get("deletedAt"))
}

func TestFiltersUnmarshalJSONErrors(t *testing.T) {
	tests := map[string]string{
		"not an object":    `[1,2]`,
		"both shapes":      `{"a": [{"operator": "=", "value": 1, "conditionFunction": "attribute_exists"}]}`,
		"neither shape":    `{"a": [{"value": 1}]}`,
		"predicate object": `{"a": {"operator": "="}}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			var f Filters
			assert.Error(t, json.Unmarshal([]byte(data), &f))
		})
	}
}

func TestFiltersUnmarshalJSONKeepsEmptySequence(t *testing.T) {
	var f Filters
	require.NoError(t, json.Unmarshal([]byte(`{"age": []}`), &f))
	assert.Equal(t, []string{"age"}, f.Keys())
	assert.Empty(t, f.Get("age"))
}

func TestFiltersMarshalJSON(t *testing.T) {
	f := NewFilters().
		Add("b", Gte(3)).
		Add("a", NotExists())

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"b":[{"operator":">=","value":3}],"a":[{"conditionFunction":"attribute_not_exists"}]}`,
		string(out))

	var decoded Filters
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, []string{"b", "a"}, decoded.Keys())
	assert.Equal(t, []FilterExpression{NotExists()}, decoded.Get("a"))
	require.Len(t, decoded.Get("b"), 1)
	assert.Equal(t, OpGreaterOrEqual, decoded.Get("b")[0].(Comparison).Operator)
}

func TestOperatorAndFunctionValidity(t *testing.T) {
	for _, op := range []Operator{OpEqual, OpLessThan, OpLessOrEqual, OpGreaterThan, OpGreaterOrEqual} {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, Operator("<>").Valid())
	assert.True(t, AttributeNotExists.Valid())
	assert.True(t, AttributeExists.Valid())
	assert.False(t, ConditionFunction("begins_with").Valid())
}

func TestPageHasMore(t *testing.T) {
	assert.False(t, Page[int]{Items: []int{1}}.HasMore())
	assert.False(t, Page[int]{LastEvaluatedKey: map[string]types.AttributeValue{}}.HasMore())
	assert.True(t, Page[int]{LastEvaluatedKey: map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: "x"},
	}}.HasMore())
}

func TestRequestDescriptorInputs(t *testing.T) {
	filter := "(#age > :age0 )"
	desc := RequestDescriptor{
		TableName:        "users",
		FilterExpression: &filter,
		ExpressionAttributeNames: map[string]string{
			"#age": "age",
		},
	}

	scan := desc.ScanInput()
	assert.Equal(t, "users", *scan.TableName)
	assert.Equal(t, filter, *scan.FilterExpression)
	assert.Nil(t, scan.ProjectionExpression)
	assert.Nil(t, scan.ExpressionAttributeValues)

	index, kce := "UserNameIndex", "userName = :userName"
	desc.IndexName = &index
	desc.KeyConditionExpression = &kce
	query := desc.QueryInput()
	assert.Equal(t, index, *query.IndexName)
	assert.Equal(t, kce, *query.KeyConditionExpression)
	assert.Equal(t, filter, *query.FilterExpression)
}

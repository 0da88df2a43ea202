/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	ddbexpr "github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/entityquery/datastore"
	"github.com/suparena/entityquery/datastore/ddb"
	"github.com/suparena/entityquery/datastore/mock"
	"github.com/suparena/entityquery/datastore/testmodels"
	"github.com/suparena/entityquery/errors"
	"github.com/suparena/entityquery/storagemodels"
)

var _ datastore.DataStore[testmodels.User] = (*mock.DataStore[testmodels.User])(nil)

func seeded(t *testing.T) *mock.DataStore[testmodels.User] {
	t.Helper()
	store := mock.New[testmodels.User]("users", "userId")
	for _, u := range []testmodels.User{
		{UserID: "u1", UserName: "ada", Age: 36, Status: "active"},
		{UserID: "u2", UserName: "bob", Age: 17, Status: "active"},
		{UserID: "u3", UserName: "ada", Age: 52, Status: "banned"},
		{UserID: "u4", UserName: "cyd", Age: 70},
	} {
		_, err := store.Put(context.Background(), u)
		require.NoError(t, err)
	}
	return store
}

func ids(users []testmodels.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.UserID
	}
	return out
}

func TestMockBasicOperations(t *testing.T) {
	ctx := context.Background()
	store := mock.New[testmodels.User]("users", "userId")

	_, err := store.Put(ctx, testmodels.User{UserID: "123", UserName: "test"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Count())

	retrieved, err := store.Get(ctx, "123")
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, "test", retrieved.UserName)

	require.NoError(t, store.Delete(ctx, "123"))
	retrieved, err = store.Get(ctx, "123")
	require.NoError(t, err)
	assert.Nil(t, retrieved)

	_, err = store.Put(ctx, testmodels.User{UserName: "anonymous"})
	assert.True(t, errors.IsContractViolation(err))
}

func TestMockErrorSimulation(t *testing.T) {
	ctx := context.Background()
	putErr := stderrors.New("put failed")
	deleteErr := stderrors.New("delete failed")
	store := mock.New[testmodels.User]("users", "userId").
		WithPutError(putErr).
		WithDeleteError(deleteErr)

	_, err := store.Put(ctx, testmodels.User{UserID: "1"})
	assert.Equal(t, putErr, err)
	assert.Equal(t, deleteErr, store.Delete(ctx, "1"))
}

func TestMockReadAll(t *testing.T) {
	testCases := []struct {
		name     string
		opts     storagemodels.ReadOptions
		expected []string
	}{
		{
			name:     "no filters",
			expected: []string{"u1", "u2", "u3", "u4"},
		},
		{
			name: "or within an attribute",
			opts: storagemodels.ReadOptions{
				Filters: storagemodels.NewFilters().Add("age", storagemodels.Lt(18), storagemodels.Gt(65)),
			},
			expected: []string{"u2", "u4"},
		},
		{
			name: "and across attributes",
			opts: storagemodels.ReadOptions{
				Filters: storagemodels.NewFilters().
					Add("userName", storagemodels.Eq("ada")).
					Add("status", storagemodels.Eq("active")),
			},
			expected: []string{"u1"},
		},
		{
			name: "negation only",
			opts: storagemodels.ReadOptions{
				NegationFilters: storagemodels.NewFilters().Add("status", storagemodels.Eq("banned")),
			},
			expected: []string{"u1", "u2", "u4"},
		},
		{
			name: "filter and negation",
			opts: storagemodels.ReadOptions{
				Filters:         storagemodels.NewFilters().Add("age", storagemodels.Gte(30)),
				NegationFilters: storagemodels.NewFilters().Add("status", storagemodels.NotExists()),
			},
			expected: []string{"u1", "u3"},
		},
		{
			name:     "small pages",
			opts:     storagemodels.ReadOptions{Limit: aws.Int32(1)},
			expected: []string{"u1", "u2", "u3", "u4"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			users, err := seeded(t).ReadAll(context.Background(), tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ids(users))
		})
	}
}

func TestMockReadAllProjection(t *testing.T) {
	store := seeded(t)

	users, err := store.ReadAll(context.Background(), storagemodels.ReadOptions{Fields: []string{"userName"}})
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, "u1", users[0].UserID)
	assert.Equal(t, "ada", users[0].UserName)
	assert.Zero(t, users[0].Age)

	requests := store.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "#userName,#userId", *requests[0].ProjectionExpression)
}

func TestMockReadAllFailure(t *testing.T) {
	store := seeded(t).WithReadError(stderrors.New("throttled"))

	users, err := store.ReadAll(context.Background(), storagemodels.ReadOptions{})
	assert.EqualError(t, err, "throttled")
	assert.Nil(t, users)
}

func TestMockReadFromQuery(t *testing.T) {
	store := seeded(t)

	query, err := ddb.KeyCondition("UserNameIndex", ddbexpr.Key("userName").Equal(ddbexpr.Value("ada")))
	require.NoError(t, err)
	query.ScanIndexForward = aws.Bool(false)

	users, err := store.ReadFromQuery(context.Background(), query, storagemodels.ReadOptions{
		NegationFilters: storagemodels.NewFilters().Add("age", storagemodels.Gt(50)),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids(users))

	users, err = store.ReadFromQuery(context.Background(), query, storagemodels.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u1"}, ids(users))
}

func TestMockStream(t *testing.T) {
	store := seeded(t)

	var pages int
	results := store.Stream(context.Background(),
		storagemodels.ReadOptions{Filters: storagemodels.NewFilters().Add("userName", storagemodels.Eq("ada"))},
		storagemodels.WithPageSize(2),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) { pages = p.PagesProcessed }),
	)

	var got []string
	for r := range results {
		require.NoError(t, r.Error)
		got = append(got, r.Item.UserID)
	}
	assert.Equal(t, []string{"u1", "u3"}, got)
	assert.Equal(t, 2, pages)
}

func TestMockStreamContractViolation(t *testing.T) {
	results := seeded(t).Stream(context.Background(), storagemodels.ReadOptions{
		Filters: storagemodels.NewFilters().Add("", storagemodels.Exists()),
	})

	r, ok := <-results
	require.True(t, ok)
	assert.True(t, errors.IsContractViolation(r.Error))
	_, ok = <-results
	assert.False(t, ok)
}

func TestMockStreamProgressTiming(t *testing.T) {
	var last storagemodels.StreamProgress
	for r := range seeded(t).Stream(context.Background(), storagemodels.ReadOptions{},
		storagemodels.WithPageSize(3),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) { last = p }),
	) {
		require.NoError(t, r.Error)
	}

	assert.Equal(t, int64(4), last.ItemsProcessed)
	assert.Equal(t, 2, last.PagesProcessed)
	assert.False(t, last.StartTime.IsZero())
}

func TestMockStreamResumesAfterDeletedStartKey(t *testing.T) {
	store := seeded(t)

	var got []string
	results := store.Stream(context.Background(), storagemodels.ReadOptions{},
		storagemodels.WithPageSize(2),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
			if p.PagesProcessed == 1 {
				assert.NoError(t, store.Delete(context.Background(), "u2"))
			}
		}),
	)
	for r := range results {
		require.NoError(t, r.Error)
		got = append(got, r.Item.UserID)
	}
	assert.Equal(t, []string{"u1", "u2", "u3", "u4"}, got)
}

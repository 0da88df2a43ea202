/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/entityquery/storagemodels"
)

// PageFetcher fetches the page starting after startKey. startKey is nil for the
// first page.
type PageFetcher[T any] func(ctx context.Context, startKey map[string]types.AttributeValue) (storagemodels.Page[T], error)

// CollectPages fetches pages one after another until one comes back without a
// LastEvaluatedKey and returns the items of every page in order. The first failing
// page aborts the read and nothing collected so far is returned.
func CollectPages[T any](ctx context.Context, fetch PageFetcher[T]) ([]T, error) {
	var (
		items    []T
		startKey map[string]types.AttributeValue
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := fetch(ctx, startKey)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		if !page.HasMore() {
			break
		}
		startKey = page.LastEvaluatedKey
	}

	if items == nil {
		items = []T{}
	}
	return items, nil
}

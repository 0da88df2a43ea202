/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/entityquery/expression"
	"github.com/suparena/entityquery/storagemodels"
)

// Stream scans the table and delivers matching items one by one on the returned
// channel. The channel is closed after the last page, after the first error (sent
// as the final result) or when ctx is done.
func (d *DynamodbDataStore[T]) Stream(ctx context.Context, opts storagemodels.ReadOptions, streamOpts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.NewStreamOptions(streamOpts...)
	if opts.Limit == nil {
		opts.Limit = aws.Int32(options.PageSize)
	}

	desc, err := expression.Assemble(d.binding.TableName, d.binding.IDAttribute, opts)
	if err != nil {
		return FailedStream[T](err)
	}

	return streamPages[T](ctx, d.scanPages(desc), options)
}

// StreamQuery is Stream on a secondary index query.
func (d *DynamodbDataStore[T]) StreamQuery(ctx context.Context, query storagemodels.QueryParameters, opts storagemodels.ReadOptions, streamOpts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.NewStreamOptions(streamOpts...)
	if opts.Limit == nil {
		opts.Limit = aws.Int32(options.PageSize)
	}

	desc, err := expression.AssembleQuery(d.binding.TableName, d.binding.IDAttribute, query, opts)
	if err != nil {
		return FailedStream[T](err)
	}

	return streamPages[T](ctx, d.queryPages(desc), options)
}

// StreamPages decodes the items served by fetch into T and delivers them one by
// one, with the same ordering, progress and termination rules as Stream.
func StreamPages[T any](ctx context.Context, fetch PageFetcher[Item], streamOpts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	return streamPages[T](ctx, fetch, storagemodels.NewStreamOptions(streamOpts...))
}

func streamPages[T any](ctx context.Context, fetch PageFetcher[Item], options storagemodels.StreamOptions) <-chan storagemodels.StreamResult[T] {
	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)
	go streamWorker[T](ctx, fetch, options, resultCh)
	return resultCh
}

// FailedStream returns a closed channel carrying only err, for reads rejected
// before the first page.
func FailedStream[T any](err error) <-chan storagemodels.StreamResult[T] {
	ch := make(chan storagemodels.StreamResult[T], 1)
	ch <- storagemodels.StreamResult[T]{Error: err, Meta: storagemodels.StreamMeta{Timestamp: time.Now()}}
	close(ch)
	return ch
}

// streamWorker handles the actual streaming logic
func streamWorker[T any](
	ctx context.Context,
	fetch PageFetcher[Item],
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[T],
) {
	defer close(resultCh)

	var (
		itemIndex  int64
		pageNumber int
		startKey   map[string]types.AttributeValue
		startTime  = time.Now()
	)

	reportProgress := func(lastKey map[string]types.AttributeValue) {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: itemIndex,
			PagesProcessed: pageNumber,
			LastKey:        lastKey,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
		}
		options.ProgressHandler(progress)
	}

	send := func(result storagemodels.StreamResult[T]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- result:
			return true
		}
	}

	for {
		if ctx.Err() != nil {
			return
		}

		page, err := fetch(ctx, startKey)
		if err != nil {
			send(storagemodels.StreamResult[T]{
				Error: err,
				Meta: storagemodels.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber + 1,
					Timestamp:  time.Now(),
				},
			})
			return
		}
		pageNumber++

		for _, item := range page.Items {
			result := processItem[T](item, itemIndex, pageNumber)
			itemIndex++
			if !send(result) || result.Error != nil {
				return
			}
		}

		reportProgress(page.LastEvaluatedKey)

		if !page.HasMore() {
			return
		}
		startKey = page.LastEvaluatedKey
	}
}

// processItem converts a DynamoDB item to a typed result
func processItem[T any](item Item, index int64, pageNumber int) storagemodels.StreamResult[T] {
	result := storagemodels.StreamResult[T]{
		Raw: maps.Clone(item),
		Meta: storagemodels.StreamMeta{
			Index:      index,
			PageNumber: pageNumber,
			Timestamp:  time.Now(),
		},
	}
	if err := attributevalue.UnmarshalMap(item, &result.Item); err != nil {
		result.Error = fmt.Errorf("failed to unmarshal item %d: %w", index, err)
	}
	return result
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/suparena/entityquery/errors"
)

// TimeRangeQueryBuilder queries an index whose sort key holds RFC 3339 timestamps,
// such as an index on userName sorted by createdAt.
type TimeRangeQueryBuilder[T any] struct {
	*IndexQueryBuilder[T]
	now func() time.Time
}

// QueryByTimeRange creates a time range query on indexName for one partition.
func (d *DynamodbDataStore[T]) QueryByTimeRange(indexName string, partitionKey any) *TimeRangeQueryBuilder[T] {
	return &TimeRangeQueryBuilder[T]{
		IndexQueryBuilder: d.QueryIndex(indexName).WithPartitionKey(partitionKey),
		now:               time.Now,
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// After queries items after a specific timestamp
func (q *TimeRangeQueryBuilder[T]) After(timestamp time.Time) *TimeRangeQueryBuilder[T] {
	q.WithSortKeyGreaterThan(formatTime(timestamp))
	return q
}

// Before queries items before a specific timestamp
func (q *TimeRangeQueryBuilder[T]) Before(timestamp time.Time) *TimeRangeQueryBuilder[T] {
	q.WithSortKeyLessThan(formatTime(timestamp))
	return q
}

// Between queries items between two timestamps, both included
func (q *TimeRangeQueryBuilder[T]) Between(start, end time.Time) *TimeRangeQueryBuilder[T] {
	q.WithSortKeyBetween(formatTime(start), formatTime(end))
	return q
}

// InLast queries items newer than d
func (q *TimeRangeQueryBuilder[T]) InLast(d time.Duration) *TimeRangeQueryBuilder[T] {
	return q.After(q.now().Add(-d))
}

// Today queries items of the current UTC day
func (q *TimeRangeQueryBuilder[T]) Today() *TimeRangeQueryBuilder[T] {
	now := q.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return q.Between(startOfDay, startOfDay.Add(24*time.Hour-time.Second))
}

// Latest returns results newest first
func (q *TimeRangeQueryBuilder[T]) Latest() *TimeRangeQueryBuilder[T] {
	q.forward = aws.Bool(false)
	return q
}

// Oldest returns results oldest first
func (q *TimeRangeQueryBuilder[T]) Oldest() *TimeRangeQueryBuilder[T] {
	q.forward = aws.Bool(true)
	return q
}

// TimeWindowIterator walks [start, end) in consecutive windows
type TimeWindowIterator[T any] struct {
	store        *DynamodbDataStore[T]
	indexName    string
	partitionKey any
	windowSize   time.Duration
	endTime      time.Time
	current      time.Time
}

// QueryTimeWindows creates an iterator for querying in time windows
func (d *DynamodbDataStore[T]) QueryTimeWindows(indexName string, partitionKey any, start, end time.Time, windowSize time.Duration) (*TimeWindowIterator[T], error) {
	// sort keys carry whole seconds
	if windowSize < time.Second {
		return nil, errors.NewContractViolation("windowSize", fmt.Sprintf("window size must be at least one second, got %s", windowSize))
	}
	return &TimeWindowIterator[T]{
		store:        d,
		indexName:    indexName,
		partitionKey: partitionKey,
		windowSize:   windowSize,
		endTime:      end,
		current:      start,
	}, nil
}

// Next returns the items of the next window and whether another window follows.
func (it *TimeWindowIterator[T]) Next(ctx context.Context) ([]T, bool, error) {
	if !it.current.Before(it.endTime) {
		return nil, false, nil
	}

	windowEnd := it.current.Add(it.windowSize)
	if windowEnd.After(it.endTime) {
		windowEnd = it.endTime
	}

	// BETWEEN is inclusive; stop one second short so windows do not overlap.
	upper := windowEnd.Add(-time.Second)
	if upper.Before(it.current) {
		upper = it.current
	}
	results, err := it.store.QueryByTimeRange(it.indexName, it.partitionKey).
		Between(it.current, upper).
		Oldest().
		Execute(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query time window: %w", err)
	}

	it.current = windowEnd
	return results, it.current.Before(it.endTime), nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStreamOptions(t *testing.T) {
	testCases := []struct {
		name     string
		opts     []StreamOption
		buffer   int
		pageSize int32
	}{
		{name: "defaults", buffer: 100, pageSize: 100},
		{name: "explicit", opts: []StreamOption{WithBufferSize(5), WithPageSize(7)}, buffer: 5, pageSize: 7},
		{name: "unbuffered", opts: []StreamOption{WithBufferSize(0)}, buffer: 0, pageSize: 100},
		{name: "negative buffer", opts: []StreamOption{WithBufferSize(-3)}, buffer: 0, pageSize: 100},
		{name: "zero page size", opts: []StreamOption{WithPageSize(0)}, buffer: 100, pageSize: 100},
		{name: "last option wins", opts: []StreamOption{WithPageSize(2), WithPageSize(9)}, buffer: 100, pageSize: 9},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewStreamOptions(tc.opts...)
			assert.Equal(t, tc.buffer, got.BufferSize)
			assert.Equal(t, tc.pageSize, got.PageSize)
			assert.Nil(t, got.ProgressHandler)
		})
	}

	var called bool
	NewStreamOptions(WithProgressHandler(func(StreamProgress) { called = true })).ProgressHandler(StreamProgress{})
	assert.True(t, called)
}

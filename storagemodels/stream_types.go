package storagemodels

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// StreamResult is one value delivered by a streamed read. Item is set unless
// Error is; a result with an Error is the last one before the channel closes,
// so a consumer can range over the channel and stop at the first error.
type StreamResult[T any] struct {
	Item  T
	Raw   map[string]types.AttributeValue // item as returned by the store, after projection
	Error error
	Meta  StreamMeta
}

// StreamMeta locates a result in the read. Index counts items from 0 across
// pages and PageNumber counts pages from 1. An error from a page fetch carries
// the number of the page that failed.
type StreamMeta struct {
	Index      int64
	PageNumber int
	Timestamp  time.Time
}

// StreamOptions tune a streamed read. PageSize becomes the request Limit when
// the read options carry none, so it bounds the items evaluated per page, not
// the items returned.
type StreamOptions struct {
	BufferSize      int
	PageSize        int32
	ProgressHandler func(StreamProgress)
}

// StreamProgress is reported after every page whose items were all delivered.
// It is not reported for a page that failed.
type StreamProgress struct {
	ItemsProcessed int64
	PagesProcessed int
	LastKey        map[string]types.AttributeValue // nil after the final page
	StartTime      time.Time
	CurrentRate    float64 // items per second since StartTime
}

type StreamOption func(*StreamOptions)

const (
	defaultStreamBuffer   = 100
	defaultStreamPageSize = 100
)

func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		BufferSize: defaultStreamBuffer,
		PageSize:   defaultStreamPageSize,
	}
}

// NewStreamOptions applies opts over the defaults. A negative buffer becomes an
// unbuffered channel and a page size below one falls back to the default.
func NewStreamOptions(opts ...StreamOption) StreamOptions {
	options := DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.BufferSize < 0 {
		options.BufferSize = 0
	}
	if options.PageSize < 1 {
		options.PageSize = defaultStreamPageSize
	}
	return options
}

func WithBufferSize(size int) StreamOption {
	return func(opts *StreamOptions) {
		opts.BufferSize = size
	}
}

func WithPageSize(size int32) StreamOption {
	return func(opts *StreamOptions) {
		opts.PageSize = size
	}
}

// WithProgressHandler sets a callback run on the streaming goroutine; a slow
// handler delays the next page fetch.
func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(opts *StreamOptions) {
		opts.ProgressHandler = handler
	}
}

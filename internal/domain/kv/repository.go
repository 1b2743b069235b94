package kv

import "context"

// Store is the key/value engine behind every repository.
type Store interface {
	// BatchPut writes at most MaxBatchSize items and returns the ones the
	// engine did not process. A non-nil error means nothing can be assumed
	// written.
	BatchPut(ctx context.Context, items []Item) ([]Item, error)
	// Query returns items of partition whose sort key starts with prefix,
	// ordered by sort key.
	Query(ctx context.Context, partition, prefix string) ([]Item, error)
}

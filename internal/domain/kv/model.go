package kv

import "time"

// MaxBatchSize is the largest item count a single BatchPut accepts.
const MaxBatchSize = 25

// Item is one stored row. PartitionKey groups a league's rows and SortKey
// encodes category plus identifiers, so a prefix scan selects one category.
type Item struct {
	PartitionKey string
	SortKey      string
	Category     string
	Payload      []byte
	UpdatedAt    time.Time
}

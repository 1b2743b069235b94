package kvstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/fantasy-history/internal/domain/kv"
)

// MemoryStore is an in-process kv.Store. Writes replace items by
// (partition, sort key).
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]kv.Item

	// Unprocessed, when set, picks the items of a batch that are reported
	// back as not written. Those items are not stored.
	Unprocessed func(batch []kv.Item) []kv.Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{partitions: make(map[string]map[string]kv.Item)}
}

func (s *MemoryStore) BatchPut(ctx context.Context, items []kv.Item) ([]kv.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(items) > kv.MaxBatchSize {
		return nil, fmt.Errorf("batch of %d items exceeds limit %d", len(items), kv.MaxBatchSize)
	}

	var rejected []kv.Item
	if s.Unprocessed != nil {
		rejected = s.Unprocessed(items)
	}
	skip := make(map[string]struct{}, len(rejected))
	for _, item := range rejected {
		skip[item.PartitionKey+"\x00"+item.SortKey] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if _, ok := skip[item.PartitionKey+"\x00"+item.SortKey]; ok {
			continue
		}
		partition, ok := s.partitions[item.PartitionKey]
		if !ok {
			partition = make(map[string]kv.Item)
			s.partitions[item.PartitionKey] = partition
		}
		item.Payload = append([]byte(nil), item.Payload...)
		partition[item.SortKey] = item
	}
	return rejected, nil
}

func (s *MemoryStore) Query(ctx context.Context, partition, prefix string) ([]kv.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.partitions[partition]
	out := make([]kv.Item, 0, len(items))
	for sk, item := range items {
		if strings.HasPrefix(sk, prefix) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey < out[j].SortKey })
	return out, nil
}

// Len reports the number of items stored under partition.
func (s *MemoryStore) Len(partition string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.partitions[partition])
}

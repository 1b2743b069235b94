package kvstore

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-history/internal/domain/kv"
	"github.com/riskibarqy/fantasy-history/internal/domain/league"
)

func marshalPayload(v any) ([]byte, error) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return raw, nil
}

func unmarshalPayload(raw []byte, target any) error {
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// encodeItems builds one item per row under the league partition.
func encodeItems[T any](key league.Key, category string, rows []T, sortKey func(T) (string, error), now time.Time) ([]kv.Item, error) {
	partition := PartitionKey(key)
	items := make([]kv.Item, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		sk, err := sortKey(row)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[sk]; dup {
			return nil, fmt.Errorf("duplicate sort key %q in %s", sk, category)
		}
		seen[sk] = struct{}{}

		payload, err := marshalPayload(row)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", category, sk, err)
		}
		items = append(items, kv.Item{
			PartitionKey: partition,
			SortKey:      sk,
			Category:     category,
			Payload:      payload,
			UpdatedAt:    now,
		})
	}
	return items, nil
}

func decodeItems[T any](items []kv.Item) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		var row T
		if err := unmarshalPayload(item.Payload, &row); err != nil {
			return nil, fmt.Errorf("item %s: %w", item.SortKey, err)
		}
		out = append(out, row)
	}
	return out, nil
}

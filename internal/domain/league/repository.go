package league

import "context"

// Repository describes league metadata persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context, key Key) (League, bool, error)
	Upsert(ctx context.Context, item League) error
}

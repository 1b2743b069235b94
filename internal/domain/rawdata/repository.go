package rawdata

import "context"

// Repository archives raw provider responses. Writing a payload for a
// platform, league, season and view that is already stored replaces it.
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) error
}

package member

import (
	"context"

	"github.com/riskibarqy/fantasy-history/internal/domain/league"
)

type Repository interface {
	ListMembers(ctx context.Context, key league.Key) ([]Member, error)
	UpsertMembers(ctx context.Context, key league.Key, items []Member) error
	// ListRoster returns roster rows for season, or every season when season is 0.
	ListRoster(ctx context.Context, key league.Key, season int) ([]RosterEntry, error)
	UpsertRoster(ctx context.Context, key league.Key, items []RosterEntry) error
}

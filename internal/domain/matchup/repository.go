package matchup

import (
	"context"

	"github.com/riskibarqy/fantasy-history/internal/domain/league"
)

type Repository interface {
	List(ctx context.Context, key league.Key, filter Filter) ([]Matchup, error)
	UpsertMany(ctx context.Context, key league.Key, items []Matchup) error
}

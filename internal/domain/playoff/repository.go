package playoff

import (
	"context"

	"github.com/riskibarqy/fantasy-history/internal/domain/league"
)

type Repository interface {
	ListFacts(ctx context.Context, key league.Key, season int) ([]Fact, error)
	UpsertFacts(ctx context.Context, key league.Key, items []Fact) error
	ListChampionships(ctx context.Context, key league.Key) ([]Championship, error)
	UpsertChampionships(ctx context.Context, key league.Key, items []Championship) error
}

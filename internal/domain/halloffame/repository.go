package halloffame

import (
	"context"

	"github.com/riskibarqy/fantasy-history/internal/domain/league"
)

type Repository interface {
	List(ctx context.Context, key league.Key, category Category) ([]Entry, error)
	UpsertList(ctx context.Context, key league.Key, list List) error
}

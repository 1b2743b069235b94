package standings

import (
	"context"

	"github.com/riskibarqy/fantasy-history/internal/domain/league"
)

type Repository interface {
	List(ctx context.Context, key league.Key, kind Kind, filter Filter) ([]Row, error)
	UpsertMany(ctx context.Context, key league.Key, kind Kind, rows []Row) error
}

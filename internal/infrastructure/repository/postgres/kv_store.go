package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-history/internal/domain/kv"
	qb "github.com/riskibarqy/fantasy-history/internal/platform/querybuilder"
)

const leagueItemsTable = "league_items"

// KVStore keeps league items in one Postgres table keyed by (pk, sk).
// A batch is written in one transaction, so it is never partially applied.
type KVStore struct {
	db *sqlx.DB
}

func NewKVStore(db *sqlx.DB) *KVStore {
	return &KVStore{db: db}
}

type leagueItemRow struct {
	PK        string    `db:"pk"`
	SK        string    `db:"sk"`
	Category  string    `db:"category"`
	Payload   string    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toLeagueItemRow(item kv.Item) leagueItemRow {
	updatedAt := item.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	return leagueItemRow{
		PK:        item.PartitionKey,
		SK:        item.SortKey,
		Category:  item.Category,
		Payload:   string(item.Payload),
		UpdatedAt: updatedAt,
	}
}

func (r leagueItemRow) item() kv.Item {
	return kv.Item{
		PartitionKey: r.PK,
		SortKey:      r.SK,
		Category:     r.Category,
		Payload:      []byte(r.Payload),
		UpdatedAt:    r.UpdatedAt,
	}
}

func buildUpsertItemsQuery(items []kv.Item) (string, []any, error) {
	rows := make([]leagueItemRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, toLeagueItemRow(item))
	}
	builder, err := qb.InsertModels(leagueItemsTable, rows)
	if err != nil {
		return "", nil, err
	}
	return builder.
		OnConflictUpdate([]string{"pk", "sk"}, "category", "payload", "updated_at").
		ToSQL()
}

func (s *KVStore) BatchPut(ctx context.Context, items []kv.Item) ([]kv.Item, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if len(items) > kv.MaxBatchSize {
		return nil, fmt.Errorf("batch of %d items exceeds limit %d", len(items), kv.MaxBatchSize)
	}

	query, args, err := buildUpsertItemsQuery(items)
	if err != nil {
		return nil, fmt.Errorf("build upsert league items query: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx upsert league items: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("upsert %d league items: %w", len(items), err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit upsert league items tx: %w", err)
	}
	return nil, nil
}

func buildQueryItemsQuery(partition, prefix string) (string, []any, error) {
	return qb.Select("pk", "sk", "category", "payload", "updated_at").
		From(leagueItemsTable).
		Where(qb.Eq("pk", partition), qb.StartsWith("sk", prefix)).
		OrderBy("sk").
		ToSQL()
}

func (s *KVStore) Query(ctx context.Context, partition, prefix string) ([]kv.Item, error) {
	query, args, err := buildQueryItemsQuery(partition, prefix)
	if err != nil {
		return nil, fmt.Errorf("build query league items: %w", err)
	}

	var rows []leagueItemRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query league items pk=%s prefix=%s: %w", partition, prefix, err)
	}

	out := make([]kv.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.item())
	}
	return out, nil
}

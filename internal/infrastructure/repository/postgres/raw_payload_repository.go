package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawdata"
	qb "github.com/riskibarqy/fantasy-history/internal/platform/querybuilder"
)

type RawPayloadRepository struct {
	db *sqlx.DB
}

func NewRawPayloadRepository(db *sqlx.DB) *RawPayloadRepository {
	return &RawPayloadRepository{db: db}
}

type rawPayloadInsertModel struct {
	Platform    string    `db:"platform"`
	LeagueID    string    `db:"league_id"`
	Season      int       `db:"season"`
	View        string    `db:"view"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
	FetchedAt   time.Time `db:"fetched_at"`
}

func toRawPayloadModel(item rawdata.Payload) rawPayloadInsertModel {
	hash := item.PayloadHash
	if hash == "" {
		sum := sha256.Sum256(item.PayloadJSON)
		hash = hex.EncodeToString(sum[:])
	}
	fetchedAt := item.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	return rawPayloadInsertModel{
		Platform:    item.Platform,
		LeagueID:    item.LeagueID,
		Season:      item.Season,
		View:        item.View,
		Payload:     string(item.PayloadJSON),
		PayloadHash: hash,
		FetchedAt:   fetchedAt,
	}
}

func buildUpsertRawPayloadsQuery(items []rawdata.Payload) (string, []any, error) {
	models := make([]rawPayloadInsertModel, 0, len(items))
	for _, item := range items {
		models = append(models, toRawPayloadModel(item))
	}
	builder, err := qb.InsertModels("raw_payloads", models)
	if err != nil {
		return "", nil, err
	}
	return builder.
		OnConflictUpdate([]string{"platform", "league_id", "season", "view"}, "payload", "payload_hash", "fetched_at").
		ToSQL()
}

func (r *RawPayloadRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	query, args, err := buildUpsertRawPayloadsQuery(items)
	if err != nil {
		return fmt.Errorf("build upsert raw payloads query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %d raw payloads: %w", len(items), err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert raw payloads tx: %w", err)
	}
	return nil
}

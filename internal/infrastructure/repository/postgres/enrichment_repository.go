package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/enrichment"
	qb "github.com/riskibarqy/fantrax-team-manager/internal/platform/querybuilder"
)

const enrichmentTable = "enrichment_records"

var enrichmentColumns = []string{"player_id", "period_id", "recent_points", "fixture_coefficient", "updated_at"}

type EnrichmentRepository struct {
	db *sqlx.DB
}

func NewEnrichmentRepository(db *sqlx.DB) *EnrichmentRepository {
	return &EnrichmentRepository{db: db}
}

func (r *EnrichmentRepository) GetByPlayerPeriod(ctx context.Context, playerID string, periodID int) (*enrichment.Record, error) {
	query, args := qb.Select(enrichmentColumns...).
		From(enrichmentTable).
		Where(qb.Eq("player_id", playerID), qb.Eq("period_id", periodID)).
		Build()

	var row enrichmentRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get enrichment for %s: %w", playerID, err)
	}
	rec := row.toDomain()
	return &rec, nil
}

func (r *EnrichmentRepository) ListByPeriod(ctx context.Context, periodID int, playerIDs []string) ([]enrichment.Record, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	values := make([]any, len(playerIDs))
	for i, id := range playerIDs {
		values[i] = id
	}
	query, args := qb.Select(enrichmentColumns...).
		From(enrichmentTable).
		Where(qb.Eq("period_id", periodID), qb.In("player_id", values...)).
		OrderBy("player_id").
		Build()

	var rows []enrichmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("postgres: list enrichment: %w", err)
	}
	out := make([]enrichment.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *EnrichmentRepository) Upsert(ctx context.Context, rec *enrichment.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	builder, err := qb.InsertModel(enrichmentTable, toEnrichmentRow(rec))
	if err != nil {
		return fmt.Errorf("postgres: build enrichment upsert: %w", err)
	}
	query, args := builder.
		OnConflictUpdate("player_id, period_id", "recent_points", "fixture_coefficient", "updated_at").
		Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: upsert enrichment for %s: %w", rec.PlayerID, err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/synclog"
	qb "github.com/riskibarqy/fantrax-team-manager/internal/platform/querybuilder"
)

const syncLogsTable = "sync_logs"

var syncLogColumns = []string{
	"id", "team_id", "period_id", "outcome",
	"players_seen", "players_added", "players_updated", "players_missing",
	"error", "started_at", "finished_at",
}

type SyncLogRepository struct {
	db *sqlx.DB
}

func NewSyncLogRepository(db *sqlx.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

func (r *SyncLogRepository) Create(ctx context.Context, entry *synclog.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	builder, err := qb.InsertModel(syncLogsTable, toSyncLogRow(entry))
	if err != nil {
		return fmt.Errorf("postgres: build sync log insert: %w", err)
	}
	query, args := builder.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: create sync log %s: %w", entry.ID, err)
	}
	return nil
}

func (r *SyncLogRepository) ListByTeam(ctx context.Context, teamID string, limit int) ([]synclog.Entry, error) {
	builder := qb.Select(syncLogColumns...).
		From(syncLogsTable).
		Where(qb.Eq("team_id", teamID)).
		OrderBy("started_at DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args := builder.Build()

	var rows []syncLogRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("postgres: list sync logs: %w", err)
	}
	out := make([]synclog.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

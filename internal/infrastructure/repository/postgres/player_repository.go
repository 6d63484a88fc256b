package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
	qb "github.com/riskibarqy/fantrax-team-manager/internal/platform/querybuilder"
)

const playersTable = "players"

var playerColumns = []string{"id", "name", "position", "team_name", "status", "locked", "updated_at"}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, id string) (*player.Player, error) {
	query, args := qb.Select(playerColumns...).
		From(playersTable).
		Where(qb.Eq("id", id)).
		Build()

	var row playerRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get player %s: %w", id, err)
	}
	p := row.toDomain()
	return &p, nil
}

func (r *PlayerRepository) ListByIDs(ctx context.Context, ids []string) ([]player.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	query, args := qb.Select(playerColumns...).
		From(playersTable).
		Where(qb.In("id", values...)).
		OrderBy("id").
		Build()

	var rows []playerRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("postgres: list players: %w", err)
	}
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, p *player.Player) error {
	if err := p.Validate(); err != nil {
		return err
	}
	builder, err := qb.InsertModel(playersTable, toPlayerRow(p))
	if err != nil {
		return fmt.Errorf("postgres: build player upsert: %w", err)
	}
	query, args := builder.
		OnConflictUpdate("id", "name", "position", "team_name", "status", "locked", "updated_at").
		Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: upsert player %s: %w", p.ID, err)
	}
	return nil
}

func (r *PlayerRepository) UpdateStatus(ctx context.Context, id string, status player.Status) error {
	query, args := qb.Update(playersTable).
		Set("status", string(status)).
		Set("updated_at", nowUTC()).
		Where(qb.Eq("id", id)).
		Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("postgres: update status for %s: %w", id, err)
	}
	return requireRowAffected(result, "player", id)
}

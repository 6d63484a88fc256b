package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
	qb "github.com/riskibarqy/fantrax-team-manager/internal/platform/querybuilder"
)

const rosterSlotsTable = "roster_slots"

var rosterSlotColumns = []string{"team_id", "period_id", "player_id", "role", "updated_at"}

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) ListByTeamPeriod(ctx context.Context, teamID string, periodID int) ([]roster.Slot, error) {
	query, args := qb.Select(rosterSlotColumns...).
		From(rosterSlotsTable).
		Where(qb.Eq("team_id", teamID), qb.Eq("period_id", periodID)).
		OrderBy("player_id").
		Build()

	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("postgres: list roster slots: %w", err)
	}
	out := make([]roster.Slot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RosterRepository) Upsert(ctx context.Context, slot *roster.Slot) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	builder, err := qb.InsertModel(rosterSlotsTable, toSlotRow(slot))
	if err != nil {
		return fmt.Errorf("postgres: build slot upsert: %w", err)
	}
	query, args := builder.
		OnConflictUpdate("team_id, period_id, player_id", "role", "updated_at").
		Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: upsert slot for %s: %w", slot.PlayerID, err)
	}
	return nil
}

func (r *RosterRepository) UpdateRole(ctx context.Context, teamID string, periodID int, playerID string, role roster.Role) error {
	query, args := qb.Update(rosterSlotsTable).
		Set("role", string(role)).
		Set("updated_at", nowUTC()).
		Where(qb.Eq("team_id", teamID), qb.Eq("period_id", periodID), qb.Eq("player_id", playerID)).
		Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("postgres: update role for %s: %w", playerID, err)
	}
	return requireRowAffected(result, "roster slot", playerID)
}

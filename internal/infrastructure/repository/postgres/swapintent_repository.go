package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/swapintent"
	qb "github.com/riskibarqy/fantrax-team-manager/internal/platform/querybuilder"
)

const swapIntentsTable = "swap_intents"

var swapIntentColumns = []string{
	"id", "team_id", "period_id", "player_out", "player_in",
	"attempt_count", "status", "last_error", "updated_at",
}

type SwapIntentRepository struct {
	db *sqlx.DB
}

func NewSwapIntentRepository(db *sqlx.DB) *SwapIntentRepository {
	return &SwapIntentRepository{db: db}
}

func (r *SwapIntentRepository) GetByID(ctx context.Context, id string) (*swapintent.Intent, error) {
	query, args := qb.Select(swapIntentColumns...).
		From(swapIntentsTable).
		Where(qb.Eq("id", id)).
		Build()

	var row swapIntentRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get swap intent %s: %w", id, err)
	}
	intent := row.toDomain()
	return &intent, nil
}

func (r *SwapIntentRepository) ListByTeamPeriod(ctx context.Context, teamID string, periodID int) ([]swapintent.Intent, error) {
	query, args := qb.Select(swapIntentColumns...).
		From(swapIntentsTable).
		Where(qb.Eq("team_id", teamID), qb.Eq("period_id", periodID)).
		OrderBy("id").
		Build()

	var rows []swapIntentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("postgres: list swap intents: %w", err)
	}
	out := make([]swapintent.Intent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SwapIntentRepository) Create(ctx context.Context, intent *swapintent.Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}
	builder, err := qb.InsertModel(swapIntentsTable, toSwapIntentRow(intent))
	if err != nil {
		return fmt.Errorf("postgres: build swap intent insert: %w", err)
	}
	query, args := builder.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres: create swap intent %s: %w", intent.ID, err)
	}
	return nil
}

func (r *SwapIntentRepository) Update(ctx context.Context, intent *swapintent.Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}
	builder, err := qb.UpdateModel(swapIntentsTable, toSwapIntentRow(intent), "id")
	if err != nil {
		return fmt.Errorf("postgres: build swap intent update: %w", err)
	}
	query, args := builder.Where(qb.Eq("id", intent.ID)).Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("postgres: update swap intent %s: %w", intent.ID, err)
	}
	return requireRowAffected(result, "swap intent", intent.ID)
}

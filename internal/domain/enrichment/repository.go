package enrichment

import "context"

// Repository persists per-period scoring records.
type Repository interface {
	GetByPlayerPeriod(ctx context.Context, playerID string, periodID int) (*Record, error)
	ListByPeriod(ctx context.Context, periodID int, playerIDs []string) ([]Record, error)
	Upsert(ctx context.Context, rec *Record) error
}

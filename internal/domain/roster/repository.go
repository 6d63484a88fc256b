package roster

import "context"

// Repository persists roster slot assignments.
type Repository interface {
	ListByTeamPeriod(ctx context.Context, teamID string, periodID int) ([]Slot, error)
	Upsert(ctx context.Context, slot *Slot) error
	UpdateRole(ctx context.Context, teamID string, periodID int, playerID string, role Role) error
}

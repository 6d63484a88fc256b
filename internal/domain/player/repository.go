package player

import "context"

// Repository persists the local player mirror.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Player, error)
	ListByIDs(ctx context.Context, ids []string) ([]Player, error)
	Upsert(ctx context.Context, p *Player) error
	UpdateStatus(ctx context.Context, id string, status Status) error
}

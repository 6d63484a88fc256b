package swapintent

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (*Intent, error)
	ListByTeamPeriod(ctx context.Context, teamID string, periodID int) ([]Intent, error)
	Create(ctx context.Context, intent *Intent) error
	Update(ctx context.Context, intent *Intent) error
}

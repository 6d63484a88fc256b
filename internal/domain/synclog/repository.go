package synclog

import "context"

type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	ListByTeam(ctx context.Context, teamID string, limit int) ([]Entry, error)
}

package usecase

import (
	"context"

	"github.com/riskibarqy/fantrax-team-manager/external/fantrax"
)

// PlatformGateway is the slice of the Fantrax client the services
// depend on. Tests substitute a mock.
type PlatformGateway interface {
	FetchMatchupPeriod(ctx context.Context, teamID string) (int, error)
	FetchRoster(ctx context.Context, teamID string, periodID int) (*fantrax.RosterSnapshot, error)
	FetchStandings(ctx context.Context) ([]fantrax.TeamStanding, error)
	FetchFixtures(ctx context.Context, periodID int) ([]fantrax.Fixture, error)
	FetchPlayerProfile(ctx context.Context, playerID string) (*fantrax.PlayerProfile, error)
	ApplyRosterChanges(ctx context.Context, teamID string, periodID int, changes []fantrax.RosterChange) error
}

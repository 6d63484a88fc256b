package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/fantrax-team-manager/external/fantrax"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) FetchMatchupPeriod(ctx context.Context, teamID string) (int, error) {
	args := m.Called(ctx, teamID)
	return args.Int(0), args.Error(1)
}

func (m *mockGateway) FetchRoster(ctx context.Context, teamID string, periodID int) (*fantrax.RosterSnapshot, error) {
	args := m.Called(ctx, teamID, periodID)
	if snapshot := args.Get(0); snapshot != nil {
		return snapshot.(*fantrax.RosterSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) FetchStandings(ctx context.Context) ([]fantrax.TeamStanding, error) {
	args := m.Called(ctx)
	if standings := args.Get(0); standings != nil {
		return standings.([]fantrax.TeamStanding), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) FetchFixtures(ctx context.Context, periodID int) ([]fantrax.Fixture, error) {
	args := m.Called(ctx, periodID)
	if fixtures := args.Get(0); fixtures != nil {
		return fixtures.([]fantrax.Fixture), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) FetchPlayerProfile(ctx context.Context, playerID string) (*fantrax.PlayerProfile, error) {
	args := m.Called(ctx, playerID)
	if profile := args.Get(0); profile != nil {
		return profile.(*fantrax.PlayerProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) ApplyRosterChanges(ctx context.Context, teamID string, periodID int, changes []fantrax.RosterChange) error {
	args := m.Called(ctx, teamID, periodID, changes)
	return args.Error(0)
}

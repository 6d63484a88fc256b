package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/fantrax-team-manager/external/fantrax"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
	"github.com/riskibarqy/fantrax-team-manager/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/cache"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
)

type enrichmentFixture struct {
	gateway    *mockGateway
	players    *memory.PlayerRepository
	roster     *memory.RosterRepository
	enrichment *memory.EnrichmentRepository
	service    *EnrichmentService
}

func newEnrichmentFixture() *enrichmentFixture {
	f := &enrichmentFixture{
		gateway:    &mockGateway{},
		players:    memory.NewPlayerRepository(),
		roster:     memory.NewRosterRepository(),
		enrichment: memory.NewEnrichmentRepository(),
	}
	f.service = NewEnrichmentService(
		f.gateway, f.players, f.roster, f.enrichment,
		cache.NewStore(time.Minute), logging.NewNop(), 2,
	)
	return f
}

func (f *enrichmentFixture) seed(t *testing.T, id, teamName string) {
	t.Helper()
	ctx := context.Background()
	if err := f.players.Upsert(ctx, &player.Player{
		ID: id, Name: "Player " + id, Position: player.PositionMidfielder,
		TeamName: teamName, Status: player.StatusActive, UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.roster.Upsert(ctx, &roster.Slot{
		TeamID: "t1", PeriodID: 5, PlayerID: id, Role: roster.RoleReserve, UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
}

func TestRefreshWritesRecordsWithFixtureWeighting(t *testing.T) {
	f := newEnrichmentFixture()
	f.seed(t, "p1", "Liverpool")
	f.seed(t, "p2", "Wolves")

	f.gateway.On("FetchStandings", mock.Anything).Return([]fantrax.TeamStanding{
		{TeamName: "Liverpool", Rank: 1},
		{TeamName: "Wolves", Rank: 20},
	}, nil)
	f.gateway.On("FetchFixtures", mock.Anything, 5).Return([]fantrax.Fixture{
		{HomeTeam: "Liverpool", AwayTeam: "Wolves"},
	}, nil)
	f.gateway.On("FetchPlayerProfile", mock.Anything, "p1").
		Return(&fantrax.PlayerProfile{PlayerID: "p1", RecentPoints: []float64{10, 20}}, nil)
	f.gateway.On("FetchPlayerProfile", mock.Anything, "p2").
		Return(&fantrax.PlayerProfile{PlayerID: "p2", RecentPoints: []float64{6}}, nil)

	if err := f.service.Refresh(context.Background(), "t1", 5); err != nil {
		t.Fatal(err)
	}

	rec1, _ := f.enrichment.GetByPlayerPeriod(context.Background(), "p1", 5)
	if rec1 == nil {
		t.Fatal("no record for p1")
	}
	// Rank 1 vs rank 20: the easiest possible fixture.
	if rec1.FixtureCoefficient <= 1 {
		t.Fatalf("top side against bottom side should score above 1, got %f", rec1.FixtureCoefficient)
	}
	wantValue := 15 * rec1.FixtureCoefficient
	if math.Abs(rec1.Value()-wantValue) > 1e-9 {
		t.Fatalf("value mismatch: got %f want %f", rec1.Value(), wantValue)
	}

	rec2, _ := f.enrichment.GetByPlayerPeriod(context.Background(), "p2", 5)
	if rec2 == nil || rec2.FixtureCoefficient >= 1 {
		t.Fatalf("bottom side against top side should score below 1, got %+v", rec2)
	}
}

func TestRefreshNeutralCoefficientWithoutFixture(t *testing.T) {
	f := newEnrichmentFixture()
	f.seed(t, "p1", "Brentford")

	f.gateway.On("FetchStandings", mock.Anything).Return([]fantrax.TeamStanding{
		{TeamName: "Brentford", Rank: 10},
	}, nil)
	f.gateway.On("FetchFixtures", mock.Anything, 5).Return([]fantrax.Fixture{}, nil)
	f.gateway.On("FetchPlayerProfile", mock.Anything, "p1").
		Return(&fantrax.PlayerProfile{PlayerID: "p1", RecentPoints: []float64{4}}, nil)

	if err := f.service.Refresh(context.Background(), "t1", 5); err != nil {
		t.Fatal(err)
	}
	rec, _ := f.enrichment.GetByPlayerPeriod(context.Background(), "p1", 5)
	if rec.FixtureCoefficient != 1 {
		t.Fatalf("expected neutral coefficient, got %f", rec.FixtureCoefficient)
	}
}

func TestRefreshPropagatesProfileFetchFailure(t *testing.T) {
	f := newEnrichmentFixture()
	f.seed(t, "p1", "Liverpool")

	f.gateway.On("FetchStandings", mock.Anything).Return([]fantrax.TeamStanding{
		{TeamName: "Liverpool", Rank: 1},
	}, nil)
	f.gateway.On("FetchFixtures", mock.Anything, 5).Return([]fantrax.Fixture{}, nil)
	f.gateway.On("FetchPlayerProfile", mock.Anything, "p1").
		Return(nil, fmt.Errorf("%w: http 503", fantrax.ErrTransient))

	err := f.service.Refresh(context.Background(), "t1", 5)
	if !errors.Is(err, ErrTransientFetch) {
		t.Fatalf("expected ErrTransientFetch, got %v", err)
	}
}

func TestRefreshEmptyRosterIsNotFound(t *testing.T) {
	f := newEnrichmentFixture()
	if err := f.service.Refresh(context.Background(), "t1", 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFixtureCoefficientSymmetryAndBounds(t *testing.T) {
	easy := fixtureCoefficient(1, 20, 20)
	hard := fixtureCoefficient(20, 1, 20)
	if easy <= 1 || hard >= 1 {
		t.Fatalf("coefficient direction wrong: easy %f hard %f", easy, hard)
	}
	if math.Abs((easy-1)+(hard-1)) > 1e-9 {
		t.Fatalf("coefficients should mirror around 1: %f %f", easy, hard)
	}
	if easy > 1+fixtureWeight || hard < 1-fixtureWeight {
		t.Fatalf("coefficient outside bounds: %f %f", easy, hard)
	}
	if got := fixtureCoefficient(5, 5, 20); got != 1 {
		t.Fatalf("equal ranks should be neutral, got %f", got)
	}
	if got := fixtureCoefficient(1, 1, 1); got != 1 {
		t.Fatalf("degenerate league should be neutral, got %f", got)
	}
}

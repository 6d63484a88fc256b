package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/enrichment"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
	"github.com/riskibarqy/fantrax-team-manager/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
)

type optimizerFixture struct {
	players    *memory.PlayerRepository
	roster     *memory.RosterRepository
	enrichment *memory.EnrichmentRepository
	service    *OptimizerService
}

func newOptimizerFixture(t *testing.T, rules roster.FormationRules) *optimizerFixture {
	t.Helper()
	f := &optimizerFixture{
		players:    memory.NewPlayerRepository(),
		roster:     memory.NewRosterRepository(),
		enrichment: memory.NewEnrichmentRepository(),
	}
	service, err := NewOptimizerService(f.players, f.roster, f.enrichment, rules, logging.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	f.service = service
	return f
}

// addPlayer seeds a player, a roster slot, and an enrichment record
// whose Value() equals score.
func (f *optimizerFixture) addPlayer(t *testing.T, id string, pos player.Position, status player.Status, locked bool, role roster.Role, score float64) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	if err := f.players.Upsert(ctx, &player.Player{
		ID: id, Name: "Player " + id, Position: pos, TeamName: "LIV",
		Status: status, Locked: locked, UpdatedAt: now,
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.roster.Upsert(ctx, &roster.Slot{
		TeamID: "t1", PeriodID: 5, PlayerID: id, Role: role, UpdatedAt: now,
	}); err != nil {
		t.Fatal(err)
	}
	if score != 0 {
		if err := f.enrichment.Upsert(ctx, &enrichment.Record{
			PlayerID: id, PeriodID: 5, RecentPoints: []float64{score},
			FixtureCoefficient: 1, UpdatedAt: now,
		}); err != nil {
			t.Fatal(err)
		}
	}
}

func twoPositionRules() roster.FormationRules {
	return roster.FormationRules{Starters: map[player.Position]int{
		player.PositionGoalkeeper: 1,
		player.PositionDefender:   4,
	}}
}

func containsAll(got []string, want ...string) bool {
	set := make(map[string]bool, len(got))
	for _, id := range got {
		set[id] = true
	}
	for _, id := range want {
		if !set[id] {
			return false
		}
	}
	return true
}

func TestBuildLineupPicksHighestValuePerPosition(t *testing.T) {
	f := newOptimizerFixture(t, twoPositionRules())
	f.addPlayer(t, "gk1", player.PositionGoalkeeper, player.StatusActive, false, roster.RoleStarter, 80)
	f.addPlayer(t, "gk2", player.PositionGoalkeeper, player.StatusActive, false, roster.RoleReserve, 60)
	f.addPlayer(t, "d1", player.PositionDefender, player.StatusActive, false, roster.RoleReserve, 70)
	f.addPlayer(t, "d2", player.PositionDefender, player.StatusActive, false, roster.RoleStarter, 65)
	f.addPlayer(t, "d3", player.PositionDefender, player.StatusActive, false, roster.RoleStarter, 60)
	f.addPlayer(t, "d4", player.PositionDefender, player.StatusActive, false, roster.RoleStarter, 55)
	f.addPlayer(t, "d5", player.PositionDefender, player.StatusActive, false, roster.RoleStarter, 50)

	plan, err := f.service.BuildLineup(context.Background(), "t1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Starters) != 5 {
		t.Fatalf("expected 5 starters, got %v", plan.Starters)
	}
	if !containsAll(plan.Starters, "gk1", "d1", "d2", "d3", "d4") {
		t.Fatalf("unexpected starters %v", plan.Starters)
	}
	if !containsAll(plan.Reserves, "gk2", "d5") {
		t.Fatalf("unexpected reserves %v", plan.Reserves)
	}
	if len(plan.Unfillable) != 0 {
		t.Fatalf("nothing should be unfillable, got %v", plan.Unfillable)
	}
}

func TestBuildLineupTieGoesToCurrentStarter(t *testing.T) {
	rules := roster.FormationRules{Starters: map[player.Position]int{player.PositionForward: 1}}
	f := newOptimizerFixture(t, rules)
	f.addPlayer(t, "fw_bench", player.PositionForward, player.StatusActive, false, roster.RoleReserve, 40)
	f.addPlayer(t, "fw_start", player.PositionForward, player.StatusActive, false, roster.RoleStarter, 40)

	plan, err := f.service.BuildLineup(context.Background(), "t1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Starters) != 1 || plan.Starters[0] != "fw_start" {
		t.Fatalf("tie should keep the current starter, got %v", plan.Starters)
	}
}

func TestBuildLineupTieBreaksByIDWhenNeitherStarts(t *testing.T) {
	rules := roster.FormationRules{Starters: map[player.Position]int{player.PositionForward: 1}}
	f := newOptimizerFixture(t, rules)
	f.addPlayer(t, "fw_b", player.PositionForward, player.StatusActive, false, roster.RoleReserve, 40)
	f.addPlayer(t, "fw_a", player.PositionForward, player.StatusActive, false, roster.RoleReserve, 40)

	plan, err := f.service.BuildLineup(context.Background(), "t1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Starters[0] != "fw_a" {
		t.Fatalf("lower id should win the tie, got %v", plan.Starters)
	}
}

func TestBuildLineupExcludesUnavailablePlayers(t *testing.T) {
	rules := roster.FormationRules{Starters: map[player.Position]int{player.PositionForward: 1}}
	f := newOptimizerFixture(t, rules)
	f.addPlayer(t, "fw_inj", player.PositionForward, player.StatusInjured, false, roster.RoleStarter, 90)
	f.addPlayer(t, "fw_unk", player.PositionForward, player.StatusUnknown, false, roster.RoleReserve, 85)
	f.addPlayer(t, "fw_ok", player.PositionForward, player.StatusActive, false, roster.RoleReserve, 10)

	plan, err := f.service.BuildLineup(context.Background(), "t1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Starters) != 1 || plan.Starters[0] != "fw_ok" {
		t.Fatalf("only the active player may start, got %v", plan.Starters)
	}
}

func TestBuildLineupUnscoredPlayerRanksLast(t *testing.T) {
	rules := roster.FormationRules{Starters: map[player.Position]int{player.PositionForward: 1}}
	f := newOptimizerFixture(t, rules)
	f.addPlayer(t, "fw_scored", player.PositionForward, player.StatusActive, false, roster.RoleReserve, 5)
	f.addPlayer(t, "fw_blank", player.PositionForward, player.StatusActive, false, roster.RoleStarter, 0)

	plan, err := f.service.BuildLineup(context.Background(), "t1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Starters[0] != "fw_scored" {
		t.Fatalf("scored player should outrank the blank one, got %v", plan.Starters)
	}
}

func TestBuildLineupRespectsLocks(t *testing.T) {
	rules := roster.FormationRules{Starters: map[player.Position]int{player.PositionForward: 1}}
	f := newOptimizerFixture(t, rules)
	f.addPlayer(t, "fw_locked", player.PositionForward, player.StatusActive, true, roster.RoleStarter, 10)
	f.addPlayer(t, "fw_better", player.PositionForward, player.StatusActive, false, roster.RoleReserve, 90)

	plan, err := f.service.BuildLineup(context.Background(), "t1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Starters[0] != "fw_locked" {
		t.Fatalf("locked starter must keep its slot, got %v", plan.Starters)
	}
}

func TestBuildLineupLockedReserveNotPromoted(t *testing.T) {
	rules := roster.FormationRules{Starters: map[player.Position]int{player.PositionForward: 1}}
	f := newOptimizerFixture(t, rules)
	f.addPlayer(t, "fw_locked_res", player.PositionForward, player.StatusActive, true, roster.RoleReserve, 90)
	f.addPlayer(t, "fw_start", player.PositionForward, player.StatusActive, false, roster.RoleStarter, 10)

	plan, err := f.service.BuildLineup(context.Background(), "t1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Starters[0] != "fw_start" {
		t.Fatalf("locked reserve must stay benched, got %v", plan.Starters)
	}
}

func TestBuildLineupReportsUnfillableSlot(t *testing.T) {
	f := newOptimizerFixture(t, twoPositionRules())
	f.addPlayer(t, "gk1", player.PositionGoalkeeper, player.StatusActive, false, roster.RoleStarter, 50)
	f.addPlayer(t, "d1", player.PositionDefender, player.StatusActive, false, roster.RoleStarter, 40)
	f.addPlayer(t, "d2", player.PositionDefender, player.StatusInjured, false, roster.RoleStarter, 40)

	plan, err := f.service.BuildLineup(context.Background(), "t1", 5)
	if err != nil {
		t.Fatalf("unfillable slots must not be fatal: %v", err)
	}
	if len(plan.Unfillable) != 1 {
		t.Fatalf("expected one unfillable position, got %v", plan.Unfillable)
	}
	got := plan.Unfillable[0]
	if got.Position != player.PositionDefender || got.Missing != 3 {
		t.Fatalf("unexpected unfillable report %+v", got)
	}
}

func TestBuildLineupEmptyRosterIsNotFound(t *testing.T) {
	f := newOptimizerFixture(t, twoPositionRules())
	_, err := f.service.BuildLineup(context.Background(), "t1", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewOptimizerServiceRejectsBadFormation(t *testing.T) {
	bad := roster.FormationRules{Starters: map[player.Position]int{"XX": 1}}
	_, err := NewOptimizerService(nil, nil, nil, bad, logging.NewNop())
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

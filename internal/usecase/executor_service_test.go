package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/fantrax-team-manager/external/fantrax"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/swapintent"
	"github.com/riskibarqy/fantrax-team-manager/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
)

type executorFixture struct {
	gateway *mockGateway
	players *memory.PlayerRepository
	roster  *memory.RosterRepository
	intents *memory.SwapIntentRepository
	service *ExecutorService
}

func newExecutorFixture(cfg ExecutorConfig) *executorFixture {
	f := &executorFixture{
		gateway: &mockGateway{},
		players: memory.NewPlayerRepository(),
		roster:  memory.NewRosterRepository(),
		intents: memory.NewSwapIntentRepository(),
	}
	if cfg.RetryBaseDelay == 0 {
		cfg.RetryBaseDelay = time.Millisecond
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 1
	}
	f.service = NewExecutorService(f.gateway, f.players, f.roster, f.intents, cfg, logging.NewNop())
	return f
}

func (f *executorFixture) seed(t *testing.T, id string, pos player.Position, role roster.Role) {
	t.Helper()
	ctx := context.Background()
	if err := f.players.Upsert(ctx, &player.Player{
		ID: id, Name: "Player " + id, Position: pos, TeamName: "LIV",
		Status: player.StatusActive, UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
	if err := f.roster.Upsert(ctx, &roster.Slot{
		TeamID: "t1", PeriodID: 5, PlayerID: id, Role: role, UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatal(err)
	}
}

func planFor(starters []string, reserves []string, scores map[string]float64) *LineupPlan {
	return &LineupPlan{TeamID: "t1", PeriodID: 5, Starters: starters, Reserves: reserves, Scores: scores}
}

func matchedSnapshot(plan *LineupPlan, positions map[string]player.Position) *fantrax.RosterSnapshot {
	snapshot := &fantrax.RosterSnapshot{TeamID: plan.TeamID, PeriodID: plan.PeriodID}
	starters := make(map[string]bool, len(plan.Starters))
	for _, id := range plan.Starters {
		starters[id] = true
	}
	add := func(ids []string) {
		for _, id := range ids {
			snapshot.Entries = append(snapshot.Entries, fantrax.RosterEntry{
				PlayerID: id, Position: positions[id], PositionOK: true,
				Status: player.StatusActive, Starter: starters[id],
			})
		}
	}
	add(plan.Starters)
	add(plan.Reserves)
	return snapshot
}

func TestExecuteLineupNoopWhenLineupMatches(t *testing.T) {
	f := newExecutorFixture(ExecutorConfig{})
	f.seed(t, "fw1", player.PositionForward, roster.RoleStarter)
	f.seed(t, "fw2", player.PositionForward, roster.RoleReserve)

	report, err := f.service.ExecuteLineup(context.Background(),
		planFor([]string{"fw1"}, []string{"fw2"}, map[string]float64{"fw1": 50, "fw2": 10}))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Applied)+len(report.Failed)+len(report.Pending) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	f.gateway.AssertNotCalled(t, "ApplyRosterChanges", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteLineupAppliesSwapAndUpdatesLocalRoster(t *testing.T) {
	f := newExecutorFixture(ExecutorConfig{})
	f.seed(t, "fw_old", player.PositionForward, roster.RoleStarter)
	f.seed(t, "fw_new", player.PositionForward, roster.RoleReserve)

	plan := planFor([]string{"fw_new"}, []string{"fw_old"}, map[string]float64{"fw_old": 10, "fw_new": 90})
	positions := map[string]player.Position{"fw_old": player.PositionForward, "fw_new": player.PositionForward}

	f.gateway.On("ApplyRosterChanges", mock.Anything, "t1", 5, mock.Anything).Return(nil).Once()
	f.gateway.On("FetchRoster", mock.Anything, "t1", 5).Return(matchedSnapshot(plan, positions), nil).Once()

	report, err := f.service.ExecuteLineup(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Applied) != 1 {
		t.Fatalf("expected one applied swap, got %+v", report)
	}
	applied := report.Applied[0]
	if applied.PlayerOut != "fw_old" || applied.PlayerIn != "fw_new" || applied.AttemptCount != 1 {
		t.Fatalf("unexpected intent %+v", applied)
	}
	if len(report.StatusConflicts) != 0 {
		t.Fatalf("no conflicts expected, got %v", report.StatusConflicts)
	}

	slots, _ := f.roster.ListByTeamPeriod(context.Background(), "t1", 5)
	for _, slot := range slots {
		wantStarter := slot.PlayerID == "fw_new"
		if (slot.Role == roster.RoleStarter) != wantStarter {
			t.Fatalf("local roster not updated: %+v", slot)
		}
	}
	f.gateway.AssertExpectations(t)
}

func TestExecuteLineupRetriesTransientThenApplies(t *testing.T) {
	f := newExecutorFixture(ExecutorConfig{MaxAttempts: 3})
	f.seed(t, "fw_old", player.PositionForward, roster.RoleStarter)
	f.seed(t, "fw_new", player.PositionForward, roster.RoleReserve)

	plan := planFor([]string{"fw_new"}, []string{"fw_old"}, map[string]float64{"fw_old": 10, "fw_new": 90})
	positions := map[string]player.Position{"fw_old": player.PositionForward, "fw_new": player.PositionForward}

	transient := fmt.Errorf("%w: http 503", fantrax.ErrTransient)
	f.gateway.On("ApplyRosterChanges", mock.Anything, "t1", 5, mock.Anything).Return(transient).Twice()
	f.gateway.On("ApplyRosterChanges", mock.Anything, "t1", 5, mock.Anything).Return(nil).Once()
	f.gateway.On("FetchRoster", mock.Anything, "t1", 5).Return(matchedSnapshot(plan, positions), nil).Once()

	report, err := f.service.ExecuteLineup(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Applied) != 1 {
		t.Fatalf("expected one applied swap, got %+v", report)
	}
	if got := report.Applied[0].AttemptCount; got != 3 {
		t.Fatalf("expected attempt count 3, got %d", got)
	}
	f.gateway.AssertExpectations(t)
}

func TestExecuteLineupFailsIntentAfterExhaustedRetries(t *testing.T) {
	f := newExecutorFixture(ExecutorConfig{MaxAttempts: 2})
	f.seed(t, "fw_old", player.PositionForward, roster.RoleStarter)
	f.seed(t, "fw_new", player.PositionForward, roster.RoleReserve)

	transient := fmt.Errorf("%w: http 503", fantrax.ErrTransient)
	f.gateway.On("ApplyRosterChanges", mock.Anything, "t1", 5, mock.Anything).Return(transient)

	report, err := f.service.ExecuteLineup(context.Background(),
		planFor([]string{"fw_new"}, []string{"fw_old"}, map[string]float64{"fw_old": 10, "fw_new": 90}))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Failed) != 1 {
		t.Fatalf("expected one failed swap, got %+v", report)
	}
	failed := report.Failed[0]
	if failed.AttemptCount != 2 || failed.Status != swapintent.StatusFailed || failed.LastError == "" {
		t.Fatalf("unexpected failed intent %+v", failed)
	}

	stored, _ := f.intents.GetByID(context.Background(), failed.ID)
	if stored == nil || stored.Status != swapintent.StatusFailed {
		t.Fatalf("failed state not persisted: %+v", stored)
	}
}

func TestExecuteLineupAuthFailureAbortsRemainingIntents(t *testing.T) {
	f := newExecutorFixture(ExecutorConfig{PoolSize: 1})
	f.seed(t, "gk_old", player.PositionGoalkeeper, roster.RoleStarter)
	f.seed(t, "gk_new", player.PositionGoalkeeper, roster.RoleReserve)
	f.seed(t, "fw_old", player.PositionForward, roster.RoleStarter)
	f.seed(t, "fw_new", player.PositionForward, roster.RoleReserve)

	plan := planFor(
		[]string{"gk_new", "fw_new"},
		[]string{"gk_old", "fw_old"},
		map[string]float64{"gk_old": 10, "gk_new": 60, "fw_old": 20, "fw_new": 70},
	)

	f.gateway.On("ApplyRosterChanges", mock.Anything, "t1", 5, mock.Anything).
		Return(fmt.Errorf("%w: session expired", fantrax.ErrUnauthorized)).Once()

	report, err := f.service.ExecuteLineup(context.Background(), plan)
	if !errors.Is(err, ErrPlatformAuth) {
		t.Fatalf("expected ErrPlatformAuth, got %v", err)
	}
	if len(report.Failed) != 1 {
		t.Fatalf("expected one failed intent, got %+v", report)
	}
	if got := report.Failed[0].AttemptCount; got != 1 {
		t.Fatalf("auth failure is terminal after one attempt, got %d", got)
	}
	if len(report.Pending) != 1 {
		t.Fatalf("the aborted intent should stay pending, got %+v", report)
	}
	if report.Pending[0].AttemptCount != 0 {
		t.Fatalf("pending intent must not have been attempted: %+v", report.Pending[0])
	}
	f.gateway.AssertNumberOfCalls(t, "ApplyRosterChanges", 1)
}

func TestExecuteLineupSkipsAlreadyAppliedIntent(t *testing.T) {
	f := newExecutorFixture(ExecutorConfig{})
	f.seed(t, "fw_old", player.PositionForward, roster.RoleStarter)
	f.seed(t, "fw_new", player.PositionForward, roster.RoleReserve)

	prior := swapintent.Intent{
		ID: "i1", TeamID: "t1", PeriodID: 5,
		PlayerOut: "fw_old", PlayerIn: "fw_new",
		AttemptCount: 1, Status: swapintent.StatusApplied, UpdatedAt: time.Now(),
	}
	if err := f.intents.Create(context.Background(), &prior); err != nil {
		t.Fatal(err)
	}

	report, err := f.service.ExecuteLineup(context.Background(),
		planFor([]string{"fw_new"}, []string{"fw_old"}, map[string]float64{"fw_old": 10, "fw_new": 90}))
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].ID != "i1" {
		t.Fatalf("prior applied intent should be skipped, got %+v", report)
	}
	f.gateway.AssertNotCalled(t, "ApplyRosterChanges", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteLineupPairsLowestLeavingWithHighestEntering(t *testing.T) {
	f := newExecutorFixture(ExecutorConfig{PoolSize: 1})
	f.seed(t, "d_low", player.PositionDefender, roster.RoleStarter)
	f.seed(t, "d_mid", player.PositionDefender, roster.RoleStarter)
	f.seed(t, "d_best", player.PositionDefender, roster.RoleReserve)
	f.seed(t, "d_good", player.PositionDefender, roster.RoleReserve)

	plan := planFor(
		[]string{"d_best", "d_good"},
		[]string{"d_low", "d_mid"},
		map[string]float64{"d_low": 20, "d_mid": 30, "d_best": 90, "d_good": 80},
	)
	positions := map[string]player.Position{
		"d_low": player.PositionDefender, "d_mid": player.PositionDefender,
		"d_best": player.PositionDefender, "d_good": player.PositionDefender,
	}

	f.gateway.On("ApplyRosterChanges", mock.Anything, "t1", 5, mock.Anything).Return(nil).Twice()
	f.gateway.On("FetchRoster", mock.Anything, "t1", 5).Return(matchedSnapshot(plan, positions), nil).Once()

	report, err := f.service.ExecuteLineup(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Applied) != 2 {
		t.Fatalf("expected two applied swaps, got %+v", report)
	}
	// Highest gain first: d_low(20) takes on d_best(90).
	first, second := report.Applied[0], report.Applied[1]
	if first.PlayerOut != "d_low" || first.PlayerIn != "d_best" {
		t.Fatalf("unexpected first pairing %+v", first)
	}
	if second.PlayerOut != "d_mid" || second.PlayerIn != "d_good" {
		t.Fatalf("unexpected second pairing %+v", second)
	}
}

func TestExecuteLineupUnbalancedDiffIsDataIntegrity(t *testing.T) {
	f := newExecutorFixture(ExecutorConfig{})
	f.seed(t, "gk_old", player.PositionGoalkeeper, roster.RoleStarter)
	f.seed(t, "fw_new", player.PositionForward, roster.RoleReserve)

	_, err := f.service.ExecuteLineup(context.Background(),
		planFor([]string{"fw_new"}, []string{"gk_old"}, map[string]float64{"gk_old": 10, "fw_new": 90}))
	if !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestExecuteLineupReportsPlatformRevertAsConflict(t *testing.T) {
	f := newExecutorFixture(ExecutorConfig{})
	f.seed(t, "fw_old", player.PositionForward, roster.RoleStarter)
	f.seed(t, "fw_new", player.PositionForward, roster.RoleReserve)

	plan := planFor([]string{"fw_new"}, []string{"fw_old"}, map[string]float64{"fw_old": 10, "fw_new": 90})

	// The platform confirms the change but the refetch still shows the
	// old lineup.
	reverted := &fantrax.RosterSnapshot{TeamID: "t1", PeriodID: 5, Entries: []fantrax.RosterEntry{
		{PlayerID: "fw_old", Position: player.PositionForward, PositionOK: true, Status: player.StatusActive, Starter: true},
		{PlayerID: "fw_new", Position: player.PositionForward, PositionOK: true, Status: player.StatusActive, Starter: false},
	}}
	f.gateway.On("ApplyRosterChanges", mock.Anything, "t1", 5, mock.Anything).Return(nil).Once()
	f.gateway.On("FetchRoster", mock.Anything, "t1", 5).Return(reverted, nil).Once()

	report, err := f.service.ExecuteLineup(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.StatusConflicts) != 2 {
		t.Fatalf("both players should be flagged, got %v", report.StatusConflicts)
	}
	if report.StatusConflicts[0] != "fw_new" || report.StatusConflicts[1] != "fw_old" {
		t.Fatalf("unexpected conflicts %v", report.StatusConflicts)
	}
}

func TestCheckSwapConflictsRejectsDoubleBooking(t *testing.T) {
	swaps := []plannedSwap{
		{intent: swapintent.Intent{PlayerOut: "a", PlayerIn: "b"}},
		{intent: swapintent.Intent{PlayerOut: "c", PlayerIn: "b"}},
	}
	if err := checkSwapConflicts(swaps); !errors.Is(err, ErrSwapConflict) {
		t.Fatalf("expected ErrSwapConflict, got %v", err)
	}

	clean := []plannedSwap{
		{intent: swapintent.Intent{PlayerOut: "a", PlayerIn: "b"}},
		{intent: swapintent.Intent{PlayerOut: "c", PlayerIn: "d"}},
	}
	if err := checkSwapConflicts(clean); err != nil {
		t.Fatalf("disjoint swaps must pass, got %v", err)
	}
}

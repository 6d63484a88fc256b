package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
)

// CycleReport aggregates the outcome of one full sync/optimize/execute
// pass.
type CycleReport struct {
	TeamID     string
	PeriodID   int
	Sync       *SyncReport
	Plan       *LineupPlan
	Execution  *ExecutionReport
	StartedAt  time.Time
	FinishedAt time.Time
}

// CycleService runs the full pipeline for a team and period:
// reconcile the roster mirror, refresh enrichment, build the lineup,
// and push the resulting swaps. At most one cycle runs per
// (team, period) at a time; overlapping starts are rejected, not
// queued.
type CycleService struct {
	gateway    PlatformGateway
	reconciler *ReconcileService
	enricher   *EnrichmentService
	optimizer  *OptimizerService
	executor   *ExecutorService
	timeout    time.Duration
	logger     *logging.Logger

	mu      sync.Mutex
	running map[string]bool
}

func NewCycleService(
	gateway PlatformGateway,
	reconciler *ReconcileService,
	enricher *EnrichmentService,
	optimizer *OptimizerService,
	executor *ExecutorService,
	timeout time.Duration,
	logger *logging.Logger,
) *CycleService {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CycleService{
		gateway:    gateway,
		reconciler: reconciler,
		enricher:   enricher,
		optimizer:  optimizer,
		executor:   executor,
		timeout:    timeout,
		logger:     logger,
		running:    make(map[string]bool),
	}
}

func cycleKey(teamID string, periodID int) string {
	return teamID + ":" + strconv.Itoa(periodID)
}

func (s *CycleService) tryAcquire(teamID string, periodID int) bool {
	key := cycleKey(teamID, periodID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[key] {
		return false
	}
	s.running[key] = true
	return true
}

func (s *CycleService) release(teamID string, periodID int) {
	s.mu.Lock()
	delete(s.running, cycleKey(teamID, periodID))
	s.mu.Unlock()
}

// RunCycle executes the full pipeline under the cycle timeout. A
// periodID of zero resolves to the period the platform currently has
// in play. A cancelled or timed-out cycle leaves unpushed swaps
// pending; the next cycle picks them up.
func (s *CycleService) RunCycle(ctx context.Context, teamID string, periodID int) (*CycleReport, error) {
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if periodID < 0 {
		return nil, fmt.Errorf("%w: period must not be negative", ErrInvalidInput)
	}
	if periodID == 0 {
		resolved, err := s.gateway.FetchMatchupPeriod(ctx, teamID)
		if err != nil {
			return nil, classifyGatewayError("fetch matchup period", err)
		}
		periodID = resolved
	}

	if !s.tryAcquire(teamID, periodID) {
		return nil, fmt.Errorf("%w: team %s period %d", ErrCycleInProgress, teamID, periodID)
	}
	defer s.release(teamID, periodID)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := startUsecaseSpan(ctx, "cycle.RunCycle", teamPeriodAttrs(teamID, periodID)...)
	defer span.End()

	report := &CycleReport{TeamID: teamID, PeriodID: periodID, StartedAt: time.Now()}
	defer func() { report.FinishedAt = time.Now() }()

	syncReport, err := s.reconciler.Reconcile(ctx, teamID, periodID)
	if err != nil {
		return report, fmt.Errorf("reconcile: %w", err)
	}
	report.Sync = syncReport

	if err := s.enricher.Refresh(ctx, teamID, periodID); err != nil {
		return report, fmt.Errorf("enrich: %w", err)
	}

	plan, err := s.optimizer.BuildLineup(ctx, teamID, periodID)
	if err != nil {
		return report, fmt.Errorf("optimize: %w", err)
	}
	report.Plan = plan

	execution, err := s.executor.ExecuteLineup(ctx, plan)
	report.Execution = execution
	if err != nil {
		return report, fmt.Errorf("execute: %w", err)
	}

	s.logger.InfoContext(ctx, "cycle complete",
		"team_id", teamID,
		"period_id", periodID,
		"players_seen", syncReport.PlayersSeen,
		"swaps_applied", len(execution.Applied),
		"swaps_failed", len(execution.Failed),
		"unfillable_slots", len(plan.Unfillable),
	)
	return report, nil
}

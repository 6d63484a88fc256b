package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/fantrax-team-manager/external/fantrax"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/swapintent"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/id"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
)

type ExecutorConfig struct {
	// MaxAttempts caps platform attempts per intent, first try
	// included.
	MaxAttempts int
	// RetryBaseDelay seeds the exponential backoff between attempts.
	RetryBaseDelay time.Duration
	// PoolSize bounds concurrent platform submissions.
	PoolSize int
}

func (c ExecutorConfig) withDefaults() ExecutorConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = time.Second
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 2
	}
	return c
}

// ExecutionReport summarizes one executor pass.
type ExecutionReport struct {
	TeamID   string
	PeriodID int
	// Applied intents reached the platform and were confirmed.
	Applied []swapintent.Intent
	// Failed intents exhausted their attempts or hit a permanent
	// error.
	Failed []swapintent.Intent
	// Skipped intents were already applied by an earlier pass.
	Skipped []swapintent.Intent
	// Pending intents never got an attempt, usually after
	// cancellation or an auth abort.
	Pending []swapintent.Intent
	// StatusConflicts lists players whose platform slot disagreed with
	// the plan after application, e.g. a platform-side revert.
	StatusConflicts []string
}

// ExecutorService turns a lineup plan into swap intents and pushes
// them to the platform. Intents are independent by construction (the
// conflict check rejects any double-booking), so a bounded worker pool
// submits them concurrently.
type ExecutorService struct {
	gateway    PlatformGateway
	playerRepo player.Repository
	rosterRepo roster.Repository
	intentRepo swapintent.Repository
	cfg        ExecutorConfig
	logger     *logging.Logger
	now        func() time.Time
	newID      func() string
}

func NewExecutorService(
	gateway PlatformGateway,
	playerRepo player.Repository,
	rosterRepo roster.Repository,
	intentRepo swapintent.Repository,
	cfg ExecutorConfig,
	logger *logging.Logger,
) *ExecutorService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExecutorService{
		gateway:    gateway,
		playerRepo: playerRepo,
		rosterRepo: rosterRepo,
		intentRepo: intentRepo,
		cfg:        cfg.withDefaults(),
		logger:     logger,
		now:        time.Now,
		newID:      id.MustNew,
	}
}

type plannedSwap struct {
	intent swapintent.Intent
	pos    player.Position
	gain   float64
}

// ExecuteLineup reconciles the platform lineup onto the plan. It
// computes the starter diff, pairs leaving and entering players per
// position, and applies each resulting swap with bounded retries.
func (s *ExecutorService) ExecuteLineup(ctx context.Context, plan *LineupPlan) (*ExecutionReport, error) {
	if plan == nil || plan.TeamID == "" || plan.PeriodID <= 0 {
		return nil, fmt.Errorf("%w: lineup plan with team and period required", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "executor.ExecuteLineup", teamPeriodAttrs(plan.TeamID, plan.PeriodID)...)
	defer span.End()

	slots, err := s.rosterRepo.ListByTeamPeriod(ctx, plan.TeamID, plan.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("%w: list roster slots: %v", ErrDependencyUnavailable, err)
	}
	playerIDs := make([]string, 0, len(slots))
	currentStarter := make(map[string]bool, len(slots))
	for _, slot := range slots {
		playerIDs = append(playerIDs, slot.PlayerID)
		currentStarter[slot.PlayerID] = slot.Role == roster.RoleStarter
	}

	players, err := s.playerRepo.ListByIDs(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: list players: %v", ErrDependencyUnavailable, err)
	}
	playersByID := make(map[string]player.Player, len(players))
	for _, p := range players {
		playersByID[p.ID] = p
	}

	swaps, err := s.planSwaps(plan, currentStarter, playersByID)
	if err != nil {
		return nil, err
	}

	report := &ExecutionReport{TeamID: plan.TeamID, PeriodID: plan.PeriodID}
	if len(swaps) == 0 {
		s.logger.InfoContext(ctx, "lineup already matches plan",
			"team_id", plan.TeamID, "period_id", plan.PeriodID)
		return report, nil
	}

	existing, err := s.intentRepo.ListByTeamPeriod(ctx, plan.TeamID, plan.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("%w: list swap intents: %v", ErrDependencyUnavailable, err)
	}
	swaps, err = s.mergeExisting(ctx, swaps, existing, report)
	if err != nil {
		return nil, err
	}

	authErr := s.applySwaps(ctx, swaps, playersByID, report)
	if authErr != nil {
		return report, authErr
	}

	s.verifyAgainstPlatform(ctx, plan, report)
	return report, nil
}

// planSwaps derives the per-position swap pairing from the starter
// diff: lowest-value leaving starter takes on the highest-value
// entering reserve, and so on down.
func (s *ExecutorService) planSwaps(plan *LineupPlan, currentStarter map[string]bool, playersByID map[string]player.Player) ([]plannedSwap, error) {
	desired := make(map[string]bool, len(plan.Starters))
	for _, playerID := range plan.Starters {
		desired[playerID] = true
	}

	leaving := make(map[player.Position][]string)
	entering := make(map[player.Position][]string)
	for playerID, isStarter := range currentStarter {
		p, known := playersByID[playerID]
		if !known {
			return nil, fmt.Errorf("%w: roster slot references unknown player %s", ErrDataIntegrity, playerID)
		}
		switch {
		case isStarter && !desired[playerID]:
			leaving[p.Position] = append(leaving[p.Position], playerID)
		case !isStarter && desired[playerID]:
			entering[p.Position] = append(entering[p.Position], playerID)
		}
	}

	var swaps []plannedSwap
	for _, pos := range player.OrderedPositions {
		out := leaving[pos]
		in := entering[pos]
		if len(out) != len(in) {
			return nil, fmt.Errorf("%w: position %s has %d leaving but %d entering starters",
				ErrDataIntegrity, pos, len(out), len(in))
		}
		sortByScore(out, plan.Scores, true)
		sortByScore(in, plan.Scores, false)
		for i := range out {
			swaps = append(swaps, plannedSwap{
				intent: swapintent.Intent{
					TeamID:    plan.TeamID,
					PeriodID:  plan.PeriodID,
					PlayerOut: out[i],
					PlayerIn:  in[i],
					Status:    swapintent.StatusPending,
				},
				pos:  pos,
				gain: plan.Scores[in[i]] - plan.Scores[out[i]],
			})
		}
	}

	if err := checkSwapConflicts(swaps); err != nil {
		return nil, err
	}

	posOrder := make(map[player.Position]int, len(player.OrderedPositions))
	for i, pos := range player.OrderedPositions {
		posOrder[pos] = i
	}
	sort.Slice(swaps, func(i, j int) bool {
		a, b := swaps[i], swaps[j]
		if a.pos != b.pos {
			return posOrder[a.pos] < posOrder[b.pos]
		}
		if a.gain != b.gain {
			return a.gain > b.gain
		}
		return a.intent.PlayerOut < b.intent.PlayerOut
	})
	return swaps, nil
}

// sortByScore orders ids by score, ascending or descending, with id
// as the deterministic tiebreak.
func sortByScore(ids []string, scores map[string]float64, ascending bool) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := scores[ids[i]], scores[ids[j]]
		if a != b {
			if ascending {
				return a < b
			}
			return a > b
		}
		return ids[i] < ids[j]
	})
}

func checkSwapConflicts(swaps []plannedSwap) error {
	booked := make(map[string]bool, len(swaps)*2)
	for _, swap := range swaps {
		if booked[swap.intent.PlayerOut] {
			return fmt.Errorf("%w: player %s booked twice", ErrSwapConflict, swap.intent.PlayerOut)
		}
		if booked[swap.intent.PlayerIn] {
			return fmt.Errorf("%w: player %s booked twice", ErrSwapConflict, swap.intent.PlayerIn)
		}
		booked[swap.intent.PlayerOut] = true
		booked[swap.intent.PlayerIn] = true
	}
	return nil
}

// mergeExisting folds previously persisted intents into the plan:
// already-applied exchanges are skipped, pending ones resume with
// their attempt count, and anything else gets a fresh record.
func (s *ExecutorService) mergeExisting(ctx context.Context, swaps []plannedSwap, existing []swapintent.Intent, report *ExecutionReport) ([]plannedSwap, error) {
	byExchange := make(map[string]swapintent.Intent, len(existing))
	for _, intent := range existing {
		byExchange[intent.PlayerOut+"->"+intent.PlayerIn] = intent
	}

	out := swaps[:0]
	for _, swap := range swaps {
		prior, found := byExchange[swap.intent.PlayerOut+"->"+swap.intent.PlayerIn]
		if found && prior.Status == swapintent.StatusApplied {
			report.Skipped = append(report.Skipped, prior)
			continue
		}
		if found {
			swap.intent.ID = prior.ID
			swap.intent.AttemptCount = prior.AttemptCount
		} else {
			swap.intent.ID = s.newID()
			swap.intent.UpdatedAt = s.now()
			if err := swap.intent.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			if err := s.intentRepo.Create(ctx, &swap.intent); err != nil {
				return nil, fmt.Errorf("%w: create swap intent: %v", ErrDependencyUnavailable, err)
			}
		}
		out = append(out, swap)
	}
	return out, nil
}

type swapOutcome struct {
	intent  swapintent.Intent
	authErr error
}

// applySwaps pushes intents through a bounded worker pool. An auth
// failure cancels everything still queued; untouched intents stay
// pending for the next pass.
func (s *ExecutorService) applySwaps(ctx context.Context, swaps []plannedSwap, playersByID map[string]player.Player, report *ExecutionReport) error {
	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers, err := ants.NewPool(s.cfg.PoolSize)
	if err != nil {
		return fmt.Errorf("%w: create worker pool: %v", ErrDependencyUnavailable, err)
	}
	defer workers.Release()

	outcomes := make([]swapOutcome, len(swaps))
	var wg sync.WaitGroup
	for i, swap := range swaps {
		i, swap := i, swap
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcomes[i] = s.applyOne(execCtx, cancel, swap, playersByID)
		}
		if err := workers.Submit(task); err != nil {
			wg.Done()
			outcomes[i] = swapOutcome{intent: swap.intent}
		}
	}
	wg.Wait()

	var authErr error
	for _, outcome := range outcomes {
		switch outcome.intent.Status {
		case swapintent.StatusApplied:
			report.Applied = append(report.Applied, outcome.intent)
		case swapintent.StatusFailed:
			report.Failed = append(report.Failed, outcome.intent)
		default:
			report.Pending = append(report.Pending, outcome.intent)
		}
		if outcome.authErr != nil {
			authErr = outcome.authErr
		}
	}
	return authErr
}

// applyOne drives a single intent to a terminal state, or leaves it
// pending on cancellation. Transient failures back off exponentially;
// auth failures are terminal after one attempt and abort the pass.
func (s *ExecutorService) applyOne(ctx context.Context, abort context.CancelFunc, swap plannedSwap, playersByID map[string]player.Player) swapOutcome {
	intent := swap.intent

	posID, ok := fantrax.PositionFieldID(swap.pos)
	if !ok {
		intent.Status = swapintent.StatusFailed
		intent.LastError = fmt.Sprintf("no platform position id for %s", swap.pos)
		s.persistIntent(ctx, &intent)
		return swapOutcome{intent: intent}
	}
	changes := []fantrax.RosterChange{
		{PlayerID: intent.PlayerOut},
		{PlayerID: intent.PlayerIn, Starter: true, PosID: posID},
	}

	for {
		if ctx.Err() != nil {
			// Never attempted in this pass, or aborted between
			// retries: the intent stays pending.
			s.persistIntent(context.WithoutCancel(ctx), &intent)
			return swapOutcome{intent: intent}
		}

		intent.AttemptCount++
		err := s.gateway.ApplyRosterChanges(ctx, intent.TeamID, intent.PeriodID, changes)
		if err == nil {
			intent.Status = swapintent.StatusApplied
			intent.LastError = ""
			s.persistIntent(ctx, &intent)
			s.applyLocally(ctx, &intent)
			return swapOutcome{intent: intent}
		}

		classified := classifyGatewayError("apply swap", err)
		intent.LastError = classified.Error()

		if errors.Is(classified, ErrPlatformAuth) {
			intent.Status = swapintent.StatusFailed
			s.persistIntent(context.WithoutCancel(ctx), &intent)
			abort()
			return swapOutcome{intent: intent, authErr: classified}
		}
		if !errors.Is(classified, ErrTransientFetch) || intent.AttemptCount >= s.cfg.MaxAttempts {
			intent.Status = swapintent.StatusFailed
			s.persistIntent(ctx, &intent)
			return swapOutcome{intent: intent}
		}

		s.persistIntent(ctx, &intent)
		delay := s.cfg.RetryBaseDelay * time.Duration(1<<(intent.AttemptCount-1))
		s.logger.WarnContext(ctx, "swap attempt failed, backing off",
			"intent_id", intent.ID, "attempt", intent.AttemptCount, "delay", delay.String())

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (s *ExecutorService) persistIntent(ctx context.Context, intent *swapintent.Intent) {
	intent.UpdatedAt = s.now()
	if err := s.intentRepo.Update(ctx, intent); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist swap intent",
			"intent_id", intent.ID, "error", err)
	}
}

// applyLocally mirrors a confirmed swap into the local roster so a
// follow-up pass sees the new lineup without refetching.
func (s *ExecutorService) applyLocally(ctx context.Context, intent *swapintent.Intent) {
	if err := s.rosterRepo.UpdateRole(ctx, intent.TeamID, intent.PeriodID, intent.PlayerOut, roster.RoleReserve); err != nil {
		s.logger.ErrorContext(ctx, "failed to demote player locally",
			"player_id", intent.PlayerOut, "error", err)
	}
	if err := s.rosterRepo.UpdateRole(ctx, intent.TeamID, intent.PeriodID, intent.PlayerIn, roster.RoleStarter); err != nil {
		s.logger.ErrorContext(ctx, "failed to promote player locally",
			"player_id", intent.PlayerIn, "error", err)
	}
}

// verifyAgainstPlatform refetches the platform roster and records any
// player whose slot disagrees with the plan. A platform-side revert
// shows up here instead of failing the pass.
func (s *ExecutorService) verifyAgainstPlatform(ctx context.Context, plan *LineupPlan, report *ExecutionReport) {
	if len(report.Applied) == 0 {
		return
	}
	snapshot, err := s.gateway.FetchRoster(ctx, plan.TeamID, plan.PeriodID)
	if err != nil {
		s.logger.WarnContext(ctx, "post-apply verification fetch failed",
			"team_id", plan.TeamID, "error", err)
		return
	}

	desired := make(map[string]bool, len(plan.Starters))
	for _, playerID := range plan.Starters {
		desired[playerID] = true
	}
	for _, entry := range snapshot.Entries {
		if entry.Starter != desired[entry.PlayerID] {
			report.StatusConflicts = append(report.StatusConflicts, entry.PlayerID)
		}
	}
	sort.Strings(report.StatusConflicts)
	if len(report.StatusConflicts) > 0 {
		s.logger.WarnContext(ctx, "platform lineup diverges from plan after apply",
			"team_id", plan.TeamID, "conflicts", len(report.StatusConflicts))
	}
}

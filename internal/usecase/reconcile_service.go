package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	crerrors "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fantrax-team-manager/external/fantrax"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/synclog"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/id"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
)

// SyncReport summarizes one reconcile pass.
type SyncReport struct {
	LogID          string
	TeamID         string
	PeriodID       int
	PlayersSeen    int
	PlayersAdded   int
	PlayersUpdated int
	PlayersMissing int

	// StatusConflicts lists players whose local status or slot role
	// disagreed with the snapshot while the local row was newer than
	// the prior sync. The snapshot still wins; the disagreement is
	// surfaced for audit.
	StatusConflicts []string
}

// ReconcileService mirrors the platform roster into local storage. It
// is diff-based: an unchanged snapshot produces no writes beyond the
// audit entry, so the operation is idempotent.
type ReconcileService struct {
	gateway     PlatformGateway
	playerRepo  player.Repository
	rosterRepo  roster.Repository
	syncLogRepo synclog.Repository
	logger      *logging.Logger
	now         func() time.Time
	newID       func() string
}

func NewReconcileService(
	gateway PlatformGateway,
	playerRepo player.Repository,
	rosterRepo roster.Repository,
	syncLogRepo synclog.Repository,
	logger *logging.Logger,
) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{
		gateway:     gateway,
		playerRepo:  playerRepo,
		rosterRepo:  rosterRepo,
		syncLogRepo: syncLogRepo,
		logger:      logger,
		now:         time.Now,
		newID:       id.MustNew,
	}
}

// Reconcile fetches the platform roster and converges local state onto
// it. Exactly one sync log entry is written per call, success or not.
// Players absent from the snapshot are flagged unknown, never deleted.
func (s *ReconcileService) Reconcile(ctx context.Context, teamID string, periodID int) (*SyncReport, error) {
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if periodID <= 0 {
		return nil, fmt.Errorf("%w: period must be positive", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "reconcile.Reconcile", teamPeriodAttrs(teamID, periodID)...)
	defer span.End()

	startedAt := s.now()
	report, err := s.reconcile(ctx, teamID, periodID)
	s.writeLog(ctx, teamID, periodID, startedAt, report, err)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReconcileService) reconcile(ctx context.Context, teamID string, periodID int) (*SyncReport, error) {
	snapshot, err := s.gateway.FetchRoster(ctx, teamID, periodID)
	if err != nil {
		return nil, classifyGatewayError("fetch roster", err)
	}

	for _, entry := range snapshot.Entries {
		if !entry.PositionOK {
			return nil, fmt.Errorf("%w: player %s has unmappable position %q",
				ErrDataIntegrity, entry.PlayerID, entry.RawPosition)
		}
	}

	currentSlots, err := s.rosterRepo.ListByTeamPeriod(ctx, teamID, periodID)
	if err != nil {
		return nil, fmt.Errorf("%w: list roster slots: %v", ErrDependencyUnavailable, err)
	}
	currentByPlayer := make(map[string]roster.Slot, len(currentSlots))
	currentIDs := make([]string, 0, len(currentSlots))
	for _, slot := range currentSlots {
		currentByPlayer[slot.PlayerID] = slot
		currentIDs = append(currentIDs, slot.PlayerID)
	}

	knownPlayers, err := s.playerRepo.ListByIDs(ctx, currentIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: list players: %v", ErrDependencyUnavailable, err)
	}
	knownByID := make(map[string]player.Player, len(knownPlayers))
	for _, p := range knownPlayers {
		knownByID[p.ID] = p
	}

	priorLogs, err := s.syncLogRepo.ListByTeam(ctx, teamID, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: list sync logs: %v", ErrDependencyUnavailable, err)
	}
	var priorSyncAt time.Time
	if len(priorLogs) > 0 {
		priorSyncAt = priorLogs[0].FinishedAt
	}

	report := &SyncReport{
		TeamID:      teamID,
		PeriodID:    periodID,
		PlayersSeen: len(snapshot.Entries),
	}
	seen := make(map[string]bool, len(snapshot.Entries))
	conflicted := make(map[string]bool)
	now := s.now()

	markConflict := func(playerID string) {
		if conflicted[playerID] {
			return
		}
		conflicted[playerID] = true
		report.StatusConflicts = append(report.StatusConflicts, playerID)
	}

	for _, entry := range snapshot.Entries {
		seen[entry.PlayerID] = true

		incoming := player.Player{
			ID:        entry.PlayerID,
			Name:      entry.Name,
			Position:  entry.Position,
			TeamName:  entry.TeamName,
			Status:    entry.Status,
			Locked:    entry.Locked,
			UpdatedAt: now,
		}
		if err := incoming.Validate(); err != nil {
			return nil, fmt.Errorf("%w: player %s: %v", ErrDataIntegrity, entry.PlayerID, err)
		}

		known, exists := knownByID[entry.PlayerID]
		switch {
		case !exists:
			if err := s.playerRepo.Upsert(ctx, &incoming); err != nil {
				return nil, fmt.Errorf("%w: upsert player %s: %v", ErrDependencyUnavailable, entry.PlayerID, err)
			}
			report.PlayersAdded++
		case playerChanged(known, incoming):
			if err := s.playerRepo.Upsert(ctx, &incoming); err != nil {
				return nil, fmt.Errorf("%w: upsert player %s: %v", ErrDependencyUnavailable, entry.PlayerID, err)
			}
			report.PlayersUpdated++
		}
		if exists && known.Status != incoming.Status &&
			!priorSyncAt.IsZero() && known.UpdatedAt.After(priorSyncAt) {
			markConflict(entry.PlayerID)
		}

		role := roster.RoleReserve
		if entry.Starter {
			role = roster.RoleStarter
		}
		current, hasSlot := currentByPlayer[entry.PlayerID]
		if hasSlot && current.Role != role &&
			!priorSyncAt.IsZero() && current.UpdatedAt.After(priorSyncAt) {
			// A role we changed locally that the platform does not
			// reflect anymore, typically a platform-side revert of an
			// applied swap. The snapshot wins; the divergence is
			// surfaced for audit.
			markConflict(entry.PlayerID)
		}
		if !hasSlot || current.Role != role {
			slot := roster.Slot{
				TeamID:    teamID,
				PeriodID:  periodID,
				PlayerID:  entry.PlayerID,
				Role:      role,
				UpdatedAt: now,
			}
			if err := s.rosterRepo.Upsert(ctx, &slot); err != nil {
				return nil, fmt.Errorf("%w: upsert slot for %s: %v", ErrDependencyUnavailable, entry.PlayerID, err)
			}
		}
	}

	for _, slot := range currentSlots {
		if seen[slot.PlayerID] {
			continue
		}
		report.PlayersMissing++
		known, exists := knownByID[slot.PlayerID]
		if exists && known.Status == player.StatusUnknown {
			continue
		}
		if err := s.playerRepo.UpdateStatus(ctx, slot.PlayerID, player.StatusUnknown); err != nil {
			return nil, fmt.Errorf("%w: flag missing player %s: %v", ErrDependencyUnavailable, slot.PlayerID, err)
		}
	}

	return report, nil
}

func playerChanged(prev, next player.Player) bool {
	return prev.Name != next.Name ||
		prev.Position != next.Position ||
		prev.TeamName != next.TeamName ||
		prev.Status != next.Status ||
		prev.Locked != next.Locked
}

func (s *ReconcileService) writeLog(ctx context.Context, teamID string, periodID int, startedAt time.Time, report *SyncReport, runErr error) {
	entry := synclog.Entry{
		ID:         s.newID(),
		TeamID:     teamID,
		PeriodID:   periodID,
		Outcome:    synclog.OutcomeSuccess,
		StartedAt:  startedAt,
		FinishedAt: s.now(),
	}
	if runErr != nil {
		entry.Outcome = synclog.OutcomeFailed
		entry.Error = runErr.Error()
	}
	if report != nil {
		entry.PlayersSeen = report.PlayersSeen
		entry.PlayersAdded = report.PlayersAdded
		entry.PlayersUpdated = report.PlayersUpdated
		entry.PlayersMissing = report.PlayersMissing
		entry.Conflicts = len(report.StatusConflicts)
		report.LogID = entry.ID
	}

	if err := s.syncLogRepo.Create(ctx, &entry); err != nil {
		// The audit write must not mask the reconcile outcome.
		s.logger.ErrorContext(ctx, "failed to record sync log entry",
			"team_id", teamID, "period_id", periodID, "error", err)
	}
}

// classifyGatewayError folds client sentinels into the service error
// taxonomy.
func classifyGatewayError(op string, err error) error {
	switch {
	case crerrors.Is(err, fantrax.ErrUnauthorized):
		return fmt.Errorf("%w: %s: %v", ErrPlatformAuth, op, err)
	case crerrors.Is(err, fantrax.ErrTransient) || errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrTransientFetch, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/enrichment"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
)

// UnfillableSlot reports a formation position the roster cannot staff
// with eligible players.
type UnfillableSlot struct {
	Position player.Position
	Missing  int
}

// LineupPlan is the optimizer's desired lineup for one team/period.
// Starters and Reserves partition the roster; Scores carries the value
// each player ranked under.
type LineupPlan struct {
	TeamID     string
	PeriodID   int
	Starters   []string
	Reserves   []string
	Unfillable []UnfillableSlot
	Scores     map[string]float64
}

// OptimizerService selects the highest-value legal lineup. Selection
// is deterministic: per position candidates rank by score descending,
// current starters win ties, and player id breaks the rest.
type OptimizerService struct {
	playerRepo     player.Repository
	rosterRepo     roster.Repository
	enrichmentRepo enrichment.Repository
	rules          roster.FormationRules
	logger         *logging.Logger
}

func NewOptimizerService(
	playerRepo player.Repository,
	rosterRepo roster.Repository,
	enrichmentRepo enrichment.Repository,
	rules roster.FormationRules,
	logger *logging.Logger,
) (*OptimizerService, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OptimizerService{
		playerRepo:     playerRepo,
		rosterRepo:     rosterRepo,
		enrichmentRepo: enrichmentRepo,
		rules:          rules,
		logger:         logger,
	}, nil
}

type lineupCandidate struct {
	player  player.Player
	score   float64
	starter bool
	locked  bool
}

// BuildLineup computes the desired lineup from local state only; it
// never calls the platform.
func (s *OptimizerService) BuildLineup(ctx context.Context, teamID string, periodID int) (*LineupPlan, error) {
	if teamID == "" {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if periodID <= 0 {
		return nil, fmt.Errorf("%w: period must be positive", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "optimizer.BuildLineup", teamPeriodAttrs(teamID, periodID)...)
	defer span.End()

	slots, err := s.rosterRepo.ListByTeamPeriod(ctx, teamID, periodID)
	if err != nil {
		return nil, fmt.Errorf("%w: list roster slots: %v", ErrDependencyUnavailable, err)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: no roster for team %s period %d", ErrNotFound, teamID, periodID)
	}

	starterByID := make(map[string]bool, len(slots))
	playerIDs := make([]string, 0, len(slots))
	for _, slot := range slots {
		starterByID[slot.PlayerID] = slot.Role == roster.RoleStarter
		playerIDs = append(playerIDs, slot.PlayerID)
	}

	players, err := s.playerRepo.ListByIDs(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: list players: %v", ErrDependencyUnavailable, err)
	}

	records, err := s.enrichmentRepo.ListByPeriod(ctx, periodID, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: list enrichment: %v", ErrDependencyUnavailable, err)
	}
	// Players without an enrichment record score zero, the floor value.
	scores := make(map[string]float64, len(players))
	for _, record := range records {
		scores[record.PlayerID] = record.Value()
	}

	byPosition := make(map[player.Position][]lineupCandidate, len(s.rules.Starters))
	for _, p := range players {
		byPosition[p.Position] = append(byPosition[p.Position], lineupCandidate{
			player:  p,
			score:   scores[p.ID],
			starter: starterByID[p.ID],
			locked:  p.Locked,
		})
	}

	plan := &LineupPlan{
		TeamID:   teamID,
		PeriodID: periodID,
		Scores:   scores,
	}
	chosen := make(map[string]bool, s.rules.TotalStarters())

	for _, pos := range player.OrderedPositions {
		quota, wanted := s.rules.Starters[pos]
		if !wanted {
			continue
		}
		candidates := byPosition[pos]
		sort.Slice(candidates, func(i, j int) bool {
			a, b := candidates[i], candidates[j]
			if a.score != b.score {
				return a.score > b.score
			}
			if a.starter != b.starter {
				return a.starter
			}
			return a.player.ID < b.player.ID
		})

		// Locked starters hold their slot no matter what; locked
		// reserves cannot come in.
		filled := 0
		for _, c := range candidates {
			if c.locked && c.starter && filled < quota {
				plan.Starters = append(plan.Starters, c.player.ID)
				chosen[c.player.ID] = true
				filled++
			}
		}
		for _, c := range candidates {
			if filled >= quota {
				break
			}
			if chosen[c.player.ID] || c.locked {
				continue
			}
			if !c.player.Status.Playable() {
				continue
			}
			plan.Starters = append(plan.Starters, c.player.ID)
			chosen[c.player.ID] = true
			filled++
		}
		if filled < quota {
			plan.Unfillable = append(plan.Unfillable, UnfillableSlot{
				Position: pos,
				Missing:  quota - filled,
			})
		}
	}

	for _, p := range players {
		if !chosen[p.ID] {
			plan.Reserves = append(plan.Reserves, p.ID)
		}
	}
	sort.Strings(plan.Reserves)

	if len(plan.Unfillable) == 0 {
		positions := make([]player.Position, 0, len(plan.Starters))
		playersByID := make(map[string]player.Player, len(players))
		for _, p := range players {
			playersByID[p.ID] = p
		}
		for _, playerID := range plan.Starters {
			positions = append(positions, playersByID[playerID].Position)
		}
		if err := s.rules.CheckLineup(positions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
		}
	} else {
		s.logger.WarnContext(ctx, "lineup has unfillable slots",
			"team_id", teamID, "period_id", periodID, "unfillable", len(plan.Unfillable))
	}

	return plan, nil
}

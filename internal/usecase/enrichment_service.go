package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fantrax-team-manager/external/fantrax"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/enrichment"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/cache"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
)

// Fixture difficulty weighting. The coefficient is
// 1 + k*tanh(a*(oppRank-teamRank)/(totalTeams-1)): a weaker opponent
// (larger rank number) pushes the coefficient above 1.
const (
	fixtureWeight    = 0.8
	fixtureSharpness = 0.4
)

// EnrichmentService refreshes the scoring inputs for a team's rostered
// players: recent form from player profiles, fixture difficulty from
// standings and the period's matchups.
type EnrichmentService struct {
	gateway        PlatformGateway
	playerRepo     player.Repository
	rosterRepo     roster.Repository
	enrichmentRepo enrichment.Repository
	store          *cache.Store
	logger         *logging.Logger
	maxParallel    int
	now            func() time.Time
}

func NewEnrichmentService(
	gateway PlatformGateway,
	playerRepo player.Repository,
	rosterRepo roster.Repository,
	enrichmentRepo enrichment.Repository,
	store *cache.Store,
	logger *logging.Logger,
	maxParallel int,
) *EnrichmentService {
	if store == nil {
		store = cache.NewStore(10 * time.Minute)
	}
	if logger == nil {
		logger = logging.Default()
	}
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &EnrichmentService{
		gateway:        gateway,
		playerRepo:     playerRepo,
		rosterRepo:     rosterRepo,
		enrichmentRepo: enrichmentRepo,
		store:          store,
		logger:         logger,
		maxParallel:    maxParallel,
		now:            time.Now,
	}
}

// Refresh recomputes enrichment records for every player on the team's
// roster for the period. Profile fetches run in parallel under a
// bounded pool; any fetch failure fails the refresh.
func (s *EnrichmentService) Refresh(ctx context.Context, teamID string, periodID int) error {
	if teamID == "" {
		return fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if periodID <= 0 {
		return fmt.Errorf("%w: period must be positive", ErrInvalidInput)
	}

	ctx, span := startUsecaseSpan(ctx, "enrichment.Refresh", teamPeriodAttrs(teamID, periodID)...)
	defer span.End()

	slots, err := s.rosterRepo.ListByTeamPeriod(ctx, teamID, periodID)
	if err != nil {
		return fmt.Errorf("%w: list roster slots: %v", ErrDependencyUnavailable, err)
	}
	if len(slots) == 0 {
		return fmt.Errorf("%w: no roster for team %s period %d", ErrNotFound, teamID, periodID)
	}
	playerIDs := make([]string, 0, len(slots))
	for _, slot := range slots {
		playerIDs = append(playerIDs, slot.PlayerID)
	}

	players, err := s.playerRepo.ListByIDs(ctx, playerIDs)
	if err != nil {
		return fmt.Errorf("%w: list players: %v", ErrDependencyUnavailable, err)
	}

	coefficients, err := s.fixtureCoefficients(ctx, periodID)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	profiles := make(map[string][]float64, len(players))

	fetchPool := pool.New().WithContext(ctx).WithMaxGoroutines(s.maxParallel).WithCancelOnError()
	for _, p := range players {
		playerID := p.ID
		fetchPool.Go(func(ctx context.Context) error {
			profile, err := s.gateway.FetchPlayerProfile(ctx, playerID)
			if err != nil {
				return classifyGatewayError("fetch profile "+playerID, err)
			}
			mu.Lock()
			profiles[playerID] = profile.RecentPoints
			mu.Unlock()
			return nil
		})
	}
	if err := fetchPool.Wait(); err != nil {
		return err
	}

	now := s.now()
	for _, p := range players {
		coefficient, ok := coefficients[p.TeamName]
		if !ok {
			coefficient = 1.0
		}
		record := enrichment.Record{
			PlayerID:           p.ID,
			PeriodID:           periodID,
			RecentPoints:       profiles[p.ID],
			FixtureCoefficient: coefficient,
			UpdatedAt:          now,
		}
		if err := record.Validate(); err != nil {
			return fmt.Errorf("%w: record for %s: %v", ErrDataIntegrity, p.ID, err)
		}
		if err := s.enrichmentRepo.Upsert(ctx, &record); err != nil {
			return fmt.Errorf("%w: upsert enrichment for %s: %v", ErrDependencyUnavailable, p.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "enrichment refreshed",
		"team_id", teamID, "period_id", periodID, "players", len(players))
	return nil
}

// fixtureCoefficients computes the per-club difficulty coefficient for
// the period. Clubs without a fixture or standing stay neutral.
func (s *EnrichmentService) fixtureCoefficients(ctx context.Context, periodID int) (map[string]float64, error) {
	standingsAny, err := s.store.GetOrLoad(ctx, "standings", func(ctx context.Context) (any, error) {
		standings, err := s.gateway.FetchStandings(ctx)
		if err != nil {
			return nil, classifyGatewayError("fetch standings", err)
		}
		return standings, nil
	})
	if err != nil {
		return nil, err
	}
	standings := standingsAny.([]fantrax.TeamStanding)

	fixturesAny, err := s.store.GetOrLoad(ctx, fmt.Sprintf("fixtures:%d", periodID), func(ctx context.Context) (any, error) {
		fixtures, err := s.gateway.FetchFixtures(ctx, periodID)
		if err != nil {
			return nil, classifyGatewayError("fetch fixtures", err)
		}
		return fixtures, nil
	})
	if err != nil {
		return nil, err
	}
	fixtures := fixturesAny.([]fantrax.Fixture)

	ranks := make(map[string]int, len(standings))
	for _, standing := range standings {
		ranks[standing.TeamName] = standing.Rank
	}

	coefficients := make(map[string]float64, len(fixtures)*2)
	totalTeams := len(standings)
	for _, fixture := range fixtures {
		home, homeOK := ranks[fixture.HomeTeam]
		away, awayOK := ranks[fixture.AwayTeam]
		if !homeOK || !awayOK {
			continue
		}
		coefficients[fixture.HomeTeam] = fixtureCoefficient(home, away, totalTeams)
		coefficients[fixture.AwayTeam] = fixtureCoefficient(away, home, totalTeams)
	}
	return coefficients, nil
}

func fixtureCoefficient(teamRank, oppRank, totalTeams int) float64 {
	if totalTeams <= 1 {
		return 1.0
	}
	spread := float64(oppRank-teamRank) / float64(totalTeams-1)
	return 1 + fixtureWeight*math.Tanh(fixtureSharpness*spread)
}

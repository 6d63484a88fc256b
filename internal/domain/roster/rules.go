package roster

import (
	"fmt"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
)

// FormationRules pins the exact starter count per position. The counts
// are exact, not ranges: a lineup with any other distribution is
// invalid.
type FormationRules struct {
	Starters map[player.Position]int
}

// DefaultFormation is the league's standard 1-4-4-2.
func DefaultFormation() FormationRules {
	return FormationRules{
		Starters: map[player.Position]int{
			player.PositionGoalkeeper: 1,
			player.PositionDefender:   4,
			player.PositionMidfielder: 4,
			player.PositionForward:    2,
		},
	}
}

func (r FormationRules) TotalStarters() int {
	total := 0
	for _, n := range r.Starters {
		total += n
	}
	return total
}

func (r FormationRules) Validate() error {
	if len(r.Starters) == 0 {
		return fmt.Errorf("roster: formation has no positions")
	}
	for pos, n := range r.Starters {
		if !player.AllPositions[pos] {
			return fmt.Errorf("roster: formation names unknown position %q", pos)
		}
		if n <= 0 {
			return fmt.Errorf("roster: formation count for %s must be positive, got %d", pos, n)
		}
	}
	return nil
}

// CheckLineup verifies that the given starter positions satisfy the
// formation exactly.
func (r FormationRules) CheckLineup(starters []player.Position) error {
	counts := make(map[player.Position]int, len(r.Starters))
	for _, pos := range starters {
		counts[pos]++
	}
	for pos, want := range r.Starters {
		if got := counts[pos]; got != want {
			return fmt.Errorf("roster: formation requires %d %s starters, lineup has %d", want, pos, got)
		}
	}
	if len(starters) != r.TotalStarters() {
		return fmt.Errorf("roster: formation requires %d starters, lineup has %d", r.TotalStarters(), len(starters))
	}
	return nil
}

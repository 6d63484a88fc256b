// Package enrichment carries the scoring inputs layered on top of the
// raw roster mirror: recent form, fixture difficulty, and the derived
// value used to rank lineup candidates.
package enrichment

import (
	"errors"
	"time"
)

// Record is the per-player scoring input for one scoring period.
type Record struct {
	PlayerID string
	PeriodID int
	// RecentPoints are the player's fantasy points over the trailing
	// gameweeks, newest last.
	RecentPoints []float64
	// FixtureCoefficient scales form by opponent strength. 1.0 is a
	// neutral fixture.
	FixtureCoefficient float64
	UpdatedAt          time.Time
}

var (
	ErrEmptyPlayerID  = errors.New("enrichment: empty player id")
	ErrInvalidPeriod  = errors.New("enrichment: period must be positive")
	ErrInvalidFixture = errors.New("enrichment: fixture coefficient must be positive")
)

func (r Record) Validate() error {
	if r.PlayerID == "" {
		return ErrEmptyPlayerID
	}
	if r.PeriodID <= 0 {
		return ErrInvalidPeriod
	}
	if r.FixtureCoefficient <= 0 {
		return ErrInvalidFixture
	}
	return nil
}

// Value is the ranking score: average recent points scaled by fixture
// difficulty. A player with no recorded points has no value signal and
// scores zero, which ranks below any scored player.
func (r Record) Value() float64 {
	if len(r.RecentPoints) == 0 {
		return 0
	}
	sum := 0.0
	for _, pts := range r.RecentPoints {
		sum += pts
	}
	return sum / float64(len(r.RecentPoints)) * r.FixtureCoefficient
}

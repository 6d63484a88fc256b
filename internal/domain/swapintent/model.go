// Package swapintent models the unit of work the executor pushes to
// the platform: one reserve promoted in place of one starter.
package swapintent

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusApplied Status = "applied"
	StatusFailed  Status = "failed"
)

var AllStatuses = map[Status]bool{
	StatusPending: true,
	StatusApplied: true,
	StatusFailed:  true,
}

// Intent is a single starter/reserve exchange for a team and period.
type Intent struct {
	ID           string
	TeamID       string
	PeriodID     int
	PlayerOut    string
	PlayerIn     string
	AttemptCount int
	Status       Status
	LastError    string
	UpdatedAt    time.Time
}

var (
	ErrEmptyID       = errors.New("swapintent: empty id")
	ErrEmptyTeamID   = errors.New("swapintent: empty team id")
	ErrInvalidPeriod = errors.New("swapintent: period must be positive")
	ErrEmptyPlayer   = errors.New("swapintent: both players required")
	ErrSamePlayer    = errors.New("swapintent: player cannot swap with itself")
	ErrInvalidStatus = errors.New("swapintent: invalid status")
)

func (i Intent) Validate() error {
	if i.ID == "" {
		return ErrEmptyID
	}
	if i.TeamID == "" {
		return ErrEmptyTeamID
	}
	if i.PeriodID <= 0 {
		return ErrInvalidPeriod
	}
	if i.PlayerOut == "" || i.PlayerIn == "" {
		return ErrEmptyPlayer
	}
	if i.PlayerOut == i.PlayerIn {
		return ErrSamePlayer
	}
	if !AllStatuses[i.Status] {
		return ErrInvalidStatus
	}
	return nil
}

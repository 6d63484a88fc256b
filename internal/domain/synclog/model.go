// Package synclog records the outcome of every reconcile pass, one
// entry per attempt, success or not.
package synclog

import (
	"errors"
	"time"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Entry is the audit record for a single reconcile pass.
type Entry struct {
	ID             string
	TeamID         string
	PeriodID       int
	Outcome        Outcome
	PlayersSeen    int
	PlayersAdded   int
	PlayersUpdated int
	PlayersMissing int
	Conflicts      int
	Error          string
	StartedAt      time.Time
	FinishedAt     time.Time
}

var (
	ErrEmptyID        = errors.New("synclog: empty id")
	ErrEmptyTeamID    = errors.New("synclog: empty team id")
	ErrInvalidOutcome = errors.New("synclog: invalid outcome")
)

func (e Entry) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.TeamID == "" {
		return ErrEmptyTeamID
	}
	if e.Outcome != OutcomeSuccess && e.Outcome != OutcomeFailed {
		return ErrInvalidOutcome
	}
	return nil
}

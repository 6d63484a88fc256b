package roster

import (
	"errors"
	"time"
)

// Role is a player's slot assignment within a team's lineup for one
// scoring period.
type Role string

const (
	RoleStarter Role = "starter"
	RoleReserve Role = "reserve"
)

// Slot binds a player to a team's roster for a scoring period.
// Exactly one slot exists per (team, period, player).
type Slot struct {
	TeamID    string
	PeriodID  int
	PlayerID  string
	Role      Role
	UpdatedAt time.Time
}

var (
	ErrEmptyTeamID   = errors.New("roster: empty team id")
	ErrEmptyPlayerID = errors.New("roster: empty player id")
	ErrInvalidPeriod = errors.New("roster: period must be positive")
	ErrInvalidRole   = errors.New("roster: invalid role")
)

func (s Slot) Validate() error {
	if s.TeamID == "" {
		return ErrEmptyTeamID
	}
	if s.PeriodID <= 0 {
		return ErrInvalidPeriod
	}
	if s.PlayerID == "" {
		return ErrEmptyPlayerID
	}
	if s.Role != RoleStarter && s.Role != RoleReserve {
		return ErrInvalidRole
	}
	return nil
}

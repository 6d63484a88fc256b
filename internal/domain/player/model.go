package player

import (
	"errors"
	"time"
)

// Position is the single eligible lineup position for a player.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

// AllPositions maps every valid position code. Iteration order is not
// meaningful; use OrderedPositions when order matters.
var AllPositions = map[Position]bool{
	PositionGoalkeeper: true,
	PositionDefender:   true,
	PositionMidfielder: true,
	PositionForward:    true,
}

// OrderedPositions lists positions in lineup order.
var OrderedPositions = []Position{
	PositionGoalkeeper,
	PositionDefender,
	PositionMidfielder,
	PositionForward,
}

// Status is availability as reported by the platform.
type Status string

const (
	StatusActive    Status = "active"
	StatusDayToDay  Status = "day_to_day"
	StatusInjured   Status = "injured"
	StatusSuspended Status = "suspended"
	// StatusUnknown marks players absent from the latest platform
	// snapshot. They are never deleted, only flagged.
	StatusUnknown Status = "unknown"
)

var AllStatuses = map[Status]bool{
	StatusActive:    true,
	StatusDayToDay:  true,
	StatusInjured:   true,
	StatusSuspended: true,
	StatusUnknown:   true,
}

// Playable reports whether a status permits entering the starting
// lineup. Day-to-day players may start; they just rank as risk.
func (s Status) Playable() bool {
	return s == StatusActive || s == StatusDayToDay
}

// Player is the locally persisted view of a rostered player.
type Player struct {
	ID        string
	Name      string
	Position  Position
	TeamName  string
	Status    Status
	Locked    bool
	UpdatedAt time.Time
}

var (
	ErrEmptyID         = errors.New("player: empty id")
	ErrEmptyName       = errors.New("player: empty name")
	ErrInvalidPosition = errors.New("player: invalid position")
	ErrInvalidStatus   = errors.New("player: invalid status")
)

func (p Player) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if p.Name == "" {
		return ErrEmptyName
	}
	if !AllPositions[p.Position] {
		return ErrInvalidPosition
	}
	if !AllStatuses[p.Status] {
		return ErrInvalidStatus
	}
	return nil
}

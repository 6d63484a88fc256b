package usecase

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: malformed ids, bad
	// periods, impossible formations.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a lookup miss on local state.
	ErrNotFound = errors.New("not found")

	// ErrTransientFetch marks an upstream failure that a later attempt
	// may succeed on: timeouts, rate limits, truncated snapshots.
	ErrTransientFetch = errors.New("transient fetch failure")

	// ErrDataIntegrity marks upstream data we refuse to persist, such
	// as a player with an unmappable position.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrPlatformAuth marks an expired platform session. No amount of
	// retrying fixes it.
	ErrPlatformAuth = errors.New("platform authentication failed")

	// ErrSwapConflict marks a swap set that books the same player into
	// more than one exchange.
	ErrSwapConflict = errors.New("conflicting swap intents")

	// ErrCycleInProgress marks an attempt to start a cycle for a
	// team/period that already has one running.
	ErrCycleInProgress = errors.New("cycle already in progress")

	// ErrDependencyUnavailable marks a local storage failure.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

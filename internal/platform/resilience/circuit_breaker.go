package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker rejects a call without
// attempting the underlying operation.
var ErrCircuitOpen = errors.New("resilience: circuit open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// CircuitBreaker is a consecutive-failure breaker with a half-open
// probe phase. It is safe for concurrent use.
type CircuitBreaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu           sync.Mutex
	state        breakerState
	failures     int
	openedAt     time.Time
	probesInUse  int
	probeSuccess int
}

func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg: cfg.normalized(),
		now: time.Now,
	}
}

// Allow reports whether a call may proceed. Callers that get true must
// report the outcome with ReportSuccess or ReportFailure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return true
	case stateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cfg.OpenTimeout {
			return false
		}
		cb.state = stateHalfOpen
		cb.probesInUse = 0
		cb.probeSuccess = 0
		fallthrough
	case stateHalfOpen:
		if cb.probesInUse >= cb.cfg.HalfOpenMaxProbes {
			return false
		}
		cb.probesInUse++
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) ReportSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		cb.failures = 0
	case stateHalfOpen:
		cb.probesInUse--
		cb.probeSuccess++
		if cb.probeSuccess >= cb.cfg.HalfOpenMaxProbes {
			cb.state = stateClosed
			cb.failures = 0
		}
	}
}

func (cb *CircuitBreaker) ReportFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.trip()
		}
	case stateHalfOpen:
		cb.probesInUse--
		cb.trip()
	}
}

func (cb *CircuitBreaker) trip() {
	cb.state = stateOpen
	cb.openedAt = cb.now()
	cb.failures = 0
}

// Execute runs fn under the breaker, translating a rejected call into
// ErrCircuitOpen.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.Allow() {
		return ErrCircuitOpen
	}
	if err := fn(); err != nil {
		cb.ReportFailure()
		return err
	}
	cb.ReportSuccess()
	return nil
}

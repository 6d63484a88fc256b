package resilience

import "sync"

type flightCall struct {
	done  chan struct{}
	value any
	err   error
}

// SingleFlight deduplicates concurrent calls that share a key: the
// first caller executes, later callers wait for and share its result.
type SingleFlight struct {
	mu      sync.Mutex
	flights map[string]*flightCall
}

func NewSingleFlight() *SingleFlight {
	return &SingleFlight{flights: make(map[string]*flightCall)}
}

// Do executes fn for key, collapsing concurrent duplicate calls.
// shared reports whether the result came from another caller's flight.
func (sf *SingleFlight) Do(key string, fn func() (any, error)) (value any, shared bool, err error) {
	sf.mu.Lock()
	if inFlight, ok := sf.flights[key]; ok {
		sf.mu.Unlock()
		<-inFlight.done
		return inFlight.value, true, inFlight.err
	}

	call := &flightCall{done: make(chan struct{})}
	sf.flights[key] = call
	sf.mu.Unlock()

	call.value, call.err = fn()

	sf.mu.Lock()
	delete(sf.flights, key)
	sf.mu.Unlock()

	close(call.done)
	return call.value, false, call.err
}

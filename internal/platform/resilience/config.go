package resilience

import "time"

// BreakerConfig controls the outbound circuit breaker for a single
// upstream host.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that trips
	// the breaker open.
	FailureThreshold int
	// OpenTimeout is how long the breaker stays open before allowing
	// half-open probes.
	OpenTimeout time.Duration
	// HalfOpenMaxProbes is the number of concurrent probe requests
	// allowed while half-open.
	HalfOpenMaxProbes int
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold:  5,
		OpenTimeout:       30 * time.Second,
		HalfOpenMaxProbes: 1,
	}
}

func (c BreakerConfig) normalized() BreakerConfig {
	out := c
	if out.FailureThreshold <= 0 {
		out.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	if out.OpenTimeout <= 0 {
		out.OpenTimeout = DefaultBreakerConfig().OpenTimeout
	}
	if out.HalfOpenMaxProbes <= 0 {
		out.HalfOpenMaxProbes = DefaultBreakerConfig().HalfOpenMaxProbes
	}
	return out
}

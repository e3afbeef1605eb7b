// Package circuit implements the consecutive-failure circuit breaker that
// guards outbound calls to the data service.
package circuit

import (
	"sync"
	"time"
)

// State is the breaker position.
type State string

const (
	// StateClosed admits all calls.
	StateClosed State = "CLOSED"
	// StateOpen fast-fails all calls until the cooldown elapses.
	StateOpen State = "OPEN"
	// StateHalfOpen admits a single trial call.
	StateHalfOpen State = "HALF_OPEN"
)

// Config bounds the breaker behavior.
type Config struct {
	// FailureThreshold is the consecutive-failure count that opens the breaker.
	FailureThreshold int
	// Cooldown is how long the breaker stays Open before admitting a trial call.
	Cooldown time.Duration
}

// DefaultConfig matches the production defaults.
func DefaultConfig() Config {
	return Config{FailureThreshold: 5, Cooldown: 30 * time.Second}
}

// Breaker is shared across all concurrent callers; every method takes the
// internal mutex.
type Breaker struct {
	mu sync.Mutex

	cfg             Config
	state           State
	failures        int
	lastFailureTime time.Time

	now func() time.Time
}

// New builds a Breaker in the Closed state.
func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg, state: StateClosed, now: time.Now}
}

// State returns the current position. Open flips to HalfOpen lazily inside
// CanExecute, so this reports the stored position only.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// CanExecute reports whether a call may proceed. In the Open state it checks
// the cooldown and, once elapsed, moves to HalfOpen and admits the call.
func (b *Breaker) CanExecute() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.now().Sub(b.lastFailureTime) >= b.cfg.Cooldown {
			b.state = StateHalfOpen
			return true
		}
		return false
	}
	return false
}

// RecordSuccess resets the failure counter and closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.state = StateClosed
}

// RecordFailure counts one failure. In Closed it opens the breaker at the
// threshold; in HalfOpen it reopens immediately and restamps the cooldown.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
		b.lastFailureTime = b.now()
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.state = StateOpen
			b.lastFailureTime = b.now()
		}
	}
}

// ForceClose resets the breaker to Closed with a zero failure count. The
// health loop calls this when the data service answers a probe.
func (b *Breaker) ForceClose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.state = StateClosed
}

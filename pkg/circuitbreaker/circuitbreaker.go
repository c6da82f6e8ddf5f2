package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreaker trips after maxFailures errors inside the sliding
// window and fails fast until timeout has passed, then lets one call
// through to probe.
type CircuitBreaker struct {
	maxFailures     int
	window          time.Duration
	timeout         time.Duration
	failures        []time.Time
	lastFailureTime time.Time
	state           State
	mu              sync.Mutex
}

func New(maxFailures int, timeout time.Duration) *CircuitBreaker {
	return NewWithWindow(maxFailures, timeout, 60*time.Second)
}

func NewWithWindow(maxFailures int, timeout, window time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures: maxFailures,
		window:      window,
		timeout:     timeout,
		state:       StateClosed,
		failures:    make([]time.Time, 0),
	}
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Since(cb.lastFailureTime) < cb.timeout {
			return ErrOpen
		}
		cb.state = StateHalfOpen
		cb.failures = cb.failures[:0]
	}

	err := fn()
	now := time.Now()

	if err != nil {
		cb.lastFailureTime = now
		cb.failures = append(cb.failures, now)
		cb.dropOldFailures(now)
		if len(cb.failures) > cb.maxFailures || cb.state == StateHalfOpen {
			cb.state = StateOpen
		}
		return err
	}

	cb.dropOldFailures(now)
	if cb.state == StateHalfOpen {
		cb.state = StateClosed
		cb.failures = cb.failures[:0]
	}
	return nil
}

func (cb *CircuitBreaker) dropOldFailures(now time.Time) {
	cutoff := now.Add(-cb.window)
	kept := cb.failures[:0]
	for _, t := range cb.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	cb.failures = kept
}

func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

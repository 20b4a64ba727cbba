package provider

import (
	"context"
	"sync"
	"time"

	perrors "persuader/pkg/errors"
)

// CircuitState is the circuit breaker's state machine position, adopted
// wholesale from the teacher's recovery.CircuitBreaker and retargeted to
// wrap provider calls instead of parser retry attempts.
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreakerConfig configures failure/recovery thresholds.
type CircuitBreakerConfig struct {
	FailureThreshold       int
	RecoveryTimeout        time.Duration
	RequestVolumeThreshold int
	SuccessThreshold       int
}

func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		FailureThreshold:       5,
		RecoveryTimeout:        30 * time.Second,
		RequestVolumeThreshold: 10,
		SuccessThreshold:       3,
	}
}

// CircuitBreaker wraps an Adapter, tripping to short-circuit further calls
// after repeated failures until a recovery timeout elapses.
type CircuitBreaker struct {
	config       *CircuitBreakerConfig
	mu           sync.Mutex
	state        CircuitState
	failures     int
	successes    int
	requests     int
	lastFailTime time.Time
}

func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	return &CircuitBreaker{config: config, state: StateClosed}
}

// Allow reports whether a call should proceed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastFailTime) > cb.config.RecoveryTimeout {
			cb.state = StateHalfOpen
			cb.successes = 0
			cb.requests = 0
			return true
		}
		return false
	case StateHalfOpen:
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.requests++
	if cb.state == StateHalfOpen {
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.state = StateClosed
			cb.failures = 0
			cb.successes = 0
			cb.requests = 0
		}
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.requests++
	cb.lastFailTime = time.Now()

	if cb.state == StateHalfOpen {
		cb.state = StateOpen
		cb.failures = 0
		cb.successes = 0
		cb.requests = 0
		return
	}
	if cb.requests >= cb.config.RequestVolumeThreshold && cb.failures >= cb.config.FailureThreshold {
		cb.state = StateOpen
		cb.failures = 0
		cb.successes = 0
		cb.requests = 0
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.successes = 0
	cb.requests = 0
}

// CircuitBreakerAdapter wraps any Adapter with the breaker above, short
// circuiting SendPrompt/CreateSession once the breaker opens: at least
// RequestVolumeThreshold calls and FailureThreshold failures recorded since
// the last reset, where successes in between do not clear the failure
// count. This is additive to the orchestrator's own
// per-call exponential backoff, not a replacement for it: the breaker
// protects the adapter from a pile-up of calls it's already failing, the
// backoff paces the orchestrator's own retry loop.
type CircuitBreakerAdapter struct {
	Adapter
	cb *CircuitBreaker
}

// WithCircuitBreaker wraps adapter with a breaker built from config (nil
// for the teacher's defaults: 5 failures / 10 requests trips it, 3
// successes in half-open closes it again).
func WithCircuitBreaker(adapter Adapter, config *CircuitBreakerConfig) *CircuitBreakerAdapter {
	return &CircuitBreakerAdapter{Adapter: adapter, cb: NewCircuitBreaker(config)}
}

func (w *CircuitBreakerAdapter) breakerError() error {
	return perrors.NewProviderError(perrors.ComponentProvider, w.Adapter.Name(),
		perrors.ErrorKindServerError, 0,
		"circuit breaker open: too many recent failures", true)
}

func (w *CircuitBreakerAdapter) CreateSession(ctx context.Context, systemContext string, opts Options) (string, error) {
	if !w.cb.Allow() {
		return "", w.breakerError()
	}
	id, err := w.Adapter.CreateSession(ctx, systemContext, opts)
	w.record(err)
	return id, err
}

func (w *CircuitBreakerAdapter) SendPrompt(ctx context.Context, providerSessionID, prompt string, opts Options) (Response, error) {
	if !w.cb.Allow() {
		return Response{}, w.breakerError()
	}
	resp, err := w.Adapter.SendPrompt(ctx, providerSessionID, prompt, opts)
	w.record(err)
	return resp, err
}

func (w *CircuitBreakerAdapter) record(err error) {
	if err != nil {
		w.cb.RecordFailure()
		return
	}
	w.cb.RecordSuccess()
}

// State exposes the breaker's current position for health reporting.
func (w *CircuitBreakerAdapter) State() CircuitState { return w.cb.State() }

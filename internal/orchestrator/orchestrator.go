// Package orchestrator implements the single public entry point of this
// runtime: Persuade, the self-correcting retry loop that turns one caller
// request into a schema-validated value by repeatedly prompting a
// provider and feeding validation failures back as corrective text.
//
// Grounded on the teacher's internal/processor.ProcessQuery (the overall
// shape: resolve session, call provider with retry, parse, validate,
// update session, assemble response) and
// internal/parser/recovery.RetryParser.ParseWithRetry (the attempt loop
// itself, including its circuit-breaker and metrics bookkeeping), but
// reworked from a fixed NLP pipeline into a generic, schema-agnostic loop.
package orchestrator

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"persuader/internal/feedback"
	"persuader/internal/introspect"
	"persuader/internal/plog"
	"persuader/internal/prompt"
	"persuader/internal/provider"
	"persuader/internal/session"
	"persuader/internal/validate"
	perrors "persuader/pkg/errors"
	"persuader/pkg/schema"
	"persuader/pkg/value"
)

// Phase is the orchestrator's one-call state machine position, per the
// "Retry Loop / Orchestrator" design: PRIMING validates the caller's
// example, PROMPTING composes the next prompt, AWAITING_RESPONSE is
// blocked in the adapter call, VALIDATING runs the schema validator, and
// the loop ends in exactly one of SUCCESS, RETRYING (which loops back to
// PROMPTING), or FAILURE.
type Phase string

const (
	PhasePriming          Phase = "PRIMING"
	PhasePrompting        Phase = "PROMPTING"
	PhaseAwaitingResponse Phase = "AWAITING_RESPONSE"
	PhaseValidating       Phase = "VALIDATING"
	PhaseSuccess          Phase = "SUCCESS"
	PhaseRetrying         Phase = "RETRYING"
	PhaseFailure          Phase = "FAILURE"
)

// GuardRule is an optional, pre-prompt safety check, run once before the
// first attempt. It mirrors the teacher's ValidationRule interface shape
// (internal/validator/safety.go: Validate/RuleName/Severity/IsEnabled) so
// that rule survives as an ambient hook without being folded into schema
// validation's collect-everything contract.
type GuardRule interface {
	Validate(input value.Value) error
	RuleName() string
	Severity() string
	IsEnabled() bool
}

// Options configures one Persuade call.
type Options struct {
	Schema          *schema.Schema
	Input           value.Value
	Context         string
	Lens            string
	SessionID       string
	Retries         int // additional attempts after the first; default 3
	Provider        string
	Model           string
	ExampleOutput   *value.Value // caller-supplied; nil triggers auto-example
	SuccessMessage  string
	ProviderOptions provider.Options
	Reuse           bool // default true; false is opt-out, not the zero value (see NewOptions)
	GuardRules      []GuardRule
}

// NewOptions returns Options with the documented defaults (Retries=3,
// Reuse=true) so a caller only needs to set the fields that matter to them.
func NewOptions() Options {
	return Options{Retries: 3, Reuse: true}
}

// Result is the outcome of one Persuade call, populated whether it
// succeeded or failed.
type Result struct {
	OK        bool
	Value     value.Value
	Error     error
	Attempts  int
	SessionID string
	Metadata  Metadata
}

// Metadata carries the bookkeeping the spec requires on every Result:
// execution time, token usage, the provider/model used, and timestamps.
type Metadata struct {
	Provider            string
	Model               string
	StartedAt           time.Time
	FinishedAt          time.Time
	ExecutionTime       time.Duration
	TokenUsage          provider.TokenUsage
	ReinforcementTokens int
}

// Orchestrator wires the closed component set together: a provider
// adapter, a session manager, and a logger. One Orchestrator can be shared
// across concurrent Persuade calls; only the Session Manager and the
// adapter need to be goroutine-safe, which both already are.
type Orchestrator struct {
	Adapter      provider.Adapter
	Sessions     *session.Manager
	Log          plog.Logger
	sendPrompter session.SendPrompter // narrow view of Adapter, passed to EnsureSession
}

// New builds an Orchestrator over one adapter and one session manager. The
// adapter is wrapped in a circuit breaker with the package's default
// thresholds so a provider that starts failing repeatedly trips open and
// stops taking new sessions/prompts instead of retrying into a dead
// endpoint forever; NewWithBreaker lets a caller tune or disable that.
func New(adapter provider.Adapter, sessions *session.Manager, log plog.Logger) *Orchestrator {
	return NewWithBreaker(adapter, sessions, log, nil)
}

// NewWithBreaker is New with an explicit circuit breaker config. Passing
// nil keeps provider.WithCircuitBreaker's defaults.
func NewWithBreaker(adapter provider.Adapter, sessions *session.Manager, log plog.Logger, cbConfig *provider.CircuitBreakerConfig) *Orchestrator {
	wrapped := provider.WithCircuitBreaker(adapter, cbConfig)
	return &Orchestrator{Adapter: wrapped, Sessions: sessions, Log: log, sendPrompter: wrapped}
}

// Persuade runs the self-correcting retry loop described in the
// orchestrator design: validate the example, ensure a session, then
// attempt up to Retries+1 times, feeding each validation failure back as
// corrective text on the next prompt.
func (o *Orchestrator) Persuade(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	meta := Metadata{Provider: o.Adapter.Name(), Model: opts.Model, StartedAt: start}

	if opts.Schema == nil {
		err := perrors.NewConfigurationError(perrors.ComponentOrchestrator, "schema", "schema is required")
		return o.fail(err, 0, "", meta, start), err
	}

	// PRIMING: the caller's example, if supplied, must itself validate;
	// a bad example is a configuration mistake, not a retryable failure,
	// and the adapter is never contacted for it (attempts=0).
	example := opts.ExampleOutput
	if example == nil {
		auto := introspect.Example(opts.Schema)
		example = &auto
	} else {
		exJSON, jerr := example.ToJSON()
		if jerr == nil {
			if _, verr := validateJSON(opts.Schema, string(exJSON)); verr != nil {
				cerr := perrors.NewConfigurationError(perrors.ComponentOrchestrator, "example_output",
					"caller-supplied example fails schema validation: "+verr.Error())
				return o.fail(cerr, 0, opts.SessionID, meta, start), cerr
			}
		}
	}

	for _, rule := range opts.GuardRules {
		if !rule.IsEnabled() {
			continue
		}
		if err := rule.Validate(opts.Input); err != nil {
			cerr := perrors.NewConfigurationError(perrors.ComponentOrchestrator, rule.RuleName(), err.Error())
			return o.fail(cerr, 0, opts.SessionID, meta, start), cerr
		}
	}

	sess, err := o.Sessions.EnsureSession(ctx, o.sendPrompter, opts.Provider, opts.Context, opts.SessionID, opts.Reuse)
	if err != nil {
		return o.fail(err, 0, opts.SessionID, meta, start), err
	}

	maxAttempts := opts.Retries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.Multiplier = 2
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 0 // the attempt count, not elapsed wall time, bounds the loop
	bo.RandomizationFactor = 0.2

	var lastValidationErr *perrors.ValidationError
	var lastErr error
	// Context is only worth resending once per session: a session-capable
	// provider already holds it server-side after the first prompt, and a
	// stateless one gets it fresh on every logical session anyway (S6).
	includeContext := sess.Metadata.PromptCount == 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			cerr := perrors.NewCancelledError(perrors.ComponentOrchestrator, ctx.Err().Error())
			return o.fail(cerr, attempt-1, sess.ID, meta, start), cerr
		}

		p := prompt.Parts{
			Lens:    opts.Lens,
			Example: *example,
			HasExample: true,
			Input:   prompt.InputFor(opts.Input),
		}
		if includeContext {
			p.Context = opts.Context
		}
		if lastValidationErr != nil {
			p.Feedback = feedback.FormatRetryFeedback(lastValidationErr, attempt, maxAttempts)
		}
		composed := prompt.Compose(p)

		o.Log.With("session_id", sess.ID).With("attempt", attempt).
			With("estimated_tokens", prompt.EstimateTokens(composed)).Debug("sending prompt")
		resp, sendErr := o.Adapter.SendPrompt(ctx, sess.ProviderSessionID, composed, opts.ProviderOptions)
		sess.WithLock(func() { sess.Metadata.PromptCount++ })
		if sendErr != nil {
			if isRetryableProviderError(sendErr) && attempt < maxAttempts {
				sleepWithJitter(ctx, bo)
				lastErr = sendErr
				continue
			}
			o.Sessions.RecordCallOutcome(sess.ID, attempt, false, time.Since(start), meta.TokenUsage.Total)
			return o.fail(sendErr, attempt, sess.ID, o.finish(meta, start), start), sendErr
		}

		meta.TokenUsage = meta.TokenUsage.Add(resp.TokenUsage)

		v, verr := validateJSON(opts.Schema, resp.Content)
		if verr == nil {
			if attempt == 1 && sess.ProviderSessionID != "" && opts.SuccessMessage != "" {
				reinforceResp, rerr := o.Adapter.SendPrompt(ctx, sess.ProviderSessionID, opts.SuccessMessage, opts.ProviderOptions)
				sess.WithLock(func() { sess.Metadata.PromptCount++ })
				if rerr == nil {
					meta.ReinforcementTokens += reinforceResp.TokenUsage.Total
					sess.WithLock(func() { sess.Metrics.ReinforcementTokens += reinforceResp.TokenUsage.Total })
				}
				validated, _ := v.ToJSON()
				_ = o.Sessions.AddSuccessFeedback(sess.ID, session.SuccessFeedbackEntry{
					Message: opts.SuccessMessage,
					Value:   validated,
					Attempt: attempt,
				})
			}
			o.Sessions.RecordCallOutcome(sess.ID, attempt, true, time.Since(start), meta.TokenUsage.Total)
			return &Result{
				OK: true, Value: v, Attempts: attempt, SessionID: sess.ID,
				Metadata: o.finish(meta, start),
			}, nil
		}
		lastValidationErr = verr
		lastErr = verr
	}

	o.Sessions.RecordCallOutcome(sess.ID, maxAttempts, false, time.Since(start), meta.TokenUsage.Total)
	return o.fail(lastErr, maxAttempts, sess.ID, o.finish(meta, start), start), lastErr
}

func (o *Orchestrator) finish(meta Metadata, start time.Time) Metadata {
	meta.FinishedAt = time.Now()
	meta.ExecutionTime = meta.FinishedAt.Sub(start)
	return meta
}

func (o *Orchestrator) fail(err error, attempts int, sessionID string, meta Metadata, start time.Time) *Result {
	meta = o.finish(meta, start)
	return &Result{OK: false, Error: err, Attempts: attempts, SessionID: sessionID, Metadata: meta}
}

// validateJSON is the seam onto internal/validate, kept in its own
// function so a future caller doesn't need the whole validate package name
// sprinkled through the attempt loop.
func validateJSON(s *schema.Schema, raw string) (value.Value, *perrors.ValidationError) {
	return validate.Validate(s, raw, perrors.ComponentOrchestrator)
}

// isRetryableProviderError reports whether err is a *errors.ProviderError
// the adapter marked retryable, falling back to the substring classifier
// for adapters (like a CLI subprocess) that only ever return a bare error.
func isRetryableProviderError(err error) bool {
	if pe, ok := err.(*perrors.ProviderError); ok {
		return pe.Retryable
	}
	return provider.IsTransientError(err)
}

// sleepWithJitter blocks for one backoff interval or until ctx is done,
// whichever comes first. cenkalti/backoff's ExponentialBackOff already
// applies the +-20% RandomizationFactor internally, so no separate jitter
// computation is needed here.
func sleepWithJitter(ctx context.Context, bo *backoff.ExponentialBackOff) {
	d := bo.NextBackOff()
	if d == backoff.Stop {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

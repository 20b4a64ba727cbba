// Package provider defines the narrow seam between the orchestrator and any
// concrete LLM backend, plus the concrete adapters this repo ships.
package provider

import (
	"context"
	"time"
)

// StopReason is the closed set of reasons a provider stopped generating.
type StopReason string

const (
	StopEndTurn      StopReason = "end_turn"
	StopMaxTokens    StopReason = "max_tokens"
	StopStopSequence StopReason = "stop_sequence"
	StopOther        StopReason = "other"
)

// TokenUsage reports input/output/total token counts for one call.
type TokenUsage struct {
	Input  int
	Output int
	Total  int
}

func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{Input: u.Input + o.Input, Output: u.Output + o.Output, Total: u.Total + o.Total}
}

// Response is what an adapter returns for one SendPrompt call.
type Response struct {
	Content    string
	TokenUsage TokenUsage
	Metadata   map[string]interface{}
	Truncated  bool
	StopReason StopReason
}

// HealthStatus is the result of an adapter health check.
type HealthStatus struct {
	Healthy        bool
	CheckedAt      time.Time
	ResponseTimeMs int64
	Error          string
	Details        map[string]interface{}
}

// Options is opaque provider-tuning pass-through (temperature, top_p,
// max_tokens, ...).
type Options map[string]interface{}

// Adapter is the seam between the orchestrator and a concrete LLM backend:
// a stateless HTTP API, a stateful CLI subprocess, or a local server.
type Adapter interface {
	Name() string
	Version() string
	SupportsSession() bool
	SupportedModels() []string

	Health(ctx context.Context) (HealthStatus, error)

	// CreateSession starts a provider-side conversation, returning its
	// native handle. Returns a *errors.ProviderError with ErrorKind
	// "bad_request" (unsupported) if the adapter is stateless.
	CreateSession(ctx context.Context, systemContext string, opts Options) (string, error)

	// SendPrompt sends one prompt, optionally within an existing provider
	// session. providerSessionID is empty for stateless adapters.
	SendPrompt(ctx context.Context, providerSessionID, prompt string, opts Options) (Response, error)

	// DestroySession best-effort tears down a provider-side conversation.
	// No-op for stateless adapters.
	DestroySession(ctx context.Context, providerSessionID string) error
}

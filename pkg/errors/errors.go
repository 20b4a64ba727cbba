// Package errors defines the runtime's closed error taxonomy: validation,
// provider, configuration, session, cancelled. Every kind embeds a common
// base implementing the error interface, following the teacher's
// ProcessingError/embed pattern. Each kind is its own pointer type, so
// callers tell them apart with a type switch, a type assertion or errors.As.
package errors

import (
	"fmt"
	"time"

	"persuader/pkg/issue"
)

// Kind is the closed error taxonomy from the error handling design.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindProvider      Kind = "provider"
	KindConfiguration Kind = "configuration"
	KindSession       Kind = "session"
	KindCancelled     Kind = "cancelled"
)

// base carries the fields common to every error kind.
type base struct {
	Kind        Kind                   `json:"kind"`
	Message     string                 `json:"message"`
	Details     map[string]interface{} `json:"details,omitempty"`
	Component   string                 `json:"component"`
	Retryable   bool                   `json:"retryable"`
	Suggestions []string               `json:"suggestions,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

func (e *base) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Component, e.Kind, e.Message)
}

func (e *base) WithDetails(key string, value interface{}) *base {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *base) WithSuggestion(s string) *base {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

func (e *base) WithSuggestions(s ...string) *base {
	e.Suggestions = append(e.Suggestions, s...)
	return e
}

func newBase(kind Kind, component, message string, retryable bool) base {
	return base{
		Kind:        kind,
		Message:     message,
		Component:   component,
		Retryable:   retryable,
		Timestamp:   time.Now(),
		Details:     make(map[string]interface{}),
		Suggestions: make([]string, 0),
	}
}

// ValidationError groups every failure from one validate() call: either a
// JSON syntax failure (Code "json_parse") or a set of schema Issues.
type ValidationError struct {
	base
	Code           string       `json:"code"`
	Issues         []issue.Issue `json:"issues,omitempty"`
	RawValue       string       `json:"raw_value,omitempty"`
	SchemaDesc     string       `json:"schema_description,omitempty"`
	RetryStrategy  string       `json:"retry_strategy,omitempty"`
	Summary        string       `json:"summary,omitempty"`
	Corrections    []string     `json:"corrections,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] validation (%s): %s", e.Component, e.Code, e.Message)
}

// NewJSONParseError builds the ValidationError emitted when raw_text fails
// to parse as JSON.
func NewJSONParseError(component, message, rawValue, syntaxSuggestion string) *ValidationError {
	ve := &ValidationError{
		base:     newBase(KindValidation, component, message, true),
		Code:     "json_parse",
		RawValue: rawValue,
	}
	if syntaxSuggestion != "" {
		ve.WithSuggestion(syntaxSuggestion)
	}
	return ve
}

// NewSchemaValidationError builds the ValidationError emitted when parsing
// succeeded but one or more schema Issues were collected.
func NewSchemaValidationError(component, message string, issues []issue.Issue, rawValue, schemaDesc string) *ValidationError {
	return &ValidationError{
		base:       newBase(KindValidation, component, message, true),
		Code:       "schema_invalid",
		Issues:     issues,
		RawValue:   rawValue,
		SchemaDesc: schemaDesc,
	}
}

func (e *ValidationError) WithSuggestion(s string) *ValidationError {
	e.base.WithSuggestion(s)
	return e
}

func (e *ValidationError) WithSuggestions(s ...string) *ValidationError {
	e.base.WithSuggestions(s...)
	return e
}

func (e *ValidationError) WithDetails(key string, value interface{}) *ValidationError {
	e.base.WithDetails(key, value)
	return e
}

// ErrorKind is the closed set of provider-adapter error classifications.
type ErrorKind string

const (
	ErrorKindAuth          ErrorKind = "auth"
	ErrorKindRateLimit     ErrorKind = "rate_limit"
	ErrorKindTimeout       ErrorKind = "timeout"
	ErrorKindServerError   ErrorKind = "server_error"
	ErrorKindBadRequest    ErrorKind = "bad_request"
	ErrorKindModelNotFound ErrorKind = "model_not_found"
	ErrorKindContentPolicy ErrorKind = "content_policy"
	ErrorKindTransport     ErrorKind = "transport"
	ErrorKindUnknown       ErrorKind = "unknown"
)

// ProviderError is raised by a Provider Adapter. ErrorKind and Retryable
// together implement the §4.E error classification contract.
type ProviderError struct {
	base
	ProviderName string    `json:"provider_name"`
	ErrorKind    ErrorKind `json:"error_kind"`
	Status       int       `json:"status,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("[%s] provider %s (%s, HTTP %d): %s", e.Component, e.ProviderName, e.ErrorKind, e.Status, e.Message)
	}
	return fmt.Sprintf("[%s] provider %s (%s): %s", e.Component, e.ProviderName, e.ErrorKind, e.Message)
}

func NewProviderError(component, providerName string, kind ErrorKind, status int, message string, retryable bool) *ProviderError {
	return &ProviderError{
		base:         newBase(KindProvider, component, message, retryable),
		ProviderName: providerName,
		ErrorKind:    kind,
		Status:       status,
	}
}

// retryableKinds are the ErrorKinds the adapter contract always treats as
// retryable, independent of the caller's own judgment.
var retryableKinds = map[ErrorKind]bool{
	ErrorKindTimeout:     true,
	ErrorKindRateLimit:   true,
	ErrorKindServerError: true,
	ErrorKindTransport:   true,
}

// IsRetryableKind reports the default retryability of a provider ErrorKind.
func IsRetryableKind(k ErrorKind) bool { return retryableKinds[k] }

// ConfigurationError signals invalid options, a bad schema, or a
// pre-validated example that failed: never retryable, raised before any
// adapter contact.
type ConfigurationError struct {
	base
	Field string `json:"field,omitempty"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("[%s] configuration: %s", e.Component, e.Message)
}

func NewConfigurationError(component, field, message string) *ConfigurationError {
	return &ConfigurationError{
		base:  newBase(KindConfiguration, component, message, false),
		Field: field,
	}
}

// SessionError signals a session could not be found or created; the
// orchestrator generally recovers from this by falling back to a new
// session rather than surfacing it.
type SessionError struct {
	base
	SessionID string `json:"session_id,omitempty"`
	Operation string `json:"operation,omitempty"`
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("[%s] session %s (%s): %s", e.Component, e.SessionID, e.Operation, e.Message)
}

func NewSessionError(component, sessionID, operation, message string) *SessionError {
	return &SessionError{
		base:      newBase(KindSession, component, message, false),
		SessionID: sessionID,
		Operation: operation,
	}
}

// CancelledError is terminal: the caller's context was cancelled before or
// during the call.
type CancelledError struct {
	base
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("[%s] cancelled: %s", e.Component, e.Message)
}

func NewCancelledError(component, message string) *CancelledError {
	return &CancelledError{base: newBase(KindCancelled, component, message, false)}
}

// Component names, kept stable across log lines and error Details.
const (
	ComponentOrchestrator = "orchestrator"
	ComponentValidator    = "validator"
	ComponentProvider     = "provider"
	ComponentSession      = "session"
	ComponentConfig       = "config"
	ComponentPrompt       = "prompt"
)

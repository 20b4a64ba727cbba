package provider

import (
	"net"
	"strings"
)

// transientSubstrings mirrors the teacher's isTransientError classifier in
// internal/processor/processor.go, kept as a fallback for adapters that can
// only return a bare error (e.g. a CLI subprocess) rather than a structured
// *errors.ProviderError with an explicit ErrorKind.
var transientSubstrings = []string{
	"timeout",
	"deadline exceeded",
	"temporarily unavailable",
	"temporary",
	"try again",
	"connection reset",
	"connection refused",
	"no such host",
	"tls handshake timeout",
	"eof",
	"rate limit",
	"too many requests",
	"429",
	"503",
	"502",
	"504",
}

// IsTransientError reports whether a bare error looks retryable, by
// substring match against common transient-failure phrasing. Structured
// adapters should prefer errors.ProviderError.Retryable; this exists for
// adapters (like a CLI subprocess) that surface only an error.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range transientSubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// ClassifyHTTPStatus maps an HTTP status code to a provider ErrorKind and
// its default retryability, per the adapter error classification contract:
// retryable = timeouts, 429, 5xx; non-retryable = 401/403/404/400 and
// content-policy refusals (callers detect those from the response body).
func ClassifyHTTPStatus(status int) (kind string, retryable bool) {
	switch {
	case status == 401 || status == 403:
		return "auth", false
	case status == 404:
		return "model_not_found", false
	case status == 400:
		return "bad_request", false
	case status == 429:
		return "rate_limit", true
	case status >= 500 && status < 600:
		return "server_error", true
	default:
		return "unknown", false
	}
}

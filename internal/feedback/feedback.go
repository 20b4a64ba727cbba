// Package feedback implements the Feedback Formatter: turning validation
// issues into corrective text for a retry prompt, with urgency that
// escalates as attempts are spent. Composition is a pure function of
// (ValidationError, attempt number, max attempts) — no hidden state — so
// the same inputs always produce the same message, grounded on the
// teacher's recovery.RetryParser RepromptTemplate mechanism but
// generalized from one fixed template into an attempt-driven escalation.
package feedback

import (
	"fmt"
	"strings"

	perrors "persuader/pkg/errors"
	"persuader/pkg/issue"
	"persuader/pkg/value"
)

const ruleLine = "----------------------------------------"

// GenerateSuggestions produces one human suggestion per issue, plus three
// general reminders appended whenever any issue exists.
func GenerateSuggestions(issues []issue.Issue, rawValue value.Value) []string {
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, 0, len(issues)+3)
	for _, is := range issues {
		out = append(out, suggestionFor(is))
	}
	out = append(out,
		"ensure all required fields present",
		"check field names for typos",
		"verify JSON structure",
	)
	return out
}

func suggestionFor(is issue.Issue) string {
	field := is.PathString()
	switch is.Code {
	case issue.CodeRequiredMissing:
		return fmt.Sprintf("Field `%s`: add this required field", field)
	case issue.CodeInvalidType:
		return fmt.Sprintf("Field `%s`: expected %s, received %s", field, is.Expected, is.Received)
	case issue.CodeTooSmall:
		return fmt.Sprintf("Field `%s`: %s", field, is.Message)
	case issue.CodeTooBig:
		return fmt.Sprintf("Field `%s`: %s", field, is.Message)
	case issue.CodeInvalidEnum:
		return fmt.Sprintf("Field `%s`: must be one of: %s", field, strings.Join(is.Options, ", "))
	case issue.CodeInvalidFormat:
		return fmt.Sprintf("Field `%s`: must match format %s", field, is.Expected)
	case issue.CodeUnrecognizedKeys:
		return fmt.Sprintf("Field `%s`: remove this field, it is not part of the schema", field)
	case issue.CodeInvalidUnion, issue.CodeInvalidValue:
		return fmt.Sprintf("Field `%s`: %s", field, is.Message)
	default:
		return fmt.Sprintf("Field `%s`: %s", field, is.Message)
	}
}

// GenerateFieldCorrections produces a concise, directive correction per
// issue, suitable for a numbered checklist in a retry prompt.
func GenerateFieldCorrections(issues []issue.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		field := is.PathString()
		switch is.Code {
		case issue.CodeTooSmall:
			out = append(out, fmt.Sprintf("Field `%s`: Increase value to at least %s", field, trimExpected(is.Expected)))
		case issue.CodeTooBig:
			out = append(out, fmt.Sprintf("Field `%s`: Decrease value to at most %s", field, trimExpected(is.Expected)))
		case issue.CodeInvalidEnum:
			out = append(out, fmt.Sprintf("Field `%s`: Set to one of: %s", field, strings.Join(is.Options, ", ")))
		case issue.CodeRequiredMissing:
			out = append(out, fmt.Sprintf("Field `%s`: Add this field", field))
		case issue.CodeUnrecognizedKeys:
			out = append(out, fmt.Sprintf("Field `%s`: Remove this field", field))
		default:
			out = append(out, fmt.Sprintf("Field `%s`: %s", field, is.Message))
		}
	}
	return out
}

func trimExpected(expected string) string {
	s := strings.TrimPrefix(expected, ">= ")
	s = strings.TrimPrefix(s, "<= ")
	s = strings.TrimPrefix(s, "at least ")
	s = strings.TrimPrefix(s, "at most ")
	return s
}

// FormatRetryFeedback composes the message sent back to the LLM on retry.
// attempt is 1-based; maxAttempts is the total attempt budget (retries+1).
func FormatRetryFeedback(ve *perrors.ValidationError, attempt, maxAttempts int) string {
	if ve == nil {
		return ""
	}
	prefix := urgencyPrefix(attempt)
	var b strings.Builder

	if ve.Code == "json_parse" {
		writeJSONParseFeedback(&b, prefix, attempt, ve)
	} else {
		writeSchemaFeedback(&b, prefix, attempt, ve)
	}

	if attempt >= maxAttempts {
		b.WriteString("\n\nThis is the final attempt. If the response is not corrected now, the request will fail.")
	}
	return b.String()
}

func urgencyPrefix(attempt int) string {
	switch {
	case attempt >= 3:
		return "CRITICAL:"
	case attempt == 2:
		return "IMPORTANT:"
	default:
		return ""
	}
}

func writeJSONParseFeedback(b *strings.Builder, prefix string, attempt int, ve *perrors.ValidationError) {
	if attempt >= 2 {
		b.WriteString(ruleLine + "\n")
	}
	if prefix != "" {
		b.WriteString(prefix + " ")
	}
	if attempt <= 2 {
		b.WriteString("The response must be valid JSON: every opening brace, bracket, and quote must have a matching closing one.")
	} else {
		b.WriteString("The response MUST start with `{` and end with `}`, with no text before or after the JSON object.")
	}
	if len(ve.Suggestions) > 0 {
		b.WriteString("\n\nDetails: " + ve.Suggestions[0])
	}
}

func writeSchemaFeedback(b *strings.Builder, prefix string, attempt int, ve *perrors.ValidationError) {
	if attempt >= 2 {
		b.WriteString(ruleLine + "\n")
	}
	header := fmt.Sprintf("Schema Validation Failed (Attempt %d)", attempt)
	if prefix != "" {
		header = prefix + " " + header
	}
	b.WriteString(header + "\n")

	if len(ve.Issues) > 0 {
		b.WriteString("\nIssues found:\n")
		for _, is := range ve.Issues {
			b.WriteString(fmt.Sprintf("- %s: %s\n", is.PathString(), is.Message))
		}
	}

	if len(ve.Corrections) > 0 {
		b.WriteString("\nRequired corrections:\n")
		for _, c := range ve.Corrections {
			b.WriteString("- " + c + "\n")
		}
	}

	if len(ve.Suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, s := range ve.Suggestions {
			b.WriteString("- " + s + "\n")
		}
	}

	if attempt >= 2 {
		b.WriteString("\nStructured guidance:\n")
		b.WriteString(ve.Summary + "\n")
		for i, is := range ve.Issues {
			b.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, is.PathString(), is.Message))
		}
	}
}

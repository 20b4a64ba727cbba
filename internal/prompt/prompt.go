// Package prompt composes the single string sent to a provider from
// ordered, optional parts: durable context, lens, example, input, and (on
// retry) corrective feedback. Grounded on the teacher's
// internal/prompts/formatters package (per-model template composition),
// generalized here into one schema-agnostic builder since this runtime's
// prompt shape does not vary by provider (provider-specific wire framing
// happens in internal/provider, not here).
package prompt

import (
	"fmt"
	"strings"

	"persuader/pkg/value"
)

// Parts are the ordered, optional components of one composed prompt.
type Parts struct {
	Context  string // durable system instruction; omitted when already established in the session
	Lens     string // per-call perspective modifier
	Example  value.Value
	HasExample bool
	Input    string
	Feedback string // retry feedback from the previous attempt, if any
}

// Compose renders Parts into a single prompt string. Feedback, when
// present, is appended after the input under a clearly-labeled header; it
// never replaces prior content.
func Compose(p Parts) string {
	var b strings.Builder

	if p.Context != "" {
		b.WriteString(p.Context)
		b.WriteString("\n\n")
	}
	if p.Lens != "" {
		b.WriteString("Perspective: " + p.Lens + "\n\n")
	}
	if p.HasExample {
		exJSON, err := p.Example.ToJSON()
		if err == nil {
			b.WriteString("Example of a valid response:\n")
			b.WriteString(string(exJSON))
			b.WriteString("\n\n")
		}
	}
	b.WriteString(p.Input)

	if p.Feedback != "" {
		b.WriteString("\n\n")
		b.WriteString("--- Correction Required ---\n")
		b.WriteString(p.Feedback)
	}
	return b.String()
}

// InputFor renders a caller's structured input value into prompt text.
func InputFor(input value.Value) string {
	j, err := input.ToJSON()
	if err != nil {
		return fmt.Sprintf("%v", input)
	}
	return string(j)
}

// Package validate implements the single JSON/Schema Validator entry point:
// parse raw LLM text as JSON, then walk the schema against the parsed value
// collecting every issue (no early exit), because feedback quality depends
// on seeing the whole picture in one retry round rather than one field at a
// time. This is a deliberate departure from the teacher's
// normalizers.SchemaValidator, whose six validation phases each return on
// the first error.
package validate

import (
	"fmt"
	"strings"

	"persuader/internal/feedback"
	"persuader/internal/introspect"
	perrors "persuader/pkg/errors"
	"persuader/pkg/issue"
	"persuader/pkg/schema"
	"persuader/pkg/value"
)

// Validate parses rawText as JSON and validates it against s, returning the
// parsed value on success or a populated *errors.ValidationError on
// failure. Component names the caller for logging/error attribution.
func Validate(s *schema.Schema, rawText, component string) (value.Value, *perrors.ValidationError) {
	trimmed := strings.TrimSpace(rawText)
	v, err := value.FromJSON([]byte(trimmed))
	if err != nil {
		return value.Value{}, perrors.NewJSONParseError(component,
			"response is not valid JSON",
			trimmed,
			err.Error(),
		)
	}

	var issues []issue.Issue
	walk(s, v, nil, &issues)
	if len(issues) == 0 {
		return v, nil
	}

	classified := make([]issue.ClassifiedIssue, len(issues))
	for i, is := range issues {
		classified[i] = introspect.Classify(is, s)
	}

	suggestions := feedback.GenerateSuggestions(issues, v)
	for _, ci := range classified {
		suggestions = append(suggestions, ci.Suggestions...)
	}
	corrections := feedback.GenerateFieldCorrections(issues)

	ve := perrors.NewSchemaValidationError(component,
		fmt.Sprintf("schema validation failed with %d issue(s)", len(issues)),
		issues, trimmed, introspect.Describe(s),
	)
	ve.Corrections = corrections
	ve.Summary = fmt.Sprintf("%d validation issue(s) found", len(issues))
	ve.WithSuggestions(suggestions...)
	return value.Value{}, ve
}

// walk traverses s against v, appending every Issue found to *out. It never
// stops early: object field validation continues across all fields even
// after one fails. Within an object, missing-field and child issues are
// appended in field order and unrecognized-key issues after them; an
// array's size issues come before its elements' issues.
func walk(s *schema.Schema, v value.Value, path []string, out *[]issue.Issue) {
	if s == nil {
		return
	}
	switch s.Kind {
	case schema.KindObject:
		walkObject(s, v, path, out)
	case schema.KindArray:
		walkArray(s, v, path, out)
	case schema.KindString:
		walkString(s, v, path, out)
	case schema.KindNumber:
		walkNumber(s, v, path, out)
	case schema.KindBoolean:
		if v.Kind() != value.KindBool {
			*out = append(*out, typeIssue(path, "boolean", v))
		}
	case schema.KindEnum:
		walkEnum(s, v, path, out)
	case schema.KindUnion:
		walkUnion(s, v, path, out)
	}
}

func walkObject(s *schema.Schema, v value.Value, path []string, out *[]issue.Issue) {
	if v.Kind() != value.KindObject {
		*out = append(*out, typeIssue(path, "object", v))
		return
	}
	fields, _, _ := v.Object()

	for _, name := range s.FieldsOrd {
		f := s.Fields[name]
		fieldPath := append(append([]string{}, path...), name)
		fv, present := fields[name]
		if !present {
			if !f.Optional {
				*out = append(*out, issue.Issue{
					Path: fieldPath, Code: issue.CodeRequiredMissing,
					Message: fmt.Sprintf("required field %q is missing", name),
				})
			}
			continue
		}
		walk(f.Schema, fv, fieldPath, out)
	}

	if s.Strict {
		known := make(map[string]bool, len(s.FieldsOrd))
		for _, name := range s.FieldsOrd {
			known[name] = true
		}
		for k := range fields {
			if !known[k] {
				*out = append(*out, issue.Issue{
					Path: append(append([]string{}, path...), k), Code: issue.CodeUnrecognizedKeys,
					Message: fmt.Sprintf("unrecognized field %q", k),
				})
			}
		}
	}
}

func walkArray(s *schema.Schema, v value.Value, path []string, out *[]issue.Issue) {
	if v.Kind() != value.KindArray {
		*out = append(*out, typeIssue(path, "array", v))
		return
	}
	items, _ := v.Array()
	if s.MinLen != nil && len(items) < *s.MinLen {
		*out = append(*out, issue.Issue{
			Path: path, Code: issue.CodeTooSmall,
			Expected: fmt.Sprintf("at least %d item(s)", *s.MinLen),
			Received: fmt.Sprintf("%d item(s)", len(items)),
			Message:  fmt.Sprintf("array has too few items (min %d)", *s.MinLen),
		})
	}
	if s.MaxLen != nil && len(items) > *s.MaxLen {
		*out = append(*out, issue.Issue{
			Path: path, Code: issue.CodeTooBig,
			Expected: fmt.Sprintf("at most %d item(s)", *s.MaxLen),
			Received: fmt.Sprintf("%d item(s)", len(items)),
			Message:  fmt.Sprintf("array has too many items (max %d)", *s.MaxLen),
		})
	}
	for i, item := range items {
		itemPath := append(append([]string{}, path...), fmt.Sprintf("[%d]", i))
		walk(s.Element, item, itemPath, out)
	}
}

func walkString(s *schema.Schema, v value.Value, path []string, out *[]issue.Issue) {
	str, ok := v.String()
	if !ok {
		*out = append(*out, typeIssue(path, "string", v))
		return
	}
	if s.MinLength != nil && len(str) < *s.MinLength {
		*out = append(*out, issue.Issue{
			Path: path, Code: issue.CodeTooSmall,
			Expected: fmt.Sprintf("at least %d character(s)", *s.MinLength),
			Received: fmt.Sprintf("%d character(s)", len(str)),
			Message:  "string is too short",
		})
	}
	if s.MaxLength != nil && len(str) > *s.MaxLength {
		*out = append(*out, issue.Issue{
			Path: path, Code: issue.CodeTooBig,
			Expected: fmt.Sprintf("at most %d character(s)", *s.MaxLength),
			Received: fmt.Sprintf("%d character(s)", len(str)),
			Message:  "string is too long",
		})
	}
	if s.Format != schema.FormatNone && !matchesFormat(s.Format, str) {
		*out = append(*out, issue.Issue{
			Path: path, Code: issue.CodeInvalidFormat,
			Expected: string(s.Format),
			Received: str,
			Message:  fmt.Sprintf("value does not match format %q", s.Format),
		})
	}
}

func matchesFormat(f schema.Format, s string) bool {
	switch f {
	case schema.FormatEmail:
		return strings.Count(s, "@") == 1 && !strings.HasPrefix(s, "@") && !strings.HasSuffix(s, "@")
	case schema.FormatURL:
		return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
	case schema.FormatUUID:
		return isUUID(s)
	default:
		return true
	}
}

func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i, c := range s {
		if i == 8 || i == 13 || i == 18 || i == 23 {
			if c != '-' {
				return false
			}
			continue
		}
		if !isHex(byte(c)) {
			return false
		}
	}
	return true
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func walkNumber(s *schema.Schema, v value.Value, path []string, out *[]issue.Issue) {
	n, ok := v.Number()
	if !ok {
		*out = append(*out, typeIssue(path, "number", v))
		return
	}
	if s.Integer && n != float64(int64(n)) {
		*out = append(*out, issue.Issue{
			Path: path, Code: issue.CodeInvalidType,
			Expected: "integer",
			Received: fmt.Sprintf("%v", n),
			Message:  "expected an integer",
		})
	}
	if s.Min != nil && n < *s.Min {
		*out = append(*out, issue.Issue{
			Path: path, Code: issue.CodeTooSmall,
			Expected: fmt.Sprintf(">= %v", *s.Min),
			Received: fmt.Sprintf("%v", n),
			Message:  "value is below the minimum",
		})
	}
	if s.Max != nil && n > *s.Max {
		*out = append(*out, issue.Issue{
			Path: path, Code: issue.CodeTooBig,
			Expected: fmt.Sprintf("<= %v", *s.Max),
			Received: fmt.Sprintf("%v", n),
			Message:  "value exceeds the maximum",
		})
	}
}

func walkEnum(s *schema.Schema, v value.Value, path []string, out *[]issue.Issue) {
	str, ok := v.String()
	if !ok {
		*out = append(*out, typeIssue(path, "string", v))
		return
	}
	for _, opt := range s.Options {
		if opt == str {
			return
		}
	}
	*out = append(*out, issue.Issue{
		Path: path, Code: issue.CodeInvalidEnum,
		Expected: strings.Join(s.Options, ", "),
		Received: str,
		Options:  s.Options,
		Message:  fmt.Sprintf("%q is not one of the allowed values", str),
	})
}

func walkUnion(s *schema.Schema, v value.Value, path []string, out *[]issue.Issue) {
	fields, _, ok := v.Object()
	if !ok {
		*out = append(*out, typeIssue(path, "object", v))
		return
	}
	discPath := append(append([]string{}, path...), s.Discriminator)
	tagVal, present := fields[s.Discriminator]
	if !present {
		*out = append(*out, issue.Issue{
			Path: discPath, Code: issue.CodeRequiredMissing,
			Message: fmt.Sprintf("discriminator field %q is missing", s.Discriminator),
		})
		return
	}
	tag, ok := tagVal.String()
	variant, known := s.Variants[tag]
	if !ok || !known {
		*out = append(*out, issue.Issue{
			Path: discPath, Code: issue.CodeInvalidValue,
			Received: fmt.Sprintf("%v", tagVal.Describe()),
			Message:  fmt.Sprintf("%q is not a recognized discriminator value", s.Discriminator),
		})
		return
	}
	walk(variant, v, path, out)
}

func typeIssue(path []string, expected string, v value.Value) issue.Issue {
	return issue.Issue{
		Path: path, Code: issue.CodeInvalidType,
		Expected: expected,
		Received: v.Kind().String(),
		Message:  fmt.Sprintf("expected %s, got %s", expected, v.Kind()),
	}
}

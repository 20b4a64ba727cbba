// Package introspect implements the Schema Introspector: describing a
// schema's shape in prose, generating a self-validating example value, and
// classifying validation issues with priority and nearest-match
// suggestions. Introspection is pure: it never fails, degrading gracefully
// on schemas it doesn't recognize.
package introspect

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"persuader/pkg/issue"
	"persuader/pkg/schema"
	"persuader/pkg/value"
)

// Describe renders a one-line human-readable description of a schema,
// grounded on the kind of summary string the teacher's schema validator
// embeds in its ValidationError.Suggestion fields, generalized into a
// stand-alone operation over the declarative tree.
func Describe(s *schema.Schema) string {
	if s == nil {
		return "value matching the specified schema"
	}
	switch s.Kind {
	case schema.KindObject:
		names := make([]string, 0, len(s.FieldsOrd))
		names = append(names, s.FieldsOrd...)
		return fmt.Sprintf("object with fields: %s", strings.Join(names, ", "))
	case schema.KindArray:
		return fmt.Sprintf("array of %s", Describe(s.Element))
	case schema.KindString:
		if s.Format != schema.FormatNone {
			return fmt.Sprintf("string (format: %s)", s.Format)
		}
		return "string"
	case schema.KindNumber:
		if s.Integer {
			return "integer"
		}
		return "number"
	case schema.KindBoolean:
		return "boolean"
	case schema.KindEnum:
		return fmt.Sprintf("enum of {%s}", strings.Join(s.Options, ", "))
	case schema.KindUnion:
		tags := make([]string, 0, len(s.Variants))
		for tag := range s.Variants {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		return fmt.Sprintf("tagged union on %q of {%s}", s.Discriminator, strings.Join(tags, ", "))
	default:
		return "value matching the specified schema"
	}
}

// Example produces a minimal value the schema accepts, by construction.
// Unknown kinds degrade to null rather than failing.
func Example(s *schema.Schema) value.Value {
	if s == nil {
		return value.Null()
	}
	switch s.Kind {
	case schema.KindObject:
		fields := make(map[string]value.Value, len(s.FieldsOrd))
		for _, name := range s.FieldsOrd {
			f := s.Fields[name]
			if f == nil || f.Optional {
				continue
			}
			fields[name] = Example(f.Schema)
		}
		keys := make([]string, 0, len(fields))
		for _, name := range s.FieldsOrd {
			if _, ok := fields[name]; ok {
				keys = append(keys, name)
			}
		}
		return value.Object(keys, fields)
	case schema.KindArray:
		minLen := 0
		if s.MinLen != nil {
			minLen = *s.MinLen
		}
		items := make([]value.Value, minLen)
		for i := range items {
			items[i] = Example(s.Element)
		}
		return value.Array(items)
	case schema.KindString:
		switch s.Format {
		case schema.FormatEmail:
			return value.String("user@example.com")
		case schema.FormatURL:
			return value.String("https://example.com")
		case schema.FormatUUID:
			return value.String("00000000-0000-0000-0000-000000000000")
		}
		minLen := 0
		if s.MinLength != nil {
			minLen = *s.MinLength
		}
		out := "example"
		for len(out) < minLen {
			out += "x"
		}
		if s.MaxLength != nil && *s.MaxLength >= 0 && len(out) > *s.MaxLength {
			out = out[:*s.MaxLength]
		}
		return value.String(out)
	case schema.KindNumber:
		n := 0.0
		if s.Min != nil && n < *s.Min {
			n = *s.Min
		}
		if s.Integer {
			n = math.Ceil(n)
		}
		if s.Max != nil && n > *s.Max {
			n = *s.Max
			if s.Integer {
				n = math.Floor(n)
			}
		}
		return value.Number(n)
	case schema.KindBoolean:
		return value.Bool(true)
	case schema.KindEnum:
		if len(s.Options) == 0 {
			return value.Null()
		}
		return value.String(s.Options[0])
	case schema.KindUnion:
		tags := make([]string, 0, len(s.Variants))
		for tag := range s.Variants {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		if len(tags) == 0 {
			return value.Object(nil, nil)
		}
		tag := tags[0]
		variant := s.Variants[tag]
		ex := Example(variant)
		fields, keys, ok := ex.Object()
		if !ok {
			fields = map[string]value.Value{}
			keys = nil
		}
		merged := make(map[string]value.Value, len(fields)+1)
		for k, v := range fields {
			merged[k] = v
		}
		merged[s.Discriminator] = value.String(tag)
		return value.Object(append([]string{s.Discriminator}, keys...), merged)
	default:
		return value.Object(nil, nil)
	}
}

// Classify attaches priority and, for an invalid_enum issue whose path
// locates an enum sub-schema, nearest-match suggestions. The located
// sub-schema is used only for that lookup and is not returned; union
// mismatches get no suggestions.
func Classify(iss issue.Issue, root *schema.Schema) issue.ClassifiedIssue {
	ci := issue.ClassifiedIssue{Issue: iss, Priority: issue.DefaultPriority(iss.Code)}
	sub := locate(root, iss.Path)
	if iss.Code == issue.CodeInvalidEnum && sub != nil && sub.Kind == schema.KindEnum {
		ci.Suggestions = nearestMatches(iss.Received, sub.Options)
	}
	return ci
}

func locate(s *schema.Schema, path []string) *schema.Schema {
	cur := s
	for _, seg := range path {
		if cur == nil {
			return nil
		}
		switch cur.Kind {
		case schema.KindObject:
			f, ok := cur.Fields[seg]
			if !ok {
				return nil
			}
			cur = f.Schema
		case schema.KindArray:
			cur = cur.Element
		default:
			return nil
		}
	}
	return cur
}

// nearestMatches returns up to 3 options whose normalized edit-distance
// similarity to received is >= 0.3, ordered by descending similarity.
func nearestMatches(received string, options []string) []string {
	type scored struct {
		opt   string
		score float64
	}
	scores := make([]scored, 0, len(options))
	for _, opt := range options {
		sc := similarity(received, opt)
		if sc >= 0.3 {
			scores = append(scores, scored{opt, sc})
		}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	out := make([]string, 0, 3)
	for i := 0; i < len(scores) && i < 3; i++ {
		out = append(out, fmt.Sprintf("Did you mean: %s", scores[i].opt))
	}
	return out
}

// similarity is 1 - (levenshtein distance / len(longer string)).
func similarity(a, b string) float64 {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	dist := levenshtein(la, lb)
	longer := len(la)
	if len(lb) > longer {
		longer = len(lb)
	}
	if longer == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(longer)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

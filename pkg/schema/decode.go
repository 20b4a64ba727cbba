package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FromJSON decodes a schema authored as a JSON file (the CLI's --schema
// flag) into a Schema tree. This is the data-file counterpart to the
// Object/ArrayOf/... constructors: callers that have a fixed Go schema
// build it in code, callers that want schemas to live outside the binary
// author them as JSON and load them here.
func FromJSON(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	normalize(&s)
	if err := validateKinds(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// normalize fills in FieldsOrd when a hand-authored file omits it, so
// describe()/example() still get a stable (if arbitrary: sorted) field
// order instead of Go's randomized map iteration.
func normalize(s *Schema) {
	if s == nil {
		return
	}
	if s.Kind == KindObject && len(s.FieldsOrd) == 0 && len(s.Fields) > 0 {
		names := make([]string, 0, len(s.Fields))
		for name := range s.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		s.FieldsOrd = names
	}
	for _, f := range s.Fields {
		if f != nil {
			normalize(f.Schema)
		}
	}
	normalize(s.Element)
	for _, v := range s.Variants {
		normalize(v)
	}
}

func validateKinds(s *Schema) error {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case KindObject, KindArray, KindString, KindNumber, KindBoolean, KindEnum, KindUnion:
	default:
		return fmt.Errorf("decode schema: unknown kind %q", s.Kind)
	}
	for name, f := range s.Fields {
		if f == nil || f.Schema == nil {
			return fmt.Errorf("decode schema: field %q has no schema", name)
		}
		if err := validateKinds(f.Schema); err != nil {
			return err
		}
	}
	if s.Element != nil {
		if err := validateKinds(s.Element); err != nil {
			return err
		}
	}
	for tag, v := range s.Variants {
		if v == nil {
			return fmt.Errorf("decode schema: variant %q has no schema", tag)
		}
		if err := validateKinds(v); err != nil {
			return err
		}
	}
	return nil
}

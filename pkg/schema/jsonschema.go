package schema

// ToJSONSchema renders a Schema tree as a plain JSON-Schema-shaped map,
// suitable for encoding/json. Built by hand against the stdlib map/JSON representation rather
// than invopop/jsonschema's reflection-based Reflector: that library
// generates a schema FROM a concrete Go struct type via reflection, which
// doesn't fit a dynamically-built Schema tree with no backing Go type.
// invopop/jsonschema is still used elsewhere (see cmd/persuade) where a
// fixed Go type is the schema source, which is the case it's built for.
func (s *Schema) ToJSONSchema() map[string]interface{} {
	if s == nil {
		return map[string]interface{}{}
	}
	out := map[string]interface{}{}
	if s.Description != "" {
		out["description"] = s.Description
	}
	switch s.Kind {
	case KindObject:
		props := map[string]interface{}{}
		required := []string{}
		for _, name := range s.FieldsOrd {
			f := s.Fields[name]
			if f == nil || f.Schema == nil {
				continue
			}
			props[name] = f.Schema.ToJSONSchema()
			if !f.Optional {
				required = append(required, name)
			}
		}
		out["type"] = "object"
		out["properties"] = props
		if len(required) > 0 {
			out["required"] = required
		}
		out["additionalProperties"] = !s.Strict
	case KindArray:
		out["type"] = "array"
		if s.Element != nil {
			out["items"] = s.Element.ToJSONSchema()
		}
		if s.MinLen != nil {
			out["minItems"] = *s.MinLen
		}
		if s.MaxLen != nil {
			out["maxItems"] = *s.MaxLen
		}
	case KindString:
		out["type"] = "string"
		if s.MinLength != nil {
			out["minLength"] = *s.MinLength
		}
		if s.MaxLength != nil {
			out["maxLength"] = *s.MaxLength
		}
		if s.Format != FormatNone {
			out["format"] = string(s.Format)
		}
	case KindNumber:
		if s.Integer {
			out["type"] = "integer"
		} else {
			out["type"] = "number"
		}
		if s.Min != nil {
			out["minimum"] = *s.Min
		}
		if s.Max != nil {
			out["maximum"] = *s.Max
		}
	case KindBoolean:
		out["type"] = "boolean"
	case KindEnum:
		opts := make([]interface{}, len(s.Options))
		for i, o := range s.Options {
			opts[i] = o
		}
		out["enum"] = opts
	case KindUnion:
		variants := make([]interface{}, 0, len(s.Variants))
		for _, v := range s.Variants {
			variants = append(variants, v.ToJSONSchema())
		}
		out["oneOf"] = variants
		if s.Discriminator != "" {
			out["discriminator"] = map[string]string{"propertyName": s.Discriminator}
		}
	}
	return out
}

// Package value defines the closed JSON value representation the runtime
// validates LLM output against. It is a sum type over the JSON kinds rather
// than bare interface{}, so schema code can switch on Kind instead of
// repeating type assertions.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind tags which JSON shape a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable JSON value. Zero value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  map[string]Value
	keys []string // insertion order, for stable round-trip
}

func Null() Value                { return Value{kind: KindNull} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Number(n float64) Value     { return Value{kind: KindNumber, n: n} }
func String(s string) Value      { return Value{kind: KindString, s: s} }
func Array(items []Value) Value  { return Value{kind: KindArray, arr: items} }

// Object builds an object value from a key-ordered slice of pairs so callers
// control field order deterministically (used by example generation).
func Object(keys []string, fields map[string]Value) Value {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Value{kind: KindObject, obj: cp, keys: append([]string(nil), keys...)}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

func (v Value) String() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) Array() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// Object returns the field map and the keys in their original order.
func (v Value) Object() (map[string]Value, []string, bool) {
	if v.kind != KindObject {
		return nil, nil, false
	}
	return v.obj, v.keys, true
}

// Get looks up an object field; ok is false if v is not an object or the key
// is absent.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	val, ok := v.obj[key]
	return val, ok
}

// FromJSON decodes raw JSON bytes into a Value. Object key order is not
// preserved (schema validation does not depend on it); keys are sorted for
// deterministic output when re-serialized.
func FromJSON(data []byte) (Value, error) {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	return fromInterface(raw), nil
}

// fromInterface converts decoded JSON (with UseNumber) into a Value.
func fromInterface(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case json.Number:
		f, _ := t.Float64()
		return Number(f)
	case float64:
		return Number(t)
	case string:
		return String(t)
	case []interface{}:
		items := make([]Value, len(t))
		for i, el := range t {
			items[i] = fromInterface(el)
		}
		return Array(items)
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		fields := make(map[string]Value, len(t))
		for k, el := range t {
			keys = append(keys, k)
			fields[k] = fromInterface(el)
		}
		sort.Strings(keys)
		return Object(keys, fields)
	default:
		return Null()
	}
}

// ToJSON serializes the value back to JSON text. Object keys are written in
// sorted order (encoding/json's map ordering), not in the stored key order.
func (v Value) ToJSON() ([]byte, error) {
	return json.Marshal(v.toInterface())
}

func (v Value) toInterface() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, el := range v.arr {
			out[i] = el.toInterface()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, el := range v.obj {
			out[k] = el.toInterface()
		}
		return out
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) { return v.ToJSON() }

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := FromJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Describe gives a short human-readable rendering, used in suggestion text
// (e.g. "string \"Good\"", "number 3.5").
func (v Value) Describe() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("boolean %v", v.b)
	case KindNumber:
		return fmt.Sprintf("number %v", v.n)
	case KindString:
		return fmt.Sprintf("string %q", v.s)
	case KindArray:
		return fmt.Sprintf("array of %d element(s)", len(v.arr))
	case KindObject:
		return fmt.Sprintf("object with %d field(s)", len(v.obj))
	default:
		return "value"
	}
}

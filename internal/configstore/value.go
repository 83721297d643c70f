package configstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the declared type of a configuration value.
type Kind int

// Value kinds. KindAny is the zero value and means "untyped": as a declared
// type it disables coercion, and a zero Value carries no value at all.
const (
	KindAny Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindObject
	KindArray
)

// String returns the lowercase name of the kind, as used in provider data
// and API payloads.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "any"
	}
}

// KindFromName parses a kind name ("string", "int", ...) as found in
// provider rows. Unrecognised names map to KindAny.
func KindFromName(name string) Kind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "string", "str":
		return KindString
	case "int", "integer":
		return KindInt
	case "float", "number", "double":
		return KindFloat
	case "bool", "boolean":
		return KindBool
	case "object", "dict", "map":
		return KindObject
	case "array", "list":
		return KindArray
	default:
		return KindAny
	}
}

// truthyStrings is the fixed set of strings coerced to boolean true.
// Comparison is case-insensitive; every other string is false.
var truthyStrings = map[string]struct{}{
	"true": {},
	"1":    {},
	"yes":  {},
	"on":   {},
}

// Value is a tagged union holding one configuration value. The zero Value
// has KindAny and represents "no value" (Any returns nil).
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
	obj  map[string]any
	arr  []any
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps a float.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// ObjectValue wraps a JSON-style object.
func ObjectValue(m map[string]any) Value { return Value{kind: KindObject, obj: m} }

// ArrayValue wraps a JSON-style array.
func ArrayValue(a []any) Value { return Value{kind: KindArray, arr: a} }

// FromAny converts an arbitrary Go value into a Value. Numeric types
// collapse to int64/float64, string slices widen to []any, and anything
// unrecognised is rendered to its string form. nil produces the zero Value.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Value{}
	case Value:
		return t
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(int64(t))
	case int8:
		return IntValue(int64(t))
	case int16:
		return IntValue(int64(t))
	case int32:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case uint:
		return IntValue(int64(t))
	case uint8:
		return IntValue(int64(t))
	case uint16:
		return IntValue(int64(t))
	case uint32:
		return IntValue(int64(t))
	case uint64:
		return IntValue(int64(t))
	case float32:
		return FloatValue(float64(t))
	case float64:
		return FloatValue(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntValue(i)
		}
		if f, err := t.Float64(); err == nil {
			return FloatValue(f)
		}
		return StringValue(t.String())
	case map[string]any:
		return ObjectValue(t)
	case []any:
		return ArrayValue(t)
	case []string:
		arr := make([]any, len(t))
		for i, s := range t {
			arr[i] = s
		}
		return ArrayValue(arr)
	default:
		return StringValue(fmt.Sprintf("%v", v))
	}
}

// Kind returns the tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether the value carries nothing (zero Value).
func (v Value) IsNil() bool { return v.kind == KindAny }

// Any unwraps the value to its plain Go representation.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindObject:
		return v.obj
	case KindArray:
		return v.arr
	default:
		return nil
	}
}

// text renders the value as a string. Scalars format directly; objects and
// arrays render as JSON. Used for masking, rule evaluation, and string
// coercion, so length rules operate on the string representation.
func (v Value) text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindObject, KindArray:
		b, err := json.Marshal(v.Any())
		if err != nil {
			return fmt.Sprintf("%v", v.Any())
		}
		return string(b)
	default:
		return ""
	}
}

// CoercionError reports a value that could not be converted to its target
// kind. Explicit writes surface it inside a ValidationError; reads log it
// and fall back to the uncoerced value.
type CoercionError struct {
	Value  any
	Target Kind
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %v (%T) to %s", e.Value, e.Value, e.Target)
}

// Coerce converts the value toward the target kind, returning a typed
// result or a *CoercionError. A KindAny target returns the value unchanged.
//
// Coercion is deliberately permissive for booleans: the fixed truthy set
// {"true","1","yes","on"} (case-insensitive) maps to true and every other
// string to false, numerics map to non-zero, so boolean coercion never
// fails on scalars.
func (v Value) Coerce(target Kind) (Value, error) {
	if target == KindAny || target == v.kind {
		return v, nil
	}
	if v.IsNil() {
		return v, &CoercionError{Value: nil, Target: target}
	}

	switch target {
	case KindString:
		return StringValue(v.text()), nil
	case KindInt:
		return v.coerceInt()
	case KindFloat:
		return v.coerceFloat()
	case KindBool:
		return v.coerceBool()
	case KindObject:
		return v.coerceObject()
	case KindArray:
		return v.coerceArray()
	default:
		return v, &CoercionError{Value: v.Any(), Target: target}
	}
}

func (v Value) coerceInt() (Value, error) {
	switch v.kind {
	case KindFloat:
		return IntValue(int64(v.f)), nil
	case KindBool:
		if v.b {
			return IntValue(1), nil
		}
		return IntValue(0), nil
	case KindString:
		i, err := strconv.ParseInt(strings.TrimSpace(v.str), 10, 64)
		if err != nil {
			return v, &CoercionError{Value: v.str, Target: KindInt}
		}
		return IntValue(i), nil
	default:
		return v, &CoercionError{Value: v.Any(), Target: KindInt}
	}
}

func (v Value) coerceFloat() (Value, error) {
	switch v.kind {
	case KindInt:
		return FloatValue(float64(v.i)), nil
	case KindBool:
		if v.b {
			return FloatValue(1), nil
		}
		return FloatValue(0), nil
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return v, &CoercionError{Value: v.str, Target: KindFloat}
		}
		return FloatValue(f), nil
	default:
		return v, &CoercionError{Value: v.Any(), Target: KindFloat}
	}
}

func (v Value) coerceBool() (Value, error) {
	switch v.kind {
	case KindString:
		_, truthy := truthyStrings[strings.ToLower(strings.TrimSpace(v.str))]
		return BoolValue(truthy), nil
	case KindInt:
		return BoolValue(v.i != 0), nil
	case KindFloat:
		return BoolValue(v.f != 0), nil
	default:
		// Everything else is falsy, matching the permissive truthy-set
		// contract.
		return BoolValue(false), nil
	}
}

func (v Value) coerceObject() (Value, error) {
	if v.kind == KindString {
		var m map[string]any
		if err := json.Unmarshal([]byte(v.str), &m); err == nil {
			return ObjectValue(m), nil
		}
	}
	return v, &CoercionError{Value: v.Any(), Target: KindObject}
}

func (v Value) coerceArray() (Value, error) {
	if v.kind == KindString {
		var a []any
		if err := json.Unmarshal([]byte(v.str), &a); err == nil {
			return ArrayValue(a), nil
		}
	}
	return v, &CoercionError{Value: v.Any(), Target: KindArray}
}

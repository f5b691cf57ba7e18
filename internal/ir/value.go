package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"unicode/utf16"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant of the Value union is populated.
type Kind uint8

const (
	// KindAbsent is the zero kind: a missing or null value.
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a sealed tagged union: string | number | bool | array | object | absent.
//
// Only the constructors in this package can build a Value. The zero Value is
// absent, so a missing struct field, a missing map key and JSON null all
// resolve to the same thing.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []Value
	obj  Object
}

// Object is a mapping of string keys to Values.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

// Absent is the explicit absent value (identical to Value{}).
var Absent = Value{}

// String creates a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number creates a numeric Value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Int creates a numeric Value from an integer.
func Int(n int) Value {
	return Value{kind: KindNumber, num: float64(n)}
}

// Bool creates a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Array creates a sequence Value. The slice is copied; an empty call yields an
// empty (non-nil) sequence.
func Array(vals ...Value) Value {
	arr := make([]Value, len(vals))
	copy(arr, vals)
	return Value{kind: KindArray, arr: arr}
}

// Strings creates a sequence Value of strings.
func Strings(ss ...string) Value {
	arr := make([]Value, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return Value{kind: KindArray, arr: arr}
}

// FromObject creates a mapping Value. The map is copied (shallowly; member
// Values are immutable).
func FromObject(obj Object) Value {
	cp := make(Object, len(obj))
	maps.Copy(cp, obj)
	return Value{kind: KindObject, obj: cp}
}

// Kind returns the populated variant.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the absent value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsZero implements the omitzero contract for encoding/json.
func (v Value) IsZero() bool { return v.kind == KindAbsent }

// Text returns the raw string if v is a string.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindString
}

// Float returns the raw number if v is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Int returns the number truncated to int if v is a number.
func (v Value) Int() (int, bool) {
	return int(v.num), v.kind == KindNumber
}

// Boolean returns the raw bool if v is a bool.
func (v Value) Boolean() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Items returns a copy of the elements if v is a sequence.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return slices.Clone(v.arr), true
}

// Len returns the element count of a sequence, the key count of a mapping,
// the rune count of a string, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	case KindString:
		return len([]rune(v.str))
	default:
		return 0
	}
}

// Fields returns a copy of the members if v is a mapping.
func (v Value) Fields() (Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return maps.Clone(v.obj), true
}

// Field returns the member named key, or Absent.
func (v Value) Field(key string) Value {
	if v.kind != KindObject {
		return Absent
	}
	return v.obj[key]
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// Get returns the member named key, or Absent for a nil or missing entry.
func (obj Object) Get(key string) Value {
	if obj == nil {
		return Absent
	}
	return obj[key]
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// FromAny converts a decoded Go value (JSON, YAML or literal) into a Value.
// nil becomes Absent.
func FromAny(x any) (Value, error) {
	switch val := x.(type) {
	case nil:
		return Absent, nil
	case Value:
		return val, nil
	case Object:
		return FromObject(val), nil
	case []Value:
		return Array(val...), nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case uint:
		return Number(float64(val)), nil
	case uint32:
		return Number(float64(val)), nil
	case uint64:
		return Number(float64(val)), nil
	case float32:
		return Number(float64(val)), nil
	case float64:
		return Number(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Absent, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return Number(f), nil
	case []string:
		return Strings(val...), nil
	case []any:
		arr := make([]Value, len(val))
		for i, elem := range val {
			v, err := FromAny(elem)
			if err != nil {
				return Absent, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = v
		}
		return Value{kind: KindArray, arr: arr}, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			v, err := FromAny(elem)
			if err != nil {
				return Absent, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = v
		}
		return Value{kind: KindObject, obj: obj}, nil
	case map[any]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return Absent, fmt.Errorf("object key %v: keys must be strings", k)
			}
			v, err := FromAny(elem)
			if err != nil {
				return Absent, fmt.Errorf("object[%q]: %w", key, err)
			}
			obj[key] = v
		}
		return Value{kind: KindObject, obj: obj}, nil
	default:
		return Absent, fmt.Errorf("unsupported type: %T", x)
	}
}

// MustFromAny is like FromAny but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFromAny(x any) Value {
	v, err := FromAny(x)
	if err != nil {
		panic(err)
	}
	return v
}

// ToAny converts a Value back to plain Go data (nil, string, float64, bool,
// []any, map[string]any).
func (v Value) ToAny() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindArray:
		out := make([]any, len(v.arr))
		for i, elem := range v.arr {
			out[i] = elem.ToAny()
		}
		return out
	case KindObject:
		return v.obj.ToAny()
	default:
		return nil
	}
}

// ToAny converts an Object to map[string]any.
func (obj Object) ToAny() map[string]any {
	out := make(map[string]any, len(obj))
	for k, elem := range obj {
		out[k] = elem.ToAny()
	}
	return out
}

// MarshalJSON implements json.Marshaler. Absent encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindAbsent:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindArray:
		return marshalArray(v.arr)
	case KindObject:
		return v.obj.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown value kind: %v", v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler. null decodes to Absent.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON implements json.Marshaler for Object with sorted keys (RFC 8785 ordering).
// NOTE: This is NOT canonical marshaling. Use MarshalCanonical for fingerprints.
func (obj Object) MarshalJSON() ([]byte, error) {
	if obj == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := obj[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalArray marshals a sequence to JSON bytes.
func marshalArray(arr []Value) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := elem.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromAny(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.ToAny(), nil
}

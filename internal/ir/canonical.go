package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for fingerprints.
// CRITICAL: This is the ONLY serialization that should be used for
// content-addressed identity computation.
//
// Key differences from standard json.Marshal:
// 1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
// 2. No HTML escaping (< > & are NOT escaped)
// 3. Strings are NFC normalized
// 4. Absent object members are omitted; absent array elements encode as null
// 5. NaN and infinities are rejected
func MarshalCanonical(v any) ([]byte, error) {
	val, err := FromAny(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: %w", err)
	}
	return marshalCanonical(val)
}

// CanonicalDocument converts any JSON-marshalable Go value into a Value by
// round-tripping it through encoding/json. Struct tags therefore decide the
// member names that end up in the canonical form.
func CanonicalDocument(v any) (Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Absent, fmt.Errorf("canonical document: %w", err)
	}
	var doc Value
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Absent, fmt.Errorf("canonical document: %w", err)
	}
	return doc, nil
}

func marshalCanonical(v Value) ([]byte, error) {
	switch v.kind {
	case KindAbsent:
		return []byte("null"), nil
	case KindString:
		return marshalCanonicalString(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("non-finite number is forbidden in canonical JSON: %v", v.num)
		}
		return []byte(formatNumber(v.num)), nil
	case KindBool:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindArray:
		return marshalCanonicalArray(v.arr)
	case KindObject:
		return marshalCanonicalObject(v.obj)
	default:
		return nil, fmt.Errorf("unsupported value kind for canonical JSON: %v", v.kind)
	}
}

// marshalCanonicalString produces canonical JSON string with NFC normalization.
// CRITICAL: RFC 8785 compliance:
// - No HTML escaping (<, >, & are NOT escaped)
// - U+2028 (LINE SEPARATOR) and U+2029 (PARAGRAPH SEPARATOR) are NOT escaped
// - Only control characters (U+0000-U+001F), backslash, and quote are escaped
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds trailing newline, remove it
	result := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})

	return unescapeU2028U2029(result), nil
}

// unescapeU2028U2029 converts \u2028 and \u2029 escape sequences to literal
// characters per RFC 8785, but preserves \\u2028/\\u2029 (escaped backslash
// followed by the text u2028/u2029).
func unescapeU2028U2029(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	result := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if i+6 <= len(data) && data[i] == '\\' && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			// An odd run of backslashes before this one means it is itself escaped.
			preceding := 0
			for j := len(result) - 1; j >= 0 && result[j] == '\\'; j-- {
				preceding++
			}
			if preceding%2 == 0 {
				if data[i+5] == '8' {
					result = append(result, "\u2028"...)
				} else {
					result = append(result, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		result = append(result, data[i])
	}
	return result
}

// marshalCanonicalArray marshals a sequence to canonical JSON.
func marshalCanonicalArray(arr []Value) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// marshalCanonicalObject marshals an object to canonical JSON with RFC 8785 key ordering.
func marshalCanonicalObject(obj Object) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	for _, k := range obj.SortedKeys() {
		if obj[k].IsAbsent() {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

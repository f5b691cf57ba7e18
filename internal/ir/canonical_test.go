package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"zero", Int(0), "0"},
		{"fraction", Number(0.25), "0.25"},
		{"large", Number(1e21), "1e+21"},
		{"small", Number(1e-7), "1e-7"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty array", Array(), "[]"},
		{"empty object", FromObject(Object{}), "{}"},
		{"array of ints", Array(Int(1), Int(2), Int(3)), "[1,2,3]"},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
		{"plain map", map[string]any{"b": "x", "a": 2}, `{"a":2,"b":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := Object{
		"z": FromObject(Object{"b": Int(1), "a": Int(2)}),
		"a": Int(3),
	}
	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalCanonicalOmitsAbsentMembers(t *testing.T) {
	obj := Object{"keep": Int(1), "drop": Absent}
	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"keep":1}`, string(result))

	result, err = MarshalCanonical(Array(Absent, Int(1)))
	require.NoError(t, err)
	assert.Equal(t, `[null,1]`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// e followed by a combining acute accent normalizes to U+00E9.
	result, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(String("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(result))

	// An escaped backslash followed by the text u2028 stays escaped.
	result, err = MarshalCanonical(String(`a\u2028b`))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(result))
}

func TestMarshalCanonicalRejectsNonFinite(t *testing.T) {
	_, err := MarshalCanonical(Number(math.NaN()))
	assert.Error(t, err)
	_, err = MarshalCanonical(Number(math.Inf(1)))
	assert.Error(t, err)
}

func TestCanonicalDocument(t *testing.T) {
	type doc struct {
		Title string `json:"title"`
		Count int    `json:"count"`
	}
	v, err := CanonicalDocument(doc{Title: "Chaos spam", Count: 3})
	require.NoError(t, err)

	result, err := MarshalCanonical(v)
	require.NoError(t, err)
	assert.Equal(t, `{"count":3,"title":"Chaos spam"}`, string(result))
}

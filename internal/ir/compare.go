package ir

import (
	"math"
	"strconv"
	"strings"
)

// Equal reports strict structural equality: same kind and same contents.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindAbsent:
		return true
	case KindString:
		return a.str == b.str
	case KindNumber:
		return a.num == b.num
	case KindBool:
		return a.b == b.b
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// LooseEqual compares with type-coercing equality rather than identity:
//   - absent equals only absent
//   - a bool operand is compared as 1/0
//   - number vs string compares numerically (so 3 == "3")
//   - arrays and objects compare structurally with each other, and by their
//     string form against primitives
func LooseEqual(a, b Value) bool {
	if a.kind == b.kind {
		return Equal(a, b)
	}
	if a.IsAbsent() || b.IsAbsent() {
		return false
	}
	if a.kind == KindBool {
		return LooseEqual(Number(a.ToNumber()), b)
	}
	if b.kind == KindBool {
		return LooseEqual(a, Number(b.ToNumber()))
	}
	if a.kind == KindNumber && b.kind == KindString || a.kind == KindString && b.kind == KindNumber {
		return a.ToNumber() == b.ToNumber()
	}
	if a.kind == KindArray || a.kind == KindObject {
		if b.kind == KindArray || b.kind == KindObject {
			return false
		}
		return LooseEqual(String(a.String()), b)
	}
	if b.kind == KindArray || b.kind == KindObject {
		return LooseEqual(a, String(b.String()))
	}
	return false
}

// ToNumber casts v to a number. Values with no numeric reading yield NaN,
// which makes every ordered comparison false.
func (v Value) ToNumber() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case KindArray:
		switch len(v.arr) {
		case 0:
			return 0
		case 1:
			return v.arr[0].ToNumber()
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

// String returns the string form of v: strings verbatim, integral numbers
// without a fraction, arrays as comma-joined elements, objects as JSON and
// absent as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, elem := range v.arr {
			parts[i] = elem.String()
		}
		return strings.Join(parts, ",")
	case KindObject:
		b, err := v.obj.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

// Truthy reports whether v reads as true: non-empty strings, non-zero
// numbers, true, and any array or object.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindBool:
		return v.b
	case KindArray, KindObject:
		return true
	default:
		return false
	}
}

// Contains reports membership for sequences (strict equality per element)
// and substring containment on string forms otherwise. An absent receiver
// contains nothing.
func (v Value) Contains(needle Value) bool {
	switch v.kind {
	case KindAbsent:
		return false
	case KindArray:
		for _, elem := range v.arr {
			if Equal(elem, needle) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(v.String(), needle.String())
	}
}

// Lookup drills into v along path. Object members are selected by key,
// sequence elements by decimal index, and "length" yields the size of a
// sequence or string. Any miss resolves to Absent; Lookup never fails.
func (v Value) Lookup(path ...string) Value {
	cur := v
	for _, seg := range path {
		switch cur.kind {
		case KindObject:
			cur = cur.obj[seg]
		case KindArray:
			if seg == "length" {
				cur = Int(len(cur.arr))
				continue
			}
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur.arr) {
				return Absent
			}
			cur = cur.arr[idx]
		case KindString:
			if seg != "length" {
				return Absent
			}
			cur = Int(len([]rune(cur.str)))
		default:
			return Absent
		}
	}
	return cur
}

// formatNumber renders integral values without a fraction and everything
// else in the shortest round-trip form.
func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 0) {
		if f > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// ECMAScript drops exponent zero padding: 1e-07 -> 1e-7
	s = strings.Replace(s, "e-0", "e-", 1)
	s = strings.Replace(s, "e+0", "e+", 1)
	return s
}

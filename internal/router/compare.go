package router

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Operator names a comparison applied to value1 and a rule's value2
type Operator string

const (
	OpEqual        Operator = "equal"
	OpNotEqual     Operator = "notEqual"
	OpContains     Operator = "contains"
	OpNotContains  Operator = "notContains"
	OpLarger       Operator = "larger"
	OpLargerEqual  Operator = "largerEqual"
	OpSmaller      Operator = "smaller"
	OpSmallerEqual Operator = "smallerEqual"
	OpRegex        Operator = "regex"
)

// compare applies op to value1 and value2.
// Mismatched runtime types never fail; they follow strict equality and
// number-coercing ordering.
func (r *Router) compare(op Operator, value1, value2 interface{}) (bool, error) {
	switch op {
	case OpEqual:
		return strictEqual(value1, value2), nil
	case OpNotEqual:
		return !strictEqual(value1, value2), nil
	case OpContains:
		return strings.Contains(stringify(value1), stringify(value2)), nil
	case OpNotContains:
		return !strings.Contains(stringify(value1), stringify(value2)), nil
	case OpLarger, OpLargerEqual, OpSmaller, OpSmallerEqual:
		return ordered(op, value1, value2), nil
	case OpRegex:
		re, err := r.pattern(stringify(value2))
		if err != nil {
			return false, err
		}
		return re.match(stringify(value1))
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownOperator, string(op))
	}
}

// strictEqual compares without coercion, except that all Go numeric kinds
// share one number domain
func strictEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	na, aNum := number(a)
	nb, bNum := number(b)
	if aNum || bNum {
		return aNum && bNum && na == nb
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}

	return false
}

// ordered evaluates the ordering operators. Two strings compare
// lexicographically; anything else is converted to a number first and the
// comparison is false if either side has no numeric value.
func ordered(op Operator, a, b interface{}) bool {
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return holds(op, strings.Compare(sa, sb))
		}
	}

	na, okA := toNumber(a)
	nb, okB := toNumber(b)
	if !okA || !okB || math.IsNaN(na) || math.IsNaN(nb) {
		return false
	}

	c := 0
	switch {
	case na < nb:
		c = -1
	case na > nb:
		c = 1
	}
	return holds(op, c)
}

func holds(op Operator, c int) bool {
	switch op {
	case OpLarger:
		return c > 0
	case OpLargerEqual:
		return c >= 0
	case OpSmaller:
		return c < 0
	case OpSmallerEqual:
		return c <= 0
	}
	return false
}

// number reports the float value of v when v is a Go numeric type
func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toNumber converts numbers, booleans (0/1), nil (0) and numeric strings
func toNumber(v interface{}) (float64, bool) {
	if n, ok := number(v); ok {
		return n, true
	}

	switch t := v.(type) {
	case nil:
		return 0, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		return parseNumber(t)
	}
	return 0, false
}

// parseNumber reads a numeric string the way JavaScript's Number() does.
// Only "Infinity" spells an infinity; "inf", "nan" and Go-only syntax such
// as digit separators have no numeric value.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0, true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}
			return float64(n), true
		}
	}

	if strings.ContainsAny(s, "_iInN") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// stringify renders a parameter value the way it is shown to users:
// integral numbers without a fraction, booleans as true/false, nil as empty.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}

	if n, ok := number(v); ok {
		switch {
		case math.IsInf(n, 1):
			return "Infinity"
		case math.IsInf(n, -1):
			return "-Infinity"
		case math.IsNaN(n):
			return "NaN"
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	}

	return fmt.Sprint(v)
}

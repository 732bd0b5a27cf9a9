package vm

import (
	"math"
	"strconv"

	"github.com/voskan/mjsvm/jsstring"
	"github.com/voskan/mjsvm/value"
)

// toNumber implements the Arithmetic/Bitwise/Compare opcodes' numeric
// coercion. Full ECMAScript ToNumber conformance is out of scope; this
// covers the cases the interpreter itself produces: numbers pass through,
// booleans become 0/1, strings parse as a JS number literal would,
// everything else (including undefined/null/objects) is NaN.
func toNumber(v value.Value) float64 {
	switch v.Kind() {
	case value.KindInt64, value.KindFloat64:
		f, _ := v.Number()
		return f
	case value.KindBoolean:
		if v.Bool() {
			return 1
		}
		return 0
	case value.KindString:
		s := jsstring.FromValue(v)
		if s == nil {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s.Data, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case value.KindNull:
		return 0
	default:
		return math.NaN()
	}
}

// toBoolean implements the truthiness rules IfEq branches on.
func toBoolean(v value.Value) bool {
	switch v.Kind() {
	case value.KindUndefined, value.KindNull:
		return false
	case value.KindBoolean:
		return v.Bool()
	case value.KindInt64, value.KindFloat64:
		f, _ := v.Number()
		return f != 0 && !math.IsNaN(f)
	case value.KindString:
		s := jsstring.FromValue(v)
		return s != nil && s.Len() > 0
	default:
		return true
	}
}

// toDisplayString implements the ToString opcode and Add's string-coercion
// branch for non-string operands.
func toDisplayString(v value.Value) string {
	switch v.Kind() {
	case value.KindString:
		if s := jsstring.FromValue(v); s != nil {
			return s.Data
		}
		return ""
	case value.KindUndefined:
		return "undefined"
	case value.KindNull:
		return "null"
	case value.KindBoolean:
		return strconv.FormatBool(v.Bool())
	case value.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case value.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case value.KindObject:
		return "[object Object]"
	default:
		return ""
	}
}

// isNumeric reports whether v is Int64 or Float64, used to pick Add's
// numeric-vs-concatenation branch.
func isNumeric(v value.Value) bool {
	return v.Kind() == value.KindInt64 || v.Kind() == value.KindFloat64
}

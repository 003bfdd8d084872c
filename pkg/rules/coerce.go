package rules

import (
	"fmt"
	"strconv"
	"strings"
)

func literalValue(tok token) any {
	switch tok.kind {
	case tokBool:
		return tok.text == "true"
	case tokNumber:
		f, _ := strconv.ParseFloat(tok.text, 64)
		return f
	case tokNull:
		return nil
	default:
		return tok.text
	}
}

// equals compares with the literal side deciding the coercion, so `x == 3`
// matches "3", 3 and 3.0 alike.
func equals(left, right operand, values map[string]any) bool {
	if !left.isIdent() && right.isIdent() {
		left, right = right, left
	}
	a := left.value(values)
	b := right.value(values)

	switch typed := b.(type) {
	case nil:
		return a == nil
	case bool:
		got, ok := toBool(a)
		return ok && got == typed
	case float64:
		got, ok := toNumber(a)
		return ok && got == typed
	}

	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			return x == y
		}
	}
	return toString(a) == toString(b)
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	if n, ok := toNumber(value); ok {
		return n != 0
	}
	return true
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, true
	case bool:
		return v, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed, true
		}
		return false, false
	}
	return truthy(value), true
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(value)
	}
}

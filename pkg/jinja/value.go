package jinja

import (
	"fmt"
	"reflect"
	"sort"
	"unicode/utf8"
)

// Values flowing through the engine are plain dynamic Go values: nil, bool,
// int, float64, string, []interface{} and map[string]interface{}. Anything
// else (other slice kinds, other numeric widths) is normalized on first use.

// undefinedValue is the result of looking up an absent variable or record
// field. It compares equal to none, is falsy, and has length 0. It is a
// distinct type so that "absent optional data" can be told apart from an
// explicit nil when needed.
type undefinedValue struct{}

// Undefined is the single undefined value.
var Undefined = undefinedValue{}

func isUndefined(v interface{}) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// isNone reports whether v is none for the purposes of 'is none': both nil
// and the undefined value qualify (equality, not identity).
func isNone(v interface{}) bool {
	return v == nil || isUndefined(v)
}

// isTruthy implements the template truth rules: none/undefined, empty
// strings, empty sequences and mappings, and numeric zero are false;
// everything else is true.
func isTruthy(v interface{}) bool {
	if isNone(v) {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return len(val) > 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len() > 0
	}
	return true
}

// lengthOf returns the element count of a sequence or mapping, the character
// count of a string, and 0 for none/undefined. ok is false for values that
// have no length.
func lengthOf(v interface{}) (n int, ok bool) {
	if isNone(v) {
		return 0, true
	}
	switch val := v.(type) {
	case string:
		return utf8.RuneCountInString(val), true
	case []interface{}:
		return len(val), true
	case map[string]interface{}:
		return len(val), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len(), true
	}
	return 0, false
}

// attrOf looks up a named field on a record value. Missing fields and
// non-record bases yield Undefined, never an error: optional documentation
// fields are tested with 'is none' and must not crash the render.
func attrOf(base interface{}, name string) interface{} {
	switch val := base.(type) {
	case map[string]interface{}:
		if v, ok := val[name]; ok {
			return v
		}
		return Undefined
	case map[string]string:
		if v, ok := val[name]; ok {
			return v
		}
		return Undefined
	}
	return Undefined
}

// indexOf looks up an element by index or key. Out-of-range indexes and
// missing keys yield Undefined.
func indexOf(base, index interface{}) interface{} {
	switch val := base.(type) {
	case []interface{}:
		i, ok := toInt(index)
		if !ok {
			return Undefined
		}
		if i < 0 {
			i += len(val)
		}
		if i < 0 || i >= len(val) {
			return Undefined
		}
		return val[i]
	case map[string]interface{}:
		if key, ok := index.(string); ok {
			return attrOf(val, key)
		}
	case string:
		i, ok := toInt(index)
		if !ok {
			return Undefined
		}
		runes := []rune(val)
		if i < 0 {
			i += len(runes)
		}
		if i < 0 || i >= len(runes) {
			return Undefined
		}
		return string(runes[i])
	}
	return Undefined
}

// toInt reports a value as an int where possible.
func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	}
	return 0, false
}

// toFloat reports a value as a float64 where possible.
func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	}
	return 0, false
}

// toList converts sequence-shaped values into []interface{} for iteration.
// Mappings iterate over their values in lexicographic key order so renders
// are deterministic. Strings iterate per character.
func toList(v interface{}) ([]interface{}, bool) {
	switch val := v.(type) {
	case []interface{}:
		return val, true
	case []string:
		out := make([]interface{}, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]interface{}, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out, true
	case map[string]interface{}:
		out := make([]interface{}, 0, len(val))
		for _, k := range sortedKeys(val) {
			out = append(out, val[k])
		}
		return out, true
	case string:
		out := make([]interface{}, 0, utf8.RuneCountInString(val))
		for _, r := range val {
			out = append(out, string(r))
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// toPairs converts a mapping into key/value pairs in lexicographic key
// order, for {% for key, value in mapping %} loops.
func toPairs(v interface{}) ([][2]interface{}, bool) {
	var m map[string]interface{}
	switch val := v.(type) {
	case map[string]interface{}:
		m = val
	case map[string]string:
		m = make(map[string]interface{}, len(val))
		for k, s := range val {
			m[k] = s
		}
	default:
		return nil, false
	}
	out := make([][2]interface{}, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, [2]interface{}{k, m[k]})
	}
	return out, true
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// valuesEqual implements == and != over template values. Undefined and nil
// are equal to each other; numbers compare numerically across int and float.
func valuesEqual(a, b interface{}) bool {
	if isNone(a) || isNone(b) {
		return isNone(a) && isNone(b)
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// compareValues implements the ordered comparisons. Strings compare
// lexicographically by code point, numbers numerically. ok is false when the
// two values have no common order.
func compareValues(a, b interface{}) (cmp int, ok bool) {
	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		if !bok {
			return 0, false
		}
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		}
		return 0, true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	}
	return 0, true
}

// formatValue renders a value for text output. Undefined and nil emit
// nothing, matching how optional fields behave in reference templates.
func formatValue(v interface{}) string {
	if isNone(v) {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "True"
		}
		return "False"
	}
	return fmt.Sprintf("%v", v)
}

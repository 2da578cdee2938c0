package weft

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Symbol is an atom-like value, written :name in templates. Map keys may be
// symbols as well as strings; lookups fall back from the string key to its
// symbol equivalent.
type Symbol string

// Runtime values are plain Go values: nil, bool, int, float64, string,
// Symbol, []interface{} lists, and map[string]interface{} or
// map[interface{}]interface{} maps.

// isTruthy is the strict truthiness regime used by `and`, `or`, `not`, and
// if/elsif conditions: false, null, 0, 0.0, "", empty list, and empty map
// are falsy.
func isTruthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	case Symbol:
		return true
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	case map[interface{}]interface{}:
		return len(v) > 0
	default:
		return true
	}
}

// isLooseTruthy is the value-preserving regime used by && and ||: only
// false and null are falsy.
func isLooseTruthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}

// typeName names a value's type in error messages.
func typeName(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int:
		return "integer"
	case float64:
		return "float"
	case string:
		return "string"
	case Symbol:
		return "symbol"
	case []interface{}:
		return "list"
	case map[string]interface{}, map[interface{}]interface{}:
		return "map"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// stringify converts a value to its rendered text form: null renders as the
// empty string, integral floats keep one decimal, symbols print their bare
// name, and collections use inspect form.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return formatFloat(v)
	case string:
		return v
	case Symbol:
		return string(v)
	case []interface{}, map[string]interface{}, map[interface{}]interface{}:
		return inspect(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Inspect renders a value in template-literal form: strings quoted, symbols
// as :name, lists bracketed, maps braced with sorted keys. It is the
// preserve-types display format.
func Inspect(value interface{}) string {
	return inspect(value)
}

// inspect renders a value the way it would be written in a template:
// strings quoted, symbols in :name form, lists bracketed, map keys sorted
// for deterministic output.
func inspect(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case Symbol:
		return ":" + string(v)
	case []interface{}:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = inspect(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strconv.Quote(k) + ": " + inspect(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case map[interface{}]interface{}:
		type entry struct{ key, text string }
		entries := make([]entry, 0, len(v))
		for k, val := range v {
			entries = append(entries, entry{inspect(k), inspect(k) + ": " + inspect(val)})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = e.text
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return stringify(v)
	}
}

// formatFloat prints integral floats with one decimal (10 / 2 renders as
// "5.0") and everything else in shortest round-trip form.
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// valuesEqual implements == and !=: strict type-and-value equality with no
// cross-type coercion. An integer never equals a float or a string of the
// same digits. Lists and maps compare structurally. Never errors.
func valuesEqual(left, right interface{}) bool {
	switch l := left.(type) {
	case nil:
		return right == nil
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	case int:
		r, ok := right.(int)
		return ok && l == r
	case float64:
		r, ok := right.(float64)
		return ok && l == r
	case string:
		r, ok := right.(string)
		return ok && l == r
	case Symbol:
		r, ok := right.(Symbol)
		return ok && l == r
	case []interface{}:
		r, ok := right.([]interface{})
		if !ok || len(l) != len(r) {
			return false
		}
		for i := range l {
			if !valuesEqual(l[i], r[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		r, ok := right.(map[string]interface{})
		if !ok || len(l) != len(r) {
			return false
		}
		for k, lv := range l {
			rv, present := r[k]
			if !present || !valuesEqual(lv, rv) {
				return false
			}
		}
		return true
	case map[interface{}]interface{}:
		r, ok := right.(map[interface{}]interface{})
		if !ok || len(l) != len(r) {
			return false
		}
		for k, lv := range l {
			rv, present := r[k]
			if !present || !valuesEqual(lv, rv) {
				return false
			}
		}
		return true
	default:
		return left == right
	}
}

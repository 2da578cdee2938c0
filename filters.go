package weft

import (
	"fmt"
	"math"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// FilterFunc is a pure filter implementation: it receives the pipe subject
// and the remaining call arguments and returns a new value. Filters must
// not mutate their inputs.
type FilterFunc func(subject interface{}, args []interface{}) (interface{}, error)

// Registry maps filter names to implementations. The default registry is
// populated once at startup and is read-only during rendering, so a single
// registry is safe to share across concurrent renders.
type Registry struct {
	filters map[string]FilterFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{filters: make(map[string]FilterFunc)}
}

// Register binds a name to an implementation, replacing any previous
// binding. Call it during setup, not concurrently with rendering.
func (r *Registry) Register(name string, fn FilterFunc) {
	r.filters[name] = fn
}

// Lookup resolves a filter by name.
func (r *Registry) Lookup(name string) (FilterFunc, bool) {
	fn, ok := r.filters[name]
	return fn, ok
}

// Apply resolves and invokes a filter. An unresolved name is a runtime
// error; an error raised inside the implementation is wrapped, naming the
// filter.
func (r *Registry) Apply(name string, subject interface{}, args []interface{}) (interface{}, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, runtimeErrorf("unknown filter '%s'", name)
	}
	result, err := fn(subject, args)
	if err != nil {
		return nil, runtimeErrorf("filter '%s': %v", name, err)
	}
	return result, nil
}

// DefaultRegistry holds the built-in filters, grouped by category. It is
// never mutated after package init.
var DefaultRegistry = newBuiltinRegistry()

func newBuiltinRegistry() *Registry {
	r := NewRegistry()

	// string
	r.Register("upper", upperFilter)
	r.Register("lower", lowerFilter)
	r.Register("capitalize", capitalizeFilter)
	r.Register("trim", trimFilter)
	r.Register("replace", replaceFilter)
	r.Register("split", splitFilter)
	r.Register("version_compare", versionCompareFilter)
	r.Register("version_matches", versionMatchesFilter)

	// number
	r.Register("abs", absFilter)
	r.Register("round", roundFilter)
	r.Register("floor", floorFilter)
	r.Register("ceil", ceilFilter)

	// math
	r.Register("min", minFilter)
	r.Register("max", maxFilter)
	r.Register("sum", sumFilter)

	// collection
	r.Register("first", firstFilter)
	r.Register("last", lastFilter)
	r.Register("size", sizeFilter)
	r.Register("join", joinFilter)
	r.Register("reverse", reverseFilter)
	r.Register("uniq", uniqFilter)
	r.Register("compact", compactFilter)
	r.Register("contains", containsFilter)
	r.Register("default", defaultFilter)

	return r
}

func upperFilter(subject interface{}, args []interface{}) (interface{}, error) {
	return strings.ToUpper(stringify(subject)), nil
}

func lowerFilter(subject interface{}, args []interface{}) (interface{}, error) {
	return strings.ToLower(stringify(subject)), nil
}

func capitalizeFilter(subject interface{}, args []interface{}) (interface{}, error) {
	s := stringify(subject)
	if s == "" {
		return "", nil
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:]), nil
}

// trimFilter removes leading/trailing whitespace, or the characters of an
// optional cutset argument.
func trimFilter(subject interface{}, args []interface{}) (interface{}, error) {
	s := stringify(subject)
	if len(args) == 0 {
		return strings.TrimSpace(s), nil
	}
	cutset, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("cutset must be a string, got %s", typeName(args[0]))
	}
	return strings.Trim(s, cutset), nil
}

func replaceFilter(subject interface{}, args []interface{}) (interface{}, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("replace requires an old and a new substring")
	}
	old, ok1 := args[0].(string)
	new, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("replace arguments must be strings")
	}
	return strings.ReplaceAll(stringify(subject), old, new), nil
}

func splitFilter(subject interface{}, args []interface{}) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("split requires a separator")
	}
	sep, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("separator must be a string, got %s", typeName(args[0]))
	}
	parts := strings.Split(stringify(subject), sep)
	out := make([]interface{}, len(parts))
	for i, part := range parts {
		out[i] = part
	}
	return out, nil
}

// versionCompareFilter compares two semantic version strings, returning
// -1, 0, or 1.
func versionCompareFilter(subject interface{}, args []interface{}) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("version_compare requires a version to compare against")
	}
	left, err := parseVersionArg(subject)
	if err != nil {
		return nil, err
	}
	right, err := parseVersionArg(args[0])
	if err != nil {
		return nil, err
	}
	return left.Compare(right), nil
}

// versionMatchesFilter checks a version string against a constraint like
// ">= 1.2, < 2.0".
func versionMatchesFilter(subject interface{}, args []interface{}) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("version_matches requires a constraint")
	}
	v, err := parseVersionArg(subject)
	if err != nil {
		return nil, err
	}
	raw, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("constraint must be a string, got %s", typeName(args[0]))
	}
	constraint, err := goversion.NewConstraint(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid constraint %q: %v", raw, err)
	}
	return constraint.Check(v), nil
}

func parseVersionArg(value interface{}) (*goversion.Version, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("version must be a string, got %s", typeName(value))
	}
	v, err := goversion.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %v", s, err)
	}
	return v, nil
}

func absFilter(subject interface{}, args []interface{}) (interface{}, error) {
	switch v := subject.(type) {
	case int:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	case float64:
		return math.Abs(v), nil
	default:
		return nil, fmt.Errorf("abs requires a number, got %s", typeName(subject))
	}
}

// roundFilter rounds to the nearest integer, or to an optional number of
// decimal places.
func roundFilter(subject interface{}, args []interface{}) (interface{}, error) {
	f, ok := toFloat(subject)
	if !ok {
		return nil, fmt.Errorf("round requires a number, got %s", typeName(subject))
	}
	if len(args) == 0 {
		return int(math.Round(f)), nil
	}
	places, ok := args[0].(int)
	if !ok {
		return nil, fmt.Errorf("precision must be an integer, got %s", typeName(args[0]))
	}
	scale := math.Pow(10, float64(places))
	return math.Round(f*scale) / scale, nil
}

func floorFilter(subject interface{}, args []interface{}) (interface{}, error) {
	f, ok := toFloat(subject)
	if !ok {
		return nil, fmt.Errorf("floor requires a number, got %s", typeName(subject))
	}
	return int(math.Floor(f)), nil
}

func ceilFilter(subject interface{}, args []interface{}) (interface{}, error) {
	f, ok := toFloat(subject)
	if !ok {
		return nil, fmt.Errorf("ceil requires a number, got %s", typeName(subject))
	}
	return int(math.Ceil(f)), nil
}

func minFilter(subject interface{}, args []interface{}) (interface{}, error) {
	return extremum("min", subject, func(a, b float64) bool { return a < b })
}

func maxFilter(subject interface{}, args []interface{}) (interface{}, error) {
	return extremum("max", subject, func(a, b float64) bool { return a > b })
}

// extremum scans a list of numbers keeping the best element, preserving its
// original int/float type.
func extremum(name string, subject interface{}, better func(a, b float64) bool) (interface{}, error) {
	items, ok := subject.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s requires a list, got %s", name, typeName(subject))
	}
	if len(items) == 0 {
		return nil, nil
	}
	best := items[0]
	bestF, ok := toFloat(best)
	if !ok {
		return nil, fmt.Errorf("%s requires numbers, got %s", name, typeName(best))
	}
	for _, item := range items[1:] {
		f, ok := toFloat(item)
		if !ok {
			return nil, fmt.Errorf("%s requires numbers, got %s", name, typeName(item))
		}
		if better(f, bestF) {
			best, bestF = item, f
		}
	}
	return best, nil
}

// sumFilter adds a list of numbers: int unless any element is a float.
func sumFilter(subject interface{}, args []interface{}) (interface{}, error) {
	items, ok := subject.([]interface{})
	if !ok {
		return nil, fmt.Errorf("sum requires a list, got %s", typeName(subject))
	}
	intSum := 0
	floatSum := 0.0
	sawFloat := false
	for _, item := range items {
		switch v := item.(type) {
		case int:
			intSum += v
		case float64:
			floatSum += v
			sawFloat = true
		default:
			return nil, fmt.Errorf("sum requires numbers, got %s", typeName(item))
		}
	}
	if sawFloat {
		return float64(intSum) + floatSum, nil
	}
	return intSum, nil
}

func firstFilter(subject interface{}, args []interface{}) (interface{}, error) {
	items, ok := subject.([]interface{})
	if !ok {
		return nil, fmt.Errorf("first requires a list, got %s", typeName(subject))
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

func lastFilter(subject interface{}, args []interface{}) (interface{}, error) {
	items, ok := subject.([]interface{})
	if !ok {
		return nil, fmt.Errorf("last requires a list, got %s", typeName(subject))
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[len(items)-1], nil
}

func sizeFilter(subject interface{}, args []interface{}) (interface{}, error) {
	switch v := subject.(type) {
	case nil:
		return 0, nil
	case string:
		return len(v), nil
	case []interface{}:
		return len(v), nil
	case map[string]interface{}:
		return len(v), nil
	case map[interface{}]interface{}:
		return len(v), nil
	default:
		return nil, fmt.Errorf("size requires a string, list, or map, got %s", typeName(subject))
	}
}

func joinFilter(subject interface{}, args []interface{}) (interface{}, error) {
	items, ok := subject.([]interface{})
	if !ok {
		return nil, fmt.Errorf("join requires a list, got %s", typeName(subject))
	}
	sep := ""
	if len(args) > 0 {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("separator must be a string, got %s", typeName(args[0]))
		}
		sep = s
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = stringify(item)
	}
	return strings.Join(parts, sep), nil
}

func reverseFilter(subject interface{}, args []interface{}) (interface{}, error) {
	items, ok := subject.([]interface{})
	if !ok {
		return nil, fmt.Errorf("reverse requires a list, got %s", typeName(subject))
	}
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out, nil
}

func uniqFilter(subject interface{}, args []interface{}) (interface{}, error) {
	items, ok := subject.([]interface{})
	if !ok {
		return nil, fmt.Errorf("uniq requires a list, got %s", typeName(subject))
	}
	var out []interface{}
	for _, item := range items {
		seen := false
		for _, kept := range out {
			if valuesEqual(item, kept) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, item)
		}
	}
	if out == nil {
		out = []interface{}{}
	}
	return out, nil
}

func compactFilter(subject interface{}, args []interface{}) (interface{}, error) {
	items, ok := subject.([]interface{})
	if !ok {
		return nil, fmt.Errorf("compact requires a list, got %s", typeName(subject))
	}
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}
	return out, nil
}

func containsFilter(subject interface{}, args []interface{}) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("contains requires an item to look for")
	}
	switch v := subject.(type) {
	case string:
		needle, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("contains on a string requires a string argument, got %s", typeName(args[0]))
		}
		return strings.Contains(v, needle), nil
	case []interface{}:
		for _, item := range v {
			if valuesEqual(item, args[0]) {
				return true, nil
			}
		}
		return false, nil
	default:
		return nil, fmt.Errorf("contains requires a string or list, got %s", typeName(subject))
	}
}

// defaultFilter substitutes a fallback for null, false, and empty strings.
func defaultFilter(subject interface{}, args []interface{}) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("default requires a fallback value")
	}
	switch v := subject.(type) {
	case nil:
		return args[0], nil
	case bool:
		if !v {
			return args[0], nil
		}
	case string:
		if v == "" {
			return args[0], nil
		}
	}
	return subject, nil
}

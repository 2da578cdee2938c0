package weft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyFilter(t *testing.T, name string, subject interface{}, args ...interface{}) (interface{}, error) {
	t.Helper()
	return DefaultRegistry.Apply(name, subject, args)
}

func TestStringFilters(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		subject interface{}
		args    []interface{}
		want    interface{}
		wantErr string
	}{
		{name: "upper", filter: "upper", subject: "abc", want: "ABC"},
		{name: "upper stringifies numbers", filter: "upper", subject: 10, want: "10"},
		{name: "lower", filter: "lower", subject: "AbC", want: "abc"},
		{name: "capitalize", filter: "capitalize", subject: "hELLO", want: "Hello"},
		{name: "capitalize empty", filter: "capitalize", subject: "", want: ""},
		{name: "trim whitespace", filter: "trim", subject: "  x \n", want: "x"},
		{name: "trim cutset", filter: "trim", subject: "--x--",
			args: []interface{}{"-"}, want: "x"},
		{name: "trim bad cutset", filter: "trim", subject: "x",
			args: []interface{}{1}, wantErr: "cutset must be a string"},
		{name: "replace", filter: "replace", subject: "a-b-c",
			args: []interface{}{"-", "."}, want: "a.b.c"},
		{name: "replace missing args", filter: "replace", subject: "x",
			args: []interface{}{"-"}, wantErr: "replace requires"},
		{name: "split", filter: "split", subject: "a,b,c",
			args: []interface{}{","}, want: []interface{}{"a", "b", "c"}},
		{name: "split no separator arg", filter: "split", subject: "x",
			wantErr: "split requires a separator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyFilter(t, tt.filter, tt.subject, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionFilters(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		subject interface{}
		arg     interface{}
		want    interface{}
		wantErr string
	}{
		{name: "compare older", filter: "version_compare", subject: "1.2.3", arg: "1.10.0", want: -1},
		{name: "compare equal", filter: "version_compare", subject: "2.0", arg: "2.0.0", want: 0},
		{name: "compare newer", filter: "version_compare", subject: "2.1", arg: "2.0.9", want: 1},
		{name: "compare invalid version", filter: "version_compare", subject: "not-a-version",
			arg: "1.0", wantErr: "invalid version"},
		{name: "compare non-string", filter: "version_compare", subject: 1,
			arg: "1.0", wantErr: "version must be a string"},
		{name: "matches constraint", filter: "version_matches", subject: "1.4.2",
			arg: ">= 1.2, < 2.0", want: true},
		{name: "misses constraint", filter: "version_matches", subject: "2.1.0",
			arg: ">= 1.2, < 2.0", want: false},
		{name: "invalid constraint", filter: "version_matches", subject: "1.0",
			arg: "not a constraint", wantErr: "invalid constraint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyFilter(t, tt.filter, tt.subject, tt.arg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumberFilters(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		subject interface{}
		args    []interface{}
		want    interface{}
		wantErr string
	}{
		{name: "abs negative int", filter: "abs", subject: -5, want: 5},
		{name: "abs positive int", filter: "abs", subject: 5, want: 5},
		{name: "abs float", filter: "abs", subject: -2.5, want: 2.5},
		{name: "abs non-number", filter: "abs", subject: "x", wantErr: "abs requires a number"},
		{name: "round to int", filter: "round", subject: 2.6, want: 3},
		{name: "round half up", filter: "round", subject: 2.5, want: 3},
		{name: "round to places", filter: "round", subject: 2.348,
			args: []interface{}{2}, want: 2.35},
		{name: "floor", filter: "floor", subject: 2.9, want: 2},
		{name: "floor negative", filter: "floor", subject: -2.1, want: -3},
		{name: "ceil", filter: "ceil", subject: 2.1, want: 3},
		{name: "ceil int passthrough", filter: "ceil", subject: 4, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyFilter(t, tt.filter, tt.subject, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMathFilters(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		subject interface{}
		want    interface{}
		wantErr string
	}{
		{name: "min", filter: "min", subject: []interface{}{3, 1, 2}, want: 1},
		{name: "min keeps element type", filter: "min", subject: []interface{}{2, 1.5}, want: 1.5},
		{name: "min empty list", filter: "min", subject: []interface{}{}, want: nil},
		{name: "max", filter: "max", subject: []interface{}{3, 1, 2}, want: 3},
		{name: "max non-number element", filter: "max", subject: []interface{}{1, "x"},
			wantErr: "max requires numbers"},
		{name: "sum ints stay int", filter: "sum", subject: []interface{}{1, 2, 3}, want: 6},
		{name: "sum with float promotes", filter: "sum", subject: []interface{}{1, 0.5}, want: 1.5},
		{name: "sum empty list", filter: "sum", subject: []interface{}{}, want: 0},
		{name: "sum non-list", filter: "sum", subject: 5, wantErr: "sum requires a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyFilter(t, tt.filter, tt.subject)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollectionFilters(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		subject interface{}
		args    []interface{}
		want    interface{}
		wantErr string
	}{
		{name: "first", filter: "first", subject: []interface{}{1, 2}, want: 1},
		{name: "first of empty", filter: "first", subject: []interface{}{}, want: nil},
		{name: "last", filter: "last", subject: []interface{}{1, 2}, want: 2},
		{name: "size of list", filter: "size", subject: []interface{}{1, 2, 3}, want: 3},
		{name: "size of string", filter: "size", subject: "abcd", want: 4},
		{name: "size of map", filter: "size",
			subject: map[string]interface{}{"a": 1}, want: 1},
		{name: "size of null", filter: "size", subject: nil, want: 0},
		{name: "size of number errors", filter: "size", subject: 5,
			wantErr: "size requires"},
		{name: "join", filter: "join", subject: []interface{}{1, "a", true},
			args: []interface{}{"-"}, want: "1-a-true"},
		{name: "join default separator", filter: "join",
			subject: []interface{}{"a", "b"}, want: "ab"},
		{name: "reverse", filter: "reverse", subject: []interface{}{1, 2, 3},
			want: []interface{}{3, 2, 1}},
		{name: "uniq", filter: "uniq", subject: []interface{}{1, 2, 1, 3, 2},
			want: []interface{}{1, 2, 3}},
		{name: "uniq is type strict", filter: "uniq", subject: []interface{}{1, 1.0, "1"},
			want: []interface{}{1, 1.0, "1"}},
		{name: "compact", filter: "compact", subject: []interface{}{1, nil, 2, nil},
			want: []interface{}{1, 2}},
		{name: "contains in list", filter: "contains", subject: []interface{}{1, 2},
			args: []interface{}{2}, want: true},
		{name: "contains type strict", filter: "contains", subject: []interface{}{1},
			args: []interface{}{1.0}, want: false},
		{name: "contains in string", filter: "contains", subject: "hello",
			args: []interface{}{"ell"}, want: true},
		{name: "default replaces null", filter: "default", subject: nil,
			args: []interface{}{"fb"}, want: "fb"},
		{name: "default replaces false", filter: "default", subject: false,
			args: []interface{}{"fb"}, want: "fb"},
		{name: "default replaces empty string", filter: "default", subject: "",
			args: []interface{}{"fb"}, want: "fb"},
		{name: "default keeps zero", filter: "default", subject: 0,
			args: []interface{}{"fb"}, want: 0},
		{name: "default keeps value", filter: "default", subject: "x",
			args: []interface{}{"fb"}, want: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyFilter(t, tt.filter, tt.subject, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryLookupAndOverride(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Lookup("upper")
	assert.False(t, ok)

	reg.Register("echo", func(subject interface{}, args []interface{}) (interface{}, error) {
		return subject, nil
	})
	fn, ok := reg.Lookup("echo")
	require.True(t, ok)
	got, err := fn("x", nil)
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	// Re-registering replaces the binding.
	reg.Register("echo", func(subject interface{}, args []interface{}) (interface{}, error) {
		return "replaced", nil
	})
	got, err = reg.Apply("echo", "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "replaced", got)
}

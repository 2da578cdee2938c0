package weft

import "fmt"

// ErrorKind distinguishes the two failure classes of the engine.
type ErrorKind int

const (
	// ParseError marks a grammar failure. These are almost entirely
	// self-healing: a malformed span degrades to literal text instead of
	// failing the compile, so callers rarely observe this kind.
	ParseError ErrorKind = iota
	// RuntimeError marks an evaluation failure. Runtime errors abort the
	// whole render; no partial output is produced.
	RuntimeError
)

func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "parse"
	case RuntimeError:
		return "runtime"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by the engine.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// runtimeErrorf builds a RuntimeError with fmt.Sprintf formatting.
func runtimeErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: RuntimeError, Message: fmt.Sprintf(format, args...)}
}

// parseErrorf builds a ParseError. It is used inside span parsing, where it
// is caught at the span boundary and converted back to literal text.
func parseErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: ParseError, Message: fmt.Sprintf(format, args...)}
}

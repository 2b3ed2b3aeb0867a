package fncall

import (
	"reflect"
	"runtime"
	"strings"
)

// Metadata describes an AI-callable function to the model. Name and
// Description are advertised in the tool schema; AutoRetry and
// WaitForResponse are intent flags read by the orchestrator, never acted on
// by this package.
//
// Annotate is the canonical constructor: it defaults WaitForResponse to true
// and Name to the function's own name. A Metadata literal is taken verbatim,
// so its zero WaitForResponse means false.
type Metadata struct {
	Name            string
	Description     string
	AutoRetry       bool
	WaitForResponse bool
}

// Candidate pairs a callable with its metadata. The callable is carried
// unchanged, so call sites keep using the original function value. A
// Candidate with nil Meta is skipped at registration with a warning.
//
// The callable must have one of these forms:
//
//	func(ctx context.Context) error
//	func(ctx context.Context) (R, error)
//	func(ctx context.Context, args T) error
//	func(ctx context.Context, args T) (R, error)
//
// where T is a struct whose exported fields declare the arguments.
type Candidate struct {
	Fn   any
	Meta *Metadata
}

// Annotate attaches metadata to fn. The name defaults to fn's own name when
// WithName is not given. A missing description is not an error here; it is
// reported as ErrMissingDescription when the candidate is registered.
func Annotate(fn any, opts ...Option) Candidate {
	m := Metadata{WaitForResponse: true}
	for _, opt := range opts {
		opt(&m)
	}
	if m.Name == "" {
		m.Name = funcName(fn)
	}
	return Candidate{Fn: fn, Meta: &m}
}

// funcName returns the bare name of fn, or "" when fn is not a function.
func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return ""
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return ""
	}
	name := rf.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	// method values carry a -fm suffix
	return strings.TrimSuffix(name, "-fm")
}

// ToolCall is a single sanitized invocation request, as produced by
// Registry.NewCall from a model's tool call. Arguments holds only declared
// keys with canonical Go types (string, int64, float64, bool, []any).
type ToolCall struct {
	ID           string
	Fnc          *FunctionSchema
	RawArguments string
	Arguments    map[string]any
}

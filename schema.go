package fncall

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ArgSchema describes one declared argument: its resolved shape, optional
// description and choices, and its default when the declaration carries one.
// An argument without a default is required.
type ArgSchema struct {
	Name        string
	Description string
	Shape       Shape
	Default     any
	HasDefault  bool
	Choices     []any

	index []int // struct field index for binding
}

// Required reports whether the argument must be present in a tool call.
func (a ArgSchema) Required() bool { return !a.HasDefault }

// FunctionSchema is the immutable record the registry keeps per function:
// metadata plus the resolved argument schemas in declaration order. It is
// created once during registry construction and read-only afterwards.
type FunctionSchema struct {
	Name            string
	Description     string
	AutoRetry       bool
	WaitForResponse bool
	Arguments       []ArgSchema

	fn       reflect.Value
	argsType reflect.Type // nil when the function takes no arguments
}

// Argument returns the schema of the named argument.
func (f *FunctionSchema) Argument(name string) (ArgSchema, bool) {
	for _, arg := range f.Arguments {
		if arg.Name == name {
			return arg, true
		}
	}
	return ArgSchema{}, false
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// newFunctionSchema validates a candidate's metadata and signature and builds
// its immutable schema record.
func newFunctionSchema(c Candidate) (*FunctionSchema, error) {
	m := c.Meta
	if m.Description == "" {
		return nil, &RegistrationError{Fnc: m.Name, Reason: "description is required", Err: ErrMissingDescription}
	}
	fv := reflect.ValueOf(c.Fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, &RegistrationError{Fnc: m.Name, Reason: "candidate is not a function", Err: ErrInvalidSignature}
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, &RegistrationError{Fnc: m.Name, Reason: "variadic parameters are not supported", Err: ErrInvalidSignature}
	}
	if ft.NumIn() < 1 || ft.NumIn() > 2 || ft.In(0) != contextType {
		return nil, &RegistrationError{Fnc: m.Name, Reason: "function must be func(ctx context.Context[, args struct]) ([result,] error)", Err: ErrInvalidSignature}
	}
	if ft.NumOut() < 1 || ft.NumOut() > 2 || ft.Out(ft.NumOut()-1) != errorType {
		return nil, &RegistrationError{Fnc: m.Name, Reason: "function must return an error as its last result", Err: ErrInvalidSignature}
	}
	fs := &FunctionSchema{
		Name:            m.Name,
		Description:     m.Description,
		AutoRetry:       m.AutoRetry,
		WaitForResponse: m.WaitForResponse,
		fn:              fv,
	}
	if ft.NumIn() == 2 {
		at := ft.In(1)
		if at.Kind() != reflect.Struct {
			return nil, &RegistrationError{Fnc: m.Name, Reason: fmt.Sprintf("arguments parameter must be a struct, got %s", at), Err: ErrInvalidSignature}
		}
		args, err := buildArgSchemas(m.Name, at)
		if err != nil {
			return nil, err
		}
		fs.argsType = at
		fs.Arguments = args
	}
	return fs, nil
}

// buildArgSchemas resolves each exported field of the argument struct into an
// ArgSchema. Field names come from the json tag, descriptions and choices
// from desc/choices tags, defaults from the default tag.
func buildArgSchemas(fnc string, t reflect.Type) ([]ArgSchema, error) {
	args := make([]ArgSchema, 0, t.NumField())
	seen := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if _, dup := seen[name]; dup {
			return nil, &RegistrationError{Fnc: fnc, Reason: fmt.Sprintf("argument %q declared twice", name), Err: ErrInvalidSignature}
		}
		seen[name] = struct{}{}

		shape, choices, err := resolveType(f.Type)
		if err != nil {
			return nil, &RegistrationError{Fnc: fnc, Reason: fmt.Sprintf("argument %q: %s", name, err), Err: err}
		}
		if tag, ok := f.Tag.Lookup("choices"); ok {
			choices, err = parseChoices(tag, shape.Kind)
			if err != nil {
				return nil, &RegistrationError{Fnc: fnc, Reason: fmt.Sprintf("argument %q: %s", name, err), Err: err}
			}
		}
		if len(choices) > 0 && shape.Kind != KindString && shape.Kind != KindInt {
			return nil, &RegistrationError{
				Fnc:    fnc,
				Reason: fmt.Sprintf("argument %q: choices are only supported for string and integer arguments, not %s", name, shape.Kind),
				Err:    ErrUnsupportedType,
			}
		}
		arg := ArgSchema{
			Name:        name,
			Description: f.Tag.Get("desc"),
			Shape:       shape,
			Choices:     choices,
			index:       f.Index,
		}
		if tag, ok := f.Tag.Lookup("default"); ok {
			def, err := parseDefault(tag, shape)
			if err != nil {
				return nil, &RegistrationError{
					Fnc:    fnc,
					Reason: fmt.Sprintf("argument %q: default %q: %s", name, tag, err),
					Err:    ErrInvalidDefault,
				}
			}
			arg.Default = def
			arg.HasDefault = true
		}
		args = append(args, arg)
	}
	return args, nil
}

// parseChoices parses an explicit comma-separated choices tag into canonical
// values for the resolved primitive.
func parseChoices(tag string, kind Kind) ([]any, error) {
	parts := strings.Split(tag, ",")
	choices := make([]any, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch kind {
		case KindString:
			choices = append(choices, p)
		case KindInt:
			n, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: choice %q is not an integer", ErrUnsupportedType, p)
			}
			choices = append(choices, n)
		default:
			return nil, fmt.Errorf("%w: choices are only supported for string and integer arguments, not %s", ErrUnsupportedType, kind)
		}
	}
	return choices, nil
}

// parseDefault parses a default tag literal into the canonical value for the
// shape. List defaults are JSON arrays, e.g. default:"[1,2]".
func parseDefault(tag string, shape Shape) (any, error) {
	if shape.List {
		dec := json.NewDecoder(strings.NewReader(tag))
		dec.UseNumber()
		var items []any
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("not a JSON array: %w", err)
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := coercePrimitive(shape.Kind, item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	switch shape.Kind {
	case KindString:
		return tag, nil
	case KindInt:
		return strconv.ParseInt(tag, 10, 64)
	case KindFloat:
		return strconv.ParseFloat(tag, 64)
	case KindBool:
		return strconv.ParseBool(tag)
	default:
		return nil, fmt.Errorf("invalid shape kind %d", shape.Kind)
	}
}

// JSONSchema renders the function's argument contract as a JSON Schema
// object. Adapters use it to build the provider-specific tool definition
// advertised to the model.
func (f *FunctionSchema) JSONSchema() *jsonschema.Schema {
	props := orderedmap.New[string, *jsonschema.Schema]()
	required := make([]string, 0, len(f.Arguments))
	for _, arg := range f.Arguments {
		props.Set(arg.Name, argJSONSchema(arg))
		if arg.Required() {
			required = append(required, arg.Name)
		}
	}
	return &jsonschema.Schema{
		Type:                 "object",
		Description:          f.Description,
		Properties:           props,
		Required:             required,
		AdditionalProperties: jsonschema.FalseSchema,
	}
}

func argJSONSchema(arg ArgSchema) *jsonschema.Schema {
	s := &jsonschema.Schema{Description: arg.Description}
	typ := jsonSchemaType(arg.Shape.Kind)
	if arg.Shape.List {
		s.Type = "array"
		s.Items = &jsonschema.Schema{Type: typ, Enum: arg.Choices}
	} else {
		s.Type = typ
		s.Enum = arg.Choices
	}
	if arg.HasDefault {
		s.Default = arg.Default
	}
	return s
}

func jsonSchemaType(k Kind) string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return ""
	}
}

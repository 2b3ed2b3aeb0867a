package fncall

import (
	"fmt"
	"reflect"
)

// Kind is the terminal primitive of a resolved argument shape.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	default:
		return "invalid"
	}
}

// Shape is the closed descriptor for a supported argument type: a primitive,
// a list of a primitive, or an optional wrapper around either. A list never
// contains pointers or nested lists.
type Shape struct {
	Kind     Kind
	List     bool
	Optional bool
}

func (s Shape) String() string {
	out := s.Kind.String()
	if s.List {
		out = "list<" + out + ">"
	}
	if s.Optional {
		out = "optional<" + out + ">"
	}
	return out
}

// Enum is implemented by named string or integer types with a closed value
// set. EnumValues must return at least one value, all of the same underlying
// type as the implementing type. The resolver advertises those values as the
// argument's choices unless an explicit choices tag overrides them.
type Enum interface {
	EnumValues() []any
}

var enumType = reflect.TypeOf((*Enum)(nil)).Elem()

// resolveType maps a struct field's declared type to its Shape plus any
// choices derived from an Enum value set. A pointer marks the shape optional;
// a second, redundant pointer layer is stripped exactly once and anything
// deeper is rejected.
func resolveType(t reflect.Type) (Shape, []any, error) {
	optional := false
	if t.Kind() == reflect.Pointer {
		optional = true
		t = t.Elem()
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
			if t.Kind() == reflect.Pointer {
				return Shape{}, nil, fmt.Errorf("%w: pointer nested deeper than a redundant optional (%s)", ErrUnsupportedType, t)
			}
		}
	}
	if t.Kind() == reflect.Slice {
		kind, choices, err := resolveElem(t.Elem())
		if err != nil {
			return Shape{}, nil, err
		}
		return Shape{Kind: kind, List: true, Optional: optional}, choices, nil
	}
	kind, choices, err := resolveElem(t)
	if err != nil {
		return Shape{}, nil, err
	}
	return Shape{Kind: kind, Optional: optional}, choices, nil
}

// resolveElem resolves a bare primitive or enumerated type. Pointers and
// slices are rejected here so lists only ever wrap primitives.
func resolveElem(t reflect.Type) (Kind, []any, error) {
	switch t.Kind() {
	case reflect.Pointer:
		return 0, nil, fmt.Errorf("%w: list elements cannot be optional (%s)", ErrUnsupportedType, t)
	case reflect.Slice:
		return 0, nil, fmt.Errorf("%w: nested lists are not supported (%s)", ErrUnsupportedType, t)
	}
	if values, ok := enumValues(t); ok {
		return resolveEnum(t, values)
	}
	switch t.Kind() {
	case reflect.String:
		return KindString, nil, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt, nil, nil
	case reflect.Float32, reflect.Float64:
		return KindFloat, nil, nil
	case reflect.Bool:
		return KindBool, nil, nil
	default:
		return 0, nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// enumValues reports whether t (by value or pointer receiver) implements Enum
// and returns its declared value set.
func enumValues(t reflect.Type) ([]any, bool) {
	if t.Implements(enumType) {
		return reflect.New(t).Elem().Interface().(Enum).EnumValues(), true
	}
	if reflect.PointerTo(t).Implements(enumType) {
		return reflect.New(t).Interface().(Enum).EnumValues(), true
	}
	return nil, false
}

// resolveEnum reduces an enumerated type to its underlying primitive and
// normalizes its members to canonical values (string or int64). Every member
// must match the type's own underlying kind.
func resolveEnum(t reflect.Type, values []any) (Kind, []any, error) {
	if len(values) == 0 {
		return 0, nil, fmt.Errorf("%w: enum %s declares no values", ErrUnsupportedType, t)
	}
	var kind Kind
	switch t.Kind() {
	case reflect.String:
		kind = KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		kind = KindInt
	default:
		return 0, nil, fmt.Errorf("%w: enum %s must have a string or integer underlying type", ErrUnsupportedType, t)
	}
	choices := make([]any, 0, len(values))
	for _, v := range values {
		rv := reflect.ValueOf(v)
		switch {
		case kind == KindString && rv.Kind() == reflect.String:
			choices = append(choices, rv.String())
		case kind == KindInt && rv.Kind() >= reflect.Int && rv.Kind() <= reflect.Int64:
			choices = append(choices, rv.Int())
		default:
			return 0, nil, fmt.Errorf("%w: enum %s value %v does not match its underlying type", ErrUnsupportedType, t, v)
		}
	}
	return kind, choices, nil
}

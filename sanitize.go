package fncall

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewCall looks up the named function and sanitizes rawArguments against its
// schema, producing a ToolCall ready for Execute. An empty toolCallID gets a
// generated UUID. Failures are ArgumentErrors the caller should relay to the
// model as a failed tool result.
func (r *Registry) NewCall(toolCallID, name, rawArguments string) (*ToolCall, error) {
	fnc, ok := r.fncs[name]
	if !ok {
		return nil, &ArgumentError{Fnc: name, Reason: "unknown function", Err: ErrFunctionNotFound}
	}
	args, err := SanitizeArguments(fnc, rawArguments)
	if err != nil {
		return nil, err
	}
	if toolCallID == "" {
		toolCallID = uuid.NewString()
	}
	return &ToolCall{
		ID:           toolCallID,
		Fnc:          fnc,
		RawArguments: rawArguments,
		Arguments:    args,
	}, nil
}

// SanitizeArguments parses rawArguments as a JSON object and coerces each
// declared argument to its schema. Empty text is an empty object. Absent
// arguments with a default are skipped (the default is applied when the
// function is bound, never injected here); absent required arguments fail.
// Keys not declared in the schema are ignored. The result holds only
// declared, successfully sanitized keys.
func SanitizeArguments(fnc *FunctionSchema, rawArguments string) (map[string]any, error) {
	parsed := map[string]any{}
	if strings.TrimSpace(rawArguments) != "" {
		// Numbers are decoded as json.Number so integers keep their exact
		// textual value instead of passing through float64.
		dec := json.NewDecoder(strings.NewReader(rawArguments))
		dec.UseNumber()
		if err := dec.Decode(&parsed); err != nil {
			return nil, &ArgumentError{Fnc: fnc.Name, Reason: "invalid JSON: " + err.Error(), Err: ErrMalformedJSON}
		}
		if dec.More() {
			return nil, &ArgumentError{Fnc: fnc.Name, Reason: "trailing data after JSON object", Err: ErrMalformedJSON}
		}
	}
	out := make(map[string]any, len(fnc.Arguments))
	for _, arg := range fnc.Arguments {
		raw, present := parsed[arg.Name]
		if !present {
			if arg.HasDefault {
				continue
			}
			return nil, &ArgumentError{Fnc: fnc.Name, Arg: arg.Name, Reason: "required argument is missing", Err: ErrMissingArgument}
		}
		v, err := sanitizeValue(fnc.Name, arg, raw)
		if err != nil {
			return nil, err
		}
		out[arg.Name] = v
	}
	return out, nil
}

// sanitizeValue coerces one raw JSON value against the argument's shape. The
// optional wrapper only unwraps; a JSON null never satisfies it.
func sanitizeValue(fnc string, arg ArgSchema, raw any) (any, error) {
	if arg.Shape.List {
		items, ok := raw.([]any)
		if !ok {
			return nil, &ArgumentError{
				Fnc: fnc, Arg: arg.Name,
				Reason: fmt.Sprintf("expected array, got %s", jsonTypeName(raw)),
				Err:    ErrTypeMismatch,
			}
		}
		out := make([]any, len(items))
		for i, item := range items {
			v, err := sanitizePrimitive(fnc, arg, item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	return sanitizePrimitive(fnc, arg, raw)
}

// sanitizePrimitive coerces one JSON primitive and enforces choices.
func sanitizePrimitive(fnc string, arg ArgSchema, raw any) (any, error) {
	v, err := coercePrimitive(arg.Shape.Kind, raw)
	if err != nil {
		return nil, &ArgumentError{Fnc: fnc, Arg: arg.Name, Reason: err.Error(), Err: ErrTypeMismatch}
	}
	if len(arg.Choices) > 0 && !containsValue(arg.Choices, v) {
		return nil, &ArgumentError{
			Fnc: fnc, Arg: arg.Name,
			Reason: fmt.Sprintf("value %v is not one of %v", v, arg.Choices),
			Err:    ErrInvalidChoice,
		}
	}
	return v, nil
}

// coercePrimitive converts a parsed JSON value to the canonical Go value for
// kind. No truthy coercion: strings must be strings, booleans booleans, and
// an integer must be a number with zero fractional part that fits in int64.
func coercePrimitive(kind Kind, raw any) (any, error) {
	switch kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %s", jsonTypeName(raw))
		}
		return s, nil
	case KindInt:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, fmt.Errorf("expected number, got %s", jsonTypeName(raw))
		}
		return coerceInt(num)
	case KindFloat:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, fmt.Errorf("expected number, got %s", jsonTypeName(raw))
		}
		f, err := num.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s out of range", num)
		}
		return f, nil
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %s", jsonTypeName(raw))
		}
		return b, nil
	default:
		return nil, fmt.Errorf("invalid shape kind %d", kind)
	}
}

// coerceInt converts a JSON number to int64. Plain integer text converts
// exactly (no float64 round-trip, so values above 2^53 keep their precision);
// float text must have a zero fractional part. Values outside int64 range are
// rejected, never wrapped.
func coerceInt(num json.Number) (any, error) {
	i, err := strconv.ParseInt(num.String(), 10, 64)
	if err == nil {
		return i, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return nil, fmt.Errorf("integer %s overflows int64", num)
	}
	f, ferr := num.Float64()
	if ferr != nil {
		return nil, fmt.Errorf("number %s out of range", num)
	}
	if math.Trunc(f) != f {
		return nil, errors.New("expected integer, got float")
	}
	// float64(MaxInt64) rounds up to 2^63, hence >= on the upper bound
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, fmt.Errorf("integer %s overflows int64", num)
	}
	return int64(f), nil
}

func containsValue(choices []any, v any) bool {
	for _, c := range choices {
		if c == v {
			return true
		}
	}
	return false
}

// jsonTypeName names a parsed JSON value's type for error messages.
func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

package fncall

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sanitizeTestRegistry(t *testing.T) *Registry {
	t.Helper()
	type args struct {
		X     int      `json:"x"`
		Note  *string  `json:"note" default:"none"`
		Unit  unit     `json:"unit" default:"celsius"`
		Tags  []string `json:"tags" default:"[]"`
		Ratio float64  `json:"ratio" default:"1.0"`
		Loud  bool     `json:"loud" default:"false"`
	}
	fn := func(_ context.Context, a args) (int, error) { return a.X, nil }
	reg, err := NewRegistry([]Candidate{
		Annotate(fn, WithName("probe"), WithDescription("Sanitizer probe.")),
		lookupCandidate(),
	})
	require.NoError(t, err)
	return reg
}

func TestSanitize_IntegerCoercion(t *testing.T) {
	reg := sanitizeTestRegistry(t)

	call, err := reg.NewCall("1", "probe", `{"x": 3.0}`)
	require.NoError(t, err)
	assert.Equal(t, int64(3), call.Arguments["x"])

	_, err = reg.NewCall("1", "probe", `{"x": 3.5}`)
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.ErrorContains(t, err, "expected integer, got float")
}

// Integer-valued numbers outside int64 range must be rejected, not wrapped
// into a garbage value the function would trust.
func TestSanitize_IntegerOverflow(t *testing.T) {
	reg := sanitizeTestRegistry(t)
	tests := []struct {
		name string
		raw  string
	}{
		{"huge exponent", `{"x": 1e300}`},
		{"max int64 plus one", `{"x": 9223372036854775808}`},
		{"min int64 minus one", `{"x": -9223372036854775809}`},
		{"negative exponent overflow", `{"x": -1e19}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.NewCall("1", "probe", tt.raw)
			require.ErrorIs(t, err, ErrTypeMismatch)
			assert.ErrorContains(t, err, "overflows int64")
		})
	}
}

// Integers above 2^53 that fit in int64 convert exactly, with no float64
// round-trip in between.
func TestSanitize_LargeIntegerExact(t *testing.T) {
	reg := sanitizeTestRegistry(t)

	call, err := reg.NewCall("1", "probe", `{"x": 9007199254740993}`)
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), call.Arguments["x"])

	call, err = reg.NewCall("1", "probe", `{"x": 9223372036854775807}`)
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), call.Arguments["x"])
}

func TestSanitize_MissingAndDefaulted(t *testing.T) {
	reg := sanitizeTestRegistry(t)

	// required argument absent
	_, err := reg.NewCall("1", "probe", `{}`)
	require.ErrorIs(t, err, ErrMissingArgument)

	// defaulted arguments are skipped, never injected
	call, err := reg.NewCall("1", "probe", `{"x": 1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": int64(1)}, call.Arguments)
}

func TestSanitize_EmptyRawArguments(t *testing.T) {
	type args struct {
		Limit int `json:"limit" default:"5"`
	}
	fn := func(_ context.Context, _ args) error { return nil }
	reg, err := NewRegistry([]Candidate{Annotate(fn, WithName("all_default"), WithDescription("d"))})
	require.NoError(t, err)

	for _, raw := range []string{"", "   ", "{}"} {
		call, err := reg.NewCall("1", "all_default", raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.Empty(t, call.Arguments)
	}
}

func TestSanitize_MalformedJSON(t *testing.T) {
	reg := sanitizeTestRegistry(t)
	_, err := reg.NewCall("1", "probe", `{"x": `)
	require.ErrorIs(t, err, ErrMalformedJSON)

	_, err = reg.NewCall("1", "probe", `{"x": 1} trailing`)
	require.ErrorIs(t, err, ErrMalformedJSON)
}

func TestSanitize_UnknownFunction(t *testing.T) {
	reg := sanitizeTestRegistry(t)
	_, err := reg.NewCall("1", "nonexistent", `{}`)
	require.ErrorIs(t, err, ErrFunctionNotFound)
}

func TestSanitize_TypeMismatches(t *testing.T) {
	reg := sanitizeTestRegistry(t)
	tests := []struct {
		name string
		raw  string
	}{
		{"string for int", `{"x": "3"}`},
		{"bool for int", `{"x": true}`},
		{"number for string", `{"x": 1, "note": 7}`},
		{"null for optional", `{"x": 1, "note": null}`},
		{"truthy number for bool", `{"x": 1, "loud": 1}`},
		{"truthy string for bool", `{"x": 1, "loud": "true"}`},
		{"string for float", `{"x": 1, "ratio": "0.5"}`},
		{"object for array", `{"x": 1, "tags": {"a": 1}}`},
		{"scalar for array", `{"x": 1, "tags": "a"}`},
		{"bad array element", `{"x": 1, "tags": ["ok", 2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.NewCall("1", "probe", tt.raw)
			assert.ErrorIs(t, err, ErrTypeMismatch)
		})
	}
}

func TestSanitize_Choices(t *testing.T) {
	reg := sanitizeTestRegistry(t)

	call, err := reg.NewCall("1", "probe", `{"x": 1, "unit": "fahrenheit"}`)
	require.NoError(t, err)
	assert.Equal(t, "fahrenheit", call.Arguments["unit"])

	// primitive type matches but value is outside the closed set
	_, err = reg.NewCall("1", "probe", `{"x": 1, "unit": "kelvin"}`)
	require.ErrorIs(t, err, ErrInvalidChoice)
}

func TestSanitize_ChoicesPerListElement(t *testing.T) {
	type args struct {
		Units []unit `json:"units"`
	}
	fn := func(_ context.Context, _ args) error { return nil }
	reg, err := NewRegistry([]Candidate{Annotate(fn, WithName("convert"), WithDescription("d"))})
	require.NoError(t, err)

	call, err := reg.NewCall("1", "convert", `{"units": ["celsius", "fahrenheit"]}`)
	require.NoError(t, err)
	assert.Equal(t, []any{"celsius", "fahrenheit"}, call.Arguments["units"])

	_, err = reg.NewCall("1", "convert", `{"units": ["celsius", "kelvin"]}`)
	require.ErrorIs(t, err, ErrInvalidChoice)
}

// Keys not declared in the schema are ignored silently; the output holds only
// declared, successfully sanitized keys.
func TestSanitize_UnknownKeysIgnored(t *testing.T) {
	reg := sanitizeTestRegistry(t)
	call, err := reg.NewCall("1", "probe", `{"x": 2, "bogus": "whatever", "extra": [1,2]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": int64(2)}, call.Arguments)
}

func TestSanitize_LookupProperty(t *testing.T) {
	reg := sanitizeTestRegistry(t)
	call, err := reg.NewCall("call_42", "lookup", `{"city":"Paris"}`)
	require.NoError(t, err)
	assert.Equal(t, "call_42", call.ID)
	assert.Equal(t, map[string]any{"city": "Paris"}, call.Arguments)
	_, hasLimit := call.Arguments["limit"]
	assert.False(t, hasLimit, "default is applied by the callable, not the sanitizer")
}

func TestNewCall_GeneratedID(t *testing.T) {
	reg := sanitizeTestRegistry(t)
	call, err := reg.NewCall("", "lookup", `{"city":"Paris"}`)
	require.NoError(t, err)
	assert.NotEmpty(t, call.ID)

	other, err := reg.NewCall("", "lookup", `{"city":"Paris"}`)
	require.NoError(t, err)
	assert.NotEqual(t, call.ID, other.ID)
}

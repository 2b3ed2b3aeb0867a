// Package fncall turns annotated Go functions into a structured registry that
// an LLM client can advertise as callable tools, and safely converts the JSON
// arguments a model produces into correctly typed values before the function
// runs.
//
// # Overview
//
// LLMs return tool calls as JSON text. This package reconciles that untrusted,
// loosely typed input against a statically declared contract: reflect over a
// function's argument struct to derive a validated schema, collect functions
// under unique names, sanitize incoming JSON against the schema, and run the
// function asynchronously with its outcome captured exactly once.
//
// The pipeline is Annotate (attach metadata), NewRegistry (reflect and build
// schemas), NewCall (parse, coerce, validate) and Execute, which returns a
// CalledFunction handle.
//
// # Key concepts
//
//   - Closed shapes: arguments are string, integer, float, or boolean, a list
//     of one of those, or an optional wrapper. No object or map arguments.
//   - Fail fast: any registration problem aborts the whole registry build;
//     per-call problems are structured errors the caller relays to the model.
//   - One outcome: a CalledFunction carries either a result or an error, set
//     exactly once, even when the function panics.
//
// See Annotate, NewRegistry, and Registry.NewCall / Registry.Execute for the
// core entry points.
//
// # Example
//
//	type Args struct {
//	    City  string `json:"city" desc:"City to look up"`
//	    Limit int    `json:"limit" default:"5"`
//	}
//	fn := func(_ context.Context, a Args) (string, error) {
//	    return fmt.Sprintf("%s (%d)", a.City, a.Limit), nil
//	}
//	reg, err := fncall.NewRegistry([]fncall.Candidate{
//	    fncall.Annotate(fn, fncall.WithName("lookup"), fncall.WithDescription("Look up a city.")),
//	})
//	if err != nil { ... }
//	call, err := reg.NewCall("call_1", "lookup", `{"city":"Paris"}`)
//	if err != nil { ... }
//	cf := reg.Execute(ctx, call)
//	if err := cf.Wait(ctx); err != nil { ... }
//	fmt.Println(cf.Result())
package fncall

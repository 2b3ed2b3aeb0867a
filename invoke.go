package fncall

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// CalledFunction is the caller-owned handle for one asynchronous invocation.
// Exactly one of Result/Err is set, exactly once, before Done is closed.
// Handles of concurrent executions are fully independent.
type CalledFunction struct {
	Call *ToolCall

	done   chan struct{}
	result any
	err    error
}

// Done is closed when the invocation has finished.
func (c *CalledFunction) Done() <-chan struct{} { return c.done }

// Wait blocks until the invocation finishes or ctx is cancelled, and returns
// the invocation's error (or ctx.Err() on cancellation of the wait).
func (c *CalledFunction) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Result returns the function's result, or nil while the invocation is still
// running or when it failed.
func (c *CalledFunction) Result() any {
	select {
	case <-c.done:
		return c.result
	default:
		return nil
	}
}

// Err returns the captured ExecutionError, or nil while the invocation is
// still running or when it succeeded.
func (c *CalledFunction) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Execute schedules the call on its own goroutine and returns the handle
// immediately. Multiple calls may be in flight concurrently with no ordering
// guarantee between their completions. Errors returned by the function, a
// recovered panic, or ctx cancellation all surface as the handle's Err.
func (r *Registry) Execute(ctx context.Context, call *ToolCall) *CalledFunction {
	cf := &CalledFunction{Call: call, done: make(chan struct{})}
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		cf.err = &ExecutionError{Fnc: call.Fnc.Name, Err: ErrShutdown}
		close(cf.done)
		return cf
	default:
	}
	r.running.Add(1)
	r.mu.Unlock()
	go r.run(ctx, call, cf)
	return cf
}

func (r *Registry) run(ctx context.Context, call *ToolCall, cf *CalledFunction) {
	defer r.running.Done()
	start := time.Now()
	defer func() {
		if r.opts.onAfter != nil {
			r.opts.onAfter(ctx, call, cf.err, time.Since(start))
		}
		close(cf.done)
	}()
	// Registered after the close defer so it runs first and sets the error
	// before the after-hook sees it.
	if r.opts.recoverPanics {
		defer func() {
			if p := recover(); p != nil {
				cf.result = nil
				cf.err = &ExecutionError{Fnc: call.Fnc.Name, Err: &panicError{p: p}}
			}
		}()
	}
	if err := r.acquireSemaphore(ctx); err != nil {
		cf.err = &ExecutionError{Fnc: call.Fnc.Name, Err: err}
		return
	}
	defer r.releaseSemaphore()
	if err := ctx.Err(); err != nil {
		cf.err = &ExecutionError{Fnc: call.Fnc.Name, Err: err}
		return
	}
	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, call)
	}
	res, err := call.Fnc.invoke(ctx, call.Arguments)
	if err != nil {
		cf.err = &ExecutionError{Fnc: call.Fnc.Name, Err: err}
		return
	}
	cf.result = res
}

// invoke binds the sanitized arguments into the function's argument struct
// and calls it.
func (f *FunctionSchema) invoke(ctx context.Context, args map[string]any) (any, error) {
	in := []reflect.Value{reflect.ValueOf(ctx)}
	if f.argsType != nil {
		av, err := f.bindArguments(args)
		if err != nil {
			return nil, err
		}
		in = append(in, av)
	}
	out := f.fn.Call(in)
	if errv := out[len(out)-1]; !errv.IsNil() {
		return nil, errv.Interface().(error)
	}
	if len(out) == 2 {
		return out[0].Interface(), nil
	}
	return nil, nil
}

// bindArguments fills the argument struct from the sanitized map. Defaults
// are applied here, at call time, for keys the sanitizer left absent.
func (f *FunctionSchema) bindArguments(args map[string]any) (reflect.Value, error) {
	av := reflect.New(f.argsType).Elem()
	for _, arg := range f.Arguments {
		v, present := args[arg.Name]
		if !present {
			if !arg.HasDefault {
				continue
			}
			v = arg.Default
		}
		if err := setField(av.FieldByIndex(arg.index), arg, v); err != nil {
			return reflect.Value{}, err
		}
	}
	return av, nil
}

func setField(fv reflect.Value, arg ArgSchema, v any) error {
	for fv.Kind() == reflect.Pointer {
		fv.Set(reflect.New(fv.Type().Elem()))
		fv = fv.Elem()
	}
	if arg.Shape.List {
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("argument %q: expected []any, got %T", arg.Name, v)
		}
		sl := reflect.MakeSlice(fv.Type(), len(items), len(items))
		for i, item := range items {
			if err := setPrimitive(sl.Index(i), arg.Name, item); err != nil {
				return err
			}
		}
		fv.Set(sl)
		return nil
	}
	return setPrimitive(fv, arg.Name, v)
}

func setPrimitive(fv reflect.Value, name string, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.Type().ConvertibleTo(fv.Type()) {
		return fmt.Errorf("argument %q: cannot assign %T to %s", name, v, fv.Type())
	}
	fv.Set(rv.Convert(fv.Type()))
	return nil
}

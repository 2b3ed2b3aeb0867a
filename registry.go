package fncall

import (
	"context"
	"log/slog"
	"maps"
	"sync"
)

// Registry holds the immutable schema records of all registered functions.
// The function map is built once by NewRegistry and read-only afterwards, so
// concurrent lookups and executions need no locking.
type Registry struct {
	fncs  map[string]*FunctionSchema
	names []string // registration order
	opts  registryOptions
	sem   chan struct{}

	// mu orders the done check in Execute against Shutdown so the running
	// WaitGroup never gains entries after Shutdown starts waiting.
	mu        sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
	running   sync.WaitGroup
}

// NewRegistry builds a registry from candidates. Candidates without metadata
// are skipped with a warning; any RegistrationError aborts the whole build.
func NewRegistry(candidates []Candidate, opts ...RegistryOption) (*Registry, error) {
	o := registryOptions{recoverPanics: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	r := &Registry{
		fncs: make(map[string]*FunctionSchema, len(candidates)),
		opts: o,
		sem:  sem,
		done: make(chan struct{}),
	}
	for _, c := range candidates {
		if c.Meta == nil {
			r.opts.logger.Warn("candidate function has no metadata, skipping", "function", funcName(c.Fn))
			continue
		}
		fs, err := newFunctionSchema(c)
		if err != nil {
			return nil, err
		}
		if _, exists := r.fncs[fs.Name]; exists {
			return nil, &RegistrationError{Fnc: fs.Name, Reason: "name already registered", Err: ErrDuplicateName}
		}
		r.fncs[fs.Name] = fs
		r.names = append(r.names, fs.Name)
	}
	return r, nil
}

// Function returns the schema registered under name.
func (r *Registry) Function(name string) (*FunctionSchema, bool) {
	fs, ok := r.fncs[name]
	return fs, ok
}

// Functions returns all registered schemas by name. The map is a copy; the
// schemas themselves are shared and must not be mutated.
func (r *Registry) Functions() map[string]*FunctionSchema {
	return maps.Clone(r.fncs)
}

// Names returns the registered function names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of registered functions.
func (r *Registry) Len() int { return len(r.fncs) }

// Shutdown closes the registry for new executions and waits for in-flight
// ones to finish or ctx to cancel. Execute calls after Shutdown complete
// immediately with ErrShutdown on the handle.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closeOnce.Do(func() { close(r.done) })
	r.mu.Unlock()
	finished := make(chan struct{})
	go func() {
		r.running.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) acquireSemaphore(ctx context.Context) error {
	if r.sem == nil {
		return nil
	}
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Registry) releaseSemaphore() {
	if r.sem != nil {
		<-r.sem
	}
}

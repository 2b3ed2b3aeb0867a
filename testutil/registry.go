// Package testutil provides test helpers for fncall (e.g. canned candidates
// and a ready-made registry).
package testutil

import (
	"io"
	"log/slog"

	"github.com/smithai/fncall"
)

// NewTestRegistry builds a registry with panic recovery enabled and
// diagnostics discarded, suitable for tests. It panics on registration
// errors so tests fail loudly on bad fixtures.
func NewTestRegistry(candidates ...fncall.Candidate) *fncall.Registry {
	reg, err := fncall.NewRegistry(candidates,
		fncall.WithRecoverPanics(true),
		fncall.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		panic(err)
	}
	return reg
}

package testutil

import (
	"context"

	"github.com/smithai/fncall"
)

// EchoArgs is the argument set of EchoCandidate.
type EchoArgs struct {
	Text string `json:"text" desc:"Text to echo back"`
}

// EchoCandidate returns an annotated candidate that echoes its text argument.
func EchoCandidate(name string) fncall.Candidate {
	fn := func(_ context.Context, a EchoArgs) (string, error) {
		return a.Text, nil
	}
	return fncall.Annotate(fn,
		fncall.WithName(name),
		fncall.WithDescription("Echo the given text."),
	)
}

// FailingCandidate returns an annotated candidate whose function always
// returns err.
func FailingCandidate(name string, err error) fncall.Candidate {
	fn := func(_ context.Context) error {
		return err
	}
	return fncall.Annotate(fn,
		fncall.WithName(name),
		fncall.WithDescription("Always fails."),
	)
}

// BlockingCandidate returns an annotated candidate that blocks until release
// is closed or its context is cancelled. Useful for concurrency tests.
func BlockingCandidate(name string, release <-chan struct{}) fncall.Candidate {
	fn := func(ctx context.Context) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fncall.Annotate(fn,
		fncall.WithName(name),
		fncall.WithDescription("Blocks until released."),
	)
}

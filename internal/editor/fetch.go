package editor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Fetch is one list request of a page load. It returns a commit function that
// publishes the result; commits run only after every fetch of the load has
// succeeded.
type Fetch func(ctx context.Context) (commit func(), err error)

// Into builds a Fetch that stores the result of fn in dst.
func Into[V any](dst *V, fn func(context.Context) (V, error)) Fetch {
	return func(ctx context.Context) (func(), error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return func() { *dst = v }, nil
	}
}

// Join runs the fetches concurrently and waits for all of them. Nothing is
// committed when any fetch fails or ctx is done by the time they finish.
func Join(ctx context.Context, fetches ...Fetch) error {
	commits := make([]func(), len(fetches))
	g, gctx := errgroup.WithContext(ctx)
	for i, fetch := range fetches {
		g.Go(func() error {
			commit, err := fetch(gctx)
			if err != nil {
				return err
			}
			commits[i] = commit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, commit := range commits {
		commit()
	}
	return nil
}

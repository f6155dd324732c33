package flight

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group collapses concurrent calls that share a key onto one execution.
type Group struct {
	g singleflight.Group
}

// Do runs fn once for all concurrent callers of key. fn runs on a context
// detached from the first caller's cancellation, so one caller going away
// does not fail the others; each caller still stops waiting when its own
// ctx is done.
func (g *Group) Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (v any, shared bool, err error) {
	detached := context.WithoutCancel(ctx)
	ch := g.g.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case r := <-ch:
		return r.Val, r.Shared, r.Err
	}
}

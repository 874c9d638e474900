// Package trigger starts an export from the host's lifecycle: once at
// process start, or on the first request for the site root.
package trigger

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/handiism/media-exporter/internal/export"
	"golang.org/x/sync/singleflight"
)

// Runner runs one export. *export.Exporter implements it.
type Runner interface {
	Export(ctx context.Context, state *export.RunState) export.Result
}

// Trigger runs a Runner at most once per lifecycle event and shares one
// RunState between all calls.
type Trigger struct {
	runner Runner
	state  *export.RunState
	group  singleflight.Group
	fired  atomic.Bool

	// OnResult, if set, receives the result of every export the trigger starts.
	OnResult func(export.Result)
}

// New creates a Trigger. A nil state gets a fresh RunState.
func New(runner Runner, state *export.RunState) *Trigger {
	if state == nil {
		state = &export.RunState{}
	}
	return &Trigger{runner: runner, state: state}
}

// OnStartup runs the export synchronously.
func (t *Trigger) OnStartup(ctx context.Context) export.Result {
	return t.run(ctx)
}

// Fired reports whether FirstRequest has finished an export that did not fail.
func (t *Trigger) Fired() bool {
	return t.fired.Load()
}

// FirstRequest wraps next so that the first request for "/" runs the
// export before it is served. Concurrent requests arriving while that
// export runs wait for it and share its result. Once an export ends with
// any status other than export.StatusNotExported, later requests pass
// straight through; after a failure the next request for "/" tries again.
func (t *Trigger) FirstRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && !t.fired.Load() {
			t.group.Do("export", func() (any, error) {
				if t.fired.Load() {
					return nil, nil
				}
				// a client hanging up must not cancel the export
				result := t.run(context.WithoutCancel(r.Context()))
				if result.Status != export.StatusNotExported {
					t.fired.Store(true)
				}
				return result, nil
			})
		}
		next.ServeHTTP(w, r)
	})
}

func (t *Trigger) run(ctx context.Context) export.Result {
	result := t.runner.Export(ctx, t.state)
	if t.OnResult != nil {
		t.OnResult(result)
	}
	return result
}

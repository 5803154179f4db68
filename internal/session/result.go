package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/example/snipt/internal/export"
)

// ExportResult is the outcome of one Done call. It starts pending and
// settles exactly once, from the goroutine running the export.
type ExportResult struct {
	ID     string
	Action export.Action

	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	result export.Result
	err    error
}

func newExportResult(action export.Action) *ExportResult {
	return &ExportResult{ID: uuid.NewString(), Action: action, done: make(chan struct{})}
}

func (r *ExportResult) settle(res export.Result, err error) {
	r.once.Do(func() {
		r.mu.Lock()
		r.result, r.err = res, err
		r.mu.Unlock()
		close(r.done)
	})
}

// Done is closed once the result settles.
func (r *ExportResult) Done() <-chan struct{} { return r.done }

// Settled reports whether the export has finished.
func (r *ExportResult) Settled() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Result returns the settled outcome, or ErrExportPending.
func (r *ExportResult) Result() (export.Result, error) {
	if !r.Settled() {
		return export.Result{}, ErrExportPending
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.err
}

// Wait blocks until the result settles or ctx ends.
func (r *ExportResult) Wait(ctx context.Context) (export.Result, error) {
	select {
	case <-r.done:
		return r.Result()
	case <-ctx.Done():
		return export.Result{}, ctx.Err()
	}
}

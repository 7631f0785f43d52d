package orders

import "context"

// requests tracks the identity of the latest fetch. The owning controller's
// mutex guards it.
type requests struct {
	gen    uint64
	cancel context.CancelFunc
}

// next supersedes any outstanding fetch and returns the context and
// generation for a new one.
func (r *requests) next(parent context.Context) (context.Context, uint64) {
	r.stop()
	r.gen++
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	return ctx, r.gen
}

// invalidate makes any outstanding fetch stale without starting a new one.
func (r *requests) invalidate() {
	r.stop()
	r.gen++
}

// settle reports whether gen is still the latest fetch and releases its
// context when it is.
func (r *requests) settle(gen uint64) bool {
	if gen != r.gen {
		return false
	}
	r.stop()
	return true
}

func (r *requests) stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

package orders

import (
	"context"
	"sync"

	"storefront-orders/internal/domain"
)

type reply struct {
	orders  []domain.Order
	order   *domain.Order
	err     error
	started chan struct{}
	gate    chan struct{}
}

func (r *reply) wait() {
	if r.started != nil {
		close(r.started)
	}
	if r.gate != nil {
		<-r.gate
	}
}

// gated returns a reply that signals when the fetch starts and blocks until
// release is called.
func gated(r *reply) (*reply, func()) {
	r.started = make(chan struct{})
	r.gate = make(chan struct{})
	return r, func() { close(r.gate) }
}

type sourceCall struct {
	token string
	key   string
}

type fakeSource struct {
	mu      sync.Mutex
	calls   []sourceCall
	replies map[string][]*reply
}

func newFakeSource() *fakeSource {
	return &fakeSource{replies: make(map[string][]*reply)}
}

func (f *fakeSource) queue(key string, replies ...*reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[key] = append(f.replies[key], replies...)
}

func (f *fakeSource) take(token, key string) *reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sourceCall{token: token, key: key})
	q := f.replies[key]
	if len(q) == 0 {
		return &reply{}
	}
	r := q[0]
	if len(q) > 1 {
		f.replies[key] = q[1:]
	}
	return r
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSource) OrdersByUser(_ context.Context, token, userID string) ([]domain.Order, error) {
	r := f.take(token, "user:"+userID)
	r.wait()
	return r.orders, r.err
}

func (f *fakeSource) Order(_ context.Context, token, orderID string) (*domain.Order, error) {
	r := f.take(token, "order:"+orderID)
	r.wait()
	return r.order, r.err
}

type stubFormat struct{}

func (stubFormat) Price(a domain.Amount) string { return "Rp" + a.String() }
func (stubFormat) Date(raw string) string       { return "date(" + raw + ")" }
func (stubFormat) DateTime(raw string) string   { return "datetime(" + raw + ")" }

var (
	aliceSession = domain.Session{UserID: "7", AuthToken: "abc", IsAuthenticated: true}
	tokenOnly    = domain.Session{AuthToken: "abc", IsAuthenticated: true}
)

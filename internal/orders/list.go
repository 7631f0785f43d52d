package orders

import (
	"context"
	"io"
	"log"
	"sync"

	"storefront-orders/internal/domain"
)

// ListController projects "my orders" into a ListView. Only the latest
// load is ever reflected in the view.
type ListController struct {
	source Source
	format Formatter
	logger *log.Logger

	mu      sync.Mutex
	view    ListView
	session domain.Session
	loaded  bool
	reqs    requests
}

func NewListController(source Source, format Formatter, logger *log.Logger) *ListController {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ListController{
		source: source,
		format: format,
		logger: logger,
		view:   unauthenticatedList(),
	}
}

// View returns the current view state.
func (c *ListController) View() ListView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// LoadOrdersFor loads the orders owned by the session user and returns the
// resulting view. A session without identity resolves to
// PhaseUnauthenticated without touching the source. If a newer load or a
// logout overtakes this one, the newer view is returned instead.
func (c *ListController) LoadOrdersFor(ctx context.Context, s domain.Session) ListView {
	c.mu.Lock()
	c.session = s
	c.loaded = true
	view, reqCtx, gen, ok := c.beginLocked(ctx, s)
	c.mu.Unlock()
	if !ok {
		return view
	}
	return c.fetch(reqCtx, gen, s)
}

// Retry re-runs the last load with the latest known session.
func (c *ListController) Retry(ctx context.Context) ListView {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	return c.LoadOrdersFor(ctx, s)
}

// Watch re-evaluates the view on every session change. Logout takes effect
// before Watch's callback returns; a login reloads in the background.
func (c *ListController) Watch(feed SessionFeed) (stop func()) {
	return feed.Subscribe(c.sessionChanged)
}

func (c *ListController) sessionChanged(s domain.Session) {
	c.mu.Lock()
	c.session = s
	if !c.loaded && s.HasIdentity() {
		c.mu.Unlock()
		return
	}
	view, reqCtx, gen, ok := c.beginLocked(context.Background(), s)
	c.mu.Unlock()
	c.logger.Printf("orders: list session changed state=%s", view.State)
	if ok {
		go c.fetch(reqCtx, gen, s)
	}
}

// beginLocked moves the view to its pre-fetch state. ok reports whether a
// fetch must follow.
func (c *ListController) beginLocked(ctx context.Context, s domain.Session) (ListView, context.Context, uint64, bool) {
	if !s.HasIdentity() {
		c.reqs.invalidate()
		c.view = unauthenticatedList()
		return c.view, nil, 0, false
	}
	reqCtx, gen := c.reqs.next(ctx)
	c.view = ListView{State: PhaseLoading}
	return c.view, reqCtx, gen, true
}

func (c *ListController) fetch(ctx context.Context, gen uint64, s domain.Session) ListView {
	orders, err := c.source.OrdersByUser(ctx, s.AuthToken, s.UserID)
	next := c.resolve(s, orders, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reqs.settle(gen) {
		c.logger.Printf("orders: discard stale list response user=%s", s.UserID)
		return c.view
	}
	c.view = next
	return next
}

func (c *ListController) resolve(s domain.Session, orders []domain.Order, err error) ListView {
	if err != nil {
		c.logger.Printf("orders: list fetch failed user=%s error=%v", s.UserID, err)
		return ListView{State: PhaseFailed, Message: err.Error(), Actions: []Action{ActionRetry}}
	}
	if len(orders) == 0 {
		return ListView{State: PhaseEmpty}
	}
	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		if o.OwnerUserID != "" && o.OwnerUserID != s.UserID {
			c.logger.Printf("orders: list contains foreign order user=%s order=%s", s.UserID, o.ID)
			return ListView{State: PhaseForbidden}
		}
		out = append(out, projectOrder(o, c.format, false))
	}
	return ListView{State: PhaseReady, Orders: out}
}

func unauthenticatedList() ListView {
	return ListView{State: PhaseUnauthenticated, Actions: []Action{ActionLogin}}
}

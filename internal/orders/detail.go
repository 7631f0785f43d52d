package orders

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"storefront-orders/internal/domain"
)

// OwnershipPolicy decides what to do when ownership cannot be confirmed.
type OwnershipPolicy struct {
	// AllowUnresolvedOwner shows an order to an authenticated session whose
	// user id has not been resolved. A known user id is always checked.
	AllowUnresolvedOwner bool
}

// permits reports whether s may see an order owned by ownerID.
func (p OwnershipPolicy) permits(s domain.Session, ownerID string) bool {
	if s.UserID == "" {
		return p.AllowUnresolvedOwner
	}
	return ownerID == s.UserID
}

// DetailController projects a single order into a DetailView and enforces
// that only its owner can see it.
type DetailController struct {
	source Source
	format Formatter
	policy OwnershipPolicy
	logger *log.Logger

	mu      sync.Mutex
	view    DetailView
	session domain.Session
	orderID string
	reqs    requests
}

func NewDetailController(source Source, format Formatter, policy OwnershipPolicy, logger *log.Logger) *DetailController {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &DetailController{
		source: source,
		format: format,
		policy: policy,
		logger: logger,
		view:   DetailView{State: PhaseLoading},
	}
}

func (c *DetailController) View() DetailView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// LoadOrder loads orderID for the session and returns the resulting view.
// An empty orderID is not an error and leaves the view in PhaseLoading.
func (c *DetailController) LoadOrder(ctx context.Context, s domain.Session, orderID string) DetailView {
	orderID = domain.NormalizeID(orderID)

	c.mu.Lock()
	c.session = s
	c.orderID = orderID
	view, reqCtx, gen, ok := c.beginLocked(ctx, s, orderID)
	c.mu.Unlock()
	if !ok {
		return view
	}
	return c.fetch(reqCtx, gen, s, orderID)
}

// OrderID is the normalized id of the last requested order.
func (c *DetailController) OrderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderID
}

// Retry re-runs the last load with the latest known session.
func (c *DetailController) Retry(ctx context.Context) DetailView {
	c.mu.Lock()
	s, orderID := c.session, c.orderID
	c.mu.Unlock()
	return c.LoadOrder(ctx, s, orderID)
}

// Watch re-evaluates the view on every session change.
func (c *DetailController) Watch(feed SessionFeed) (stop func()) {
	return feed.Subscribe(c.sessionChanged)
}

func (c *DetailController) sessionChanged(s domain.Session) {
	c.mu.Lock()
	c.session = s
	view, reqCtx, gen, ok := c.beginLocked(context.Background(), s, c.orderID)
	orderID := c.orderID
	c.mu.Unlock()
	c.logger.Printf("orders: detail session changed state=%s", view.State)
	if ok {
		go c.fetch(reqCtx, gen, s, orderID)
	}
}

func (c *DetailController) beginLocked(ctx context.Context, s domain.Session, orderID string) (DetailView, context.Context, uint64, bool) {
	if orderID == "" {
		c.reqs.invalidate()
		c.view = DetailView{State: PhaseLoading}
		return c.view, nil, 0, false
	}
	if !s.IsAuthenticated {
		c.reqs.invalidate()
		c.view = DetailView{State: PhaseUnauthenticated, Actions: []Action{ActionLogin}}
		return c.view, nil, 0, false
	}
	reqCtx, gen := c.reqs.next(ctx)
	c.view = DetailView{State: PhaseLoading}
	return c.view, reqCtx, gen, true
}

func (c *DetailController) fetch(ctx context.Context, gen uint64, s domain.Session, orderID string) DetailView {
	order, err := c.source.Order(ctx, s.AuthToken, orderID)
	next := c.resolve(s, orderID, order, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.reqs.settle(gen) {
		c.logger.Printf("orders: discard stale detail response order=%s", orderID)
		return c.view
	}
	c.view = next
	return next
}

func (c *DetailController) resolve(s domain.Session, orderID string, order *domain.Order, err error) DetailView {
	switch {
	case errors.Is(err, domain.ErrNotFound), err == nil && order == nil:
		return DetailView{State: PhaseNotFound, Actions: []Action{ActionBackToList}}
	case err != nil:
		c.logger.Printf("orders: detail fetch failed order=%s error=%v", orderID, err)
		return DetailView{State: PhaseFailed, Message: err.Error(), Actions: []Action{ActionRetry, ActionBackToList}}
	}
	if !c.policy.permits(s, order.OwnerUserID) {
		// The fetched order is dropped here; nothing of it reaches the view.
		c.logger.Printf("orders: forbidden order=%s user=%q", orderID, s.UserID)
		return DetailView{State: PhaseForbidden, Actions: []Action{ActionBackToList}}
	}
	v := projectOrder(*order, c.format, true)
	return DetailView{State: PhaseReady, Order: &v}
}

package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-orders/internal/domain"
	"storefront-orders/internal/orders"
)

// statusFor mirrors a view state in the response code. The body always
// carries the full view.
func statusFor(p orders.Phase) int {
	switch p {
	case orders.PhaseReady, orders.PhaseEmpty:
		return http.StatusOK
	case orders.PhaseLoading:
		return http.StatusAccepted
	case orders.PhaseUnauthenticated:
		return http.StatusUnauthorized
	case orders.PhaseForbidden:
		return http.StatusForbidden
	case orders.PhaseNotFound:
		return http.StatusNotFound
	case orders.PhaseFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) listOrders(c *gin.Context) {
	view := h.deps.Orders.LoadOrdersFor(c.Request.Context(), h.deps.Session.Current())
	c.JSON(statusFor(view.State), view)
}

func (h *handlers) retryOrders(c *gin.Context) {
	view := h.deps.Orders.Retry(c.Request.Context())
	c.JSON(statusFor(view.State), view)
}

func (h *handlers) getOrder(c *gin.Context) {
	view := h.deps.Order.LoadOrder(c.Request.Context(), h.deps.Session.Current(), c.Param("id"))
	c.JSON(statusFor(view.State), view)
}

// retryOrder re-runs the last detail load when it targeted the same order.
// Any other id is a fresh load.
func (h *handlers) retryOrder(c *gin.Context) {
	ctx := c.Request.Context()
	var view orders.DetailView
	if id := domain.NormalizeID(c.Param("id")); id != "" && id == h.deps.Order.OrderID() {
		view = h.deps.Order.Retry(ctx)
	} else {
		view = h.deps.Order.LoadOrder(ctx, h.deps.Session.Current(), id)
	}
	c.JSON(statusFor(view.State), view)
}

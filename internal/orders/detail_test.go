package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-orders/internal/domain"
	"storefront-orders/internal/repository/credential"
	"storefront-orders/internal/session"
)

func order42(owner string) *domain.Order {
	return &domain.Order{
		ID:             "42",
		OwnerUserID:    owner,
		OrderDate:      "2026-10-15T08:30:00Z",
		TotalAmount:    decimal.NewFromInt(215000),
		Status:         domain.StatusPlaced,
		ShipmentID:     "SHP-77",
		ShipmentStatus: "Packed",
		Owner:          &domain.UserSummary{Name: "Secret Owner", Email: "owner@example.test"},
		Items: []domain.OrderItem{
			{ID: "1", ProductID: "10", Quantity: 2, UnitPrice: decimal.NewFromInt(50000),
				Product: &domain.ProductSummary{ProductID: "10", Name: "Secret Widget", Description: "Blue"}},
			{ID: "2", ProductID: "11", Quantity: 1, UnitPrice: decimal.NewFromInt(100000)},
		},
	}
}

func TestDetailController_UnauthenticatedSkipsFetch(t *testing.T) {
	src := newFakeSource()
	c := NewDetailController(src, stubFormat{}, OwnershipPolicy{}, nil)

	v := c.LoadOrder(context.Background(), domain.Session{}, "42")

	assert.Equal(t, DetailView{State: PhaseUnauthenticated, Actions: []Action{ActionLogin}}, v)
	assert.Zero(t, src.callCount())
}

func TestDetailController_MissingOrderIDIsLoading(t *testing.T) {
	src := newFakeSource()
	c := NewDetailController(src, stubFormat{}, OwnershipPolicy{}, nil)

	v := c.LoadOrder(context.Background(), aliceSession, "  ")

	assert.Equal(t, DetailView{State: PhaseLoading}, v)
	assert.Zero(t, src.callCount())
}

func TestDetailController_OwnerSeesOrder(t *testing.T) {
	src := newFakeSource()
	src.queue("order:42", &reply{order: order42("7")})
	c := NewDetailController(src, stubFormat{}, OwnershipPolicy{}, nil)

	v := c.LoadOrder(context.Background(), aliceSession, "42")

	require.Equal(t, PhaseReady, v.State)
	o := v.Order
	assert.Equal(t, "Rp215000", o.Total)
	assert.Equal(t, "datetime(2026-10-15T08:30:00Z)", o.Date)
	assert.Equal(t, StatusView{Kind: "placed", Label: "Dipesan", Tone: ToneWarning}, o.Status)
	assert.Equal(t, &ShipmentView{ShipmentID: "SHP-77", Status: "Packed"}, o.Shipment)
	assert.Empty(t, o.ShipmentStatus)
	assert.Equal(t, &OwnerView{Name: "Secret Owner", Email: "owner@example.test"}, o.Owner)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "Rp100000", o.Items[0].LineTotal)
	assert.Equal(t, "Rp100000", o.Items[1].LineTotal)
	assert.Equal(t, "Rp50000 each", o.Items[0].UnitPrice)
	assert.Equal(t, "Secret Widget", o.Items[0].Name)
	assert.Equal(t, "Blue", o.Items[0].Description)
	assert.Equal(t, "Product 11", o.Items[1].Name)
}

func TestDetailController_NoShipmentBlockWithoutShipmentID(t *testing.T) {
	src := newFakeSource()
	o := order42("7")
	o.ShipmentID = ""
	src.queue("order:42", &reply{order: o})
	c := NewDetailController(src, stubFormat{}, OwnershipPolicy{}, nil)

	v := c.LoadOrder(context.Background(), aliceSession, "42")

	require.Equal(t, PhaseReady, v.State)
	assert.Nil(t, v.Order.Shipment)
}

func TestDetailController_OtherOwnerIsForbidden(t *testing.T) {
	src := newFakeSource()
	src.queue("order:42", &reply{order: order42("9")})
	c := NewDetailController(src, stubFormat{}, OwnershipPolicy{}, nil)

	v := c.LoadOrder(context.Background(), aliceSession, "42")

	assert.Equal(t, PhaseForbidden, v.State)
	assert.Nil(t, v.Order)
	assertRevealsNothing(t, v)
}

func TestDetailController_MismatchAlwaysForbidden(t *testing.T) {
	owners := []string{"", "9", "70", "7a", "-7"}
	policies := []OwnershipPolicy{{}, {AllowUnresolvedOwner: true}}
	for _, owner := range owners {
		for _, policy := range policies {
			t.Run(fmt.Sprintf("owner=%q allow=%v", owner, policy.AllowUnresolvedOwner), func(t *testing.T) {
				src := newFakeSource()
				src.queue("order:42", &reply{order: order42(owner)})
				c := NewDetailController(src, stubFormat{}, policy, nil)

				v := c.LoadOrder(context.Background(), aliceSession, "42")

				assert.Equal(t, PhaseForbidden, v.State)
				assertRevealsNothing(t, v)
				assertRevealsNothing(t, c.View())
			})
		}
	}
}

func TestDetailController_UnresolvedIdentity(t *testing.T) {
	cases := []struct {
		name   string
		policy OwnershipPolicy
		want   Phase
	}{
		{"fail closed by default", OwnershipPolicy{}, PhaseForbidden},
		{"permissive when allowed", OwnershipPolicy{AllowUnresolvedOwner: true}, PhaseReady},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := newFakeSource()
			src.queue("order:42", &reply{order: order42("9")})
			c := NewDetailController(src, stubFormat{}, tc.policy, nil)

			v := c.LoadOrder(context.Background(), tokenOnly, "42")

			assert.Equal(t, tc.want, v.State)
			assert.Equal(t, 1, src.callCount())
		})
	}
}

func TestDetailController_AbsentOrderIsNotFound(t *testing.T) {
	cases := map[string]*reply{
		"nil payload": {},
		"not found":   {err: domain.ErrNotFound},
		"wrapped":     {err: fmt.Errorf("fetch order: %w", domain.ErrNotFound)},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			src := newFakeSource()
			src.queue("order:99", r)
			c := NewDetailController(src, stubFormat{}, OwnershipPolicy{}, nil)

			v := c.LoadOrder(context.Background(), aliceSession, "99")

			assert.Equal(t, DetailView{State: PhaseNotFound, Actions: []Action{ActionBackToList}}, v)
		})
	}
}

func TestDetailController_FailureThenRetry(t *testing.T) {
	src := newFakeSource()
	src.queue("order:42",
		&reply{err: errors.New("timeout contacting order service")},
		&reply{order: order42("7")},
	)
	c := NewDetailController(src, stubFormat{}, OwnershipPolicy{}, nil)
	ctx := context.Background()

	v := c.LoadOrder(ctx, aliceSession, "42")
	assert.Equal(t, PhaseFailed, v.State)
	assert.Equal(t, "timeout contacting order service", v.Message)
	assert.Equal(t, []Action{ActionRetry, ActionBackToList}, v.Actions)

	v = c.Retry(ctx)
	assert.Equal(t, PhaseReady, v.State)
}

func TestDetailController_DiscardsSupersededResponse(t *testing.T) {
	src := newFakeSource()
	stale, release := gated(&reply{order: &domain.Order{ID: "1", OwnerUserID: "7"}})
	src.queue("order:1", stale)
	src.queue("order:2", &reply{order: &domain.Order{ID: "2", OwnerUserID: "7"}})
	c := NewDetailController(src, stubFormat{}, OwnershipPolicy{}, nil)
	ctx := context.Background()

	first := make(chan DetailView, 1)
	go func() { first <- c.LoadOrder(ctx, aliceSession, "1") }()
	<-stale.started

	latest := c.LoadOrder(ctx, aliceSession, "2")
	require.Equal(t, PhaseReady, latest.State)

	release()
	<-first
	require.Equal(t, PhaseReady, c.View().State)
	assert.Equal(t, "2", c.View().Order.OrderID)
}

func TestDetailController_LogoutDuringFetch(t *testing.T) {
	ctx := context.Background()
	store := session.New(credential.NewMemory(nil))
	require.NoError(t, store.Login(ctx, domain.User{ID: "7"}, "abc"))

	src := newFakeSource()
	r, release := gated(&reply{order: order42("7")})
	src.queue("order:42", r)
	c := NewDetailController(src, stubFormat{}, OwnershipPolicy{}, nil)
	defer c.Watch(store)()

	done := make(chan DetailView, 1)
	go func() { done <- c.LoadOrder(ctx, store.Current(), "42") }()
	<-r.started

	store.Logout(ctx)
	assert.Equal(t, PhaseUnauthenticated, c.View().State)

	release()
	<-done
	assert.Equal(t, PhaseUnauthenticated, c.View().State)
	assertRevealsNothing(t, c.View())
}

func TestStatus_DefaultBranch(t *testing.T) {
	assert.Equal(t, StatusView{Kind: "other", Label: "Dibatalkan", Tone: ToneNeutral}, Status("Dibatalkan"))
	assert.Equal(t, StatusView{Kind: "other", Label: "Unknown", Tone: ToneNeutral}, Status("  "))
	assert.Equal(t, StatusView{Kind: "completed", Label: "Selesai", Tone: ToneSuccess}, Status("Selesai"))
}

func assertRevealsNothing(t *testing.T, v DetailView) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	for _, field := range []string{"42", "Secret Widget", "Secret Owner", "owner@example.test", "SHP-77", "215000", "Dipesan"} {
		assert.NotContains(t, string(raw), field)
	}
}

func TestDetailController_LoginSwitchDuringFetch(t *testing.T) {
	ctx := context.Background()
	store := session.New(credential.NewMemory(nil))
	require.NoError(t, store.Login(ctx, domain.User{ID: "7"}, "abc"))

	src := newFakeSource()
	r, release := gated(&reply{order: order42("7")})
	src.queue("order:42", r, &reply{order: order42("7")})
	c := NewDetailController(src, stubFormat{}, OwnershipPolicy{}, nil)
	defer c.Watch(store)()

	done := make(chan DetailView, 1)
	go func() { done <- c.LoadOrder(ctx, store.Current(), "42") }()
	<-r.started

	require.NoError(t, store.Login(ctx, domain.User{ID: "9"}, "def"))
	assert.Eventually(t, func() bool {
		return c.View().State == PhaseForbidden
	}, time.Second, 5*time.Millisecond)

	release()
	assert.Equal(t, PhaseForbidden, (<-done).State)
	assert.Equal(t, PhaseForbidden, c.View().State)
	assertRevealsNothing(t, c.View())

	src.mu.Lock()
	defer src.mu.Unlock()
	require.Len(t, src.calls, 2)
	assert.Equal(t, sourceCall{token: "def", key: "order:42"}, src.calls[1])
}

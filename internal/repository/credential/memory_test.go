package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-orders/internal/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestMemoryStore_PutGetDelete(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	store := NewMemory(clock.Now)
	ctx := context.Background()

	if err := store.Put(ctx, Credential{Name: TokenSlot, Token: "abc", ExpiresAt: clock.now.Add(time.Hour)}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, TokenSlot)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Token != "abc" || !got.CreatedAt.Equal(clock.now) {
		t.Fatalf("unexpected credential %+v", got)
	}

	if err := store.Delete(ctx, TokenSlot); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, TokenSlot); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.Delete(ctx, TokenSlot); err != nil {
		t.Fatalf("Delete of missing slot should be a no-op, got %v", err)
	}
}

func TestMemoryStore_ExpiredSlotIsAbsent(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	store := NewMemory(clock.Now)
	ctx := context.Background()

	if err := store.Put(ctx, Credential{Name: TokenSlot, Token: "abc", ExpiresAt: clock.now.Add(7 * 24 * time.Hour)}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	clock.now = clock.now.Add(7 * 24 * time.Hour)
	if _, err := store.Get(ctx, TokenSlot); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected expired slot to be absent, got %v", err)
	}
}

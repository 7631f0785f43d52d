package credential

import (
	"context"
	"time"
)

// TokenSlot is the fixed slot name holding the session token.
const TokenSlot = "token"

// Credential is a named value with an expiry enforced by the backing store.
type Credential struct {
	Name      string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Repository is a durable key/value slot for credentials. Get returns
// domain.ErrNotFound for absent and expired slots alike.
type Repository interface {
	Put(ctx context.Context, c Credential) error
	Get(ctx context.Context, name string) (*Credential, error)
	Delete(ctx context.Context, name string) error
	Ping(ctx context.Context) error
}

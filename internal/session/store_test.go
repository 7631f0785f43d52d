package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-orders/internal/domain"
	"storefront-orders/internal/repository/credential"
)

type failingRepo struct{ credential.Repository }

func (failingRepo) Put(context.Context, credential.Credential) error { return errors.New("disk full") }
func (failingRepo) Get(context.Context, string) (*credential.Credential, error) {
	return nil, errors.New("io error")
}
func (failingRepo) Delete(context.Context, string) error { return errors.New("io error") }

type staticResolver struct {
	id  string
	err error
}

func (r staticResolver) ResolveUserID(string) (string, error) { return r.id, r.err }

func fixedNow() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }

func TestStore_StartsEmpty(t *testing.T) {
	s := New(credential.NewMemory(fixedNow))
	assert.Equal(t, domain.Session{}, s.Current())
}

func TestStore_LoginPersistsAndAuthenticates(t *testing.T) {
	ctx := context.Background()
	repo := credential.NewMemory(fixedNow)
	s := New(repo, WithClock(fixedNow), WithTTL(time.Hour))

	require.NoError(t, s.Login(ctx, domain.User{ID: " 42 "}, "tok-1"))

	assert.Equal(t, domain.Session{UserID: "42", AuthToken: "tok-1", IsAuthenticated: true}, s.Current())
	stored, err := repo.Get(ctx, credential.TokenSlot)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", stored.Token)
	assert.Equal(t, fixedNow().Add(time.Hour), stored.ExpiresAt)
}

func TestStore_LoginRejectsEmptyToken(t *testing.T) {
	s := New(credential.NewMemory(fixedNow))
	err := s.Login(context.Background(), domain.User{ID: "1"}, "  ")
	assert.ErrorIs(t, err, domain.ErrEmptyToken)
	assert.False(t, s.Current().IsAuthenticated)
}

func TestStore_LogoutClearsStateAndStorage(t *testing.T) {
	ctx := context.Background()
	repo := credential.NewMemory(fixedNow)
	s := New(repo)
	require.NoError(t, s.Login(ctx, domain.User{ID: "7"}, "tok"))

	s.Logout(ctx)

	assert.Equal(t, domain.Session{}, s.Current())
	_, err := repo.Get(ctx, credential.TokenSlot)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_HydrateRestoresTokenWithoutIdentity(t *testing.T) {
	ctx := context.Background()
	repo := credential.NewMemory(fixedNow)
	require.NoError(t, repo.Put(ctx, credential.Credential{
		Name: credential.TokenSlot, Token: "persisted", ExpiresAt: fixedNow().Add(time.Hour),
	}))

	s := New(repo)
	got := s.Hydrate(ctx)

	assert.True(t, got.IsAuthenticated)
	assert.Equal(t, "persisted", got.AuthToken)
	assert.Empty(t, got.UserID)
	assert.False(t, got.HasIdentity())
}

func TestStore_HydrateResolvesIdentity(t *testing.T) {
	ctx := context.Background()
	repo := credential.NewMemory(fixedNow)
	require.NoError(t, repo.Put(ctx, credential.Credential{
		Name: credential.TokenSlot, Token: "persisted", ExpiresAt: fixedNow().Add(time.Hour),
	}))

	s := New(repo, WithResolver(staticResolver{id: "42"}))
	got := s.Hydrate(ctx)
	assert.Equal(t, "42", got.UserID)

	s2 := New(repo, WithResolver(staticResolver{err: errors.New("expired")}))
	got = s2.Hydrate(ctx)
	assert.True(t, got.IsAuthenticated)
	assert.Empty(t, got.UserID)
}

func TestStore_HydrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := credential.NewMemory(fixedNow)
	require.NoError(t, repo.Put(ctx, credential.Credential{
		Name: credential.TokenSlot, Token: "persisted", ExpiresAt: fixedNow().Add(time.Hour),
	}))
	s := New(repo)

	notified := 0
	s.Subscribe(func(domain.Session) { notified++ })

	first := s.Hydrate(ctx)
	second := s.Hydrate(ctx)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, notified)
}

func TestStore_HydrateWithoutTokenStaysUnauthenticated(t *testing.T) {
	s := New(credential.NewMemory(fixedNow))
	got := s.Hydrate(context.Background())
	assert.False(t, got.IsAuthenticated)
}

func TestStore_StorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	s := New(failingRepo{})

	assert.False(t, s.Hydrate(ctx).IsAuthenticated)

	require.NoError(t, s.Login(ctx, domain.User{ID: "1"}, "tok"))
	assert.True(t, s.Current().IsAuthenticated)

	s.Logout(ctx)
	assert.False(t, s.Current().IsAuthenticated)
}

func TestStore_SubscribersSeeChangesInOrder(t *testing.T) {
	ctx := context.Background()
	s := New(credential.NewMemory(fixedNow))

	var got []domain.Session
	unsubscribe := s.Subscribe(func(sess domain.Session) { got = append(got, sess) })

	require.NoError(t, s.Login(ctx, domain.User{ID: "1"}, "a"))
	s.Logout(ctx)
	unsubscribe()
	require.NoError(t, s.Login(ctx, domain.User{ID: "2"}, "b"))

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].UserID)
	assert.False(t, got[1].IsAuthenticated)
}

func TestStore_ConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New(credential.NewMemory(fixedNow))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				cur := s.Current()
				if cur.IsAuthenticated && cur.AuthToken == "" {
					t.Errorf("authenticated session without token")
					return
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		require.NoError(t, s.Login(ctx, domain.User{ID: "1"}, "tok"))
		s.Logout(ctx)
	}
	wg.Wait()
}

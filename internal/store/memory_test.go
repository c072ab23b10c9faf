package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fixlab/api-core/internal/models"
)

func newPrincipal(email, keyHash string) *models.Principal {
	return &models.Principal{
		Email:        email,
		PasswordHash: "x",
		Tier:         "starter",
		APIKeyHash:   keyHash,
		Role:         "user",
	}
}

func TestMemoryStore_Create(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := newPrincipal("alice@x.com", "hash-a")
	require.NoError(t, s.Create(ctx, p))
	require.NotEmpty(t, p.ID)
	require.False(t, p.CreatedAt.IsZero())

	// Duplicate email, different case.
	err := s.Create(ctx, newPrincipal("Alice@X.com", "hash-b"))
	require.ErrorIs(t, err, ErrDuplicateEmail)

	// Duplicate key hash must not re-point the credential index.
	err = s.Create(ctx, newPrincipal("bob@x.com", "hash-a"))
	require.ErrorIs(t, err, ErrDuplicateKeyHash)

	byHash, err := s.FindByKeyHash(ctx, "hash-a")
	require.NoError(t, err)
	require.Equal(t, p.ID, byHash.ID)
}

func TestMemoryStore_Lookups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := newPrincipal("alice@x.com", "hash-a")
	require.NoError(t, s.Create(ctx, p))

	byEmail, err := s.FindByEmail(ctx, "ALICE@x.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	require.Equal(t, p.ID, byEmail.ID)

	byHash, err := s.FindByKeyHash(ctx, "hash-a")
	require.NoError(t, err)
	require.NotNil(t, byHash)
	require.Equal(t, p.ID, byHash.ID)

	byID, err := s.FindByID(ctx, p.ID.String())
	require.NoError(t, err)
	require.NotNil(t, byID)

	missing, err := s.FindByKeyHash(ctx, "no-such-hash")
	require.NoError(t, err)
	require.Nil(t, missing)

	badID, err := s.FindByID(ctx, "not-a-uuid")
	require.NoError(t, err)
	require.Nil(t, badID)
}

func TestMemoryStore_ReturnsSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := newPrincipal("alice@x.com", "hash-a")
	require.NoError(t, s.Create(ctx, p))

	found, err := s.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	found.RequestsUsed = 999

	again, err := s.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	require.Equal(t, int64(0), again.RequestsUsed)
}

func TestMemoryStore_IncrementRequests_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := newPrincipal("alice@x.com", "hash-a")
	require.NoError(t, s.Create(ctx, p))

	const workers = 50
	const perWorker = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				s.IncrementRequests(ctx, p.ID)
			}
		}()
	}
	wg.Wait()

	found, err := s.FindByID(ctx, p.ID.String())
	require.NoError(t, err)
	require.Equal(t, int64(workers*perWorker), found.RequestsUsed)
}

func TestMemoryStore_ResetUsage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := newPrincipal("alice@x.com", "hash-a")
	b := newPrincipal("bob@x.com", "hash-b")
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))

	for i := 0; i < 5; i++ {
		s.IncrementRequests(ctx, a.ID)
	}

	now := time.Now().UTC()
	reset, err := s.ResetUsage(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(2), reset)

	found, err := s.FindByID(ctx, a.ID.String())
	require.NoError(t, err)
	require.Equal(t, int64(0), found.RequestsUsed)
	require.NotNil(t, found.LastResetAt)
	require.Equal(t, now, *found.LastResetAt)
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Create(ctx, newPrincipal("alice@x.com", "hash-a")))
	require.NoError(t, s.Create(ctx, newPrincipal("bob@x.com", "hash-b")))

	principals, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, principals, 2)
}

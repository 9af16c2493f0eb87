package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xrplist/warden/core"
)

func testChallenge(id string) *core.Challenge {
	now := time.Now().UTC()
	return &core.Challenge{
		ID:        id,
		Address:   "rKhHA3suVVRtJpUQE5vZntyMTWvd9hBxg1",
		Nonce:     "nonce",
		Message:   "message",
		IssuedAt:  now,
		ExpiresAt: now.Add(5 * time.Minute),
		CreatedAt: now,
	}
}

func TestConsumeChallengeOnce(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.InsertChallenge(ctx, testChallenge("c1")))

	require.NoError(t, s.ConsumeChallenge(ctx, "c1"))
	assert.ErrorIs(t, s.ConsumeChallenge(ctx, "c1"), core.ErrChallengeUsed)
	assert.ErrorIs(t, s.ConsumeChallenge(ctx, "missing"), core.ErrChallengeNotFound)

	c, err := s.GetChallenge(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.Used)
}

func TestConsumeChallengeConcurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.InsertChallenge(ctx, testChallenge("c1")))

	const attempts = 32
	results := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = s.ConsumeChallenge(ctx, "c1")
		}(i)
	}
	wg.Wait()

	// Exactly one attempt wins the compare-and-set.
	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, core.ErrChallengeUsed):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)
}

func TestAdminUniqueness(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.InsertAdmin(ctx, &core.AdminAccount{ID: "a1", Address: "rOne", Role: core.RoleAdmin}))
	err := s.InsertAdmin(ctx, &core.AdminAccount{ID: "a2", Address: "rOne", Role: core.RoleSuperAdmin})
	assert.ErrorIs(t, err, core.ErrDuplicateAdmin)

	got, err := s.GetAdmin(ctx, "rOne")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, core.RoleAdmin, got.Role)
}

func TestListEntriesNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i, wallet := range []string{"rOne", "rTwo", "rThree"} {
		require.NoError(t, s.InsertEntry(ctx, &core.AllowlistEntry{
			ID:            wallet,
			WalletAddress: wallet,
			CreatedAt:     time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		}))
	}

	entries, err := s.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "rThree", entries[0].WalletAddress)
	assert.Equal(t, "rOne", entries[2].WalletAddress)
}

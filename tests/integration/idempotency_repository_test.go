//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"studio-booking/internal/infra"
	"studio-booking/internal/infra/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyRepositoryTryInsert(t *testing.T) {
	pool := newTestPool(t)
	repo := repository.NewIdempotencyRepository(pool)
	ctx := context.Background()

	t.Run("reclaims expired processing key", func(t *testing.T) {
		// A crash between commit and MarkCompleted leaves a stale
		// processing row; a retry with the same key must win the claim.
		key := uuid.New()
		_, err := pool.Exec(ctx, `
			INSERT INTO idempotency_keys (key, status, request_hash, expires_at)
			VALUES ($1, 'processing', 'stale-hash', now() - interval '1 hour')`, key)
		require.NoError(t, err)

		claimed, err := repo.TryInsert(ctx, key, "fresh-hash", time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		assert.True(t, claimed)

		rec, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, repository.IdempotencyStatusProcessing, rec.Status)
		assert.Equal(t, "fresh-hash", rec.RequestHash)
		assert.Nil(t, rec.ResultBookingID)
	})

	t.Run("reclaims expired completed key", func(t *testing.T) {
		key := uuid.New()
		staleBookingID := uuid.New()
		_, err := pool.Exec(ctx, `
			INSERT INTO idempotency_keys (key, status, request_hash, result_booking_id, expires_at)
			VALUES ($1, 'completed', 'stale-hash', $2, now() - interval '1 hour')`,
			key, staleBookingID)
		require.NoError(t, err)

		claimed, err := repo.TryInsert(ctx, key, "fresh-hash", time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		assert.True(t, claimed)

		rec, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, repository.IdempotencyStatusProcessing, rec.Status)
		assert.Nil(t, rec.ResultBookingID)
	})

	t.Run("live processing key is not reclaimed", func(t *testing.T) {
		key := uuid.New()
		claimed, err := repo.TryInsert(ctx, key, "original-hash", time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		require.True(t, claimed)

		claimed, err = repo.TryInsert(ctx, key, "other-hash", time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		assert.False(t, claimed)

		rec, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "original-hash", rec.RequestHash)
	})

	t.Run("released key can be claimed again", func(t *testing.T) {
		key := uuid.New()
		claimed, err := repo.TryInsert(ctx, key, "first-attempt", time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		require.True(t, claimed)

		require.NoError(t, repo.Delete(ctx, key))

		claimed, err = repo.TryInsert(ctx, key, "second-attempt", time.Now().Add(24*time.Hour))
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("expired key reads as absent", func(t *testing.T) {
		key := uuid.New()
		_, err := pool.Exec(ctx, `
			INSERT INTO idempotency_keys (key, status, request_hash, expires_at)
			VALUES ($1, 'processing', 'stale-hash', now() - interval '1 hour')`, key)
		require.NoError(t, err)

		_, err = repo.Get(ctx, key)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}

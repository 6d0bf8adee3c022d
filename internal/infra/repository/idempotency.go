package repository

import (
	"context"
	"time"

	"studio-booking/internal/infra"
	"studio-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key             uuid.UUID
	Status          string
	RequestHash     string
	ResultBookingID *uuid.UUID
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

// TryInsert claims the key in processing state. An expired row is re-claimed
// in place, so a crash that left a stale processing key behind never blocks
// later retries with the same key. It reports whether this call won the
// claim; losing is not an error, the caller reads the existing record and
// decides.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, key uuid.UUID, requestHash string, expiresAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, status, request_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET status = $2, request_hash = $3, result_booking_id = NULL, expires_at = $4
		WHERE idempotency_keys.expires_at < now()`,
		key, IdempotencyStatusProcessing, requestHash, expiresAt)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert idempotency key", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, key uuid.UUID) (*IdempotencyRecord, error) {
	var (
		rec      IdempotencyRecord
		resultID pgtype.UUID
	)
	err := r.pool.QueryRow(ctx, `
		SELECT key, status, request_hash, result_booking_id, created_at, expires_at
		FROM idempotency_keys WHERE key = $1`, key).
		Scan(&rec.Key, &rec.Status, &rec.RequestHash, &resultID, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	rec.ResultBookingID = pgconv.UUIDPtrFromPgtype(resultID)

	// Expired keys are treated as absent.
	if time.Now().After(rec.ExpiresAt) {
		return nil, infra.WrapRepoErr("idempotency key expired", nil, infra.KindNotFound)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) MarkCompleted(ctx context.Context, key uuid.UUID, resultBookingID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE idempotency_keys SET status = $2, result_booking_id = $3 WHERE key = $1`,
		key, IdempotencyStatusCompleted, resultBookingID)
	if err != nil {
		return infra.WrapRepoErr("failed to mark idempotency key completed", err)
	}
	return nil
}

// Delete releases a processing key after a failed attempt so the client can
// retry with the same key.
func (r *IdempotencyRepository) Delete(ctx context.Context, key uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1`, key)
	if err != nil {
		return infra.WrapRepoErr("failed to delete idempotency key", err)
	}
	return nil
}

package repository

import (
	"context"
	"strings"
	"time"

	"studio-booking/internal/domain/coupon"
	"studio-booking/internal/infra"
	"studio-booking/internal/infra/db"
	"studio-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CouponRepository struct {
	pool *pgxpool.Pool
}

func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode normalizes the code the same way the domain does before lookup.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	code = strings.TrimSpace(strings.ToUpper(code))

	var (
		id            uuid.UUID
		discountType  string
		discountValue int64
		maxDiscount   pgtype.Int8
		minPurchase   pgtype.Int8
		validUntil    pgtype.Timestamptz
		isActive      bool
		usageCount    int
		createdAt     time.Time
		updatedAt     time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, discount_type, discount_value, max_discount, min_purchase,
		       valid_until, is_active, usage_count, created_at, updated_at
		FROM coupons WHERE code = $1`, code).
		Scan(&id, &discountType, &discountValue, &maxDiscount, &minPurchase,
			&validUntil, &isActive, &usageCount, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon by code", err)
	}

	c, err := coupon.ReconstructCoupon(id, code, coupon.DiscountType(discountType), discountValue,
		pgconv.Int64PtrFromPgtype(maxDiscount), pgconv.Int64PtrFromPgtype(minPurchase),
		pgconv.TimePtrFromPgtype(validUntil), isActive, usageCount, createdAt, updatedAt)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt coupon row", err)
	}
	return c, nil
}

// IncrementUsage bumps the counter without read-modify-write races.
func (r *CouponRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE coupons SET usage_count = usage_count + 1, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to increment coupon usage", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("coupon not found", nil, infra.KindNotFound)
	}
	return nil
}

// RecordUsage appends one audit row. Rows are never updated or deleted.
func (r *CouponRepository) RecordUsage(ctx context.Context, rec coupon.UsageRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO coupon_usage (id, coupon_id, booking_id, customer_name, customer_whatsapp,
		                          discount_amount, order_total, used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), rec.CouponID, rec.BookingID, rec.CustomerName, rec.CustomerWhatsApp,
		rec.DiscountAmount, rec.OrderTotal, rec.UsedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return infra.WrapRepoErr("coupon not found", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to record coupon usage", err)
	}
	return nil
}

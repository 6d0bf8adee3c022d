package repository

import (
	"context"
	"time"

	"studio-booking/internal/domain/booking"
	"studio-booking/internal/infra"
	"studio-booking/internal/infra/db"
	"studio-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotConstraint = "bookings_slot_active_uniq"

const bookingColumns = `id, created_at, status, customer_name, customer_whatsapp, category,
	service_id, scheduled_at, notes, location_link, total_price, service_base_price,
	base_discount, addons_total, coupon_discount, coupon_code, photographer_id`

type bookingRow struct {
	ID               uuid.UUID
	CreatedAt        time.Time
	Status           string
	CustomerName     string
	CustomerWhatsApp string
	Category         string
	ServiceID        uuid.UUID
	ScheduledAt      time.Time
	Notes            string
	LocationLink     string
	TotalPrice       int64
	ServiceBasePrice int64
	BaseDiscount     int64
	AddonsTotal      int64
	CouponDiscount   int64
	CouponCode       pgtype.Text
	PhotographerID   pgtype.UUID
}

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// Create persists the booking aggregate in one transaction: the booking row,
// its addon snapshots and its payment rows. A unique violation on the slot
// index maps to KindConflict so the caller can report the slot as taken.
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	err := db.RunInTx(ctx, r.pool, func(ctx context.Context, tx db.DBTX) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO bookings (`+bookingColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			b.ID(), b.CreatedAt(), string(b.Status()),
			b.Customer().Name(), b.Customer().WhatsApp(), b.Customer().Category(),
			b.Customer().ServiceID(), b.Schedule().Date(), b.Schedule().Notes(), b.Schedule().LocationLink(),
			b.Finance().TotalPrice, b.Finance().ServiceBasePrice, b.Finance().BaseDiscount,
			b.Finance().AddonsTotal, b.Finance().CouponDiscount,
			pgconv.StringPtrToPgtype(b.Finance().CouponCode),
			pgconv.UUIDPtrToPgtype(b.PhotographerID()),
		)
		if err != nil {
			return err
		}

		if err := insertAddonSnapshots(ctx, tx, b.ID(), b.Addons()); err != nil {
			return err
		}

		for i, p := range b.Finance().Payments {
			if err := insertPayment(ctx, tx, b.ID(), i, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, slotConstraint):
			return infra.WrapRepoErr("booking slot already taken", err, infra.KindConflict)
		case db.IsForeignKeyViolation(err):
			return infra.WrapRepoErr("booking references missing row", err, infra.KindForeignKeyViolated)
		default:
			return infra.WrapRepoErr("failed to create booking", err)
		}
	}
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	row, err := scanBookingRow(r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}
	return r.hydrate(ctx, row)
}

// List returns bookings newest-first, optionally filtered by status.
func (r *BookingRepository) List(ctx context.Context, status *booking.Status) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC`

	return r.queryBookings(ctx, query, args...)
}

// Search matches customer name or whatsapp number, case-insensitively.
func (r *BookingRepository) Search(ctx context.Context, q string) ([]*booking.Booking, error) {
	pattern := "%" + q + "%"
	return r.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE customer_name ILIKE $1 OR customer_whatsapp ILIKE $1
		ORDER BY created_at DESC`, pattern)
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]*booking.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var result []*booking.Booking
	for rows.Next() {
		row, err := scanBookingRow(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking row", err)
		}
		b, err := r.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking rows", err)
	}
	return result, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		if db.IsUniqueViolation(err, slotConstraint) {
			return infra.WrapRepoErr("booking slot already taken", err, infra.KindConflict)
		}
		return infra.WrapRepoErr("failed to update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

// SaveAdjustment writes the recomputed finance fields and replaces the addon
// snapshot rows so the stored lines always reproduce addons_total.
func (r *BookingRepository) SaveAdjustment(ctx context.Context, b *booking.Booking) error {
	err := db.RunInTx(ctx, r.pool, func(ctx context.Context, tx db.DBTX) error {
		tag, err := tx.Exec(ctx, `
			UPDATE bookings SET addons_total = $2, total_price = $3 WHERE id = $1`,
			b.ID(), b.Finance().AddonsTotal, b.Finance().TotalPrice)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM booking_addons WHERE booking_id = $1`, b.ID()); err != nil {
			return err
		}
		return insertAddonSnapshots(ctx, tx, b.ID(), b.Addons())
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return err
		}
		return infra.WrapRepoErr("failed to save price adjustment", err)
	}
	return nil
}

// SaveReschedule moves the booking to its new date and appends the latest
// history entry. The slot index still applies to the new date.
func (r *BookingRepository) SaveReschedule(ctx context.Context, b *booking.Booking) error {
	history := b.RescheduleHistory()
	if len(history) == 0 {
		return infra.WrapRepoErr("no reschedule entry to persist", nil, infra.KindDBFailure)
	}
	entry := history[len(history)-1]

	err := db.RunInTx(ctx, r.pool, func(ctx context.Context, tx db.DBTX) error {
		tag, err := tx.Exec(ctx, `
			UPDATE bookings SET scheduled_at = $2, status = $3 WHERE id = $1`,
			b.ID(), b.Schedule().Date(), string(b.Status()))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reschedule_history (id, booking_id, old_date, new_date, reason, changed_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), b.ID(), entry.OldDate, entry.NewDate, entry.Reason, entry.At)
		return err
	})
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			return err
		case db.IsUniqueViolation(err, slotConstraint):
			return infra.WrapRepoErr("booking slot already taken", err, infra.KindConflict)
		default:
			return infra.WrapRepoErr("failed to save reschedule", err)
		}
	}
	return nil
}

// AddPayment appends one payment row at the next position. The booking row
// is locked first so concurrent appends serialize instead of colliding on
// the same position.
func (r *BookingRepository) AddPayment(ctx context.Context, bookingID uuid.UUID, p booking.Payment) error {
	err := db.RunInTx(ctx, r.pool, func(ctx context.Context, tx db.DBTX) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `
			SELECT id FROM bookings WHERE id = $1 FOR UPDATE`, bookingID).Scan(&locked)
		if err != nil {
			if pgconv.IsNoRows(err) {
				return infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
			}
			return err
		}

		var next int
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(position), -1) + 1 FROM payments WHERE booking_id = $1`,
			bookingID).Scan(&next)
		if err != nil {
			return err
		}
		return insertPayment(ctx, tx, bookingID, next, p)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return err
		}
		return infra.WrapRepoErr("failed to add payment", err)
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

// IsSlotTaken is advisory: the partial unique index remains the authority,
// this read only gives callers an early answer.
func (r *BookingRepository) IsSlotTaken(ctx context.Context, at time.Time, excludeID *uuid.UUID) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE scheduled_at = $1
			  AND status <> 'Canceled'
			  AND ($2::uuid IS NULL OR id <> $2)
		)`, at, pgconv.UUIDPtrToPgtype(excludeID)).Scan(&taken)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check slot availability", err)
	}
	return taken, nil
}

func (r *BookingRepository) hydrate(ctx context.Context, row bookingRow) (*booking.Booking, error) {
	addons, err := r.loadAddons(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	payments, err := r.loadPayments(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	history, err := r.loadHistory(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	customer, err := booking.NewCustomer(row.CustomerName, row.CustomerWhatsApp, row.Category, row.ServiceID)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt booking customer row", err)
	}

	return booking.ReconstructBooking(
		row.ID,
		row.CreatedAt,
		booking.Status(row.Status),
		customer,
		booking.NewSchedule(row.ScheduledAt, row.Notes, row.LocationLink),
		booking.Finance{
			TotalPrice:       row.TotalPrice,
			ServiceBasePrice: row.ServiceBasePrice,
			BaseDiscount:     row.BaseDiscount,
			AddonsTotal:      row.AddonsTotal,
			CouponDiscount:   row.CouponDiscount,
			CouponCode:       pgconv.StringPtrFromPgtype(row.CouponCode),
			Payments:         payments,
		},
		addons,
		pgconv.UUIDPtrFromPgtype(row.PhotographerID),
		history,
	), nil
}

func (r *BookingRepository) loadAddons(ctx context.Context, bookingID uuid.UUID) ([]booking.AddonSnapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT addon_id, addon_name, quantity, price_at_booking
		FROM booking_addons WHERE booking_id = $1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load booking addons", err)
	}
	defer rows.Close()

	var result []booking.AddonSnapshot
	for rows.Next() {
		var s booking.AddonSnapshot
		if err := rows.Scan(&s.AddonID, &s.AddonName, &s.Quantity, &s.PriceAtBooking); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking addon", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *BookingRepository) loadPayments(ctx context.Context, bookingID uuid.UUID) ([]booking.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT paid_at, amount, note, proof_filename, proof_url, proof_backend
		FROM payments WHERE booking_id = $1 ORDER BY position`, bookingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load payments", err)
	}
	defer rows.Close()

	var result []booking.Payment
	for rows.Next() {
		var (
			p        booking.Payment
			filename pgtype.Text
			url      pgtype.Text
			backend  pgtype.Text
		)
		if err := rows.Scan(&p.Date, &p.Amount, &p.Note, &filename, &url, &backend); err != nil {
			return nil, infra.WrapRepoErr("failed to scan payment", err)
		}
		p.ProofFilename = pgconv.StringPtrFromPgtype(filename)
		p.ProofURL = pgconv.StringPtrFromPgtype(url)
		p.StorageBackend = pgconv.StringPtrFromPgtype(backend)
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *BookingRepository) loadHistory(ctx context.Context, bookingID uuid.UUID) ([]booking.RescheduleEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT old_date, new_date, reason, changed_at
		FROM reschedule_history WHERE booking_id = $1 ORDER BY changed_at`, bookingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load reschedule history", err)
	}
	defer rows.Close()

	var result []booking.RescheduleEntry
	for rows.Next() {
		var e booking.RescheduleEntry
		if err := rows.Scan(&e.OldDate, &e.NewDate, &e.Reason, &e.At); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reschedule entry", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookingRow(s rowScanner) (bookingRow, error) {
	var row bookingRow
	err := s.Scan(
		&row.ID, &row.CreatedAt, &row.Status,
		&row.CustomerName, &row.CustomerWhatsApp, &row.Category,
		&row.ServiceID, &row.ScheduledAt, &row.Notes, &row.LocationLink,
		&row.TotalPrice, &row.ServiceBasePrice, &row.BaseDiscount,
		&row.AddonsTotal, &row.CouponDiscount, &row.CouponCode, &row.PhotographerID,
	)
	return row, err
}

func insertAddonSnapshots(ctx context.Context, tx db.DBTX, bookingID uuid.UUID, addons []booking.AddonSnapshot) error {
	for _, a := range addons {
		_, err := tx.Exec(ctx, `
			INSERT INTO booking_addons (id, booking_id, addon_id, addon_name, quantity, price_at_booking)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), bookingID, a.AddonID, a.AddonName, a.Quantity, a.PriceAtBooking)
		if err != nil {
			return err
		}
	}
	return nil
}

func insertPayment(ctx context.Context, tx db.DBTX, bookingID uuid.UUID, position int, p booking.Payment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payments (id, booking_id, paid_at, amount, note, proof_filename, proof_url, proof_backend, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), bookingID, p.Date, p.Amount, p.Note,
		pgconv.StringPtrToPgtype(p.ProofFilename),
		pgconv.StringPtrToPgtype(p.ProofURL),
		pgconv.StringPtrToPgtype(p.StorageBackend),
		position)
	return err
}

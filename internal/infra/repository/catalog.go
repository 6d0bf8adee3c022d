package repository

import (
	"context"
	"time"

	"studio-booking/internal/domain/catalog"
	"studio-booking/internal/infra"
	"studio-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) FindServiceByID(ctx context.Context, id uuid.UUID) (*catalog.Service, error) {
	var (
		name          string
		basePrice     int64
		discountValue int64
		isActive      bool
		badgeText     pgtype.Text
		createdAt     time.Time
		updatedAt     time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT name, base_price, discount_value, is_active, badge_text, created_at, updated_at
		FROM services WHERE id = $1`, id).
		Scan(&name, &basePrice, &discountValue, &isActive, &badgeText, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("service not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find service by ID", err)
	}

	return catalog.ReconstructService(id, name, basePrice, discountValue, isActive,
		pgconv.StringPtrFromPgtype(badgeText), createdAt, updatedAt), nil
}

// ListServices returns active services only when activeOnly is set; the
// public catalog endpoint hides inactive entries, the admin one does not.
func (r *CatalogRepository) ListServices(ctx context.Context, activeOnly bool) ([]*catalog.Service, error) {
	query := `
		SELECT id, name, base_price, discount_value, is_active, badge_text, created_at, updated_at
		FROM services`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list services", err)
	}
	defer rows.Close()

	var result []*catalog.Service
	for rows.Next() {
		var (
			id            uuid.UUID
			name          string
			basePrice     int64
			discountValue int64
			isActive      bool
			badgeText     pgtype.Text
			createdAt     time.Time
			updatedAt     time.Time
		)
		if err := rows.Scan(&id, &name, &basePrice, &discountValue, &isActive, &badgeText, &createdAt, &updatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan service row", err)
		}
		result = append(result, catalog.ReconstructService(id, name, basePrice, discountValue, isActive,
			pgconv.StringPtrFromPgtype(badgeText), createdAt, updatedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate service rows", err)
	}
	return result, nil
}

func (r *CatalogRepository) FindAddonByID(ctx context.Context, id uuid.UUID) (*catalog.Addon, error) {
	var (
		name       string
		price      int64
		categories []string
		isActive   bool
		createdAt  time.Time
		updatedAt  time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT name, price, applicable_categories, is_active, created_at, updated_at
		FROM addons WHERE id = $1`, id).
		Scan(&name, &price, &categories, &isActive, &createdAt, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("addon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find addon by ID", err)
	}

	return catalog.ReconstructAddon(id, name, price, categories, isActive, createdAt, updatedAt), nil
}

func (r *CatalogRepository) ListAddons(ctx context.Context, activeOnly bool) ([]*catalog.Addon, error) {
	query := `
		SELECT id, name, price, applicable_categories, is_active, created_at, updated_at
		FROM addons`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list addons", err)
	}
	defer rows.Close()

	var result []*catalog.Addon
	for rows.Next() {
		var (
			id         uuid.UUID
			name       string
			price      int64
			categories []string
			isActive   bool
			createdAt  time.Time
			updatedAt  time.Time
		)
		if err := rows.Scan(&id, &name, &price, &categories, &isActive, &createdAt, &updatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan addon row", err)
		}
		result = append(result, catalog.ReconstructAddon(id, name, price, categories, isActive, createdAt, updatedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate addon rows", err)
	}
	return result, nil
}

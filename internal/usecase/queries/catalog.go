package queries

import (
	"context"

	"studio-booking/internal/domain/catalog"
	"studio-booking/internal/pkg/errs"
	"studio-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type ServiceView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	BasePrice     int64     `json:"base_price"`
	DiscountValue int64     `json:"discount_value"`
	IsActive      bool      `json:"is_active"`
	BadgeText     *string   `json:"badge_text,omitempty"`
}

type CatalogAddonView struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Price                int64     `json:"price"`
	ApplicableCategories []string  `json:"applicable_categories,omitempty"`
	IsActive             bool      `json:"is_active"`
}

type CatalogReader interface {
	ListServices(ctx context.Context, activeOnly bool) ([]*catalog.Service, error)
	ListAddons(ctx context.Context, activeOnly bool) ([]*catalog.Addon, error)
}

type CatalogQueries interface {
	ListServices(ctx context.Context, activeOnly bool) ([]ServiceView, error)
	ListAddons(ctx context.Context, activeOnly bool) ([]CatalogAddonView, error)
}

type catalogQueriesImpl struct {
	reader CatalogReader
}

func NewCatalogQueries(reader CatalogReader) CatalogQueries {
	return &catalogQueriesImpl{reader: reader}
}

func (q *catalogQueriesImpl) ListServices(ctx context.Context, activeOnly bool) ([]ServiceView, error) {
	services, err := q.reader.ListServices(ctx, activeOnly)
	if err != nil {
		return nil, errs.Mark(err, commands.ErrDatabaseOperationFailed)
	}

	views := make([]ServiceView, len(services))
	for i, s := range services {
		views[i] = ServiceView{
			ID:            s.ID(),
			Name:          s.Name(),
			BasePrice:     s.BasePrice(),
			DiscountValue: s.DiscountValue(),
			IsActive:      s.IsActive(),
			BadgeText:     s.BadgeText(),
		}
	}
	return views, nil
}

func (q *catalogQueriesImpl) ListAddons(ctx context.Context, activeOnly bool) ([]CatalogAddonView, error) {
	addons, err := q.reader.ListAddons(ctx, activeOnly)
	if err != nil {
		return nil, errs.Mark(err, commands.ErrDatabaseOperationFailed)
	}

	views := make([]CatalogAddonView, len(addons))
	for i, a := range addons {
		views[i] = CatalogAddonView{
			ID:                   a.ID(),
			Name:                 a.Name(),
			Price:                a.Price(),
			ApplicableCategories: a.ApplicableCategories(),
			IsActive:             a.IsActive(),
		}
	}
	return views, nil
}

package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyAddonName = errors.New("addon name cannot be empty")

// Addon is an optional extra attached to a booking. Price may be negative,
// which is the "downgrade addon" discount mechanism. applicableCategories
// restricts the addon to named service categories; nil means unrestricted.
type Addon struct {
	id                   uuid.UUID
	name                 string
	price                int64
	applicableCategories []string
	isActive             bool
	createdAt            time.Time
	updatedAt            time.Time
}

func NewAddon(id uuid.UUID, name string, price int64, applicableCategories []string, isActive bool) (*Addon, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyAddonName
	}

	return &Addon{
		id:                   id,
		name:                 name,
		price:                price,
		applicableCategories: applicableCategories,
		isActive:             isActive,
	}, nil
}

func ReconstructAddon(
	id uuid.UUID,
	name string,
	price int64,
	applicableCategories []string,
	isActive bool,
	createdAt, updatedAt time.Time,
) *Addon {
	return &Addon{
		id:                   id,
		name:                 name,
		price:                price,
		applicableCategories: applicableCategories,
		isActive:             isActive,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

// AppliesTo reports whether the addon may be attached to a booking in the
// given service category.
func (a *Addon) AppliesTo(category string) bool {
	if len(a.applicableCategories) == 0 {
		return true
	}
	for _, c := range a.applicableCategories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

func (a *Addon) ID() uuid.UUID                  { return a.id }
func (a *Addon) Name() string                   { return a.name }
func (a *Addon) Price() int64                   { return a.price }
func (a *Addon) ApplicableCategories() []string { return a.applicableCategories }
func (a *Addon) IsActive() bool                 { return a.isActive }
func (a *Addon) CreatedAt() time.Time           { return a.createdAt }
func (a *Addon) UpdatedAt() time.Time           { return a.updatedAt }

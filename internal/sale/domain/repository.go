package domain

import (
	"context"
	"time"

	"github.com/devstorehq/sales-service/pkg/db/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListSalesFilter narrows a sale listing.
type ListSalesFilter struct {
	CustomerID *uuid.UUID
	BranchID   *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// Repository persists whole Sale object graphs. Finders return (nil, nil)
// when nothing matches. Implementations rehydrate sales with the persisted
// per-item discounts intact; the discount pass is not re-run on load.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sale *Sale) error
	Update(ctx context.Context, db *gorm.DB, sale *Sale) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Sale, error)
	FindBySaleNumber(ctx context.Context, db *gorm.DB, saleNumber string) (*Sale, error)
	List(ctx context.Context, db *gorm.DB, filter ListSalesFilter, page pagination.Pagination) ([]*Sale, error)
	SaleNumberExists(ctx context.Context, db *gorm.DB, saleNumber string) (bool, error)
}

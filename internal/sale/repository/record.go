package repository

import (
	"fmt"
	"time"

	"github.com/devstorehq/sales-service/internal/sale/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRecord is the persistence shape of a sale aggregate.
type SaleRecord struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey"`
	SaleNumber         string           `gorm:"type:text;not null;uniqueIndex"`
	SaleDate           time.Time        `gorm:"not null;index"`
	CustomerID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	CustomerName       string           `gorm:"type:text;not null"`
	CustomerEmail      string           `gorm:"type:text;not null"`
	BranchID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	BranchName         string           `gorm:"type:text;not null"`
	BranchLocation     string           `gorm:"type:text;not null"`
	SaleDiscount       decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	Currency           string           `gorm:"type:text;not null"`
	Cancelled          bool             `gorm:"not null;default:false"`
	CancellationReason string           `gorm:"type:text"`
	CreatedAt          time.Time        `gorm:"not null"`
	ModifiedAt         *time.Time       `gorm:""`
	Items              []SaleItemRecord `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName sets the database table name.
func (SaleRecord) TableName() string { return "sales" }

// SaleItemRecord is the persistence shape of one line item. Position keeps
// the aggregate's insertion order stable across loads.
type SaleItemRecord struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position         int             `gorm:"not null"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName      string          `gorm:"type:text;not null"`
	ProductCategory  string          `gorm:"type:text;not null"`
	ProductUnitPrice decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Quantity         int             `gorm:"not null"`
	UnitPrice        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Discount         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Currency         string          `gorm:"type:text;not null"`
	CreatedAt        time.Time       `gorm:"not null"`
	ModifiedAt       *time.Time      `gorm:""`
}

// TableName sets the database table name.
func (SaleItemRecord) TableName() string { return "sale_items" }

// Models lists the persistence models for schema migration.
func Models() []any {
	return []any{&SaleRecord{}, &SaleItemRecord{}}
}

func toRecord(sale *domain.Sale) *SaleRecord {
	items := sale.Items()
	itemRecords := make([]SaleItemRecord, 0, len(items))
	for i, item := range items {
		itemRecords = append(itemRecords, SaleItemRecord{
			ID:               item.ID(),
			SaleID:           sale.ID(),
			Position:         i,
			ProductID:        item.Product().ProductID,
			ProductName:      item.Product().Name,
			ProductCategory:  item.Product().Category,
			ProductUnitPrice: item.Product().UnitPrice.Amount(),
			Quantity:         item.Quantity(),
			UnitPrice:        item.UnitPrice().Amount(),
			Discount:         item.Discount().Amount(),
			Currency:         item.UnitPrice().Currency(),
			CreatedAt:        item.CreatedAt(),
			ModifiedAt:       item.ModifiedAt(),
		})
	}
	return &SaleRecord{
		ID:                 sale.ID(),
		SaleNumber:         sale.SaleNumber(),
		SaleDate:           sale.SaleDate(),
		CustomerID:         sale.Customer().CustomerID,
		CustomerName:       sale.Customer().Name,
		CustomerEmail:      sale.Customer().Email,
		BranchID:           sale.Branch().BranchID,
		BranchName:         sale.Branch().Name,
		BranchLocation:     sale.Branch().Location,
		SaleDiscount:       sale.SaleLevelDiscount().Amount(),
		Currency:           sale.Currency(),
		Cancelled:          sale.IsCancelled(),
		CancellationReason: sale.CancellationReason(),
		CreatedAt:          sale.CreatedAt(),
		ModifiedAt:         sale.ModifiedAt(),
		Items:              itemRecords,
	}
}

// toDomain rehydrates the aggregate from its records. Persisted per-item
// discounts are used as-is; the discount pass is not re-run here.
func toDomain(rec *SaleRecord) (*domain.Sale, error) {
	items := make([]*domain.SaleItem, 0, len(rec.Items))
	for _, ir := range rec.Items {
		productPrice, err := domain.NewMoney(ir.ProductUnitPrice, ir.Currency)
		if err != nil {
			return nil, fmt.Errorf("sale %s item %s: %w", rec.ID, ir.ID, err)
		}
		product, err := domain.NewProductSnapshot(ir.ProductID, ir.ProductName, ir.ProductCategory, productPrice)
		if err != nil {
			return nil, fmt.Errorf("sale %s item %s: %w", rec.ID, ir.ID, err)
		}
		unitPrice, err := domain.NewMoney(ir.UnitPrice, ir.Currency)
		if err != nil {
			return nil, fmt.Errorf("sale %s item %s: %w", rec.ID, ir.ID, err)
		}
		discount, err := domain.NewMoney(ir.Discount, ir.Currency)
		if err != nil {
			return nil, fmt.Errorf("sale %s item %s: %w", rec.ID, ir.ID, err)
		}
		item, err := domain.RehydrateItem(ir.ID, product, ir.Quantity, unitPrice, discount, ir.CreatedAt, ir.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("sale %s item %s: %w", rec.ID, ir.ID, err)
		}
		items = append(items, item)
	}

	customer, err := domain.NewCustomerSnapshot(rec.CustomerID, rec.CustomerName, rec.CustomerEmail)
	if err != nil {
		return nil, fmt.Errorf("sale %s: %w", rec.ID, err)
	}
	branch, err := domain.NewBranchSnapshot(rec.BranchID, rec.BranchName, rec.BranchLocation)
	if err != nil {
		return nil, fmt.Errorf("sale %s: %w", rec.ID, err)
	}
	saleDiscount, err := domain.NewMoney(rec.SaleDiscount, rec.Currency)
	if err != nil {
		return nil, fmt.Errorf("sale %s: %w", rec.ID, err)
	}

	return domain.RehydrateSale(
		rec.ID,
		rec.SaleNumber,
		rec.SaleDate,
		customer,
		branch,
		items,
		saleDiscount,
		rec.Cancelled,
		rec.CancellationReason,
		rec.CreatedAt,
		rec.ModifiedAt,
	)
}

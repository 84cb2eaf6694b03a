package domain

import (
	"context"
	"time"

	"github.com/devstorehq/sales-service/pkg/db/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSaleItem is one requested line on a new sale. UnitPrice overrides
// the product's list price when set.
type CreateSaleItem struct {
	ProductID         uuid.UUID
	ProductName       string
	ProductCategory   string
	ProductUnitPrice  decimal.Decimal
	ProductCurrency   string
	Quantity          int
	UnitPrice         *decimal.Decimal
	UnitPriceCurrency string
}

type CreateSaleRequest struct {
	CustomerID     uuid.UUID
	CustomerName   string
	CustomerEmail  string
	BranchID       uuid.UUID
	BranchName     string
	BranchLocation string
	Items          []CreateSaleItem
}

type AddItemRequest struct {
	SaleID uuid.UUID
	Item   CreateSaleItem
}

// UpdateItemRequest changes a line's quantity, unit price, or both in one
// operation. Nil fields are left untouched; Currency defaults to the line's
// current currency.
type UpdateItemRequest struct {
	SaleID    uuid.UUID
	ItemID    uuid.UUID
	Quantity  *int
	UnitPrice *decimal.Decimal
	Currency  string
}

type RemoveItemRequest struct {
	SaleID uuid.UUID
	ItemID uuid.UUID
}

type CancelSaleRequest struct {
	SaleID uuid.UUID
	Reason string
}

type ListSalesRequest struct {
	PageToken  string
	PageSize   int32
	CustomerID *uuid.UUID
	BranchID   *uuid.UUID
	From       *time.Time
	To         *time.Time
}

type ListSalesResponse struct {
	pagination.PageInfo
	Sales []SaleView `json:"sales"`
}

// SaleItemView is the read model for one line item.
type SaleItemView struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	ProductCategory  string          `json:"product_category"`
	ProductUnitPrice decimal.Decimal `json:"product_unit_price"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Discount         decimal.Decimal `json:"discount"`
	LineTotal        decimal.Decimal `json:"line_total"`
	Currency         string          `json:"currency"`
	CreatedAt        time.Time       `json:"created_at"`
	ModifiedAt       *time.Time      `json:"modified_at,omitempty"`
}

// SaleView is the read model for a whole sale, totals included.
type SaleView struct {
	ID                 uuid.UUID       `json:"id"`
	SaleNumber         string          `json:"sale_number"`
	SaleDate           time.Time       `json:"sale_date"`
	CustomerID         uuid.UUID       `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	CustomerEmail      string          `json:"customer_email"`
	BranchID           uuid.UUID       `json:"branch_id"`
	BranchName         string          `json:"branch_name"`
	BranchLocation     string          `json:"branch_location"`
	Items              []SaleItemView  `json:"items"`
	TotalQuantity      int             `json:"total_quantity"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	SaleLevelDiscount  decimal.Decimal `json:"sale_level_discount"`
	TotalDiscount      decimal.Decimal `json:"total_discount"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	Currency           string          `json:"currency"`
	IsCancelled        bool            `json:"is_cancelled"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	ModifiedAt         *time.Time      `json:"modified_at,omitempty"`
}

// NewSaleView projects an aggregate into its read model.
func NewSaleView(sale *Sale) SaleView {
	items := sale.Items()
	views := make([]SaleItemView, 0, len(items))
	for _, item := range items {
		views = append(views, SaleItemView{
			ID:               item.ID(),
			ProductID:        item.Product().ProductID,
			ProductName:      item.Product().Name,
			ProductCategory:  item.Product().Category,
			ProductUnitPrice: item.Product().UnitPrice.Amount(),
			Quantity:         item.Quantity(),
			UnitPrice:        item.UnitPrice().Amount(),
			Discount:         item.Discount().Amount(),
			LineTotal:        item.LineTotal().Amount(),
			Currency:         item.UnitPrice().Currency(),
			CreatedAt:        item.CreatedAt(),
			ModifiedAt:       item.ModifiedAt(),
		})
	}
	return SaleView{
		ID:                 sale.ID(),
		SaleNumber:         sale.SaleNumber(),
		SaleDate:           sale.SaleDate(),
		CustomerID:         sale.Customer().CustomerID,
		CustomerName:       sale.Customer().Name,
		CustomerEmail:      sale.Customer().Email,
		BranchID:           sale.Branch().BranchID,
		BranchName:         sale.Branch().Name,
		BranchLocation:     sale.Branch().Location,
		Items:              views,
		TotalQuantity:      sale.TotalQuantity(),
		Subtotal:           sale.Subtotal().Amount(),
		SaleLevelDiscount:  sale.SaleLevelDiscount().Amount(),
		TotalDiscount:      sale.TotalDiscount().Amount(),
		TotalAmount:        sale.TotalAmount().Amount(),
		Currency:           sale.Currency(),
		IsCancelled:        sale.IsCancelled(),
		CancellationReason: sale.CancellationReason(),
		CreatedAt:          sale.CreatedAt(),
		ModifiedAt:         sale.ModifiedAt(),
	}
}

// Service is the application boundary for sales transactions.
type Service interface {
	Create(ctx context.Context, req CreateSaleRequest) (SaleView, error)
	GetByID(ctx context.Context, id uuid.UUID) (SaleView, error)
	GetBySaleNumber(ctx context.Context, saleNumber string) (SaleView, error)
	List(ctx context.Context, req ListSalesRequest) (ListSalesResponse, error)
	AddItem(ctx context.Context, req AddItemRequest) (SaleView, error)
	UpdateItem(ctx context.Context, req UpdateItemRequest) (SaleView, error)
	RemoveItem(ctx context.Context, req RemoveItemRequest) (SaleView, error)
	Cancel(ctx context.Context, req CancelSaleRequest) (SaleView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is a lifecycle notification raised by a sale mutation. Mutators
// return the event they raised; the caller owning the transaction decides
// when and where to dispatch it.
type Event interface {
	// Name identifies the event kind for routing.
	Name() string
	// Occurred is when the mutation happened.
	Occurred() time.Time
}

// Kinds of sale modification carried by SaleModified.
const (
	ModificationItemAdded           = "item_added"
	ModificationItemQuantityUpdated = "item_quantity_updated"
	ModificationItemPriceUpdated    = "item_price_updated"
	ModificationItemRemoved         = "item_removed"
)

// SaleCreated is raised once, by the sale factory.
type SaleCreated struct {
	EventID    uuid.UUID       `json:"event_id"`
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	CustomerID uuid.UUID       `json:"customer_id"`
	BranchID   uuid.UUID       `json:"branch_id"`
	Total      decimal.Decimal `json:"total_amount"`
	Currency   string          `json:"currency"`
	ItemCount  int             `json:"item_count"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (e SaleCreated) Name() string        { return "sale.created" }
func (e SaleCreated) Occurred() time.Time { return e.OccurredAt }

// SaleModified is raised by every structural mutation of an active sale.
type SaleModified struct {
	EventID       uuid.UUID       `json:"event_id"`
	SaleID        uuid.UUID       `json:"sale_id"`
	SaleNumber    string          `json:"sale_number"`
	Total         decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	TotalQuantity int             `json:"total_quantity"`
	Modification  string          `json:"modification"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func (e SaleModified) Name() string        { return "sale.modified" }
func (e SaleModified) Occurred() time.Time { return e.OccurredAt }

// SaleCancelled is raised by the one-way cancellation transition. The refund
// amount is the sale total captured at the moment of cancellation.
type SaleCancelled struct {
	EventID      uuid.UUID       `json:"event_id"`
	SaleID       uuid.UUID       `json:"sale_id"`
	SaleNumber   string          `json:"sale_number"`
	Reason       string          `json:"reason"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Currency     string          `json:"currency"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

func (e SaleCancelled) Name() string        { return "sale.cancelled" }
func (e SaleCancelled) Occurred() time.Time { return e.OccurredAt }

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Quantity bounds per distinct product within one sale.
const (
	MinQuantity = 1
	MaxQuantity = 20
)

// SaleItem is a line within a sale. It is owned exclusively by its Sale:
// all mutation goes through the aggregate, which recalculates discounts
// afterwards.
type SaleItem struct {
	id         uuid.UUID
	product    ProductSnapshot
	quantity   int
	unitPrice  Money
	discount   Money
	createdAt  time.Time
	modifiedAt *time.Time
}

// newSaleItem builds a line item. The unit price defaults to the product
// snapshot's price when no override is given.
func newSaleItem(product ProductSnapshot, quantity int, unitPriceOverride *Money) (*SaleItem, error) {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	unitPrice := product.UnitPrice
	if unitPriceOverride != nil {
		unitPrice = *unitPriceOverride
	}
	return &SaleItem{
		id:        uuid.New(),
		product:   product,
		quantity:  quantity,
		unitPrice: unitPrice,
		discount:  Zero(unitPrice.Currency()),
		createdAt: time.Now().UTC(),
	}, nil
}

// RehydrateItem rebuilds a persisted line item. Structural invariants are
// still checked; new-construction business rules are not re-run and the
// stored discount is trusted as-is.
func RehydrateItem(id uuid.UUID, product ProductSnapshot, quantity int, unitPrice, discount Money, createdAt time.Time, modifiedAt *time.Time) (*SaleItem, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: item id is required", ErrInvalidID)
	}
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}
	if discount.Currency() != unitPrice.Currency() {
		return nil, fmt.Errorf("%w: discount %s vs price %s", ErrCurrencyMismatch, discount.Currency(), unitPrice.Currency())
	}
	return &SaleItem{
		id:         id,
		product:    product,
		quantity:   quantity,
		unitPrice:  unitPrice,
		discount:   discount,
		createdAt:  createdAt,
		modifiedAt: modifiedAt,
	}, nil
}

func (i *SaleItem) ID() uuid.UUID            { return i.id }
func (i *SaleItem) Product() ProductSnapshot { return i.product }
func (i *SaleItem) Quantity() int            { return i.quantity }
func (i *SaleItem) UnitPrice() Money         { return i.unitPrice }
func (i *SaleItem) Discount() Money          { return i.discount }
func (i *SaleItem) CreatedAt() time.Time     { return i.createdAt }
func (i *SaleItem) ModifiedAt() *time.Time   { return i.modifiedAt }

// LineTotal is unitPrice x quantity - discount, computed on every call.
func (i *SaleItem) LineTotal() Money {
	subtotal := i.lineSubtotal()
	total, err := subtotal.Sub(i.discount)
	if err != nil {
		// Discount never exceeds the subtotal nor changes currency; both are
		// enforced on every write path.
		return Zero(i.unitPrice.Currency())
	}
	return total
}

// lineSubtotal is the pre-discount amount for the line.
func (i *SaleItem) lineSubtotal() Money {
	subtotal, err := i.unitPrice.MulInt(i.quantity)
	if err != nil {
		return Zero(i.unitPrice.Currency())
	}
	return subtotal
}

func (i *SaleItem) updateQuantity(newQuantity int) error {
	if newQuantity < MinQuantity || newQuantity > MaxQuantity {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, newQuantity)
	}
	i.quantity = newQuantity
	i.markModified()
	return nil
}

func (i *SaleItem) applyDiscount(amount Money) error {
	if amount.Currency() != i.unitPrice.Currency() {
		return fmt.Errorf("%w: discount %s vs price %s", ErrCurrencyMismatch, amount.Currency(), i.unitPrice.Currency())
	}
	if amount.Amount().GreaterThan(i.lineSubtotal().Amount()) {
		return fmt.Errorf("%w: %s over %s", ErrDiscountExceedsLineTotal, amount, i.lineSubtotal())
	}
	i.discount = amount
	i.markModified()
	return nil
}

func (i *SaleItem) updateUnitPrice(newPrice Money) error {
	if newPrice.Currency() != i.unitPrice.Currency() {
		return fmt.Errorf("%w: new price %s vs %s", ErrCurrencyMismatch, newPrice.Currency(), i.unitPrice.Currency())
	}
	i.unitPrice = newPrice
	// A discount that no longer fits under the new subtotal is reset, not
	// rejected.
	if i.discount.Amount().GreaterThan(i.lineSubtotal().Amount()) {
		i.discount = Zero(i.unitPrice.Currency())
	}
	i.markModified()
	return nil
}

func (i *SaleItem) markModified() {
	now := time.Now().UTC()
	i.modifiedAt = &now
}

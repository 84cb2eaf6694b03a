package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxDistinctProducts caps how many different products one sale may carry.
const MaxDistinctProducts = 50

// Quantity-tiered discount percentages, applied per line item by its own
// quantity:
//
//	quantity < 4        no discount
//	4 <= quantity <= 9  10%
//	10 <= quantity <= 20	20%
var (
	tierTenPercent    = decimal.NewFromInt(10)
	tierTwentyPercent = decimal.NewFromInt(20)
)

// Sale is the aggregate root for a sales transaction. It owns its line
// items, enforces quantity and currency invariants, recalculates the tiered
// discounts after every structural mutation, and returns a lifecycle Event
// from each mutator for the enclosing transaction to dispatch.
//
// A Sale is not safe for concurrent mutation; callers serialize access.
type Sale struct {
	id                 uuid.UUID
	saleNumber         string
	saleDate           time.Time
	customer           CustomerSnapshot
	branch             BranchSnapshot
	items              []*SaleItem
	saleLevelDiscount  Money
	cancelled          bool
	cancellationReason string
	createdAt          time.Time
	modifiedAt         *time.Time
}

// NewSale creates an active, empty sale. The sale number is trimmed and
// uppercased and must be non-blank.
func NewSale(saleNumber string, saleDate time.Time, customer CustomerSnapshot, branch BranchSnapshot) (*Sale, Event, error) {
	number := strings.ToUpper(strings.TrimSpace(saleNumber))
	if number == "" {
		return nil, nil, ErrInvalidSaleNumber
	}
	if customer.CustomerID == uuid.Nil {
		return nil, nil, fmt.Errorf("%w: customer is required", ErrInvalidCustomer)
	}
	if branch.BranchID == uuid.Nil {
		return nil, nil, fmt.Errorf("%w: branch is required", ErrInvalidBranch)
	}

	s := &Sale{
		id:                uuid.New(),
		saleNumber:        number,
		saleDate:          saleDate,
		customer:          customer,
		branch:            branch,
		saleLevelDiscount: Zero(DefaultCurrency),
		createdAt:         time.Now().UTC(),
	}

	evt := SaleCreated{
		EventID:    uuid.New(),
		SaleID:     s.id,
		SaleNumber: s.saleNumber,
		CustomerID: customer.CustomerID,
		BranchID:   branch.BranchID,
		Total:      decimal.Zero,
		Currency:   DefaultCurrency,
		ItemCount:  0,
		OccurredAt: time.Now().UTC(),
	}
	return s, evt, nil
}

// RehydrateSale rebuilds a persisted sale without re-running the business
// checks that apply to new construction. Item discounts are trusted as
// persisted; no recalculation happens on load.
func RehydrateSale(id uuid.UUID, saleNumber string, saleDate time.Time, customer CustomerSnapshot, branch BranchSnapshot,
	items []*SaleItem, saleLevelDiscount Money, cancelled bool, cancellationReason string,
	createdAt time.Time, modifiedAt *time.Time) (*Sale, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: sale id is required", ErrInvalidID)
	}
	if strings.TrimSpace(saleNumber) == "" {
		return nil, ErrInvalidSaleNumber
	}
	return &Sale{
		id:                 id,
		saleNumber:         saleNumber,
		saleDate:           saleDate,
		customer:           customer,
		branch:             branch,
		items:              items,
		saleLevelDiscount:  saleLevelDiscount,
		cancelled:          cancelled,
		cancellationReason: cancellationReason,
		createdAt:          createdAt,
		modifiedAt:         modifiedAt,
	}, nil
}

func (s *Sale) ID() uuid.UUID              { return s.id }
func (s *Sale) SaleNumber() string         { return s.saleNumber }
func (s *Sale) SaleDate() time.Time        { return s.saleDate }
func (s *Sale) Customer() CustomerSnapshot { return s.customer }
func (s *Sale) Branch() BranchSnapshot     { return s.branch }
func (s *Sale) SaleLevelDiscount() Money   { return s.saleLevelDiscount }
func (s *Sale) IsCancelled() bool          { return s.cancelled }
func (s *Sale) CancellationReason() string { return s.cancellationReason }
func (s *Sale) CreatedAt() time.Time       { return s.createdAt }
func (s *Sale) ModifiedAt() *time.Time     { return s.modifiedAt }

// Items returns the line items in insertion order. The slice is a copy; the
// items themselves stay owned by the sale.
func (s *Sale) Items() []*SaleItem {
	out := make([]*SaleItem, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns the line item with the given id, or ErrItemNotFound.
func (s *Sale) Item(itemID uuid.UUID) (*SaleItem, error) {
	for _, item := range s.items {
		if item.id == itemID {
			return item, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
}

// Currency is the currency of the sale's totals: the first item's unit price
// currency, or DefaultCurrency while the sale is empty.
func (s *Sale) Currency() string {
	if len(s.items) == 0 {
		return DefaultCurrency
	}
	return s.items[0].unitPrice.Currency()
}

// TotalQuantity sums the quantities of all items.
func (s *Sale) TotalQuantity() int {
	total := 0
	for _, item := range s.items {
		total += item.quantity
	}
	return total
}

// Subtotal is the pre-discount total over all items, computed on every call.
func (s *Sale) Subtotal() Money {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.lineSubtotal().Amount())
	}
	return Money{amount: total.Round(2), currency: s.Currency()}
}

// TotalDiscount sums the per-item discounts plus the sale-level discount,
// computed on every call.
func (s *Sale) TotalDiscount() Money {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.discount.Amount())
	}
	total = total.Add(s.saleLevelDiscount.Amount())
	return Money{amount: total.Round(2), currency: s.Currency()}
}

// TotalAmount is Subtotal - TotalDiscount, computed on every call.
func (s *Sale) TotalAmount() Money {
	total := s.Subtotal().Amount().Sub(s.TotalDiscount().Amount())
	return Money{amount: total.Round(2), currency: s.Currency()}
}

// AddItem adds quantity units of a product. Adding a product already in the
// sale merges into the existing line: the quantities are summed and the
// 20-unit cap is re-checked against the merged total, so a repeat add can be
// rejected even though the same quantity would pass as a fresh line. The
// unit price override only applies to a fresh line.
func (s *Sale) AddItem(product ProductSnapshot, quantity int, unitPriceOverride *Money) (Event, error) {
	if s.cancelled {
		return nil, fmt.Errorf("%w: cannot modify", ErrSaleCancelled)
	}

	if existing := s.findByProduct(product.ProductID); existing != nil {
		if err := existing.updateQuantity(existing.quantity + quantity); err != nil {
			return nil, err
		}
	} else {
		itemPrice := product.UnitPrice
		if unitPriceOverride != nil {
			itemPrice = *unitPriceOverride
		}
		if len(s.items) > 0 && itemPrice.Currency() != s.Currency() {
			return nil, fmt.Errorf("%w: item %s vs sale %s", ErrCurrencyMismatch, itemPrice.Currency(), s.Currency())
		}
		if len(s.items) >= MaxDistinctProducts {
			return nil, ErrTooManyItems
		}
		item, err := newSaleItem(product, quantity, unitPriceOverride)
		if err != nil {
			return nil, err
		}
		s.items = append(s.items, item)
	}

	if err := s.recalculateDiscounts(); err != nil {
		return nil, err
	}
	s.markModified()
	return s.modifiedEvent(ModificationItemAdded), nil
}

// UpdateItemQuantity sets a line's quantity and re-runs the discount pass.
func (s *Sale) UpdateItemQuantity(itemID uuid.UUID, newQuantity int) (Event, error) {
	if s.cancelled {
		return nil, fmt.Errorf("%w: cannot modify", ErrSaleCancelled)
	}
	item, err := s.Item(itemID)
	if err != nil {
		return nil, err
	}
	if err := item.updateQuantity(newQuantity); err != nil {
		return nil, err
	}
	if err := s.recalculateDiscounts(); err != nil {
		return nil, err
	}
	s.markModified()
	return s.modifiedEvent(ModificationItemQuantityUpdated), nil
}

// UpdateItemPrice overrides a line's unit price and re-runs the discount
// pass. The new price must be in the line's currency.
func (s *Sale) UpdateItemPrice(itemID uuid.UUID, newPrice Money) (Event, error) {
	if s.cancelled {
		return nil, fmt.Errorf("%w: cannot modify", ErrSaleCancelled)
	}
	item, err := s.Item(itemID)
	if err != nil {
		return nil, err
	}
	if err := item.updateUnitPrice(newPrice); err != nil {
		return nil, err
	}
	if err := s.recalculateDiscounts(); err != nil {
		return nil, err
	}
	s.markModified()
	return s.modifiedEvent(ModificationItemPriceUpdated), nil
}

// RemoveItem deletes a line and re-runs the discount pass.
func (s *Sale) RemoveItem(itemID uuid.UUID) (Event, error) {
	if s.cancelled {
		return nil, fmt.Errorf("%w: cannot modify", ErrSaleCancelled)
	}
	idx := -1
	for i, item := range s.items {
		if item.id == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	if err := s.recalculateDiscounts(); err != nil {
		return nil, err
	}
	s.markModified()
	return s.modifiedEvent(ModificationItemRemoved), nil
}

// Cancel transitions the sale to its terminal state. The reason is required
// and the transition cannot be repeated or undone. The refund amount in the
// returned event is the total at the moment of cancellation.
func (s *Sale) Cancel(reason string) (Event, error) {
	if s.cancelled {
		return nil, fmt.Errorf("%w: already cancelled", ErrSaleCancelled)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrInvalidCancellation
	}

	refund := s.TotalAmount()
	s.cancelled = true
	s.cancellationReason = reason
	s.markModified()

	return SaleCancelled{
		EventID:      uuid.New(),
		SaleID:       s.id,
		SaleNumber:   s.saleNumber,
		Reason:       reason,
		RefundAmount: refund.Amount(),
		Currency:     refund.Currency(),
		OccurredAt:   time.Now().UTC(),
	}, nil
}

// recalculateDiscounts runs the tiered discount rule over every item. The
// pass is a pure function of each item's own quantity, so it is idempotent
// and order independent, but it is not incrementally maintained and must be
// re-run after every structural mutation.
func (s *Sale) recalculateDiscounts() error {
	if len(s.items) == 0 {
		s.saleLevelDiscount = Zero(s.Currency())
		return nil
	}

	for _, item := range s.items {
		pct := discountPercentFor(item.quantity)
		if pct.IsZero() {
			// An explicit zero in the item's currency, so zero-discount lines
			// still feed currency-typed values into the sums.
			if err := item.applyDiscount(Zero(item.unitPrice.Currency())); err != nil {
				return err
			}
			continue
		}
		subtotal := item.lineSubtotal()
		remaining, err := subtotal.ApplyDiscountPercent(pct)
		if err != nil {
			return err
		}
		discount, err := subtotal.Sub(remaining)
		if err != nil {
			return err
		}
		if err := item.applyDiscount(discount); err != nil {
			return err
		}
	}

	// All discounting is at item granularity. The field stays for a future
	// sale-wide promotion layered on top.
	s.saleLevelDiscount = Zero(s.Currency())
	return nil
}

func discountPercentFor(quantity int) decimal.Decimal {
	switch {
	case quantity < 4:
		return decimal.Zero
	case quantity <= 9:
		return tierTenPercent
	default:
		return tierTwentyPercent
	}
}

func (s *Sale) findByProduct(productID uuid.UUID) *SaleItem {
	for _, item := range s.items {
		if item.product.ProductID == productID {
			return item
		}
	}
	return nil
}

func (s *Sale) modifiedEvent(modification string) Event {
	total := s.TotalAmount()
	return SaleModified{
		EventID:       uuid.New(),
		SaleID:        s.id,
		SaleNumber:    s.saleNumber,
		Total:         total.Amount(),
		Currency:      total.Currency(),
		TotalQuantity: s.TotalQuantity(),
		Modification:  modification,
		OccurredAt:    time.Now().UTC(),
	}
}

func (s *Sale) markModified() {
	now := time.Now().UTC()
	s.modifiedAt = &now
}

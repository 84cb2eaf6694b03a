package domain

import "errors"

var (
	// Money errors.
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrInvalidCurrency   = errors.New("currency cannot be empty")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
	ErrInvalidFactor     = errors.New("factor cannot be negative")
	ErrInvalidPercentage = errors.New("discount percentage must be between 0 and 100")

	// Item errors.
	ErrInvalidQuantity          = errors.New("quantity must be between 1 and 20")
	ErrDiscountExceedsLineTotal = errors.New("discount cannot exceed line total")

	// Snapshot errors.
	ErrInvalidProduct  = errors.New("invalid product snapshot")
	ErrInvalidCustomer = errors.New("invalid customer snapshot")
	ErrInvalidBranch   = errors.New("invalid branch snapshot")

	// Sale errors.
	ErrInvalidSaleNumber   = errors.New("sale number cannot be empty")
	ErrSaleCancelled       = errors.New("sale is cancelled")
	ErrInvalidCancellation = errors.New("cancellation reason is required")
	ErrItemNotFound        = errors.New("sale item not found")
	ErrSaleNotFound        = errors.New("sale not found")
	ErrTooManyItems        = errors.New("sale cannot have more than 50 distinct products")
	ErrNoItems             = errors.New("sale requires at least one item")
	ErrEmptyItemUpdate     = errors.New("quantity or unit price is required")
	ErrInvalidID           = errors.New("invalid id")
)

// IsInvalidArgument reports whether err is a validation failure of caller
// supplied input.
func IsInvalidArgument(err error) bool {
	switch {
	case errors.Is(err, ErrNegativeAmount),
		errors.Is(err, ErrInvalidCurrency),
		errors.Is(err, ErrInvalidFactor),
		errors.Is(err, ErrInvalidPercentage),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrDiscountExceedsLineTotal),
		errors.Is(err, ErrInvalidProduct),
		errors.Is(err, ErrInvalidCustomer),
		errors.Is(err, ErrInvalidBranch),
		errors.Is(err, ErrInvalidSaleNumber),
		errors.Is(err, ErrInvalidCancellation),
		errors.Is(err, ErrTooManyItems),
		errors.Is(err, ErrNoItems),
		errors.Is(err, ErrEmptyItemUpdate),
		errors.Is(err, ErrInvalidID):
		return true
	default:
		return false
	}
}

// IsCurrencyMismatch reports whether err is an arithmetic operation between
// incompatible currencies.
func IsCurrencyMismatch(err error) bool {
	return errors.Is(err, ErrCurrencyMismatch)
}

// IsStateConflict reports whether err is a mutation rejected by the sale's
// lifecycle state.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrSaleCancelled)
}

// IsNotFound reports whether err means a sale or item does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSaleNotFound) || errors.Is(err, ErrItemNotFound)
}

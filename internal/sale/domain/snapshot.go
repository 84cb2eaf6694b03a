package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ProductSnapshot is the product identity from the catalog bounded context,
// denormalized at add-time. The unit price is the product's list price; a
// sale item may override it.
type ProductSnapshot struct {
	ProductID uuid.UUID
	Name      string
	Category  string
	UnitPrice Money
}

// NewProductSnapshot validates and builds a product snapshot.
func NewProductSnapshot(productID uuid.UUID, name, category string, unitPrice Money) (ProductSnapshot, error) {
	if productID == uuid.Nil {
		return ProductSnapshot{}, fmt.Errorf("%w: product id is required", ErrInvalidProduct)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ProductSnapshot{}, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return ProductSnapshot{}, fmt.Errorf("%w: category is required", ErrInvalidProduct)
	}
	return ProductSnapshot{
		ProductID: productID,
		Name:      name,
		Category:  category,
		UnitPrice: unitPrice,
	}, nil
}

// CustomerSnapshot is the customer identity from another bounded context,
// denormalized to avoid a live cross-aggregate reference.
type CustomerSnapshot struct {
	CustomerID uuid.UUID
	Name       string
	Email      string
}

// NewCustomerSnapshot validates and builds a customer snapshot. The email is
// trimmed and lowercased.
func NewCustomerSnapshot(customerID uuid.UUID, name, email string) (CustomerSnapshot, error) {
	if customerID == uuid.Nil {
		return CustomerSnapshot{}, fmt.Errorf("%w: customer id is required", ErrInvalidCustomer)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return CustomerSnapshot{}, fmt.Errorf("%w: name is required", ErrInvalidCustomer)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return CustomerSnapshot{}, fmt.Errorf("%w: email is required", ErrInvalidCustomer)
	}
	return CustomerSnapshot{
		CustomerID: customerID,
		Name:       name,
		Email:      email,
	}, nil
}

// BranchSnapshot is the branch identity from another bounded context,
// denormalized to avoid a live cross-aggregate reference.
type BranchSnapshot struct {
	BranchID uuid.UUID
	Name     string
	Location string
}

// NewBranchSnapshot validates and builds a branch snapshot.
func NewBranchSnapshot(branchID uuid.UUID, name, location string) (BranchSnapshot, error) {
	if branchID == uuid.Nil {
		return BranchSnapshot{}, fmt.Errorf("%w: branch id is required", ErrInvalidBranch)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return BranchSnapshot{}, fmt.Errorf("%w: name is required", ErrInvalidBranch)
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return BranchSnapshot{}, fmt.Errorf("%w: location is required", ErrInvalidBranch)
	}
	return BranchSnapshot{
		BranchID: branchID,
		Name:     name,
		Location: location,
	}, nil
}

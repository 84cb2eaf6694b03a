package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/devstorehq/sales-service/internal/sale/domain"
	"github.com/devstorehq/sales-service/internal/sale/repository"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingDispatcher struct {
	events []domain.Event
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, evts ...domain.Event) {
	_ = ctx
	d.events = append(d.events, evts...)
}

func setupServiceTest(t *testing.T) (domain.Service, *recordingDispatcher) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(repository.Models()...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	dispatcher := &recordingDispatcher{}
	svc := New(Params{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repository.Provide(),
		Dispatcher: dispatcher,
	})
	return svc, dispatcher
}

func createRequest(items ...domain.CreateSaleItem) domain.CreateSaleRequest {
	return domain.CreateSaleRequest{
		CustomerID:     uuid.New(),
		CustomerName:   "Jane Doe",
		CustomerEmail:  "jane@example.com",
		BranchID:       uuid.New(),
		BranchName:     "Downtown",
		BranchLocation: "Main St 1",
		Items:          items,
	}
}

func itemRequest(quantity int, price string) domain.CreateSaleItem {
	return domain.CreateSaleItem{
		ProductID:        uuid.New(),
		ProductName:      "Widget",
		ProductCategory:  "Hardware",
		ProductUnitPrice: decimal.RequireFromString(price),
		ProductCurrency:  "USD",
		Quantity:         quantity,
	}
}

func TestCreateSale(t *testing.T) {
	svc, dispatcher := setupServiceTest(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, createRequest(
		itemRequest(3, "10.00"),
		itemRequest(5, "10.00"),
	))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(view.SaleNumber, "S"))
	assert.Len(t, view.Items, 2)
	assert.Equal(t, "USD", view.Currency)
	assert.Equal(t, 8, view.TotalQuantity)
	assert.Equal(t, "75.00", view.TotalAmount.StringFixed(2))
	assert.Equal(t, "5.00", view.TotalDiscount.StringFixed(2))
	assert.True(t, view.SaleLevelDiscount.IsZero())

	// One created event plus one modified event per added line.
	require.Len(t, dispatcher.events, 3)
	assert.Equal(t, "sale.created", dispatcher.events[0].Name())
	assert.Equal(t, "sale.modified", dispatcher.events[1].Name())
	assert.Equal(t, "sale.modified", dispatcher.events[2].Name())
}

func TestCreateSaleWithUnitPriceOverride(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	override := decimal.RequireFromString("8.00")
	item := itemRequest(2, "10.00")
	item.UnitPrice = &override

	view, err := svc.Create(ctx, createRequest(item))
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, "8.00", view.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "10.00", view.Items[0].ProductUnitPrice.StringFixed(2))
	assert.Equal(t, "16.00", view.TotalAmount.StringFixed(2))
}

func TestCreateSaleValidation(t *testing.T) {
	svc, dispatcher := setupServiceTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, createRequest())
	assert.ErrorIs(t, err, domain.ErrNoItems)

	_, err = svc.Create(ctx, createRequest(itemRequest(25, "10.00")))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	tooMany := make([]domain.CreateSaleItem, domain.MaxDistinctProducts+1)
	for i := range tooMany {
		tooMany[i] = itemRequest(1, "1.00")
	}
	_, err = svc.Create(ctx, createRequest(tooMany...))
	assert.ErrorIs(t, err, domain.ErrTooManyItems)

	// Nothing persisted, nothing dispatched.
	assert.Empty(t, dispatcher.events)
}

func TestGetByIDAndBySaleNumber(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(itemRequest(3, "10.00")))
	require.NoError(t, err)

	byID, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.SaleNumber, byID.SaleNumber)

	byNumber, err := svc.GetBySaleNumber(ctx, created.SaleNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byNumber.ID)

	// Lookup input is normalized the same way stored numbers are.
	byNumber, err = svc.GetBySaleNumber(ctx, "  "+strings.ToLower(created.SaleNumber)+"  ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byNumber.ID)

	_, err = svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)

	_, err = svc.GetByID(ctx, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetBySaleNumber(ctx, "S404")
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}

func TestAddItemToExistingSale(t *testing.T) {
	svc, dispatcher := setupServiceTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(itemRequest(3, "10.00")))
	require.NoError(t, err)
	dispatcher.events = nil

	view, err := svc.AddItem(ctx, domain.AddItemRequest{
		SaleID: created.ID,
		Item:   itemRequest(10, "5.00"),
	})
	require.NoError(t, err)

	assert.Len(t, view.Items, 2)
	// 30.00 plus 50.00 less 20%.
	assert.Equal(t, "70.00", view.TotalAmount.StringFixed(2))
	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, "sale.modified", dispatcher.events[0].Name())

	// The mutation survives a reload.
	reloaded, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "70.00", reloaded.TotalAmount.StringFixed(2))
}

func intPtr(v int) *int { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestUpdateItemQuantity(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(itemRequest(3, "10.00")))
	require.NoError(t, err)

	view, err := svc.UpdateItem(ctx, domain.UpdateItemRequest{
		SaleID:   created.ID,
		ItemID:   created.Items[0].ID,
		Quantity: intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "80.00", view.TotalAmount.StringFixed(2))

	_, err = svc.UpdateItem(ctx, domain.UpdateItemRequest{
		SaleID:   created.ID,
		ItemID:   uuid.New(),
		Quantity: intPtr(5),
	})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestUpdateItemPrice(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(itemRequest(5, "10.00")))
	require.NoError(t, err)

	view, err := svc.UpdateItem(ctx, domain.UpdateItemRequest{
		SaleID:    created.ID,
		ItemID:    created.Items[0].ID,
		UnitPrice: decPtr("20.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "20.00", view.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "90.00", view.TotalAmount.StringFixed(2))
}

func TestUpdateItemQuantityAndPriceTogether(t *testing.T) {
	svc, dispatcher := setupServiceTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(itemRequest(3, "10.00")))
	require.NoError(t, err)
	dispatcher.events = nil

	view, err := svc.UpdateItem(ctx, domain.UpdateItemRequest{
		SaleID:    created.ID,
		ItemID:    created.Items[0].ID,
		Quantity:  intPtr(10),
		UnitPrice: decPtr("20.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, view.Items[0].Quantity)
	assert.Equal(t, "20.00", view.Items[0].UnitPrice.StringFixed(2))
	// 10 * 20.00 less 20%.
	assert.Equal(t, "160.00", view.TotalAmount.StringFixed(2))

	// One write, both change events dispatched after it.
	require.Len(t, dispatcher.events, 2)
	assert.Equal(t, "sale.modified", dispatcher.events[0].Name())
	assert.Equal(t, "sale.modified", dispatcher.events[1].Name())
}

func TestUpdateItemRejectedFieldStoresNothing(t *testing.T) {
	svc, dispatcher := setupServiceTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(itemRequest(3, "10.00")))
	require.NoError(t, err)
	dispatcher.events = nil

	_, err = svc.UpdateItem(ctx, domain.UpdateItemRequest{
		SaleID:    created.ID,
		ItemID:    created.Items[0].ID,
		Quantity:  intPtr(25),
		UnitPrice: decPtr("20.00"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Empty(t, dispatcher.events)

	// The valid unit price change must not land on its own.
	reloaded, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Items[0].Quantity)
	assert.Equal(t, "10.00", reloaded.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "30.00", reloaded.TotalAmount.StringFixed(2))
}

func TestUpdateItemRequiresAField(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(itemRequest(3, "10.00")))
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, domain.UpdateItemRequest{
		SaleID: created.ID,
		ItemID: created.Items[0].ID,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyItemUpdate)
}

func TestRemoveItem(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(itemRequest(3, "10.00"), itemRequest(4, "5.00")))
	require.NoError(t, err)

	view, err := svc.RemoveItem(ctx, domain.RemoveItemRequest{
		SaleID: created.ID,
		ItemID: created.Items[1].ID,
	})
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
	assert.Equal(t, "30.00", view.TotalAmount.StringFixed(2))
}

func TestCancelSale(t *testing.T) {
	svc, dispatcher := setupServiceTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(itemRequest(5, "10.00")))
	require.NoError(t, err)
	dispatcher.events = nil

	view, err := svc.Cancel(ctx, domain.CancelSaleRequest{
		SaleID: created.ID,
		Reason: "customer request",
	})
	require.NoError(t, err)
	assert.True(t, view.IsCancelled)
	assert.Equal(t, "customer request", view.CancellationReason)

	require.Len(t, dispatcher.events, 1)
	cancelled, ok := dispatcher.events[0].(domain.SaleCancelled)
	require.True(t, ok)
	assert.Equal(t, "45.00", cancelled.RefundAmount.StringFixed(2))

	// Terminal: further mutation and a second cancel both conflict.
	_, err = svc.Cancel(ctx, domain.CancelSaleRequest{SaleID: created.ID, Reason: "again"})
	assert.ErrorIs(t, err, domain.ErrSaleCancelled)

	_, err = svc.AddItem(ctx, domain.AddItemRequest{SaleID: created.ID, Item: itemRequest(1, "1.00")})
	assert.ErrorIs(t, err, domain.ErrSaleCancelled)
}

func TestDeleteSale(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, createRequest(itemRequest(3, "10.00")))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}

func TestListSalesPaging(t *testing.T) {
	svc, _ := setupServiceTest(t)
	ctx := context.Background()

	var customerID uuid.UUID
	for i := 0; i < 5; i++ {
		req := createRequest(itemRequest(1, "10.00"))
		if i == 0 {
			customerID = req.CustomerID
		}
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, domain.ListSalesRequest{PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, all.Sales, 5)
	assert.False(t, all.HasMore)

	filtered, err := svc.List(ctx, domain.ListSalesRequest{PageSize: 10, CustomerID: &customerID})
	require.NoError(t, err)
	assert.Len(t, filtered.Sales, 1)

	page, err := svc.List(ctx, domain.ListSalesRequest{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page.Sales, 2)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextPageToken)

	rest, err := svc.List(ctx, domain.ListSalesRequest{PageSize: 10, PageToken: page.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, rest.Sales, 3)
	assert.False(t, rest.HasMore)
}

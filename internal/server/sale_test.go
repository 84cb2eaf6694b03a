package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	saledomain "github.com/devstorehq/sales-service/internal/sale/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSaleService struct {
	view            saledomain.SaleView
	err             error
	createCalls     int
	cancelCalls     int
	lastCancel      saledomain.CancelSaleRequest
	updateItemCalls int
	lastUpdateItem  saledomain.UpdateItemRequest
}

func (f *fakeSaleService) Create(ctx context.Context, req saledomain.CreateSaleRequest) (saledomain.SaleView, error) {
	f.createCalls++
	_ = ctx
	_ = req
	return f.view, f.err
}

func (f *fakeSaleService) GetByID(ctx context.Context, id uuid.UUID) (saledomain.SaleView, error) {
	_ = ctx
	_ = id
	return f.view, f.err
}

func (f *fakeSaleService) GetBySaleNumber(ctx context.Context, saleNumber string) (saledomain.SaleView, error) {
	_ = ctx
	_ = saleNumber
	return f.view, f.err
}

func (f *fakeSaleService) List(ctx context.Context, req saledomain.ListSalesRequest) (saledomain.ListSalesResponse, error) {
	_ = ctx
	_ = req
	return saledomain.ListSalesResponse{Sales: []saledomain.SaleView{f.view}}, f.err
}

func (f *fakeSaleService) AddItem(ctx context.Context, req saledomain.AddItemRequest) (saledomain.SaleView, error) {
	_ = ctx
	_ = req
	return f.view, f.err
}

func (f *fakeSaleService) UpdateItem(ctx context.Context, req saledomain.UpdateItemRequest) (saledomain.SaleView, error) {
	f.updateItemCalls++
	f.lastUpdateItem = req
	_ = ctx
	return f.view, f.err
}

func (f *fakeSaleService) RemoveItem(ctx context.Context, req saledomain.RemoveItemRequest) (saledomain.SaleView, error) {
	_ = ctx
	_ = req
	return f.view, f.err
}

func (f *fakeSaleService) Cancel(ctx context.Context, req saledomain.CancelSaleRequest) (saledomain.SaleView, error) {
	f.cancelCalls++
	f.lastCancel = req
	_ = ctx
	return f.view, f.err
}

func (f *fakeSaleService) Delete(ctx context.Context, id uuid.UUID) error {
	_ = ctx
	_ = id
	return f.err
}

func newTestRouter(svc saledomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())

	srv := &Server{engine: router, saleSvc: svc}
	srv.registerAPIRoutes()
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateSaleHandler(t *testing.T) {
	svc := &fakeSaleService{view: saledomain.SaleView{SaleNumber: "S100"}}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodPost, "/api/sales", gin.H{
		"customer_id":     uuid.NewString(),
		"customer_name":   "Jane",
		"customer_email":  "jane@example.com",
		"branch_id":       uuid.NewString(),
		"branch_name":     "Downtown",
		"branch_location": "Main St 1",
		"items": []gin.H{
			{
				"product_id":         uuid.NewString(),
				"product_name":       "Widget",
				"product_category":   "Hardware",
				"product_unit_price": "10.00",
				"product_currency":   "USD",
				"quantity":           3,
			},
		},
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, 1, svc.createCalls)
	assert.Contains(t, resp.Body.String(), "S100")
}

func TestCreateSaleHandlerRejectsBadUUID(t *testing.T) {
	svc := &fakeSaleService{}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodPost, "/api/sales", gin.H{
		"customer_id": "not-a-uuid",
		"branch_id":   uuid.NewString(),
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Zero(t, svc.createCalls)
	assert.Contains(t, resp.Body.String(), "invalid_customer_id")
}

func TestGetSaleHandlerMapsNotFound(t *testing.T) {
	svc := &fakeSaleService{err: fmt.Errorf("%w: gone", saledomain.ErrSaleNotFound)}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodGet, "/api/sales/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "not_found")
}

func TestGetSaleHandlerRejectsBadID(t *testing.T) {
	router := newTestRouter(&fakeSaleService{})

	resp := doJSON(t, router, http.MethodGet, "/api/sales/nope", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetSaleByNumberHandler(t *testing.T) {
	svc := &fakeSaleService{view: saledomain.SaleView{SaleNumber: "S200"}}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodGet, "/api/sales/number/S200", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "S200")
}

func TestCancelSaleHandler(t *testing.T) {
	svc := &fakeSaleService{view: saledomain.SaleView{IsCancelled: true}}
	router := newTestRouter(svc)

	id := uuid.New()
	resp := doJSON(t, router, http.MethodPost, "/api/sales/"+id.String()+"/cancel", gin.H{
		"reason": "  customer request  ",
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, svc.cancelCalls)
	assert.Equal(t, id, svc.lastCancel.SaleID)
	assert.Equal(t, "customer request", svc.lastCancel.Reason)
}

func TestCancelSaleHandlerMapsStateConflict(t *testing.T) {
	svc := &fakeSaleService{err: fmt.Errorf("%w: already cancelled", saledomain.ErrSaleCancelled)}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodPost, "/api/sales/"+uuid.NewString()+"/cancel", gin.H{
		"reason": "again",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "conflict")
}

func TestCancelSaleHandlerMapsInvalidReason(t *testing.T) {
	svc := &fakeSaleService{err: saledomain.ErrInvalidCancellation}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodPost, "/api/sales/"+uuid.NewString()+"/cancel", gin.H{
		"reason": "",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "validation_error")
}

func TestUpdateSaleItemHandlerRequiresAField(t *testing.T) {
	svc := &fakeSaleService{}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodPatch,
		"/api/sales/"+uuid.NewString()+"/items/"+uuid.NewString(), gin.H{})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "quantity or unit_price is required")
	assert.Zero(t, svc.updateItemCalls)
}

func TestUpdateSaleItemHandlerQuantity(t *testing.T) {
	svc := &fakeSaleService{view: saledomain.SaleView{TotalQuantity: 10}}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodPatch,
		"/api/sales/"+uuid.NewString()+"/items/"+uuid.NewString(), gin.H{"quantity": 10})

	assert.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 1, svc.updateItemCalls)
	require.NotNil(t, svc.lastUpdateItem.Quantity)
	assert.Equal(t, 10, *svc.lastUpdateItem.Quantity)
	assert.Nil(t, svc.lastUpdateItem.UnitPrice)
}

func TestUpdateSaleItemHandlerUnitPrice(t *testing.T) {
	svc := &fakeSaleService{view: saledomain.SaleView{Subtotal: decimal.RequireFromString("90.00")}}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodPatch,
		"/api/sales/"+uuid.NewString()+"/items/"+uuid.NewString(), gin.H{"unit_price": "20.00"})

	assert.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 1, svc.updateItemCalls)
	assert.Nil(t, svc.lastUpdateItem.Quantity)
	require.NotNil(t, svc.lastUpdateItem.UnitPrice)
	assert.Equal(t, "20.00", svc.lastUpdateItem.UnitPrice.StringFixed(2))
}

func TestUpdateSaleItemHandlerBothFieldsOneCall(t *testing.T) {
	svc := &fakeSaleService{}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodPatch,
		"/api/sales/"+uuid.NewString()+"/items/"+uuid.NewString(),
		gin.H{"quantity": 10, "unit_price": "20.00"})

	assert.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 1, svc.updateItemCalls)
	require.NotNil(t, svc.lastUpdateItem.Quantity)
	require.NotNil(t, svc.lastUpdateItem.UnitPrice)
}

func TestUpdateSaleItemHandlerRejectedFieldFailsWhole(t *testing.T) {
	svc := &fakeSaleService{err: fmt.Errorf("%w: got 25", saledomain.ErrInvalidQuantity)}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodPatch,
		"/api/sales/"+uuid.NewString()+"/items/"+uuid.NewString(),
		gin.H{"quantity": 25, "unit_price": "20.00"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "invalid_quantity")
	assert.Equal(t, 1, svc.updateItemCalls)
}

func TestDeleteSaleHandler(t *testing.T) {
	router := newTestRouter(&fakeSaleService{})

	resp := doJSON(t, router, http.MethodDelete, "/api/sales/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestAddSaleItemHandlerMapsQuantityError(t *testing.T) {
	svc := &fakeSaleService{err: fmt.Errorf("%w: got 25", saledomain.ErrInvalidQuantity)}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodPost, "/api/sales/"+uuid.NewString()+"/items", gin.H{
		"product_id":         uuid.NewString(),
		"product_name":       "Widget",
		"product_category":   "Hardware",
		"product_unit_price": "10.00",
		"product_currency":   "USD",
		"quantity":           25,
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "invalid_quantity")
}

func TestListSalesHandlerRejectsBadFilter(t *testing.T) {
	router := newTestRouter(&fakeSaleService{})

	resp := doJSON(t, router, http.MethodGet, "/api/sales?customer_id=nope", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListSalesHandler(t *testing.T) {
	svc := &fakeSaleService{view: saledomain.SaleView{SaleNumber: "S300"}}
	router := newTestRouter(svc)

	resp := doJSON(t, router, http.MethodGet, "/api/sales?page_size=5&from=2026-01-01", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "S300")
}

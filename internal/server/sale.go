package server

import (
	"net/http"
	"strings"

	saledomain "github.com/devstorehq/sales-service/internal/sale/domain"
	"github.com/devstorehq/sales-service/pkg/db/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type saleItemRequest struct {
	ProductID         string           `json:"product_id"`
	ProductName       string           `json:"product_name"`
	ProductCategory   string           `json:"product_category"`
	ProductUnitPrice  decimal.Decimal  `json:"product_unit_price"`
	ProductCurrency   string           `json:"product_currency"`
	Quantity          int              `json:"quantity"`
	UnitPrice         *decimal.Decimal `json:"unit_price"`
	UnitPriceCurrency string           `json:"unit_price_currency"`
}

type createSaleRequest struct {
	CustomerID     string            `json:"customer_id"`
	CustomerName   string            `json:"customer_name"`
	CustomerEmail  string            `json:"customer_email"`
	BranchID       string            `json:"branch_id"`
	BranchName     string            `json:"branch_name"`
	BranchLocation string            `json:"branch_location"`
	Items          []saleItemRequest `json:"items"`
}

func (s *Server) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := parseUUID(req.CustomerID)
	if err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer_id"))
		return
	}
	branchID, err := parseUUID(req.BranchID)
	if err != nil {
		AbortWithError(c, newValidationError("branch_id", "invalid_branch_id", "invalid branch_id"))
		return
	}

	items := make([]saledomain.CreateSaleItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := parseUUID(item.ProductID)
		if err != nil {
			AbortWithError(c, newValidationError("product_id", "invalid_product_id", "invalid product_id"))
			return
		}
		items = append(items, saledomain.CreateSaleItem{
			ProductID:         productID,
			ProductName:       strings.TrimSpace(item.ProductName),
			ProductCategory:   strings.TrimSpace(item.ProductCategory),
			ProductUnitPrice:  item.ProductUnitPrice,
			ProductCurrency:   strings.TrimSpace(item.ProductCurrency),
			Quantity:          item.Quantity,
			UnitPrice:         item.UnitPrice,
			UnitPriceCurrency: strings.TrimSpace(item.UnitPriceCurrency),
		})
	}

	resp, err := s.saleSvc.Create(c.Request.Context(), saledomain.CreateSaleRequest{
		CustomerID:     customerID,
		CustomerName:   strings.TrimSpace(req.CustomerName),
		CustomerEmail:  strings.TrimSpace(req.CustomerEmail),
		BranchID:       branchID,
		BranchName:     strings.TrimSpace(req.BranchName),
		BranchLocation: strings.TrimSpace(req.BranchLocation),
		Items:          items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListSales(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CustomerID string `form:"customer_id"`
		BranchID   string `form:"branch_id"`
		From       string `form:"from"`
		To         string `form:"to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := parseOptionalUUID(query.CustomerID)
	if err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer_id"))
		return
	}
	branchID, err := parseOptionalUUID(query.BranchID)
	if err != nil {
		AbortWithError(c, newValidationError("branch_id", "invalid_branch_id", "invalid branch_id"))
		return
	}
	from, err := parseOptionalTime(query.From, false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(query.To, true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.saleSvc.List(c.Request.Context(), saledomain.ListSalesRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		CustomerID: customerID,
		BranchID:   branchID,
		From:       from,
		To:         to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSaleByID(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.saleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSaleByNumber(c *gin.Context) {
	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		AbortWithError(c, newValidationError("number", "invalid_number", "invalid sale number"))
		return
	}

	resp, err := s.saleSvc.GetBySaleNumber(c.Request.Context(), number)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddSaleItem(c *gin.Context) {
	saleID, err := parseUUID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req saleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	productID, err := parseUUID(req.ProductID)
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_product_id", "invalid product_id"))
		return
	}

	resp, err := s.saleSvc.AddItem(c.Request.Context(), saledomain.AddItemRequest{
		SaleID: saleID,
		Item: saledomain.CreateSaleItem{
			ProductID:         productID,
			ProductName:       strings.TrimSpace(req.ProductName),
			ProductCategory:   strings.TrimSpace(req.ProductCategory),
			ProductUnitPrice:  req.ProductUnitPrice,
			ProductCurrency:   strings.TrimSpace(req.ProductCurrency),
			Quantity:          req.Quantity,
			UnitPrice:         req.UnitPrice,
			UnitPriceCurrency: strings.TrimSpace(req.UnitPriceCurrency),
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateSaleItemRequest struct {
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Currency  string           `json:"currency"`
}

func (s *Server) UpdateSaleItem(c *gin.Context) {
	saleID, err := parseUUID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}
	itemID, err := parseUUID(c.Param("itemId"))
	if err != nil {
		AbortWithError(c, newValidationError("item_id", "invalid_item_id", "invalid item_id"))
		return
	}

	var req updateSaleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Quantity == nil && req.UnitPrice == nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "quantity or unit_price is required"))
		return
	}

	resp, err := s.saleSvc.UpdateItem(c.Request.Context(), saledomain.UpdateItemRequest{
		SaleID:    saleID,
		ItemID:    itemID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Currency:  strings.TrimSpace(req.Currency),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveSaleItem(c *gin.Context) {
	saleID, err := parseUUID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}
	itemID, err := parseUUID(c.Param("itemId"))
	if err != nil {
		AbortWithError(c, newValidationError("item_id", "invalid_item_id", "invalid item_id"))
		return
	}

	resp, err := s.saleSvc.RemoveItem(c.Request.Context(), saledomain.RemoveItemRequest{
		SaleID: saleID,
		ItemID: itemID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type cancelSaleRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) CancelSale(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req cancelSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.saleSvc.Cancel(c.Request.Context(), saledomain.CancelSaleRequest{
		SaleID: id,
		Reason: strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSale(c *gin.Context) {
	id, err := parseUUID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	if err := s.saleSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

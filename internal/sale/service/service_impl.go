package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/devstorehq/sales-service/internal/events"
	"github.com/devstorehq/sales-service/internal/sale/domain"
	"github.com/devstorehq/sales-service/pkg/db"
	"github.com/devstorehq/sales-service/pkg/db/pagination"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSaleNumberConflict is returned when a sale number cannot be claimed.
var ErrSaleNumberConflict = errors.New("sale number already exists")

const maxSaleNumberAttempts = 10

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Dispatcher events.Dispatcher
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	dispatcher events.Dispatcher
}

// New builds the sales application service.
func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("sale.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		dispatcher: p.Dispatcher,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSaleRequest) (domain.SaleView, error) {
	if len(req.Items) == 0 {
		return domain.SaleView{}, domain.ErrNoItems
	}
	if len(req.Items) > domain.MaxDistinctProducts {
		return domain.SaleView{}, domain.ErrTooManyItems
	}

	customer, err := domain.NewCustomerSnapshot(req.CustomerID, req.CustomerName, req.CustomerEmail)
	if err != nil {
		return domain.SaleView{}, err
	}
	branch, err := domain.NewBranchSnapshot(req.BranchID, req.BranchName, req.BranchLocation)
	if err != nil {
		return domain.SaleView{}, err
	}

	saleNumber, err := s.generateSaleNumber(ctx)
	if err != nil {
		return domain.SaleView{}, err
	}

	sale, created, err := domain.NewSale(saleNumber, time.Now().UTC(), customer, branch)
	if err != nil {
		return domain.SaleView{}, err
	}

	evts := []domain.Event{created}
	for _, item := range req.Items {
		product, override, err := buildItemInput(item)
		if err != nil {
			return domain.SaleView{}, err
		}
		evt, err := sale.AddItem(product, item.Quantity, override)
		if err != nil {
			return domain.SaleView{}, err
		}
		evts = append(evts, evt)
	}

	if err := s.repo.Insert(ctx, s.db, sale); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.SaleView{}, fmt.Errorf("%w: %s", ErrSaleNumberConflict, saleNumber)
		}
		return domain.SaleView{}, err
	}

	s.dispatcher.Dispatch(ctx, evts...)
	s.log.Info("sale created",
		zap.String("sale_id", sale.ID().String()),
		zap.String("sale_number", sale.SaleNumber()),
		zap.Int("items", len(sale.Items())),
		zap.String("total", sale.TotalAmount().String()),
	)
	return domain.NewSaleView(sale), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.SaleView, error) {
	sale, err := s.load(ctx, id)
	if err != nil {
		return domain.SaleView{}, err
	}
	return domain.NewSaleView(sale), nil
}

func (s *Service) GetBySaleNumber(ctx context.Context, saleNumber string) (domain.SaleView, error) {
	// Sale numbers are stored trimmed and uppercased; normalize the lookup
	// the same way.
	saleNumber = strings.ToUpper(strings.TrimSpace(saleNumber))
	sale, err := s.repo.FindBySaleNumber(ctx, s.db, saleNumber)
	if err != nil {
		return domain.SaleView{}, err
	}
	if sale == nil {
		return domain.SaleView{}, fmt.Errorf("%w: number %s", domain.ErrSaleNotFound, saleNumber)
	}
	return domain.NewSaleView(sale), nil
}

func (s *Service) List(ctx context.Context, req domain.ListSalesRequest) (domain.ListSalesResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	sales, err := s.repo.List(ctx, s.db, domain.ListSalesFilter{
		CustomerID: req.CustomerID,
		BranchID:   req.BranchID,
		From:       req.From,
		To:         req.To,
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListSalesResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(sales, pageSize, func(sale *domain.Sale) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        sale.ID().String(),
			CreatedAt: sale.CreatedAt().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(sales) > int(pageSize) {
		sales = sales[:pageSize]
	}

	views := make([]domain.SaleView, 0, len(sales))
	for _, sale := range sales {
		views = append(views, domain.NewSaleView(sale))
	}

	resp := domain.ListSalesResponse{Sales: views}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) AddItem(ctx context.Context, req domain.AddItemRequest) (domain.SaleView, error) {
	sale, err := s.load(ctx, req.SaleID)
	if err != nil {
		return domain.SaleView{}, err
	}

	product, override, err := buildItemInput(req.Item)
	if err != nil {
		return domain.SaleView{}, err
	}
	evt, err := sale.AddItem(product, req.Item.Quantity, override)
	if err != nil {
		return domain.SaleView{}, err
	}

	return s.save(ctx, sale, evt)
}

// UpdateItem applies quantity and unit price changes to one loaded aggregate
// and persists the result in a single write. Nothing is stored when any part
// of the request is rejected.
func (s *Service) UpdateItem(ctx context.Context, req domain.UpdateItemRequest) (domain.SaleView, error) {
	if req.Quantity == nil && req.UnitPrice == nil {
		return domain.SaleView{}, domain.ErrEmptyItemUpdate
	}

	sale, err := s.load(ctx, req.SaleID)
	if err != nil {
		return domain.SaleView{}, err
	}

	var evts []domain.Event
	if req.UnitPrice != nil {
		item, err := sale.Item(req.ItemID)
		if err != nil {
			return domain.SaleView{}, err
		}
		currency := req.Currency
		if currency == "" {
			currency = item.UnitPrice().Currency()
		}
		price, err := domain.NewMoney(*req.UnitPrice, currency)
		if err != nil {
			return domain.SaleView{}, err
		}
		evt, err := sale.UpdateItemPrice(req.ItemID, price)
		if err != nil {
			return domain.SaleView{}, err
		}
		evts = append(evts, evt)
	}
	if req.Quantity != nil {
		evt, err := sale.UpdateItemQuantity(req.ItemID, *req.Quantity)
		if err != nil {
			return domain.SaleView{}, err
		}
		evts = append(evts, evt)
	}

	return s.save(ctx, sale, evts...)
}

func (s *Service) RemoveItem(ctx context.Context, req domain.RemoveItemRequest) (domain.SaleView, error) {
	sale, err := s.load(ctx, req.SaleID)
	if err != nil {
		return domain.SaleView{}, err
	}

	evt, err := sale.RemoveItem(req.ItemID)
	if err != nil {
		return domain.SaleView{}, err
	}

	return s.save(ctx, sale, evt)
}

func (s *Service) Cancel(ctx context.Context, req domain.CancelSaleRequest) (domain.SaleView, error) {
	sale, err := s.load(ctx, req.SaleID)
	if err != nil {
		return domain.SaleView{}, err
	}

	evt, err := sale.Cancel(req.Reason)
	if err != nil {
		return domain.SaleView{}, err
	}

	view, err := s.save(ctx, sale, evt)
	if err != nil {
		return domain.SaleView{}, err
	}

	s.log.Info("sale cancelled",
		zap.String("sale_id", sale.ID().String()),
		zap.String("sale_number", sale.SaleNumber()),
		zap.String("reason", sale.CancellationReason()),
	)
	return view, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	sale, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, s.db, sale.ID()); err != nil {
		return err
	}

	s.log.Info("sale deleted",
		zap.String("sale_id", sale.ID().String()),
		zap.String("sale_number", sale.SaleNumber()),
	)
	return nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: sale id is required", domain.ErrInvalidID)
	}
	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrSaleNotFound, id)
	}
	return sale, nil
}

func (s *Service) save(ctx context.Context, sale *domain.Sale, evts ...domain.Event) (domain.SaleView, error) {
	if err := s.repo.Update(ctx, s.db, sale); err != nil {
		return domain.SaleView{}, err
	}
	s.dispatcher.Dispatch(ctx, evts...)
	return domain.NewSaleView(sale), nil
}

// generateSaleNumber claims a fresh business identifier. Snowflake ids are
// unique on their own; the existence probe guards against ids recycled
// through manual inserts.
func (s *Service) generateSaleNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxSaleNumberAttempts; attempt++ {
		number := fmt.Sprintf("S%s", s.genID.Generate())
		exists, err := s.repo.SaleNumberExists(ctx, s.db, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", ErrSaleNumberConflict
}

func buildItemInput(item domain.CreateSaleItem) (domain.ProductSnapshot, *domain.Money, error) {
	productPrice, err := domain.NewMoney(item.ProductUnitPrice, item.ProductCurrency)
	if err != nil {
		return domain.ProductSnapshot{}, nil, err
	}
	product, err := domain.NewProductSnapshot(item.ProductID, item.ProductName, item.ProductCategory, productPrice)
	if err != nil {
		return domain.ProductSnapshot{}, nil, err
	}

	var override *domain.Money
	if item.UnitPrice != nil {
		currency := item.UnitPriceCurrency
		if currency == "" {
			currency = item.ProductCurrency
		}
		price, err := domain.NewMoney(*item.UnitPrice, currency)
		if err != nil {
			return domain.ProductSnapshot{}, nil, err
		}
		override = &price
	}
	return product, override, nil
}

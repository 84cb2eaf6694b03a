package repository

import (
	"context"
	"errors"
	"time"

	"github.com/devstorehq/sales-service/internal/sale/domain"
	"github.com/devstorehq/sales-service/pkg/db/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct{}

// Provide builds the gorm-backed sale repository.
func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Create(toRecord(sale)).Error
}

// Update rewrites the whole aggregate: the sale row is saved and the item
// set is replaced, since items only exist as part of their sale.
func (r *repo) Update(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	rec := toRecord(sale)
	items := rec.Items
	rec.Items = nil

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", rec.ID).Delete(&SaleItemRecord{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", id).Delete(&SaleItemRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&SaleRecord{}).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Sale, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindBySaleNumber(ctx context.Context, db *gorm.DB, saleNumber string) (*domain.Sale, error) {
	return r.findOne(ctx, db, "sale_number = ?", saleNumber)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Sale, error) {
	var rec SaleRecord
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).
		Where(query, arg).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDomain(&rec)
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListSalesFilter, page pagination.Pagination) ([]*domain.Sale, error) {
	stmt := db.WithContext(ctx).
		Model(&SaleRecord{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		})

	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.BranchID != nil {
		stmt = stmt.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.From != nil {
		stmt = stmt.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("sale_date <= ?", *filter.To)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)", createdAt, createdAt, cursor.ID)
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 20
	}

	var records []*SaleRecord
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	sales := make([]*domain.Sale, 0, len(records))
	for _, rec := range records {
		sale, err := toDomain(rec)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

func (r *repo) SaleNumberExists(ctx context.Context, db *gorm.DB, saleNumber string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&SaleRecord{}).
		Where("sale_number = ?", saleNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

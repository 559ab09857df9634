package repository

import (
	"context"

	"github.com/chathuwa-whiz/zors-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerFilter defines filters for listing stock ledger entries.
type LedgerFilter struct {
	ProductID *uuid.UUID
	Kind      string
	Page      int
	Limit     int
}

// LedgerRepository is append-only: entries are never updated or deleted.
type LedgerRepository interface {
	Create(ctx context.Context, e *model.StockLedgerEntry) error
	CreateTx(tx *gorm.DB, e *model.StockLedgerEntry) error
	List(ctx context.Context, filter LedgerFilter) ([]model.StockLedgerEntry, int64, error)

	// SumDeltas replays a product's ledger: the sum of all signed quantity
	// deltas since creation, which must equal the live counter.
	SumDeltas(ctx context.Context, productID uuid.UUID) (int, error)
}

type ledgerRepo struct{ db *gorm.DB }

func NewLedgerRepository(db *gorm.DB) LedgerRepository { return &ledgerRepo{db: db} }

func (r *ledgerRepo) Create(ctx context.Context, e *model.StockLedgerEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ledgerRepo) CreateTx(tx *gorm.DB, e *model.StockLedgerEntry) error {
	return tx.Create(e).Error
}

func (r *ledgerRepo) List(ctx context.Context, filter LedgerFilter) ([]model.StockLedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockLedgerEntry{}).
		Preload("Product")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var entries []model.StockLedgerEntry
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}

func (r *ledgerRepo) SumDeltas(ctx context.Context, productID uuid.UUID) (int, error) {
	var sum *int
	err := r.db.WithContext(ctx).Model(&model.StockLedgerEntry{}).
		Where("product_id = ?", productID).
		Select("SUM(quantity)").
		Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

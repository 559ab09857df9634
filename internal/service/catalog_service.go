package service

import (
	"context"
	"fmt"

	"github.com/chathuwa-whiz/zors-pos/internal/dto"
	"github.com/chathuwa-whiz/zors-pos/internal/model"
	"github.com/chathuwa-whiz/zors-pos/internal/pos"
	"github.com/chathuwa-whiz/zors-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogService interface {
	Create(ctx context.Context, req dto.CreateProductRequest, actorID uuid.UUID) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	// Ref resolves a product for the cart: only active products with a
	// name and price snapshot.
	Ref(ctx context.Context, id uuid.UUID) (*pos.ProductRef, error)
}

type catalogService struct {
	products repository.ProductRepository
	ledger   repository.LedgerRepository
}

func NewCatalogService(products repository.ProductRepository, ledger repository.LedgerRepository) CatalogService {
	return &catalogService{products: products, ledger: ledger}
}

// Create inserts the product and, when InitialStock > 0, writes the opening
// adjustment ledger entry in the same transaction so the counter is
// explained by the ledger from day one.
func (s *catalogService) Create(ctx context.Context, req dto.CreateProductRequest, actorID uuid.UUID) (*dto.ProductResponse, error) {
	p := &model.Product{
		Name:         req.Name,
		Category:     req.Category,
		Barcode:      req.Barcode,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		DiscountPct:  req.DiscountPct,
		StockOnHand:  req.InitialStock,
	}

	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if err := s.products.CreateTx(tx, p); err != nil {
			return err
		}
		if req.InitialStock == 0 {
			return nil
		}
		entry := &model.StockLedgerEntry{
			ProductID:        p.ID,
			Kind:             model.LedgerAdjustment,
			Quantity:         req.InitialStock,
			PreviousStock:    0,
			NewStock:         req.InitialStock,
			UnitPrice:        req.CostPrice,
			TotalValue:       req.CostPrice.Mul(decimalFromInt(req.InitialStock)),
			CounterpartyKind: model.CounterpartySystem,
			ActorID:          actorID,
			Note:             "Opening stock",
		}
		return s.ledger.CreateTx(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	resp := productToResponse(p)
	return &resp, nil
}

func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product %s not found", id)
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *catalogService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	p, err := s.products.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("no product with barcode %q", barcode)
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *catalogService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Update edits catalog fields only. Stock counters never move here — all
// stock movement goes through the ledger paths.
func (s *catalogService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product %s not found", id)
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	if req.Barcode != nil {
		p.Barcode = req.Barcode
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		p.SellingPrice = *req.SellingPrice
	}
	if req.DiscountPct != nil {
		p.DiscountPct = *req.DiscountPct
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *catalogService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.products.SoftDelete(ctx, id)
}

func (s *catalogService) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.products.Reactivate(ctx, id)
}

func (s *catalogService) Ref(ctx context.Context, id uuid.UUID) (*pos.ProductRef, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product %s not found", id)
	}
	if !p.Active {
		return nil, fmt.Errorf("product %s is inactive", p.Name)
	}
	price := p.SellingPrice
	if p.DiscountPct.IsPositive() {
		price = price.Sub(price.Mul(p.DiscountPct).Div(decimalFromInt(100))).Round(2)
	}
	return &pos.ProductRef{ID: p.ID, Name: p.Name, UnitPrice: price}, nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Category:      p.Category,
		Barcode:       p.Barcode,
		CostPrice:     p.CostPrice,
		SellingPrice:  p.SellingPrice,
		DiscountPct:   p.DiscountPct,
		StockOnHand:   p.StockOnHand,
		StockReserved: p.StockReserved,
		Available:     p.StockOnHand - p.StockReserved,
		Active:        p.Active,
	}
}

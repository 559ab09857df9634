package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/chathuwa-whiz/zors-pos/internal/dto"
	"github.com/chathuwa-whiz/zors-pos/internal/model"
	"github.com/chathuwa-whiz/zors-pos/internal/pos"
	"github.com/chathuwa-whiz/zors-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InventoryService owns the shared stock counter and the append-only
// ledger. It implements pos.Inventory for the cashier sessions and the
// manual stock-event contract for everything outside the checkout path.
type InventoryService interface {
	// pos.Inventory — reservation against the authoritative counter.
	Reserve(ctx context.Context, productID uuid.UUID, qty int) error
	Release(ctx context.Context, productID uuid.UUID, qty int) error

	// ApplyStockEvent atomically records one non-POS stock event: lock the
	// counter, compute previous/new, append the immutable ledger entry,
	// commit the counter. Sales are rejected here — they only enter the
	// ledger through checkout completion.
	ApplyStockEvent(ctx context.Context, actorID uuid.UUID, req dto.StockEventRequest) (*dto.LedgerEntryResponse, error)

	ListLedger(ctx context.Context, filter dto.LedgerListFilter) (*dto.LedgerListResponse, error)

	// Reconcile replays a product's ledger from zero and compares it with
	// the live counter. Divergence is reported, never auto-corrected.
	Reconcile(ctx context.Context, productID uuid.UUID) (*dto.ReconcileResponse, error)
	ReconcileAll(ctx context.Context) ([]dto.ReconcileResponse, error)
}

type inventoryService struct {
	products repository.ProductRepository
	ledger   repository.LedgerRepository
}

func NewInventoryService(products repository.ProductRepository, ledger repository.LedgerRepository) InventoryService {
	return &inventoryService{products: products, ledger: ledger}
}

var _ pos.Inventory = (InventoryService)(nil)

// Reserve claims qty units with a single conditional update. A failed check
// is re-verified against a freshly fetched row before being surfaced, so a
// stale snapshot never produces a false rejection.
func (s *inventoryService) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve: quantity must be positive, got %d", qty)
	}

	ok, err := s.products.Reserve(ctx, productID, qty)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("reserve: product %s: %w", productID, err)
	}
	if !p.Active {
		return fmt.Errorf("product %s is inactive and cannot be sold", p.Name)
	}

	// Retry once against the fresh counter — another session may have
	// released stock between the two statements.
	if p.StockOnHand-p.StockReserved >= qty {
		if ok, err = s.products.Reserve(ctx, productID, qty); err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return pos.ErrInsufficientStock
}

func (s *inventoryService) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release: quantity must be positive, got %d", qty)
	}
	return s.products.Release(ctx, productID, qty)
}

func (s *inventoryService) ApplyStockEvent(ctx context.Context, actorID uuid.UUID, req dto.StockEventRequest) (*dto.LedgerEntryResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product_id: %w", err)
	}

	kind := model.LedgerKind(req.Kind)
	if kind == model.LedgerSale {
		return nil, errors.New("sale entries are written by checkout completion only")
	}

	delta, err := signedDelta(kind, req.Quantity)
	if err != nil {
		return nil, err
	}

	cpKind, cpID, err := resolveCounterparty(kind, req)
	if err != nil {
		return nil, err
	}

	var entry model.StockLedgerEntry
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		p, err := s.products.LockForUpdate(tx, productID)
		if err != nil {
			return fmt.Errorf("product %s not found", req.ProductID)
		}

		previous := p.StockOnHand
		next := previous + delta
		if next < 0 {
			return pos.ErrNegativeStock
		}

		entry = model.StockLedgerEntry{
			ProductID:        productID,
			Kind:             kind,
			Quantity:         delta,
			PreviousStock:    previous,
			NewStock:         next,
			UnitPrice:        p.CostPrice,
			TotalValue:       p.CostPrice.Mul(decimalFromInt(abs(delta))),
			CounterpartyKind: cpKind,
			CounterpartyID:   cpID,
			ActorID:          actorID,
			Note:             req.Note,
		}
		if err := s.ledger.CreateTx(tx, &entry); err != nil {
			return err
		}
		return s.products.CommitStockTx(tx, productID, next, 0)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := ledgerEntryToResponse(&entry)
	return &resp, nil
}

// signedDelta fixes the delta sign by kind; adjustments carry their own.
func signedDelta(kind model.LedgerKind, qty int) (int, error) {
	if qty == 0 {
		return 0, errors.New("quantity cannot be zero")
	}
	switch dir := kind.Direction(); dir {
	case 0: // adjustment
		return qty, nil
	default:
		if qty < 0 {
			return 0, fmt.Errorf("quantity must be positive for kind %q", kind)
		}
		return dir * qty, nil
	}
}

// resolveCounterparty enforces the counterparty variant per kind: returns
// come from a customer or supplier, adjustments from the system.
func resolveCounterparty(kind model.LedgerKind, req dto.StockEventRequest) (model.CounterpartyKind, *uuid.UUID, error) {
	cpKind := model.CounterpartyKind(req.CounterpartyKind)
	if cpKind == "" {
		cpKind = model.CounterpartySystem
	}

	switch kind {
	case model.LedgerCustomerReturn:
		if cpKind != model.CounterpartyCustomer {
			return "", nil, errors.New("customer_return requires a customer counterparty")
		}
	case model.LedgerPurchase, model.LedgerSupplierReturn:
		if cpKind != model.CounterpartySupplier {
			return "", nil, fmt.Errorf("%s requires a supplier counterparty", kind)
		}
	case model.LedgerAdjustment:
		cpKind = model.CounterpartySystem
	}

	if req.CounterpartyID == nil {
		return cpKind, nil, nil
	}
	id, err := uuid.Parse(*req.CounterpartyID)
	if err != nil {
		return "", nil, fmt.Errorf("invalid counterparty_id: %w", err)
	}
	return cpKind, &id, nil
}

func (s *inventoryService) ListLedger(ctx context.Context, filter dto.LedgerListFilter) (*dto.LedgerListResponse, error) {
	repoFilter := repository.LedgerFilter{
		Kind:  filter.Kind,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		repoFilter.ProductID = &id
	}

	entries, total, err := s.ledger.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		data = append(data, ledgerEntryToResponse(&entries[i]))
	}
	return &dto.LedgerListResponse{
		Data:  data,
		Total: total,
		Page:  repoFilter.Page,
		Limit: repoFilter.Limit,
	}, nil
}

func (s *inventoryService) Reconcile(ctx context.Context, productID uuid.UUID) (*dto.ReconcileResponse, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found", productID)
	}
	sum, err := s.ledger.SumDeltas(ctx, productID)
	if err != nil {
		return nil, err
	}
	drift := p.StockOnHand - sum
	if drift != 0 {
		log.Warn().
			Str("product_id", productID.String()).
			Int("ledger_total", sum).
			Int("stock_on_hand", p.StockOnHand).
			Int("drift", drift).
			Msg("inventory: ledger does not explain counter — compensating adjustment required")
	}
	return &dto.ReconcileResponse{
		ProductID:     productID.String(),
		LedgerTotal:   sum,
		StockOnHand:   p.StockOnHand,
		StockReserved: p.StockReserved,
		Drift:         drift,
		InAgreement:   drift == 0,
	}, nil
}

// ReconcileAll audits the whole catalog, walking the product list page by
// page so no product beyond the first page escapes the audit.
func (s *inventoryService) ReconcileAll(ctx context.Context) ([]dto.ReconcileResponse, error) {
	const pageSize = 200

	var out []dto.ReconcileResponse
	for page := 1; ; page++ {
		products, total, err := s.products.List(ctx, dto.ProductFilter{Active: "all", Page: page, Limit: pageSize})
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			r, err := s.Reconcile(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			out = append(out, *r)
		}
		if len(products) == 0 || int64(len(out)) >= total {
			break
		}
	}
	return out, nil
}

func ledgerEntryToResponse(e *model.StockLedgerEntry) dto.LedgerEntryResponse {
	resp := dto.LedgerEntryResponse{
		ID:               e.ID.String(),
		ProductID:        e.ProductID.String(),
		Kind:             string(e.Kind),
		Quantity:         e.Quantity,
		PreviousStock:    e.PreviousStock,
		NewStock:         e.NewStock,
		UnitPrice:        e.UnitPrice,
		TotalValue:       e.TotalValue,
		CounterpartyKind: string(e.CounterpartyKind),
		ActorID:          e.ActorID.String(),
		Note:             e.Note,
		CreatedAt:        e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if e.Product != nil {
		resp.ProductName = e.Product.Name
	}
	if e.CounterpartyID != nil {
		id := e.CounterpartyID.String()
		resp.CounterpartyID = &id
	}
	if e.ReferenceID != nil {
		id := e.ReferenceID.String()
		resp.ReferenceID = &id
	}
	return resp
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

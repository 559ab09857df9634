package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chathuwa-whiz/zors-pos/internal/dto"
	"github.com/chathuwa-whiz/zors-pos/internal/model"
	"github.com/chathuwa-whiz/zors-pos/internal/pos"
	"github.com/chathuwa-whiz/zors-pos/internal/repository"
	"github.com/chathuwa-whiz/zors-pos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SalesService is the checkout sink: it persists completed orders and
// writes the sale ledger entries that consume the session's reservations.
type SalesService interface {
	pos.CheckoutSink

	ListOrders(ctx context.Context, filter dto.OrderHistoryFilter) (*dto.OrderListResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderHistoryItem, error)

	// DispatchReceipt enqueues the async receipt job. Best effort — a full
	// queue never fails a completed sale.
	DispatchReceipt(ctx context.Context, c *pos.Completion, email string)
}

type salesService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	ledger     repository.LedgerRepository
	dispatcher *worker.Dispatcher
}

func NewSalesService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	ledger repository.LedgerRepository,
	dispatcher *worker.Dispatcher,
) SalesService {
	return &salesService{orders: orders, products: products, ledger: ledger, dispatcher: dispatcher}
}

// PersistOrder durably writes the completed order. The id was generated by
// the session, so a retried completion inserts nothing the second time.
func (s *salesService) PersistOrder(ctx context.Context, o *pos.Order, t pos.Totals) error {
	record := orderToModel(o, t)
	return s.orders.CreateIdempotent(ctx, record)
}

// CommitSale writes one sale ledger entry per cart line and advances each
// product's counter, all in one transaction. Rows are locked so no two
// writers commit conflicting previous-stock assumptions; the reservation
// taken at cart time is consumed in the same statement.
func (s *salesService) CommitSale(ctx context.Context, o *pos.Order, _ pos.Totals) error {
	cpKind := model.CounterpartySystem
	if o.CustomerID != nil {
		cpKind = model.CounterpartyCustomer
	}

	return runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		for _, item := range o.Items {
			p, err := s.products.LockForUpdate(tx, item.ProductID)
			if err != nil {
				return fmt.Errorf("commit sale: product %s: %w", item.ProductID, err)
			}

			previous := p.StockOnHand
			next := previous - item.Quantity
			if next < 0 {
				return fmt.Errorf("commit sale: product %s: %w", p.Name, pos.ErrNegativeStock)
			}

			orderRef := o.ID
			entry := &model.StockLedgerEntry{
				ProductID:        item.ProductID,
				Kind:             model.LedgerSale,
				Quantity:         -item.Quantity,
				PreviousStock:    previous,
				NewStock:         next,
				UnitPrice:        item.UnitPrice,
				TotalValue:       item.Subtotal,
				CounterpartyKind: cpKind,
				CounterpartyID:   o.CustomerID,
				ActorID:          o.CashierID,
				ReferenceID:      &orderRef,
				Note:             fmt.Sprintf("Order %s", o.Name),
			}
			if err := s.ledger.CreateTx(tx, entry); err != nil {
				return err
			}
			if err := s.products.CommitStockTx(tx, item.ProductID, next, -item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *salesService) DispatchReceipt(ctx context.Context, c *pos.Completion, email string) {
	if s.dispatcher == nil || email == "" {
		return
	}
	payload := worker.ReceiptJobPayload{
		OrderID: c.Order.ID.String(),
		ToEmail: email,
	}
	if err := s.dispatcher.EnqueueReceipt(ctx, payload); err != nil {
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("sales: failed to enqueue receipt job")
	}
}

func (s *salesService) ListOrders(ctx context.Context, filter dto.OrderHistoryFilter) (*dto.OrderListResponse, error) {
	repoFilter := repository.OrderFilter{
		Date:  filter.Date,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	if filter.CashierID != "" {
		id, err := uuid.Parse(filter.CashierID)
		if err != nil {
			return nil, fmt.Errorf("invalid cashier_id: %w", err)
		}
		repoFilter.CashierID = &id
	}
	if repoFilter.Page < 1 {
		repoFilter.Page = 1
	}
	if repoFilter.Limit < 1 {
		repoFilter.Limit = 50
	}

	orders, total, err := s.orders.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderHistoryItem, 0, len(orders))
	for i := range orders {
		items = append(items, modelToHistoryItem(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:  items,
		Total: total,
		Page:  repoFilter.Page,
		Limit: repoFilter.Limit,
	}, nil
}

func (s *salesService) GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderHistoryItem, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order %s not found", id)
	}
	item := modelToHistoryItem(o)
	return &item, nil
}

func orderToModel(o *pos.Order, t pos.Totals) *model.Order {
	record := &model.Order{
		ID:               o.ID,
		Name:             o.Name,
		CashierID:        o.CashierID,
		CustomerID:       o.CustomerID,
		Type:             string(o.Type),
		Status:           "completed",
		Subtotal:         t.Subtotal,
		CouponDiscount:   t.CouponDiscount,
		DiscountPct:      o.DiscountPct,
		DiscountAmount:   t.DiscountAmount,
		TableCharge:      t.TableCharge,
		DeliveryCharge:   t.DeliveryCharge,
		Total:            t.Total,
		KitchenNote:      o.KitchenNote,
		PaymentMethod:    string(o.Payment.Method()),
		PaymentSurcharge: t.Surcharge,
		FinalTotal:       t.FinalTotal,
		CreatedAt:        o.CreatedAt,
		CompletedAt:      time.Now().UTC(),
	}
	if o.Coupon != nil {
		code := o.Coupon.Code
		record.CouponCode = &code
	}

	switch p := o.Payment.(type) {
	case *pos.CashPayment:
		given := p.Given
		change := p.Change(t.FinalTotal)
		record.CashGiven = &given
		record.CashChange = &change
	case *pos.CardPayment:
		invoice := p.InvoiceID
		issuer := p.Issuer
		record.CardInvoiceID = &invoice
		record.CardIssuer = &issuer
	}

	for _, item := range o.Items {
		record.Items = append(record.Items, model.OrderItem{
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		})
	}
	return record
}

func modelToHistoryItem(o *model.Order) dto.OrderHistoryItem {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}
	item := dto.OrderHistoryItem{
		ID:             o.ID.String(),
		Name:           o.Name,
		CashierID:      o.CashierID.String(),
		Type:           o.Type,
		Status:         o.Status,
		Subtotal:       o.Subtotal,
		CouponCode:     o.CouponCode,
		CouponDiscount: o.CouponDiscount,
		DiscountAmount: o.DiscountAmount,
		TableCharge:    o.TableCharge,
		DeliveryCharge: o.DeliveryCharge,
		Total:          o.Total,
		PaymentMethod:  o.PaymentMethod,
		Surcharge:      o.PaymentSurcharge,
		FinalTotal:     o.FinalTotal,
		Items:          items,
		CompletedAt:    o.CompletedAt.Format("2006-01-02T15:04:05Z"),
	}
	if o.CustomerID != nil {
		id := o.CustomerID.String()
		item.CustomerID = &id
	}
	return item
}

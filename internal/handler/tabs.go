package handler

import (
	"errors"
	"net/http"

	"github.com/chathuwa-whiz/zors-pos/internal/apierror"
	"github.com/chathuwa-whiz/zors-pos/internal/dto"
	"github.com/chathuwa-whiz/zors-pos/internal/middleware"
	"github.com/chathuwa-whiz/zors-pos/internal/pos"
	"github.com/chathuwa-whiz/zors-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TabsHandler owns the whole register surface: tab management, cart
// mutation, order detail edits and the checkout flow. Every route resolves
// the caller's session from the JWT subject.
type TabsHandler struct {
	sessions         *service.SessionManager
	catalog          service.CatalogService
	coupons          service.CouponService
	sales            service.SalesService
	cardSurchargePct decimal.Decimal
}

func NewTabsHandler(
	sessions *service.SessionManager,
	catalog service.CatalogService,
	coupons service.CouponService,
	sales service.SalesService,
	cardSurchargePct float64,
) *TabsHandler {
	return &TabsHandler{
		sessions:         sessions,
		catalog:          catalog,
		coupons:          coupons,
		sales:            sales,
		cardSurchargePct: decimal.NewFromFloat(cardSurchargePct),
	}
}

// session resolves the caller's pos.Session. Returns nil after writing the
// error response when the token subject is unusable.
func (h *TabsHandler) session(c *gin.Context) *pos.Session {
	cashierID, err := uuid.Parse(middleware.GetClaims(c).UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid token subject"))
		return nil
	}
	return h.sessions.Session(c.Request.Context(), cashierID)
}

func tabResponse(s *pos.Session, o pos.Order) dto.TabResponse {
	t, _ := s.Totals(o.ID)
	return dto.TabResponse{Order: o, Totals: t, Active: o.ID == s.ActiveID()}
}

// ─── Tab management ──────────────────────────────────────────────────────────

func (h *TabsHandler) List(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	orders := s.Orders()
	tabs := make([]dto.TabResponse, 0, len(orders))
	for _, o := range orders {
		tabs = append(tabs, tabResponse(s, o))
	}
	c.JSON(http.StatusOK, dto.TabListResponse{Tabs: tabs, ActiveID: s.ActiveID().String()})
}

func (h *TabsHandler) Create(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	o := s.NewOrder(c.Request.Context())
	c.JSON(http.StatusCreated, tabResponse(s, o))
}

func (h *TabsHandler) Delete(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	if err := s.DeleteOrder(c.Request.Context(), id); err != nil {
		posError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TabsHandler) Activate(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	if err := s.SetActive(c.Request.Context(), id); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.Order(id)
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) Reorder(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req dto.ReorderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	draggedID, err := uuid.Parse(req.DraggedID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid dragged_id"))
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid target_id"))
		return
	}
	s.Reorder(c.Request.Context(), draggedID, targetID)
	c.Status(http.StatusNoContent)
}

func (h *TabsHandler) GetActive(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	o, err := s.ActiveOrder()
	if err != nil {
		posError(c, err)
		return
	}
	c.JSON(http.StatusOK, tabResponse(s, o))
}

// ─── Cart mutation ───────────────────────────────────────────────────────────

func (h *TabsHandler) AddItem(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid product_id"))
		return
	}
	ref, err := h.catalog.Ref(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	if err := s.AddToCart(c.Request.Context(), *ref); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) ChangeQuantity(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req dto.ChangeQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid product_id"))
		return
	}
	if err := s.ChangeQuantity(c.Request.Context(), productID, req.Delta); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) RemoveItem(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid product ID"))
		return
	}
	if err := s.RemoveFromCart(c.Request.Context(), productID); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

// ─── Order detail edits ──────────────────────────────────────────────────────

func (h *TabsHandler) SetOrderType(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req dto.SetOrderTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := s.SetOrderType(c.Request.Context(), pos.OrderType(req.Type)); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) SetTableCharge(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req dto.SetChargeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := s.SetTableCharge(c.Request.Context(), req.Amount); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) SetDeliveryCharge(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req dto.SetChargeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := s.SetDeliveryCharge(c.Request.Context(), req.Amount); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) SetDiscount(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req dto.SetDiscountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := s.SetDiscount(c.Request.Context(), req.Percentage); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) ApplyCoupon(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req dto.ApplyCouponRequest
	if !bindAndValidate(c, &req) {
		return
	}
	coupon, err := h.coupons.Resolve(c.Request.Context(), req.Code)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	if err := s.ApplyCoupon(c.Request.Context(), *coupon); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) RemoveCoupon(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	if err := s.RemoveCoupon(c.Request.Context()); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) SetKitchenNote(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req dto.SetKitchenNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := s.SetKitchenNote(c.Request.Context(), req.Note); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) AssignCustomer(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	var req dto.AssignCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var customerID *uuid.UUID
	if req.CustomerID != nil {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid customer_id"))
			return
		}
		customerID = &id
	}
	if err := s.AssignCustomer(c.Request.Context(), customerID); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.ActiveOrder()
	c.JSON(http.StatusOK, tabResponse(s, o))
}

// ─── Checkout flow ───────────────────────────────────────────────────────────

func (h *TabsHandler) OpenCheckout(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	if err := s.OpenCheckout(c.Request.Context(), id); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.Order(id)
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) CancelCheckout(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	if err := s.CancelCheckout(c.Request.Context(), id); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.Order(id)
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) SetPayment(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.PaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	payment, perr := h.buildPayment(req)
	if perr != nil {
		c.JSON(http.StatusBadRequest, apierror.New(perr.Error()))
		return
	}
	if err := s.SetPayment(c.Request.Context(), id, payment); err != nil {
		posError(c, err)
		return
	}
	o, _ := s.Order(id)
	c.JSON(http.StatusOK, tabResponse(s, o))
}

func (h *TabsHandler) Complete(c *gin.Context) {
	s := h.session(c)
	if s == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}

	email := c.Query("receipt_email")

	completion, err := s.Complete(c.Request.Context(), id)
	var ledgerErr *pos.LedgerWriteError
	if err != nil && !errors.As(err, &ledgerErr) {
		posError(c, err)
		return
	}

	resp := dto.CompletionResponse{
		Order:  completion.Order,
		Totals: completion.Totals,
		Change: completion.Change,
	}
	if ledgerErr != nil {
		msg := ledgerErr.Error()
		resp.LedgerWarning = &msg
	}

	if email != "" {
		h.sales.DispatchReceipt(c.Request.Context(), completion, email)
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TabsHandler) buildPayment(req dto.PaymentRequest) (pos.Payment, error) {
	switch pos.PaymentMethod(req.Method) {
	case pos.PaymentCash:
		if req.CashGiven == nil {
			return nil, pos.ErrInsufficientPayment
		}
		return &pos.CashPayment{Given: *req.CashGiven}, nil
	case pos.PaymentCard:
		return &pos.CardPayment{
			InvoiceID:     req.CardInvoiceID,
			Issuer:        req.CardIssuer,
			SurchargeRate: h.cardSurchargePct,
		}, nil
	default:
		return nil, pos.ErrIncompletePaymentDetails
	}
}

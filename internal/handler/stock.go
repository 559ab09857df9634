package handler

import (
	"net/http"

	"github.com/chathuwa-whiz/zors-pos/internal/apierror"
	"github.com/chathuwa-whiz/zors-pos/internal/dto"
	"github.com/chathuwa-whiz/zors-pos/internal/middleware"
	"github.com/chathuwa-whiz/zors-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.InventoryService }

func NewStockHandler(svc service.InventoryService) *StockHandler {
	return &StockHandler{svc: svc}
}

// ApplyEvent records a purchase receipt, return or adjustment. Sales never
// come through here — they are written only by checkout completion.
func (h *StockHandler) ApplyEvent(c *gin.Context) {
	var req dto.StockEventRequest
	if !bindAndValidate(c, &req) {
		return
	}
	actorID, err := uuid.Parse(middleware.GetClaims(c).UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid token subject"))
		return
	}
	resp, err := h.svc.ApplyStockEvent(c.Request.Context(), actorID, req)
	if err != nil {
		posError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *StockHandler) ListLedger(c *gin.Context) {
	var filter dto.LedgerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListLedger(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list ledger entries"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockHandler) Reconcile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.svc.Reconcile(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StockHandler) ReconcileAll(c *gin.Context) {
	resp, err := h.svc.ReconcileAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Reconciliation failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

package handler

import (
	"net/http"

	"github.com/chathuwa-whiz/zors-pos/internal/apierror"
	"github.com/chathuwa-whiz/zors-pos/internal/dto"
	"github.com/chathuwa-whiz/zors-pos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CouponsHandler struct{ svc service.CouponService }

func NewCouponsHandler(svc service.CouponService) *CouponsHandler {
	return &CouponsHandler{svc: svc}
}

func (h *CouponsHandler) Create(c *gin.Context) {
	var req dto.CreateCouponRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CouponsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list coupons"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CouponsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

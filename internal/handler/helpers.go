package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/chathuwa-whiz/zors-pos/internal/apierror"
	"github.com/chathuwa-whiz/zors-pos/internal/pos"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// posError translates engine sentinels into HTTP responses. Anything not in
// the taxonomy is treated as an internal error.
func posError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pos.ErrOrderNotFound), errors.Is(err, pos.ErrLineNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, pos.ErrInsufficientStock), errors.Is(err, pos.ErrNegativeStock):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, pos.ErrInvalidTransition):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, pos.ErrProtectedOrder),
		errors.Is(err, pos.ErrEmptyCart),
		errors.Is(err, pos.ErrInsufficientPayment),
		errors.Is(err, pos.ErrIncompletePaymentDetails):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}

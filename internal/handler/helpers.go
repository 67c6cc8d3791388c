package handler

import (
	"net/http"
	"reflect"

	"github.com/colline-kooza/export-coffee-sub000/internal/apierror"
	"github.com/colline-kooza/export-coffee-sub000/internal/domainerr"

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

// statusByKind maps domain error kinds to HTTP statuses. Conflicts of
// uniqueness or optimistic locking are 409; rule violations are 422.
var statusByKind = map[domainerr.Kind]int{
	domainerr.KindValidation:          http.StatusBadRequest,
	domainerr.KindInvalidWeight:       http.StatusBadRequest,
	domainerr.KindEntryNotFound:       http.StatusNotFound,
	domainerr.KindReadingNotFound:     http.StatusNotFound,
	domainerr.KindNoteNotFound:        http.StatusNotFound,
	domainerr.KindTraderNotFound:      http.StatusNotFound,
	domainerr.KindEntryAlreadyWeighed: http.StatusConflict,
	domainerr.KindReadingConverted:    http.StatusConflict,
	domainerr.KindConcurrencyConflict: http.StatusConflict,
	domainerr.KindTraderNotEligible:   http.StatusUnprocessableEntity,
	domainerr.KindIllegalTransition:   http.StatusUnprocessableEntity,
	domainerr.KindNoteLocked:          http.StatusUnprocessableEntity,
}

// respondError translates a service error into the canonical envelope.
// Unclassified errors become opaque 500s so internals never leak.
func respondError(c *gin.Context, err error) {
	kind := domainerr.KindOf(err)
	if kind == "" {
		c.Error(err) //nolint:errcheck // picked up by the ErrorHandler middleware
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		return
	}
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusBadRequest
	}
	c.JSON(status, apierror.NewCoded(string(kind), err.Error()))
}

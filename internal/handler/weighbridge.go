package handler

import (
	"net/http"

	"github.com/colline-kooza/export-coffee-sub000/internal/apierror"
	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/middleware"
	"github.com/colline-kooza/export-coffee-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WeighbridgeHandler struct{ svc service.WeighbridgeService }

func NewWeighbridgeHandler(svc service.WeighbridgeService) *WeighbridgeHandler {
	return &WeighbridgeHandler{svc: svc}
}

// Record godoc
// @Summary      Record a weighbridge reading
// @Description  Captures gross/tare for a truck entry, derives net weight and consumes the entry. One reading per entry.
// @Tags         weighbridge
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RecordReadingRequest true "Scale measurement"
// @Success      201  {object} dto.ReadingResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/weighbridge-readings [post]
func (h *WeighbridgeHandler) Record(c *gin.Context) {
	var req dto.RecordReadingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operatorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Record(c.Request.Context(), operatorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List weighbridge readings
// @Description  Paginated readings; unconverted=true returns only readings not yet turned into a note.
// @Tags         weighbridge
// @Produce      json
// @Security     BearerAuth
// @Param        unconverted query bool false "Only readings without a note"
// @Param        page        query int  false "Page (default 1)"
// @Param        limit       query int  false "Records per page (default 50)"
// @Success      200         {object} dto.ReadingListResponse
// @Failure      400         {object} apierror.APIError
// @Router       /v1/weighbridge-readings [get]
func (h *WeighbridgeHandler) List(c *gin.Context) {
	var filter dto.ReadingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list readings"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

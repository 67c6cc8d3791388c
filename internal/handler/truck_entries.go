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

type TruckEntriesHandler struct{ svc service.TruckEntryService }

func NewTruckEntriesHandler(svc service.TruckEntryService) *TruckEntriesHandler {
	return &TruckEntriesHandler{svc: svc}
}

// Register godoc
// @Summary      Register an arriving truck
// @Description  Records a truck arrival at the gate. The entry awaits exactly one weighbridge reading.
// @Tags         truck-entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegisterTruckEntryRequest true "Arrival details"
// @Success      201  {object} dto.TruckEntryResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/truck-entries [post]
func (h *TruckEntriesHandler) Register(c *gin.Context) {
	var req dto.RegisterTruckEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	officerID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Register(c.Request.Context(), officerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List truck entries
// @Description  Paginated list of gate entries; pending=true returns only entries awaiting a reading.
// @Tags         truck-entries
// @Produce      json
// @Security     BearerAuth
// @Param        pending query bool false "Only entries without a reading"
// @Param        page    query int  false "Page (default 1)"
// @Param        limit   query int  false "Records per page (default 50)"
// @Success      200     {object} dto.TruckEntryListResponse
// @Failure      400     {object} apierror.APIError
// @Router       /v1/truck-entries [get]
func (h *TruckEntriesHandler) List(c *gin.Context) {
	var filter dto.TruckEntryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list truck entries"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

package handler

import (
	"net/http"

	"github.com/colline-kooza/export-coffee-sub000/internal/apierror"
	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TradersHandler struct {
	svc     service.TraderService
	perfSvc service.PerformanceService
}

func NewTradersHandler(svc service.TraderService, perfSvc service.PerformanceService) *TradersHandler {
	return &TradersHandler{svc: svc, perfSvc: perfSvc}
}

// Create godoc
// @Summary      Register a trader
// @Tags         traders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateTraderRequest true "Trader details"
// @Success      201  {object} dto.TraderResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/traders [post]
func (h *TradersHandler) Create(c *gin.Context) {
	var req dto.CreateTraderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get one trader
// @Tags         traders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Trader UUID"
// @Success      200 {object} dto.TraderResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/traders/{id} [get]
func (h *TradersHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List traders
// @Tags         traders
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Trader status or all"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Records per page (default 50)"
// @Success      200    {object} dto.TraderListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/traders [get]
func (h *TradersHandler) List(c *gin.Context) {
	var filter dto.TraderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list traders"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary      Change trader eligibility
// @Description  Sets ACTIVE, SUSPENDED, BLACKLISTED or UNDER_REVIEW. Non-ACTIVE traders cannot deliver.
// @Tags         traders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Trader UUID"
// @Param        body body dto.UpdateTraderStatusRequest true "New status"
// @Success      200  {object} dto.TraderResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/traders/{id}/status [patch]
func (h *TradersHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateTraderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPerformance godoc
// @Summary      Get the trader performance rollup
// @Description  Returns the aggregated metrics over the trader's terminal notes, recomputed after every completion or rejection.
// @Tags         traders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Trader UUID"
// @Success      200 {object} dto.PerformanceResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/traders/{id}/performance [get]
func (h *TradersHandler) GetPerformance(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	resp, err := h.perfSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

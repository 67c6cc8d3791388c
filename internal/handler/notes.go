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

type NotesHandler struct{ svc service.NoteService }

func NewNotesHandler(svc service.NoteService) *NotesHandler {
	return &NotesHandler{svc: svc}
}

// Create godoc
// @Summary      Create a buying weight note
// @Description  Converts an unconverted weighbridge reading into a priced note. Derives deduction and total, assigns the per-period note number.
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateNoteRequest true "Reading, coffee type, moisture and price"
// @Success      201  {object} dto.NoteResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/buying-weight-notes [post]
func (h *NotesHandler) Create(c *gin.Context) {
	var req dto.CreateNoteRequest
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

// Update godoc
// @Summary      Edit moisture or price
// @Description  Re-derives deduction, final weight and total. Only legal while the note is WEIGHED.
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Note UUID"
// @Param        body body dto.UpdateNoteRequest true "New moisture and/or price"
// @Success      200  {object} dto.NoteResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/buying-weight-notes/{id} [patch]
func (h *NotesHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transition godoc
// @Summary      Move a note through its lifecycle
// @Description  Applies one legal status transition. REJECTED requires a reason; PAYMENT_APPROVED requires a recorded QC outcome; COMPLETED requires payment PAID.
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Note UUID"
// @Param        body body dto.TransitionNoteRequest true "Target status"
// @Success      200  {object} dto.NoteResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/buying-weight-notes/{id}/transition [post]
func (h *NotesHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.TransitionNoteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Transition(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecordQCResult godoc
// @Summary      Record the QC verdict
// @Description  Stores the quality control outcome for a note awaiting QC. Upserts so a corrected verdict replaces the previous one.
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Note UUID"
// @Param        body body dto.QCResultRequest true "QC outcome"
// @Success      204
// @Failure      422  {object} apierror.APIError
// @Router       /v1/buying-weight-notes/{id}/qc-result [post]
func (h *NotesHandler) RecordQCResult(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.QCResultRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	analystID, _ := uuid.Parse(claims.UserID)

	if err := h.svc.RecordQCResult(c.Request.Context(), id, analystID, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecordPayment godoc
// @Summary      Confirm payment
// @Description  Marks the note PAID after the payment leg settles. Requires PAYMENT_APPROVED status.
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Note UUID"
// @Param        body body dto.PaymentUpdateRequest true "Payment confirmation"
// @Success      204
// @Failure      422  {object} apierror.APIError
// @Router       /v1/buying-weight-notes/{id}/payment [post]
func (h *NotesHandler) RecordPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.PaymentUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RecordPayment(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get godoc
// @Summary      Get one note
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Note UUID"
// @Success      200 {object} dto.NoteResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/buying-weight-notes/{id} [get]
func (h *NotesHandler) Get(c *gin.Context) {
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
// @Summary      List notes
// @Tags         notes
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "Note status or all"
// @Param        trader_id query string false "Trader UUID"
// @Param        date      query string false "YYYY-MM-DD on created_at"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Records per page (default 50)"
// @Success      200       {object} dto.NoteListResponse
// @Failure      400       {object} apierror.APIError
// @Router       /v1/buying-weight-notes [get]
func (h *NotesHandler) List(c *gin.Context) {
	var filter dto.NoteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list notes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadSlip godoc
// @Summary      Download the printable slip
// @Description  Serves the rendered PDF slip. Available once the note is COMPLETED and the render job has run.
// @Tags         notes
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "Note UUID"
// @Success      200
// @Failure      404 {object} apierror.APIError
// @Router       /v1/buying-weight-notes/{id}/slip [get]
func (h *NotesHandler) DownloadSlip(c *gin.Context) {
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
	path, err := h.svc.SlipPath(c.Request.Context(), id)
	if err != nil || path == "" {
		c.JSON(http.StatusNotFound, apierror.NewCoded("SLIP_NOT_READY", "Slip for note "+resp.NoteNumber+" is not available yet"))
		return
	}
	c.FileAttachment(path, resp.NoteNumber+".pdf")
}

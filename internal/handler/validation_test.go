package handler

import (
	"testing"

	"github.com/colline-kooza/export-coffee-sub000/internal/dto"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

// Rejection reasons are mandatory and non-empty, nothing more. A terse reason
// like "wet" must clear the request validator and reach the service.
func TestTransitionRequest_ShortReasonAccepted(t *testing.T) {
	req := dto.TransitionNoteRequest{To: "REJECTED", Reason: strPtr("wet")}
	assert.NoError(t, validate.Struct(req))

	req = dto.TransitionNoteRequest{To: "REJECTED", Reason: strPtr("x")}
	assert.NoError(t, validate.Struct(req))
}

func TestTransitionRequest_EmptyReasonRejected(t *testing.T) {
	req := dto.TransitionNoteRequest{To: "REJECTED", Reason: strPtr("")}
	assert.Error(t, validate.Struct(req))
}

func TestTransitionRequest_ReasonOptionalForForwardMoves(t *testing.T) {
	req := dto.TransitionNoteRequest{To: "MOISTURE_TESTED"}
	assert.NoError(t, validate.Struct(req))
}

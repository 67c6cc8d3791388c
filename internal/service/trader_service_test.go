package service

import (
	"context"
	"testing"

	"github.com/colline-kooza/export-coffee-sub000/internal/domainerr"
	"github.com/colline-kooza/export-coffee-sub000/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTrader_DefaultsToActiveNet7(t *testing.T) {
	svc := NewTraderService(newStubTraderRepo())

	resp, err := svc.Create(context.Background(), dto.CreateTraderRequest{Name: "Mbale Growers"})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Status)
	assert.Equal(t, 7, resp.PaymentTermsDays)
}

func TestUpdateTraderStatus(t *testing.T) {
	repo := newStubTraderRepo()
	svc := NewTraderService(repo)

	resp, err := svc.Create(context.Background(), dto.CreateTraderRequest{Name: "Mbale Growers"})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	updated, err := svc.UpdateStatus(context.Background(), id, dto.UpdateTraderStatusRequest{Status: "SUSPENDED"})
	require.NoError(t, err)
	assert.Equal(t, "SUSPENDED", updated.Status)

	_, err = svc.UpdateStatus(context.Background(), id, dto.UpdateTraderStatusRequest{Status: "FROZEN"})
	assert.Equal(t, domainerr.KindValidation, domainerr.KindOf(err))

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), dto.UpdateTraderStatusRequest{Status: "ACTIVE"})
	assert.Equal(t, domainerr.KindTraderNotFound, domainerr.KindOf(err))
}

func TestGetTrader_NotFound(t *testing.T) {
	svc := NewTraderService(newStubTraderRepo())
	_, err := svc.Get(context.Background(), uuid.New())
	assert.Equal(t, domainerr.KindTraderNotFound, domainerr.KindOf(err))
}

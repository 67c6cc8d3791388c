package service

import (
	"context"
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/domainerr"
	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/model"
	"github.com/colline-kooza/export-coffee-sub000/internal/repository"

	"github.com/google/uuid"
)

// TruckEntryService tracks truck arrivals awaiting weighing. Entries are
// created at gate registration and consumed exactly once when a weighbridge
// reading is recorded against them.
type TruckEntryService interface {
	Register(ctx context.Context, officerID uuid.UUID, req dto.RegisterTruckEntryRequest) (*dto.TruckEntryResponse, error)
	List(ctx context.Context, filter dto.TruckEntryFilter) (*dto.TruckEntryListResponse, error)
}

type truckEntryService struct {
	repo       repository.TruckEntryRepository
	traderRepo repository.TraderRepository
}

func NewTruckEntryService(repo repository.TruckEntryRepository, traderRepo repository.TraderRepository) TruckEntryService {
	return &truckEntryService{repo: repo, traderRepo: traderRepo}
}

func (s *truckEntryService) Register(ctx context.Context, officerID uuid.UUID, req dto.RegisterTruckEntryRequest) (*dto.TruckEntryResponse, error) {
	traderID, err := uuid.Parse(req.TraderID)
	if err != nil {
		return nil, domainerr.New(domainerr.KindValidation, "trader_id is not a valid UUID")
	}

	trader, err := s.traderRepo.FindByID(ctx, traderID)
	if err != nil {
		return nil, domainerr.Newf(domainerr.KindTraderNotFound, "trader %s not found", req.TraderID)
	}

	entry := &model.TruckEntry{
		TruckNumber:       req.TruckNumber,
		DriverName:        req.DriverName,
		DriverPhone:       req.DriverPhone,
		TraderID:          traderID,
		SecurityOfficerID: officerID,
		ArrivedAt:         time.Now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	resp := entryToResponse(entry)
	resp.TraderName = trader.Name
	return resp, nil
}

func (s *truckEntryService) List(ctx context.Context, filter dto.TruckEntryFilter) (*dto.TruckEntryListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TruckEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, *entryToResponse(&entries[i]))
	}
	return &dto.TruckEntryListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func entryToResponse(e *model.TruckEntry) *dto.TruckEntryResponse {
	traderName := ""
	if e.Trader != nil {
		traderName = e.Trader.Name
	}
	return &dto.TruckEntryResponse{
		ID:          e.ID.String(),
		TruckNumber: e.TruckNumber,
		DriverName:  e.DriverName,
		DriverPhone: e.DriverPhone,
		TraderID:    e.TraderID.String(),
		TraderName:  traderName,
		Consumed:    e.Consumed,
		ArrivedAt:   e.ArrivedAt.Format(time.RFC3339),
	}
}

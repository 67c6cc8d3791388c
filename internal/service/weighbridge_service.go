package service

import (
	"context"
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/domainerr"
	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/model"
	"github.com/colline-kooza/export-coffee-sub000/internal/repository"
	"github.com/colline-kooza/export-coffee-sub000/internal/weightcalc"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WeighbridgeService records one gross/tare measurement per truck entry and
// exposes readings not yet converted into a buying weight note.
type WeighbridgeService interface {
	Record(ctx context.Context, operatorID uuid.UUID, req dto.RecordReadingRequest) (*dto.ReadingResponse, error)
	List(ctx context.Context, filter dto.ReadingFilter) (*dto.ReadingListResponse, error)
}

type weighbridgeService struct {
	repo      repository.WeighbridgeRepository
	entryRepo repository.TruckEntryRepository
}

func NewWeighbridgeService(repo repository.WeighbridgeRepository, entryRepo repository.TruckEntryRepository) WeighbridgeService {
	return &weighbridgeService{repo: repo, entryRepo: entryRepo}
}

// Record derives net weight from gross/tare and persists the reading,
// consuming the truck entry in the same transaction. The unique index on
// truck_entry_id plus the guarded consumed-flag update make a second reading
// for the same entry impossible even under concurrent requests.
func (s *weighbridgeService) Record(ctx context.Context, operatorID uuid.UUID, req dto.RecordReadingRequest) (*dto.ReadingResponse, error) {
	entryID, err := uuid.Parse(req.TruckEntryID)
	if err != nil {
		return nil, domainerr.New(domainerr.KindValidation, "truck_entry_id is not a valid UUID")
	}

	entry, err := s.entryRepo.FindByID(ctx, entryID)
	if err != nil {
		return nil, domainerr.Newf(domainerr.KindEntryNotFound, "truck entry %s not found", req.TruckEntryID)
	}
	if entry.Consumed {
		return nil, domainerr.Newf(domainerr.KindEntryAlreadyWeighed, "truck entry %s already has a reading", req.TruckEntryID)
	}

	net, err := weightcalc.NetWeight(req.GrossWeightKg, req.TareWeightKg)
	if err != nil {
		return nil, domainerr.New(domainerr.KindInvalidWeight, err.Error())
	}

	reading := &model.WeighbridgeReading{
		TruckEntryID:  entryID,
		GrossWeightKg: req.GrossWeightKg,
		TareWeightKg:  req.TareWeightKg,
		NetWeightKg:   net,
		OperatorID:    operatorID,
		WeighedAt:     time.Now(),
		Notes:         req.Notes,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.entryRepo.MarkConsumedTx(tx, entryID)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Lost the race against a concurrent weighing of the same entry.
			return domainerr.Newf(domainerr.KindEntryAlreadyWeighed, "truck entry %s already has a reading", req.TruckEntryID)
		}
		return s.repo.CreateTx(ctx, tx, reading)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := readingToResponse(reading)
	resp.TruckNumber = entry.TruckNumber
	resp.TraderID = entry.TraderID.String()
	return resp, nil
}

func (s *weighbridgeService) List(ctx context.Context, filter dto.ReadingFilter) (*dto.ReadingListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	readings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReadingResponse, 0, len(readings))
	for i := range readings {
		r := readingToResponse(&readings[i])
		if readings[i].TruckEntry != nil {
			r.TruckNumber = readings[i].TruckEntry.TruckNumber
			r.TraderID = readings[i].TruckEntry.TraderID.String()
		}
		items = append(items, *r)
	}
	return &dto.ReadingListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func readingToResponse(r *model.WeighbridgeReading) *dto.ReadingResponse {
	return &dto.ReadingResponse{
		ID:            r.ID.String(),
		TruckEntryID:  r.TruckEntryID.String(),
		GrossWeightKg: r.GrossWeightKg,
		TareWeightKg:  r.TareWeightKg,
		NetWeightKg:   r.NetWeightKg,
		OperatorID:    r.OperatorID.String(),
		Notes:         r.Notes,
		WeighedAt:     r.WeighedAt.Format(time.RFC3339),
	}
}

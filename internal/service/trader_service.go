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

// TraderService owns trader identity, eligibility status and payment terms.
type TraderService interface {
	Create(ctx context.Context, req dto.CreateTraderRequest) (*dto.TraderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.TraderResponse, error)
	List(ctx context.Context, filter dto.TraderFilter) (*dto.TraderListResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateTraderStatusRequest) (*dto.TraderResponse, error)
}

type traderService struct {
	repo repository.TraderRepository
}

func NewTraderService(repo repository.TraderRepository) TraderService {
	return &traderService{repo: repo}
}

func (s *traderService) Create(ctx context.Context, req dto.CreateTraderRequest) (*dto.TraderResponse, error) {
	terms := req.PaymentTermsDays
	if terms == 0 {
		terms = 7
	}
	trader := &model.Trader{
		Name:             req.Name,
		Phone:            req.Phone,
		Status:           model.TraderActive,
		PaymentTermsDays: terms,
		Region:           req.Region,
	}
	if err := s.repo.Create(ctx, trader); err != nil {
		return nil, err
	}
	return traderToResponse(trader), nil
}

func (s *traderService) Get(ctx context.Context, id uuid.UUID) (*dto.TraderResponse, error) {
	trader, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domainerr.Newf(domainerr.KindTraderNotFound, "trader %s not found", id)
	}
	return traderToResponse(trader), nil
}

func (s *traderService) List(ctx context.Context, filter dto.TraderFilter) (*dto.TraderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	traders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TraderResponse, 0, len(traders))
	for i := range traders {
		items = append(items, *traderToResponse(&traders[i]))
	}
	return &dto.TraderListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *traderService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateTraderStatusRequest) (*dto.TraderResponse, error) {
	status := model.TraderStatus(req.Status)
	if !status.Valid() {
		return nil, domainerr.Newf(domainerr.KindValidation, "unknown trader status %q", req.Status)
	}
	rows, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domainerr.Newf(domainerr.KindTraderNotFound, "trader %s not found", id)
	}
	trader, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domainerr.Newf(domainerr.KindTraderNotFound, "trader %s not found", id)
	}
	return traderToResponse(trader), nil
}

func traderToResponse(t *model.Trader) *dto.TraderResponse {
	return &dto.TraderResponse{
		ID:               t.ID.String(),
		Name:             t.Name,
		Phone:            t.Phone,
		Status:           string(t.Status),
		PaymentTermsDays: t.PaymentTermsDays,
		Region:           t.Region,
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
	}
}

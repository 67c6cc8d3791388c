package service

import (
	"context"
	"math"
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/domainerr"
	"github.com/colline-kooza/export-coffee-sub000/internal/dto"
	"github.com/colline-kooza/export-coffee-sub000/internal/model"
	"github.com/colline-kooza/export-coffee-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PerformanceService recomputes the per-trader rollup from all terminal
// notes. Each recompute is a full replacement of the row, never an
// incremental patch, so running it twice with no new notes yields the same
// metrics (idempotent) and concurrent recomputes for one trader resolve as
// last-writer-wins without drift.
type PerformanceService interface {
	Recompute(ctx context.Context, traderID uuid.UUID) error
	Get(ctx context.Context, traderID uuid.UUID) (*dto.PerformanceResponse, error)
}

type performanceService struct {
	repo     repository.PerformanceRepository
	noteRepo repository.NoteRepository
}

func NewPerformanceService(repo repository.PerformanceRepository, noteRepo repository.NoteRepository) PerformanceService {
	return &performanceService{repo: repo, noteRepo: noteRepo}
}

func (s *performanceService) Recompute(ctx context.Context, traderID uuid.UUID) error {
	notes, err := s.noteRepo.ListTerminalByTrader(ctx, traderID)
	if err != nil {
		return err
	}

	perf := buildPerformance(traderID, notes)
	return s.repo.Replace(ctx, perf)
}

func (s *performanceService) Get(ctx context.Context, traderID uuid.UUID) (*dto.PerformanceResponse, error) {
	perf, err := s.repo.FindByTrader(ctx, traderID)
	if err != nil {
		return nil, domainerr.Newf(domainerr.KindTraderNotFound, "no performance rollup for trader %s", traderID)
	}

	var last *string
	if perf.LastDeliveryAt != nil {
		l := perf.LastDeliveryAt.Format(time.RFC3339)
		last = &l
	}
	return &dto.PerformanceResponse{
		TraderID:                perf.TraderID.String(),
		TotalDeliveries:         perf.TotalDeliveries,
		TotalVolumeKg:           perf.TotalVolumeKg,
		AcceptedDeliveries:      perf.AcceptedDeliveries,
		RejectedDeliveries:      perf.RejectedDeliveries,
		BorderlineDeliveries:    perf.BorderlineDeliveries,
		AcceptanceRatePct:       perf.AcceptanceRatePct,
		QualityConsistencyScore: perf.QualityConsistencyScore,
		AvgDefectCount:          perf.AvgDefectCount,
		AvgMoistureTenths:       perf.AvgMoistureTenths,
		OnTimeRatePct:           perf.OnTimeRatePct,
		LastDeliveryAt:          last,
		ComputedAt:              perf.ComputedAt.Format(time.RFC3339),
	}, nil
}

// buildPerformance derives the complete rollup from the trader's terminal
// notes. Pure — the only inputs are the notes themselves.
func buildPerformance(traderID uuid.UUID, notes []model.BuyingWeightNote) *model.TraderPerformance {
	perf := &model.TraderPerformance{
		TraderID:                traderID,
		AcceptanceRatePct:       decimal.Zero,
		QualityConsistencyScore: decimal.Zero,
		AvgDefectCount:          decimal.Zero,
		AvgMoistureTenths:       decimal.Zero,
		OnTimeRatePct:           decimal.Zero,
		ComputedAt:              time.Now(),
	}

	if len(notes) == 0 {
		return perf
	}

	var (
		moistureSum  int64
		defectSum    int64
		defectCount  int
		scores       []float64
		onTime       int
		onTimeTotal  int
		lastDelivery time.Time
	)

	for i := range notes {
		n := &notes[i]
		perf.TotalDeliveries++
		moistureSum += int64(n.MoistureContent)

		switch n.Status {
		case model.StatusCompleted:
			perf.AcceptedDeliveries++
			perf.TotalVolumeKg += n.FinalNetWeightKg
		case model.StatusRejected:
			perf.RejectedDeliveries++
		}

		if qa := n.QualityAnalysis; qa != nil {
			if qa.Outcome == model.QCBorderline {
				perf.BorderlineDeliveries++
			}
			defectSum += int64(qa.DefectCount)
			defectCount++
			scores = append(scores, qa.Score.InexactFloat64())
		}

		// On-time comparison: arrival at the gate vs the agreed delivery
		// date. Notes without both data points are excluded from the rate.
		if n.Status == model.StatusCompleted && n.DeliveryDate != nil &&
			n.WeighbridgeReading != nil && n.WeighbridgeReading.TruckEntry != nil {
			onTimeTotal++
			deadline := n.DeliveryDate.AddDate(0, 0, 1) // end of the agreed day
			if n.WeighbridgeReading.TruckEntry.ArrivedAt.Before(deadline) {
				onTime++
			}
		}

		when := n.UpdatedAt
		if n.CompletedAt != nil {
			when = *n.CompletedAt
		}
		if when.After(lastDelivery) {
			lastDelivery = when
		}
	}

	total := decimal.NewFromInt(int64(perf.TotalDeliveries))
	perf.AcceptanceRatePct = decimal.NewFromInt(int64(perf.AcceptedDeliveries)).
		Div(total).Mul(decimal.NewFromInt(100)).Round(2)
	perf.AvgMoistureTenths = decimal.NewFromInt(moistureSum).Div(total).Round(2)

	if defectCount > 0 {
		perf.AvgDefectCount = decimal.NewFromInt(defectSum).
			Div(decimal.NewFromInt(int64(defectCount))).Round(2)
	}
	perf.QualityConsistencyScore = consistencyScore(scores)

	if onTimeTotal > 0 {
		perf.OnTimeRatePct = decimal.NewFromInt(int64(onTime)).
			Div(decimal.NewFromInt(int64(onTimeTotal))).Mul(decimal.NewFromInt(100)).Round(2)
	}

	perf.LastDeliveryAt = &lastDelivery
	return perf
}

// consistencyScore maps the spread of QC scores to 0-100: no spread scores
// 100, each point of standard deviation costs one point. No QC data at all
// scores zero — consistency cannot be claimed without evidence.
func consistencyScore(scores []float64) decimal.Decimal {
	if len(scores) == 0 {
		return decimal.Zero
	}
	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(scores))

	score := 100.0 - math.Sqrt(variance)
	if score < 0 {
		score = 0
	}
	return decimal.NewFromFloat(score).Round(2)
}

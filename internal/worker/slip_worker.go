package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/colline-kooza/export-coffee-sub000/internal/model"
	"github.com/colline-kooza/export-coffee-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SlipRenderer writes a printable slip for a completed note and returns the
// stored file path. Satisfied by the infra PDF generator.
type SlipRenderer interface {
	RenderSlip(note *model.BuyingWeightNote) (string, error)
}

// SlipWorker renders buying weight note slips after completion.
type SlipWorker struct {
	noteRepo repository.NoteRepository
	renderer SlipRenderer
}

func NewSlipWorker(noteRepo repository.NoteRepository, renderer SlipRenderer) *SlipWorker {
	return &SlipWorker{noteRepo: noteRepo, renderer: renderer}
}

func (w *SlipWorker) Process(ctx context.Context, payload json.RawMessage) error {
	var job SlipJobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("invalid slip payload: %w", err)
	}
	noteID, err := uuid.Parse(job.NoteID)
	if err != nil {
		return fmt.Errorf("invalid note id %q: %w", job.NoteID, err)
	}

	note, err := w.noteRepo.FindByID(ctx, noteID)
	if err != nil {
		return fmt.Errorf("load note %s: %w", noteID, err)
	}

	path, err := w.renderer.RenderSlip(note)
	if err != nil {
		return fmt.Errorf("render slip for note %s: %w", note.NoteNumber, err)
	}
	if err := w.noteRepo.UpdateSlipPath(ctx, noteID, path); err != nil {
		return fmt.Errorf("save slip path for note %s: %w", note.NoteNumber, err)
	}

	log.Info().Str("note_number", note.NoteNumber).Str("path", path).Msg("slip rendered")
	return nil
}

package service

import (
	"context"
	"fmt"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/metrics"
	"github.com/guttosm/pack-assistant/internal/repository"
)

// DraftStore persists in-progress packing so a reopened order resumes where
// the operator left off. A missing draft is not an error: loads return empty
// values.
type DraftStore interface {
	SaveDraftState(ctx context.Context, orderID string, state model.PackingStateMap, savedBy string) error
	LoadDraftState(ctx context.Context, orderID string) (model.PackingStateMap, error)
	SaveDraftBoxes(ctx context.Context, orderID string, boxes []model.Box, savedBy string) error
	LoadDraftBoxes(ctx context.Context, orderID string) ([]model.Box, error)
	// LoadDraft returns both halves of the draft with a single read.
	LoadDraft(ctx context.Context, orderID string) (model.PackingStateMap, []model.Box, error)
	DiscardDraft(ctx context.Context, orderID string) error
}

// DraftService implements DraftStore on top of a drafts repository.
type DraftService struct {
	repo repository.DraftsRepositoryInterface
}

// NewDraftService creates a draft store.
func NewDraftService(repo repository.DraftsRepositoryInterface) *DraftService {
	return &DraftService{repo: repo}
}

// SaveDraftState stores the packing-state map.
func (s *DraftService) SaveDraftState(ctx context.Context, orderID string, state model.PackingStateMap, savedBy string) error {
	if s.repo == nil {
		return ErrRepositoryNotConfigured
	}
	if err := s.repo.SaveState(ctx, orderID, state, savedBy); err != nil {
		metrics.RecordDraftOperation("save_state", "error")
		return fmt.Errorf("save draft state for %s: %w", orderID, err)
	}
	metrics.RecordDraftOperation("save_state", "success")
	return nil
}

// SaveDraftBoxes stores the derived box list.
func (s *DraftService) SaveDraftBoxes(ctx context.Context, orderID string, boxes []model.Box, savedBy string) error {
	if s.repo == nil {
		return ErrRepositoryNotConfigured
	}
	if err := s.repo.SaveBoxes(ctx, orderID, boxes, savedBy); err != nil {
		metrics.RecordDraftOperation("save_boxes", "error")
		return fmt.Errorf("save draft boxes for %s: %w", orderID, err)
	}
	metrics.RecordDraftOperation("save_boxes", "success")
	return nil
}

// LoadDraftState returns the saved packing-state map, or nil.
func (s *DraftService) LoadDraftState(ctx context.Context, orderID string) (model.PackingStateMap, error) {
	state, _, err := s.LoadDraft(ctx, orderID)
	return state, err
}

// LoadDraftBoxes returns the saved box list, or nil.
func (s *DraftService) LoadDraftBoxes(ctx context.Context, orderID string) ([]model.Box, error) {
	_, boxes, err := s.LoadDraft(ctx, orderID)
	return boxes, err
}

// LoadDraft returns the saved packing-state map and box list.
func (s *DraftService) LoadDraft(ctx context.Context, orderID string) (model.PackingStateMap, []model.Box, error) {
	if s.repo == nil {
		return nil, nil, ErrRepositoryNotConfigured
	}
	draft, err := s.repo.Get(ctx, orderID)
	if err != nil {
		metrics.RecordDraftOperation("load", "error")
		return nil, nil, fmt.Errorf("load draft for %s: %w", orderID, err)
	}
	if draft == nil {
		metrics.RecordDraftOperation("load", "empty")
		return nil, nil, nil
	}
	metrics.RecordDraftOperation("load", "success")
	return draft.PackingState, draft.Boxes, nil
}

// DiscardDraft deletes the order's draft.
func (s *DraftService) DiscardDraft(ctx context.Context, orderID string) error {
	if s.repo == nil {
		return ErrRepositoryNotConfigured
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		metrics.RecordDraftOperation("discard", "error")
		return fmt.Errorf("discard draft for %s: %w", orderID, err)
	}
	metrics.RecordDraftOperation("discard", "success")
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/pack-assistant/internal/domain/model"
	"github.com/guttosm/pack-assistant/internal/repository"
)

// ErrRepositoryNotConfigured is returned when the repository is not configured.
var ErrRepositoryNotConfigured = errors.New("repository not configured")

// ErrCapacitySettingNotFound is returned when no setting exists for a catalog number.
var ErrCapacitySettingNotFound = errors.New("capacity setting not found")

// CapacitySettingsService manages max-per-box settings.
type CapacitySettingsService interface {
	GetAll(ctx context.Context) ([]model.MaxPerBoxSetting, error)
	GetByCatalogNumber(ctx context.Context, catalogNumber string) (*model.MaxPerBoxSetting, error)
	Upsert(ctx context.Context, catalogNumber string, maxQuantity int, updatedBy string) (*model.MaxPerBoxSetting, error)
	Delete(ctx context.Context, catalogNumber string) error
}

// CapacitySettingsServiceImpl implements CapacitySettingsService. Writes
// invalidate the resolver's cached entry for the catalog number, so the next
// opened session splits with the new value.
type CapacitySettingsServiceImpl struct {
	repo     repository.CapacitySettingsRepositoryInterface
	resolver *CapacityResolver
}

// NewCapacitySettingsService creates a new capacity settings service.
func NewCapacitySettingsService(repo repository.CapacitySettingsRepositoryInterface, resolver *CapacityResolver) *CapacitySettingsServiceImpl {
	return &CapacitySettingsServiceImpl{repo: repo, resolver: resolver}
}

func (s *CapacitySettingsServiceImpl) GetAll(ctx context.Context) ([]model.MaxPerBoxSetting, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return s.repo.GetAll(ctx)
}

func (s *CapacitySettingsServiceImpl) GetByCatalogNumber(ctx context.Context, catalogNumber string) (*model.MaxPerBoxSetting, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	setting, err := s.repo.GetByCatalogNumber(ctx, catalogNumber)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, ErrCapacitySettingNotFound
	}
	return setting, nil
}

// Upsert creates or replaces the setting for a catalog number.
func (s *CapacitySettingsServiceImpl) Upsert(ctx context.Context, catalogNumber string, maxQuantity int, updatedBy string) (*model.MaxPerBoxSetting, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	catalogNumber = strings.TrimSpace(catalogNumber)
	if catalogNumber == "" {
		return nil, fmt.Errorf("%w: missing catalog number", ErrInvalidCapacity)
	}
	if maxQuantity <= 0 {
		return nil, ErrInvalidCapacity
	}

	setting := &model.MaxPerBoxSetting{
		CatalogNumber: catalogNumber,
		MaxQuantity:   maxQuantity,
		UpdatedAt:     time.Now().UTC(),
		UpdatedBy:     updatedBy,
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, fmt.Errorf("upsert capacity setting %s: %w", catalogNumber, err)
	}
	s.invalidate(catalogNumber)
	return setting, nil
}

// Delete removes the setting; the catalog number becomes unbounded.
func (s *CapacitySettingsServiceImpl) Delete(ctx context.Context, catalogNumber string) error {
	if s.repo == nil {
		return ErrRepositoryNotConfigured
	}
	deleted, err := s.repo.Delete(ctx, catalogNumber)
	if err != nil {
		return fmt.Errorf("delete capacity setting %s: %w", catalogNumber, err)
	}
	s.invalidate(catalogNumber)
	if !deleted {
		return ErrCapacitySettingNotFound
	}
	return nil
}

// SeedDefaults stores the given settings when the store holds none yet.
// It returns the number of settings written.
func (s *CapacitySettingsServiceImpl) SeedDefaults(ctx context.Context, defaults map[string]int) (int, error) {
	if s.repo == nil {
		return 0, ErrRepositoryNotConfigured
	}
	if len(defaults) == 0 {
		return 0, nil
	}
	existing, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	written := 0
	for cn, limit := range defaults {
		if _, err := s.Upsert(ctx, cn, limit, "seed"); err != nil {
			return written, err
		}
		written++
	}
	log.Info().Int("count", written).Msg("Seeded default capacity settings")
	return written, nil
}

func (s *CapacitySettingsServiceImpl) invalidate(catalogNumber string) {
	if s.resolver != nil {
		s.resolver.Invalidate(catalogNumber)
	}
}

// ParseCapacityDefaults parses a comma separated list of CATALOG=MAX pairs.
func ParseCapacityDefaults(raw string) (map[string]int, error) {
	out := make(map[string]int)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cn, value, ok := strings.Cut(part, "=")
		cn = strings.TrimSpace(cn)
		if !ok || cn == "" {
			return nil, fmt.Errorf("invalid capacity default %q: want CATALOG=MAX", part)
		}
		limit, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid capacity default %q: %w", part, err)
		}
		if limit <= 0 {
			return nil, fmt.Errorf("invalid capacity default %q: %w", part, ErrInvalidCapacity)
		}
		out[cn] = limit
	}
	return out, nil
}

// Package service contains the business logic for the smart bin API.
// Services validate inputs, enforce the material taxonomy, and orchestrate
// repo calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dpontes/smartbin/backend/internal/domain"
	"github.com/dpontes/smartbin/backend/internal/metrics"
	"github.com/dpontes/smartbin/backend/internal/repo"
)

// historySlots is the number of records the dashboard history view shows.
const historySlots = 3

// CollectionService implements ingestion, queries, and aggregation for
// collection events.
type CollectionService struct {
	repo    repo.CollectionRepo
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a CollectionService.
type Option func(*CollectionService)

// WithClock overrides the clock used for default timestamps. Tests use this
// to pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *CollectionService) { s.now = now }
}

// NewCollectionService constructs a CollectionService backed by the provided
// repo. metrics may be nil.
func NewCollectionService(r repo.CollectionRepo, m *metrics.Metrics, opts ...Option) *CollectionService {
	s := &CollectionService{repo: r, metrics: m, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest validates a raw event and persists it. rawData and rawHorario are
// optional; absent values take the current server date/time. Both the
// free-text endpoint and the sensor-number endpoint funnel through here, so
// normalization rules exist in exactly one place.
//
// An empty detection returns domain.ErrNoMaterial and persists nothing.
func (s *CollectionService) Ingest(ctx context.Context, rawTipo, rawData, rawHorario string) (domain.Collection, error) {
	tipo, err := domain.ResolveMaterial(rawTipo)
	if err != nil {
		return domain.Collection{}, s.rejectDetection("Ingest", err)
	}
	return s.store(ctx, "Ingest", tipo, rawData, rawHorario)
}

// IngestDetection is the sensor-number ingestion path: the classifier sends
// a bare code 1–5 and the event is stamped with the current server time.
func (s *CollectionService) IngestDetection(ctx context.Context, code int) (domain.Collection, error) {
	tipo, err := domain.ResolveCode(code)
	if err != nil {
		return domain.Collection{}, s.rejectDetection("IngestDetection", err)
	}
	return s.store(ctx, "IngestDetection", tipo, "", "")
}

// store canonicalizes the date/time pair and delegates creation to the repo.
func (s *CollectionService) store(ctx context.Context, op string, tipo domain.Material, rawData, rawHorario string) (domain.Collection, error) {
	now := s.now()

	data := domain.FormatDate(now)
	if strings.TrimSpace(rawData) != "" {
		var err error
		if data, err = domain.ParseDate(rawData); err != nil {
			return domain.Collection{}, fmt.Errorf("service.CollectionService.%s: %w", op, err)
		}
	}

	horario := domain.FormatTime(now)
	if strings.TrimSpace(rawHorario) != "" {
		var err error
		if horario, err = domain.ParseTime(rawHorario); err != nil {
			return domain.Collection{}, fmt.Errorf("service.CollectionService.%s: %w", op, err)
		}
	}

	created, err := s.repo.Create(ctx, domain.Collection{Tipo: tipo, Data: data, Horario: horario})
	if err != nil {
		return domain.Collection{}, fmt.Errorf("service.CollectionService.%s: %w", op, err)
	}

	s.metrics.CollectionIngested(string(created.Tipo))
	return created, nil
}

// rejectDetection wraps a resolver error, counting empty readings as they
// pass through.
func (s *CollectionService) rejectDetection(op string, err error) error {
	if errors.Is(err, domain.ErrNoMaterial) {
		s.metrics.EmptyDetection()
	}
	return fmt.Errorf("service.CollectionService.%s: %w", op, err)
}

// List returns all events, newest first.
func (s *CollectionService) List(ctx context.Context) ([]domain.Collection, error) {
	return s.repo.List(ctx)
}

// ListByMaterial returns events of one material, newest first. The filter is
// normalized through the taxonomy when possible; an unrecognized filter
// simply matches nothing, mirroring a WHERE clause on a value that is never
// stored.
func (s *CollectionService) ListByMaterial(ctx context.Context, rawTipo string) ([]domain.Collection, error) {
	return s.repo.ListByMaterial(ctx, string(normalizeFilter(rawTipo)))
}

// ListByDate returns events of one calendar date, newest first.
// A malformed date is rejected with domain.ErrInvalidDate.
func (s *CollectionService) ListByDate(ctx context.Context, rawData string) ([]domain.Collection, error) {
	data, err := domain.ParseDate(rawData)
	if err != nil {
		return nil, fmt.Errorf("service.CollectionService.ListByDate: %w", err)
	}
	return s.repo.ListByDate(ctx, data)
}

// CountsByMaterial recomputes per-material totals from the full event set,
// scanned in insertion order so equal totals keep first-seen order.
// rawFilter optionally restricts the result to a single material.
func (s *CollectionService) CountsByMaterial(ctx context.Context, rawFilter string) ([]domain.MaterialCount, error) {
	events, err := s.repo.ListChronological(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CollectionService.CountsByMaterial: %w", err)
	}
	return domain.CountsByMaterial(events, normalizeFilter(rawFilter)), nil
}

// TodayTotal counts events recorded on the current server date.
func (s *CollectionService) TodayTotal(ctx context.Context) (int, error) {
	return s.repo.CountToday(ctx)
}

// MostRecent returns the n newest events, newest first.
// Non-positive n falls back to the dashboard's three history slots.
func (s *CollectionService) MostRecent(ctx context.Context, n int) ([]domain.Collection, error) {
	if n <= 0 {
		n = historySlots
	}
	return s.repo.MostRecent(ctx, n)
}

// Latest returns the newest event, or domain.ErrNotFound when none exist.
func (s *CollectionService) Latest(ctx context.Context) (domain.Collection, error) {
	return s.repo.Latest(ctx)
}

// Update applies a partial update after validating every provided field.
// At least one field must be present. It returns the affected-row count.
func (s *CollectionService) Update(ctx context.Context, id int64, patch domain.CollectionPatch) (int64, error) {
	if patch.Empty() {
		return 0, fmt.Errorf("service.CollectionService.Update: %w", domain.ErrNoFields)
	}

	var upd domain.CollectionUpdate

	if patch.Tipo != nil {
		tipo, err := domain.ResolveMaterial(*patch.Tipo)
		if err != nil {
			// A stored record can never hold the empty marker, so "vazio"
			// is as invalid as any unknown word here.
			return 0, fmt.Errorf("service.CollectionService.Update: %w", domain.ErrInvalidMaterial)
		}
		upd.Tipo = &tipo
	}

	if patch.Data != nil {
		data, err := domain.ParseDate(*patch.Data)
		if err != nil {
			return 0, fmt.Errorf("service.CollectionService.Update: %w", err)
		}
		upd.Data = &data
	}

	if patch.Horario != nil {
		horario, err := domain.ParseTime(*patch.Horario)
		if err != nil {
			return 0, fmt.Errorf("service.CollectionService.Update: %w", err)
		}
		upd.Horario = &horario
	}

	affected, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return 0, fmt.Errorf("service.CollectionService.Update: %w", err)
	}
	return affected, nil
}

// Delete removes an event by id.
func (s *CollectionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.CollectionService.Delete: %w", err)
	}
	return nil
}

// normalizeFilter folds a filter value into its canonical material when the
// taxonomy recognizes it, and otherwise passes the trimmed lowercase text
// through unchanged (which matches no stored rows).
func normalizeFilter(raw string) domain.Material {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if m, err := domain.ResolveMaterial(trimmed); err == nil {
		return m
	}
	return domain.Material(trimmed)
}

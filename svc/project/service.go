package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/obralabs/sentinela/pkg/geocoder"
)

// geocodeBatchLimit bounds a single backfill run so one request cannot issue
// an unbounded number of geocoding calls.
const geocodeBatchLimit = 200

// geocodePause spaces out calls to stay inside the geocoding API rate limit.
const geocodePause = 100 * time.Millisecond

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*geocoder.Coordinates, error)
}

// Service manages projects and the coordinate backfill job.
type Service struct {
	store    Store
	geocoder Geocoder
	log      *slog.Logger
}

// NewService wires the project service. The geocoder is optional; without it
// SyncCoordinates returns ErrGeocoderUnavailable.
func NewService(store Store, gc Geocoder, log *slog.Logger) *Service {
	if store == nil {
		panic("project: Store is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, geocoder: gc, log: log}
}

func (s *Service) Create(ctx context.Context, p *Project) error {
	if p.Name == "" {
		return ErrMissingName
	}
	if p.UserID == uuid.Nil {
		return ErrMissingUser
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	return s.store.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, p *Project) error {
	if p.ID == uuid.Nil {
		return ErrNotFound
	}
	return s.store.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Project, error) {
	return s.store.ListByUser(ctx, userID)
}

// SyncResult describes one project processed by the coordinate backfill.
type SyncResult struct {
	ID      uuid.UUID `json:"id"`
	Address string    `json:"address,omitempty"`
	Lat     *float64  `json:"lat,omitempty"`
	Lng     *float64  `json:"lng,omitempty"`
	Status  string    `json:"status"` // updated, not_found, error
}

// SyncReport summarizes a coordinate backfill run.
type SyncReport struct {
	Message string       `json:"message"`
	Details []SyncResult `json:"details,omitempty"`
}

// SyncCoordinates geocodes every project that has an address but no
// coordinates yet. Geocoding misses and per-project write failures are
// recorded in the report rather than aborting the run.
func (s *Service) SyncCoordinates(ctx context.Context) (*SyncReport, error) {
	if s.geocoder == nil {
		return nil, ErrGeocoderUnavailable
	}

	projects, err := s.store.ListMissingCoordinates(ctx, geocodeBatchLimit)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return &SyncReport{Message: "No projects to geocode."}, nil
	}

	s.log.InfoContext(ctx, "geocoding projects", slog.Int("count", len(projects)))

	var updated int
	results := make([]SyncResult, 0, len(projects))

	for _, p := range projects {
		result := SyncResult{ID: p.ID, Address: p.Address}

		coords, err := s.geocoder.Geocode(ctx, p.Address)
		switch {
		case errors.Is(err, geocoder.ErrNoResult):
			s.log.WarnContext(ctx, "could not geocode address", slog.String("address", p.Address))
			result.Status = "not_found"
		case err != nil:
			s.log.ErrorContext(ctx, "geocoding failed",
				slog.String("project_id", p.ID.String()), slog.Any("error", err))
			result.Status = "error"
		default:
			if err := s.store.UpdateCoordinates(ctx, p.ID, coords.Lat, coords.Lng); err != nil {
				s.log.ErrorContext(ctx, "failed to store coordinates",
					slog.String("project_id", p.ID.String()), slog.Any("error", err))
				result.Status = "error"
			} else {
				updated++
				result.Lat = &coords.Lat
				result.Lng = &coords.Lng
				result.Status = "updated"
			}
		}

		results = append(results, result)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(geocodePause):
		}
	}

	return &SyncReport{
		Message: fmt.Sprintf("Processed %d projects. Updated %d.", len(projects), updated),
		Details: results,
	}, nil
}

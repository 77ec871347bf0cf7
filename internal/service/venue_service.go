package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sportspot/internal/database"
	"sportspot/internal/domain"
	"sportspot/internal/metrics"
	"sportspot/internal/models"

	"github.com/rs/zerolog"
)

type VenueService struct {
	venues   domain.VenueRepository
	bookings domain.BookingRepository
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewVenueService(venues domain.VenueRepository, bookings domain.BookingRepository, logger *zerolog.Logger) *VenueService {
	return &VenueService{
		venues:   venues,
		bookings: bookings,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *VenueService) storeFailure(op string, err error) error {
	metrics.IncStoreError(op)
	s.logger.Error().Err(err).Str("op", op).Msg("Store operation failed")
	return domain.Infrastructure("venue store is unavailable, please retry", err)
}

func (s *VenueService) List(ctx context.Context, venueType string) ([]*models.Venue, error) {
	venues, err := s.venues.ListVenues(ctx, models.VenueFilter{Type: strings.TrimSpace(venueType)})
	if err != nil {
		return nil, s.storeFailure("list venues", err)
	}
	return venues, nil
}

// Featured returns the newest available venues.
func (s *VenueService) Featured(ctx context.Context) ([]*models.Venue, error) {
	venues, err := s.venues.ListVenues(ctx, models.VenueFilter{
		Status: models.VenueAvailable,
		Limit:  models.FeaturedVenuesLimit,
	})
	if err != nil {
		return nil, s.storeFailure("list featured venues", err)
	}
	return venues, nil
}

func (s *VenueService) Get(ctx context.Context, id string) (*models.Venue, error) {
	venue, err := s.venues.GetVenue(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.NotFound("venue not found")
	}
	if err != nil {
		return nil, s.storeFailure("get venue", err)
	}
	return venue, nil
}

// Availability reports whether the venue takes bookings and how many
// confirmed bookings it has from today on.
func (s *VenueService) Availability(ctx context.Context, id string) (*models.VenueAvailability, error) {
	venue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue.Status != models.VenueAvailable {
		return &models.VenueAvailability{IsAvailable: false, Reason: "Venue is not available for booking"}, nil
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	count, err := s.bookings.CountActiveBookings(ctx, venue.ID, today)
	if err != nil {
		return nil, s.storeFailure("count active bookings", err)
	}
	return &models.VenueAvailability{IsAvailable: true, ActiveBookings: count}, nil
}

func normalizeVenue(v *models.Venue) error {
	v.Name = strings.TrimSpace(v.Name)
	v.Type = strings.TrimSpace(v.Type)
	v.Image = strings.TrimSpace(v.Image)
	if v.Status == "" {
		v.Status = models.VenueAvailable
	}

	switch {
	case v.Name == "":
		return domain.Validation("name", "name is required")
	case v.Type == "":
		return domain.Validation("type", "type is required")
	case v.Capacity < 1:
		return domain.Validation("capacity", "capacity must be at least 1")
	case !v.Status.Valid():
		return domain.Validation("status", "status must be Available, Booked or Maintenance")
	}

	equipment := make([]string, 0, len(v.Equipment))
	for _, item := range v.Equipment {
		if item = strings.TrimSpace(item); item != "" {
			equipment = append(equipment, item)
		}
	}
	v.Equipment = equipment
	return nil
}

func (s *VenueService) duplicateOr(op string, err error) error {
	if errors.Is(err, database.ErrDuplicate) {
		return domain.Conflict("a venue with this name already exists", nil)
	}
	return s.storeFailure(op, err)
}

func (s *VenueService) Create(ctx context.Context, venue *models.Venue) (*models.Venue, error) {
	venue.ID = ""
	if err := normalizeVenue(venue); err != nil {
		return nil, err
	}
	if err := s.venues.CreateVenue(ctx, venue); err != nil {
		return nil, s.duplicateOr("create venue", err)
	}
	s.logger.Info().Str("venue_id", venue.ID).Str("name", venue.Name).Msg("Venue created")
	return venue, nil
}

func (s *VenueService) Update(ctx context.Context, id string, venue *models.Venue) (*models.Venue, error) {
	venue.ID = id
	if err := normalizeVenue(venue); err != nil {
		return nil, err
	}
	if err := s.venues.UpdateVenue(ctx, venue); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, domain.NotFound("venue not found")
		}
		return nil, s.duplicateOr("update venue", err)
	}
	return s.Get(ctx, id)
}

func (s *VenueService) Delete(ctx context.Context, id string) error {
	err := s.venues.DeleteVenue(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFound("venue not found")
	}
	if err != nil {
		return s.storeFailure("delete venue", err)
	}
	s.logger.Info().Str("venue_id", id).Msg("Venue deleted")
	return nil
}

// Seed inserts configured venues whose names are not present yet.
func (s *VenueService) Seed(ctx context.Context, venues []models.Venue) (int, error) {
	valid := make([]models.Venue, 0, len(venues))
	for i := range venues {
		v := venues[i]
		if err := normalizeVenue(&v); err != nil {
			s.logger.Warn().Err(err).Str("name", v.Name).Msg("Skipping invalid seed venue")
			continue
		}
		valid = append(valid, v)
	}

	added, err := s.venues.SeedVenues(ctx, valid)
	if err != nil {
		return 0, s.storeFailure("seed venues", err)
	}
	return added, nil
}

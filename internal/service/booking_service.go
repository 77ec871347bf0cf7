package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sportspot/internal/database"
	"sportspot/internal/domain"
	"sportspot/internal/events"
	"sportspot/internal/metrics"
	"sportspot/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	bookings       domain.BookingRepository
	venues         domain.VenueRepository
	eventBus       domain.EventPublisher
	defaultVenueID string
	logger         *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingRepository,
	venues domain.VenueRepository,
	eventBus domain.EventPublisher,
	defaultVenueID string,
	logger *zerolog.Logger,
) *BookingService {
	if defaultVenueID == "" {
		defaultVenueID = models.DefaultVenueID
	}
	return &BookingService{
		bookings:       bookings,
		venues:         venues,
		eventBus:       eventBus,
		defaultVenueID: defaultVenueID,
		logger:         logger,
	}
}

// parseSlot validates the raw slot fields and reports the first bad one.
func parseSlot(venueID, rawDate, rawStart, rawEnd string) (models.Slot, error) {
	if strings.TrimSpace(rawDate) == "" {
		return models.Slot{}, domain.Validation("date", "date is required")
	}
	date, err := models.ParseDate(rawDate)
	if err != nil {
		return models.Slot{}, domain.Validation("date", err.Error())
	}

	if strings.TrimSpace(rawStart) == "" {
		return models.Slot{}, domain.Validation("startTime", "startTime is required")
	}
	start, err := models.ParseClock(rawStart)
	if err != nil {
		return models.Slot{}, domain.Validation("startTime", err.Error())
	}

	if strings.TrimSpace(rawEnd) == "" {
		return models.Slot{}, domain.Validation("endTime", "endTime is required")
	}
	end, err := models.ParseClock(rawEnd)
	if err != nil {
		return models.Slot{}, domain.Validation("endTime", err.Error())
	}

	slot := models.Slot{VenueID: venueID, Date: date, Start: start, End: end}
	if err := slot.Validate(); err != nil {
		return models.Slot{}, domain.Validation("endTime", err.Error())
	}
	return slot, nil
}

func (s *BookingService) storeFailure(op string, err error) error {
	metrics.IncStoreError(op)
	s.logger.Error().Err(err).Str("op", op).Msg("Store operation failed")
	return domain.Infrastructure("booking store is unavailable, please retry", err)
}

// CheckAvailability lists the confirmed bookings overlapping the requested slot.
func (s *BookingService) CheckAvailability(ctx context.Context, req models.AvailabilityRequest) (*models.Availability, error) {
	venueID := strings.TrimSpace(req.VenueID)
	if venueID == "" {
		return nil, domain.Validation("venueId", "venueId is required")
	}
	slot, err := parseSlot(venueID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	existing, err := s.bookings.FindConfirmedBookings(ctx, slot.VenueID, slot.Date)
	if err != nil {
		return nil, s.storeFailure("find confirmed bookings", err)
	}

	conflicts := []*models.Booking{}
	for _, b := range existing {
		if slot.Overlaps(b.Slot()) {
			conflicts = append(conflicts, b)
		}
	}
	return &models.Availability{IsAvailable: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// resolveOwner decides whose booking this is. Non-admins may only act for themselves.
// Owners are account emails, stored lowercased so lookups match exactly.
func resolveOwner(identity *models.Identity, requested string) (string, error) {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if identity == nil {
		if requested == "" {
			return "", domain.Validation("userId", "userId is required")
		}
		return requested, nil
	}
	if requested == "" || strings.EqualFold(requested, identity.Email) {
		return identity.Email, nil
	}
	if !identity.IsAdmin() {
		return "", domain.Forbidden("you can only manage your own bookings")
	}
	return requested, nil
}

// resolveVenue turns the raw venue id into a reference and display name.
func (s *BookingService) resolveVenue(ctx context.Context, venueID, requestedName string, participants int) (models.VenueRef, string, error) {
	venue, err := s.venues.GetVenue(ctx, venueID)
	switch {
	case err == nil:
		if venue.Status != models.VenueAvailable {
			return models.VenueRef{}, "", domain.Validation("venueId", "venue is not available for booking")
		}
		if venue.Capacity > 0 && participants > venue.Capacity {
			return models.VenueRef{}, "", domain.Validation("participants", "participants exceed venue capacity")
		}
		name := requestedName
		if name == "" {
			name = venue.Name
		}
		return models.VenueIDRef(venue.ID), name, nil
	case errors.Is(err, database.ErrNotFound):
		name := requestedName
		if name == "" {
			if known, ok := models.KnownVenueName(venueID); ok {
				name = known
			} else {
				name = models.DefaultVenueName
			}
		}
		return models.InlineVenueRef(venueID), name, nil
	default:
		return models.VenueRef{}, "", s.storeFailure("get venue", err)
	}
}

// Create validates the request and stores it as confirmed unless the slot is taken.
func (s *BookingService) Create(ctx context.Context, identity *models.Identity, req models.BookingRequest) (*models.Booking, error) {
	userID, err := resolveOwner(identity, req.UserID)
	if err != nil {
		return nil, err
	}

	venueID := strings.TrimSpace(req.VenueID)
	if venueID == "" {
		venueID = s.defaultVenueID
	}

	slot, err := parseSlot(venueID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if req.Participants < 1 {
		return nil, domain.Validation("participants", "participants must be at least 1")
	}

	ref, venueName, err := s.resolveVenue(ctx, venueID, strings.TrimSpace(req.VenueName), req.Participants)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:         userID,
		Venue:          ref,
		VenueName:      venueName,
		Date:           slot.Date,
		StartTime:      slot.Start,
		EndTime:        slot.End,
		Participants:   req.Participants,
		NeedsEquipment: req.NeedsEquipment,
		Notes:          strings.TrimSpace(req.Notes),
		FullName:       strings.TrimSpace(req.FullName),
		StudentNumber:  strings.TrimSpace(req.StudentNumber),
		Year:           strings.TrimSpace(req.Year),
		Course:         strings.TrimSpace(req.Course),
		Email:          strings.TrimSpace(req.Email),
		Status:         models.StatusConfirmed,
	}

	if err := s.bookings.CreateBookingExclusive(ctx, booking); err != nil {
		var taken *database.SlotTakenError
		if errors.As(err, &taken) {
			metrics.IncBookingConflict()
			return nil, domain.Conflict("the selected time slot is already booked", taken.Conflicts)
		}
		return nil, s.storeFailure("create booking", err)
	}

	s.publishEvent(events.EventBookingCreated, booking, userID)
	return booking, nil
}

// Cancel removes a booking owned by the requester, or any booking for an admin.
func (s *BookingService) Cancel(ctx context.Context, identity *models.Identity, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Validation("id", "booking id is required")
	}

	booking, err := s.bookings.GetBooking(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return domain.NotFound("booking not found")
	}
	if err != nil {
		return s.storeFailure("get booking", err)
	}

	if identity == nil || (!strings.EqualFold(booking.UserID, identity.Email) && !identity.IsAdmin()) {
		return domain.Forbidden("you can only cancel your own bookings")
	}
	if !booking.Status.CanTransition(models.StatusCancelled) {
		return domain.Conflict("booking cannot be cancelled in status "+string(booking.Status), nil)
	}

	if err := s.bookings.DeleteBooking(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return domain.NotFound("booking not found")
		}
		return s.storeFailure("delete booking", err)
	}

	booking.Status = models.StatusCancelled
	s.publishEvent(events.EventBookingCancelled, booking, identity.Email)
	return nil
}

// ListByUser returns the user's bookings by date and start time with venue names resolved.
func (s *BookingService) ListByUser(ctx context.Context, identity *models.Identity, userID string) ([]*models.Booking, error) {
	owner, err := resolveOwner(identity, userID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.GetUserBookings(ctx, owner)
	if err != nil {
		return nil, s.storeFailure("get user bookings", err)
	}

	names := map[string]string{}
	for _, b := range bookings {
		if b.VenueName == "" {
			b.VenueName = s.venueLabel(ctx, b.Venue, names)
		}
	}
	return bookings, nil
}

// venueLabel resolves a display name: venue record, then the built-in table,
// then a generic label.
func (s *BookingService) venueLabel(ctx context.Context, ref models.VenueRef, cache map[string]string) string {
	if name, ok := cache[ref.Value]; ok {
		return name
	}

	name := ""
	if ref.IsID() {
		venue, err := s.venues.GetVenue(ctx, ref.Value)
		switch {
		case err == nil:
			name = venue.Name
		case !errors.Is(err, database.ErrNotFound):
			s.logger.Warn().Err(err).Str("venue_id", ref.Value).Msg("Venue lookup failed, using fallback name")
		}
	}
	if name == "" {
		if known, ok := models.KnownVenueName(ref.Value); ok {
			name = known
		} else {
			name = models.GenericVenueLabel
		}
	}

	cache[ref.Value] = name
	return name
}

// BookingsInRange lists bookings between two days inclusive.
func (s *BookingService) BookingsInRange(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	if to.Before(from) {
		return nil, domain.Validation("to", "to must not be before from")
	}
	bookings, err := s.bookings.GetBookingsByDateRange(ctx, from, to)
	if err != nil {
		return nil, s.storeFailure("get bookings by date range", err)
	}
	return bookings, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, events.NewBookingPayload(booking, changedBy)); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

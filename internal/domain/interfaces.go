package domain

import (
	"context"
	"time"

	"sportspot/internal/models"
)

type BookingRepository interface {
	CreateBookingExclusive(ctx context.Context, booking *models.Booking) error
	FindConfirmedBookings(ctx context.Context, venueID string, date time.Time) ([]*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
	GetUserBookings(ctx context.Context, userID string) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	CountActiveBookings(ctx context.Context, venueID string, from time.Time) (int, error)
}

type VenueRepository interface {
	CreateVenue(ctx context.Context, venue *models.Venue) error
	GetVenue(ctx context.Context, id string) (*models.Venue, error)
	GetVenueByName(ctx context.Context, name string) (*models.Venue, error)
	ListVenues(ctx context.Context, filter models.VenueFilter) ([]*models.Venue, error)
	UpdateVenue(ctx context.Context, venue *models.Venue) error
	DeleteVenue(ctx context.Context, id string) error
	SeedVenues(ctx context.Context, venues []models.Venue) (int, error)
}

type UserRepository interface {
	CreateUserWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error)
}

// TokenStore keeps short-lived auth state: revoked token ids, password reset
// tokens and login attempt counters.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (string, error)
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

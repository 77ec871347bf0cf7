package database

import (
	"context"
	"testing"
	"time"

	"sportspot/internal/models"

	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestBooking(t *testing.T, userID, venueID, start, end string) *models.Booking {
	t.Helper()
	s, err := models.ParseClock(start)
	require.NoError(t, err)
	e, err := models.ParseClock(end)
	require.NoError(t, err)
	return &models.Booking{
		UserID:       userID,
		Venue:        models.InlineVenueRef(venueID),
		Date:         testDay,
		StartTime:    s,
		EndTime:      e,
		Participants: 4,
		Status:       models.StatusConfirmed,
	}
}

func mustCreateBooking(t *testing.T, db *DB, b *models.Booking) {
	t.Helper()
	require.NoError(t, db.CreateBookingExclusive(context.Background(), b))
}

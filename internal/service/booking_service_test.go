package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sportspot/internal/database"
	"sportspot/internal/domain"
	"sportspot/internal/events"
	"sportspot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func student(email string) *models.Identity {
	return &models.Identity{UserID: "u-" + email, Email: email, Role: models.RoleStudent}
}

func basketballRequest() models.BookingRequest {
	return models.BookingRequest{
		VenueID:      "basketball",
		Date:         "2025-06-01",
		StartTime:    "09:00",
		EndTime:      "10:00",
		Participants: 4,
	}
}

func newSQLiteBookingService(t *testing.T) (*BookingService, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()
	pool := database.NewPool(filepath.Join(t.TempDir(), "sportspot.db"), time.Second, &logger)
	t.Cleanup(func() { _ = pool.Close() })
	db := database.NewDB(pool, &logger)
	return NewBookingService(db, db, events.NewEventBus(&logger), "", &logger), db
}

func TestBookingService_EndToEnd(t *testing.T) {
	svc, _ := newSQLiteBookingService(t)
	ctx := context.Background()
	alice := student("alice@cst.edu.bt")
	bob := student("bob@cst.edu.bt")

	created, err := svc.Create(ctx, alice, basketballRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, created.Status)
	assert.Equal(t, "alice@cst.edu.bt", created.UserID)
	assert.Equal(t, "Basketball Court", created.VenueName)
	assert.NotEmpty(t, created.ID)

	listed, err := svc.ListByUser(ctx, alice, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "Basketball Court", listed[0].VenueName)

	t.Run("OverlapRejected", func(t *testing.T) {
		req := basketballRequest()
		req.StartTime, req.EndTime = "09:30", "10:30"
		_, err := svc.Create(ctx, bob, req)
		require.Error(t, err)

		var de *domain.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, domain.KindConflict, de.Kind)
		require.Len(t, de.Conflicts, 1)
		assert.Equal(t, created.ID, de.Conflicts[0].ID)
	})

	t.Run("AvailabilityReportsConflict", func(t *testing.T) {
		avail, err := svc.CheckAvailability(ctx, models.AvailabilityRequest{
			VenueID: "basketball", Date: "2025-06-01", StartTime: "09:15", EndTime: "09:45",
		})
		require.NoError(t, err)
		assert.False(t, avail.IsAvailable)
		require.Len(t, avail.Conflicts, 1)

		avail, err = svc.CheckAvailability(ctx, models.AvailabilityRequest{
			VenueID: "basketball", Date: "2025-06-01", StartTime: "10:00", EndTime: "11:00",
		})
		require.NoError(t, err)
		assert.True(t, avail.IsAvailable)
		assert.Empty(t, avail.Conflicts)
		assert.NotNil(t, avail.Conflicts)
	})

	t.Run("BackToBackAccepted", func(t *testing.T) {
		req := basketballRequest()
		req.StartTime, req.EndTime = "10:00", "11:00"
		_, err := svc.Create(ctx, bob, req)
		require.NoError(t, err)
	})

	t.Run("CancelFreesSlot", func(t *testing.T) {
		assert.Equal(t, domain.KindForbidden, domain.KindOf(svc.Cancel(ctx, bob, created.ID)))
		require.NoError(t, svc.Cancel(ctx, alice, created.ID))
		assert.Equal(t, domain.KindNotFound, domain.KindOf(svc.Cancel(ctx, alice, created.ID)))

		req := basketballRequest()
		req.StartTime, req.EndTime = "09:30", "10:00"
		_, err := svc.Create(ctx, bob, req)
		require.NoError(t, err)
	})
}

func TestBookingService_Validation(t *testing.T) {
	bookings := new(mockBookingRepo)
	venues := new(mockVenueRepo)
	logger := zerolog.Nop()
	svc := NewBookingService(bookings, venues, nil, "", &logger)
	ctx := context.Background()
	alice := student("alice@cst.edu.bt")

	cases := []struct {
		name  string
		edit  func(r *models.BookingRequest)
		field string
	}{
		{"MissingDate", func(r *models.BookingRequest) { r.Date = "" }, "date"},
		{"BadDate", func(r *models.BookingRequest) { r.Date = "01/06/2025" }, "date"},
		{"MissingStart", func(r *models.BookingRequest) { r.StartTime = "" }, "startTime"},
		{"BadStart", func(r *models.BookingRequest) { r.StartTime = "25:00" }, "startTime"},
		{"BadEnd", func(r *models.BookingRequest) { r.EndTime = "10:60" }, "endTime"},
		{"Inverted", func(r *models.BookingRequest) { r.StartTime, r.EndTime = "11:00", "10:00" }, "endTime"},
		{"ZeroLength", func(r *models.BookingRequest) { r.EndTime = "09:00" }, "endTime"},
		{"NoParticipants", func(r *models.BookingRequest) { r.Participants = 0 }, "participants"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := basketballRequest()
			tc.edit(&req)
			_, err := svc.Create(ctx, alice, req)

			var de *domain.Error
			require.True(t, errors.As(err, &de))
			assert.Equal(t, domain.KindValidation, de.Kind)
			assert.Equal(t, tc.field, de.Field)
		})
	}

	t.Run("AvailabilityNeedsVenue", func(t *testing.T) {
		_, err := svc.CheckAvailability(ctx, models.AvailabilityRequest{Date: "2025-06-01", StartTime: "09:00", EndTime: "10:00"})
		var de *domain.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "venueId", de.Field)
	})

	t.Run("OtherUserForbidden", func(t *testing.T) {
		req := basketballRequest()
		req.UserID = "bob@cst.edu.bt"
		_, err := svc.Create(ctx, alice, req)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	bookings.AssertNotCalled(t, "CreateBookingExclusive", mock.Anything, mock.Anything)
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("VenueRecord", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		venues := new(mockVenueRepo)
		bus := new(mockEventBus)
		svc := NewBookingService(bookings, venues, bus, "", &logger)

		venues.On("GetVenue", ctx, "v1").
			Return(&models.Venue{ID: "v1", Name: "Main Hall", Capacity: 10, Status: models.VenueAvailable}, nil).Once()
		bookings.On("CreateBookingExclusive", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.Venue == models.VenueIDRef("v1") && b.VenueName == "Main Hall" && b.Status == models.StatusConfirmed
		})).Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingCreated, mock.Anything).Return(nil).Once()

		req := basketballRequest()
		req.VenueID = "v1"
		_, err := svc.Create(ctx, student("alice@cst.edu.bt"), req)
		require.NoError(t, err)

		bookings.AssertExpectations(t)
		venues.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("VenueClosed", func(t *testing.T) {
		venues := new(mockVenueRepo)
		svc := NewBookingService(new(mockBookingRepo), venues, nil, "", &logger)
		venues.On("GetVenue", ctx, "v2").
			Return(&models.Venue{ID: "v2", Capacity: 10, Status: models.VenueMaintenance}, nil).Once()

		req := basketballRequest()
		req.VenueID = "v2"
		_, err := svc.Create(ctx, student("alice@cst.edu.bt"), req)
		var de *domain.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "venueId", de.Field)
	})

	t.Run("OverCapacity", func(t *testing.T) {
		venues := new(mockVenueRepo)
		svc := NewBookingService(new(mockBookingRepo), venues, nil, "", &logger)
		venues.On("GetVenue", ctx, "v3").
			Return(&models.Venue{ID: "v3", Capacity: 2, Status: models.VenueAvailable}, nil).Once()

		req := basketballRequest()
		req.VenueID = "v3"
		_, err := svc.Create(ctx, student("alice@cst.edu.bt"), req)
		var de *domain.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "participants", de.Field)
	})

	t.Run("DefaultVenue", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		venues := new(mockVenueRepo)
		svc := NewBookingService(bookings, venues, nil, "", &logger)

		venues.On("GetVenue", ctx, models.DefaultVenueID).Return(nil, database.ErrNotFound).Once()
		bookings.On("CreateBookingExclusive", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.Venue == models.InlineVenueRef(models.DefaultVenueID) && b.VenueName == "Sports Facility"
		})).Return(nil).Once()

		req := basketballRequest()
		req.VenueID = ""
		_, err := svc.Create(ctx, student("alice@cst.edu.bt"), req)
		require.NoError(t, err)
		bookings.AssertExpectations(t)
	})

	t.Run("StoreDown", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		venues := new(mockVenueRepo)
		svc := NewBookingService(bookings, venues, nil, "", &logger)

		venues.On("GetVenue", ctx, "basketball").Return(nil, database.ErrNotFound).Once()
		bookings.On("CreateBookingExclusive", ctx, mock.Anything).Return(database.ErrUnavailable).Once()

		_, err := svc.Create(ctx, student("alice@cst.edu.bt"), basketballRequest())
		var de *domain.Error
		require.True(t, errors.As(err, &de))
		assert.Equal(t, domain.KindInfrastructure, de.Kind)
		assert.True(t, de.Retryable())
		assert.ErrorIs(t, err, database.ErrUnavailable)
	})

	t.Run("PublishFailureIgnored", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		venues := new(mockVenueRepo)
		bus := new(mockEventBus)
		svc := NewBookingService(bookings, venues, bus, "", &logger)

		venues.On("GetVenue", ctx, "basketball").Return(nil, database.ErrNotFound).Once()
		bookings.On("CreateBookingExclusive", ctx, mock.Anything).Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingCreated, mock.Anything).Return(errors.New("boom")).Once()

		_, err := svc.Create(ctx, student("alice@cst.edu.bt"), basketballRequest())
		assert.NoError(t, err)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	booking := &models.Booking{ID: "b1", UserID: "alice@cst.edu.bt", Venue: models.InlineVenueRef("basketball"), Date: testDay, Status: models.StatusConfirmed}

	t.Run("AdminOverride", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		bus := new(mockEventBus)
		svc := NewBookingService(bookings, new(mockVenueRepo), bus, "", &logger)

		copied := *booking
		bookings.On("GetBooking", ctx, "b1").Return(&copied, nil).Once()
		bookings.On("DeleteBooking", ctx, "b1").Return(nil).Once()
		bus.On("PublishJSON", events.EventBookingCancelled, mock.MatchedBy(func(p events.BookingEventPayload) bool {
			return p.BookingID == "b1" && p.Status == models.StatusCancelled && p.ChangedBy == "admin@cst.edu.bt"
		})).Return(nil).Once()

		admin := &models.Identity{Email: "admin@cst.edu.bt", Role: models.RoleAdmin}
		require.NoError(t, svc.Cancel(ctx, admin, "b1"))
		bookings.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("MissingID", func(t *testing.T) {
		svc := NewBookingService(new(mockBookingRepo), new(mockVenueRepo), nil, "", &logger)
		assert.Equal(t, domain.KindValidation, domain.KindOf(svc.Cancel(ctx, student("alice@cst.edu.bt"), " ")))
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		svc := NewBookingService(bookings, new(mockVenueRepo), nil, "", &logger)
		copied := *booking
		copied.Status = models.StatusCancelled
		bookings.On("GetBooking", ctx, "b1").Return(&copied, nil).Once()

		assert.Equal(t, domain.KindConflict, domain.KindOf(svc.Cancel(ctx, student("alice@cst.edu.bt"), "b1")))
		bookings.AssertNotCalled(t, "DeleteBooking", mock.Anything, mock.Anything)
	})

	t.Run("DeletedConcurrently", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		svc := NewBookingService(bookings, new(mockVenueRepo), nil, "", &logger)
		copied := *booking
		bookings.On("GetBooking", ctx, "b1").Return(&copied, nil).Once()
		bookings.On("DeleteBooking", ctx, "b1").Return(database.ErrNotFound).Once()

		assert.Equal(t, domain.KindNotFound, domain.KindOf(svc.Cancel(ctx, student("alice@cst.edu.bt"), "b1")))
	})

	t.Run("StoreDown", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		svc := NewBookingService(bookings, new(mockVenueRepo), nil, "", &logger)
		bookings.On("GetBooking", ctx, "b1").Return(nil, database.ErrUnavailable).Once()

		assert.Equal(t, domain.KindInfrastructure, domain.KindOf(svc.Cancel(ctx, student("alice@cst.edu.bt"), "b1")))
	})
}

func TestBookingService_ListByUser(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	bookings := new(mockBookingRepo)
	venues := new(mockVenueRepo)
	svc := NewBookingService(bookings, venues, nil, "", &logger)

	list := []*models.Booking{
		{ID: "1", Venue: models.VenueIDRef("v1")},
		{ID: "2", Venue: models.VenueIDRef("v1")},
		{ID: "3", Venue: models.InlineVenueRef("tennis")},
		{ID: "4", Venue: models.VenueIDRef("gone")},
		{ID: "5", Venue: models.InlineVenueRef("curling")},
		{ID: "6", Venue: models.InlineVenueRef("gym"), VenueName: "Old Gym"},
	}
	bookings.On("GetUserBookings", ctx, "alice@cst.edu.bt").Return(list, nil).Once()
	venues.On("GetVenue", ctx, "v1").Return(&models.Venue{ID: "v1", Name: "Main Hall"}, nil).Once()
	venues.On("GetVenue", ctx, "gone").Return(nil, database.ErrNotFound).Once()

	got, err := svc.ListByUser(ctx, student("alice@cst.edu.bt"), "alice@cst.edu.bt")
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, b := range got {
		names = append(names, b.VenueName)
	}
	assert.Equal(t, []string{"Main Hall", "Main Hall", "Tennis Court", models.GenericVenueLabel, models.GenericVenueLabel, "Old Gym"}, names)
	venues.AssertExpectations(t)

	t.Run("OtherUserForbidden", func(t *testing.T) {
		_, err := svc.ListByUser(ctx, student("alice@cst.edu.bt"), "bob@cst.edu.bt")
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})
}

func TestBookingService_OwnerCasing(t *testing.T) {
	ctx := context.Background()

	t.Run("SelfWithDifferentCase", func(t *testing.T) {
		svc, _ := newSQLiteBookingService(t)
		alice := student("alice@cst.edu.bt")

		req := basketballRequest()
		req.UserID = " Alice@CST.edu.bt "
		created, err := svc.Create(ctx, alice, req)
		require.NoError(t, err)
		assert.Equal(t, "alice@cst.edu.bt", created.UserID)

		listed, err := svc.ListByUser(ctx, alice, "")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, created.ID, listed[0].ID)

		listed, err = svc.ListByUser(ctx, alice, "ALICE@cst.edu.bt")
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})

	t.Run("AdminOnBehalfLowercased", func(t *testing.T) {
		svc, _ := newSQLiteBookingService(t)
		admin := &models.Identity{UserID: "u-admin", Email: "admin@cst.edu.bt", Role: models.RoleAdmin}

		req := basketballRequest()
		req.UserID = "Bob@CST.edu.bt"
		created, err := svc.Create(ctx, admin, req)
		require.NoError(t, err)
		assert.Equal(t, "bob@cst.edu.bt", created.UserID)

		listed, err := svc.ListByUser(ctx, student("bob@cst.edu.bt"), "")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, created.ID, listed[0].ID)
	})
}

func TestBookingService_BookingsInRange(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	bookings := new(mockBookingRepo)
	svc := NewBookingService(bookings, new(mockVenueRepo), nil, "", &logger)

	to := testDay.AddDate(0, 0, 7)
	bookings.On("GetBookingsByDateRange", ctx, testDay, to).Return([]*models.Booking{{ID: "1"}}, nil).Once()

	got, err := svc.BookingsInRange(ctx, testDay, to)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.BookingsInRange(ctx, to, testDay)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

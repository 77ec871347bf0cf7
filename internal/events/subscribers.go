package events

import (
	"sportspot/internal/metrics"

	"github.com/rs/zerolog"
)

// SubscribeMetrics counts booking lifecycle events.
func SubscribeMetrics(bus *EventBus) {
	bus.Subscribe(EventBookingCreated, func(*Event) error {
		metrics.IncBookingCreated()
		return nil
	})
	bus.Subscribe(EventBookingCancelled, func(*Event) error {
		metrics.IncBookingCancelled()
		return nil
	})
}

// SubscribeLogging writes an audit line per booking lifecycle event.
func SubscribeLogging(bus *EventBus, logger *zerolog.Logger) {
	handler := func(event *Event) error {
		var payload BookingEventPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		logger.Info().
			Str("event", event.Type).
			Str("booking_id", payload.BookingID).
			Str("venue_id", payload.VenueID).
			Str("date", payload.Date).
			Str("start_time", payload.StartTime).
			Str("end_time", payload.EndTime).
			Str("changed_by", payload.ChangedBy).
			Msg("Booking event")
		return nil
	}
	bus.Subscribe(EventBookingCreated, handler)
	bus.Subscribe(EventBookingCancelled, handler)
}

package events

import (
	"encoding/json"
	"sync"
	"time"

	"sportspot/internal/models"

	"github.com/rs/zerolog"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
)

// BookingEventPayload is the booking snapshot handed to subscribers.
type BookingEventPayload struct {
	BookingID  string               `json:"booking_id"`
	UserID     string               `json:"user_id"`
	VenueID    string               `json:"venue_id"`
	VenueName  string               `json:"venue_name,omitempty"`
	Date       string               `json:"date"`
	StartTime  string               `json:"start_time"`
	EndTime    string               `json:"end_time"`
	Status     models.BookingStatus `json:"status"`
	ChangedBy  string               `json:"changed_by,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// NewBookingPayload snapshots b. changedBy names the requester of the change.
func NewBookingPayload(b *models.Booking, changedBy string) BookingEventPayload {
	return BookingEventPayload{
		BookingID:  b.ID,
		UserID:     b.UserID,
		VenueID:    b.Venue.Value,
		VenueName:  b.VenueName,
		Date:       b.Date.Format(models.DateLayout),
		StartTime:  b.StartTime.String(),
		EndTime:    b.EndTime.String(),
		Status:     b.Status,
		ChangedBy:  changedBy,
		OccurredAt: time.Now().UTC(),
	}
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the payload into target.
func (e *Event) Decode(target interface{}) error {
	return json.Unmarshal(e.Payload, target)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

// NewEventBus constructs an empty bus. Handler errors go to logger when set.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish runs the subscribers of the event type synchronously.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil && b.logger != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Msg("Event handler failed")
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

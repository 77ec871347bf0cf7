package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// Cancelled is terminal.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	Venue          VenueRef      `json:"venueId"`
	VenueName      string        `json:"venueName,omitempty"`
	Date           time.Time     `json:"date"`
	StartTime      Clock         `json:"startTime"`
	EndTime        Clock         `json:"endTime"`
	Participants   int           `json:"participants"`
	NeedsEquipment bool          `json:"needsEquipment"`
	Notes          string        `json:"notes,omitempty"`
	FullName       string        `json:"fullName,omitempty"`
	StudentNumber  string        `json:"studentNumber,omitempty"`
	Year           string        `json:"year,omitempty"`
	Course         string        `json:"course,omitempty"`
	Email          string        `json:"email,omitempty"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func (b *Booking) Slot() Slot {
	return Slot{
		VenueID: b.Venue.Value,
		Date:    b.Date,
		Start:   b.StartTime,
		End:     b.EndTime,
	}
}

// BookingRequest is the raw booking submission before validation.
type BookingRequest struct {
	UserID         string `json:"userId"`
	VenueID        string `json:"venueId"`
	VenueName      string `json:"venueName"`
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Participants   int    `json:"participants"`
	NeedsEquipment bool   `json:"needsEquipment"`
	Notes          string `json:"notes"`
	FullName       string `json:"fullName"`
	StudentNumber  string `json:"studentNumber"`
	Year           string `json:"year"`
	Course         string `json:"course"`
	Email          string `json:"email"`
}

// AvailabilityRequest is the raw slot sent to the availability check.
type AvailabilityRequest struct {
	VenueID   string `json:"venueId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type Availability struct {
	IsAvailable bool       `json:"isAvailable"`
	Conflicts   []*Booking `json:"conflictingBookings"`
}

// VenueAvailability summarises whether a venue is open for bookings at all.
type VenueAvailability struct {
	IsAvailable    bool   `json:"isAvailable"`
	Reason         string `json:"reason,omitempty"`
	ActiveBookings int    `json:"activeBookings"`
}

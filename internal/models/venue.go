package models

import (
	"encoding/json"
	"time"
)

type VenueStatus string

const (
	VenueAvailable   VenueStatus = "Available"
	VenueBooked      VenueStatus = "Booked"
	VenueMaintenance VenueStatus = "Maintenance"
)

func (s VenueStatus) Valid() bool {
	switch s {
	case VenueAvailable, VenueBooked, VenueMaintenance:
		return true
	default:
		return false
	}
}

type Venue struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Type      string      `json:"type" yaml:"type"`
	Capacity  int         `json:"capacity" yaml:"capacity"`
	Status    VenueStatus `json:"status" yaml:"status"`
	Equipment []string    `json:"equipment" yaml:"equipment"`
	Image     string      `json:"image" yaml:"image"`
	CreatedAt time.Time   `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time   `json:"updatedAt" yaml:"-"`
}

// VenueFilter narrows venue listings. Zero values match everything.
type VenueFilter struct {
	Type   string
	Status VenueStatus
	Limit  int
}

type VenueRefKind string

const (
	VenueRefID     VenueRefKind = "id"
	VenueRefInline VenueRefKind = "inline"
)

// VenueRef points a booking at a venue: either a Venue record id or an
// inline name/slug that has no record behind it.
type VenueRef struct {
	Kind  VenueRefKind
	Value string
}

func VenueIDRef(id string) VenueRef {
	return VenueRef{Kind: VenueRefID, Value: id}
}

func InlineVenueRef(name string) VenueRef {
	return VenueRef{Kind: VenueRefInline, Value: name}
}

func (r VenueRef) IsID() bool {
	return r.Kind == VenueRefID
}

func (r VenueRef) String() string {
	return r.Value
}

func (r VenueRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value)
}

// UnmarshalJSON yields an inline reference; callers resolve ids against the store.
func (r *VenueRef) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = InlineVenueRef(raw)
	return nil
}

var knownVenueNames = map[string]string{
	"basketball":    "Basketball Court",
	"volleyball":    "Volleyball Court",
	"badminton":     "Badminton Court",
	"football":      "Football Field",
	"tennis":        "Tennis Court",
	"swimming":      "Swimming Pool",
	"gym":           "Gymnasium",
	"table-tennis":  "Table Tennis Room",
	DefaultVenueID: "Sports Facility",
}

// KnownVenueName maps the built-in venue slugs to display names.
func KnownVenueName(slug string) (string, bool) {
	name, ok := knownVenueNames[slug]
	return name, ok
}

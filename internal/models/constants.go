package models

const DateLayout = "2006-01-02"

const (
	// DefaultVenueID is used when a booking arrives without a venue.
	DefaultVenueID = "default-venue"

	// DefaultVenueName is stored when neither the request nor the store names the venue.
	DefaultVenueName = "Default Venue"

	// GenericVenueLabel is shown when a booking venue cannot be resolved at all.
	GenericVenueLabel = "Sports Venue"

	// FeaturedVenuesLimit caps the featured venues listing.
	FeaturedVenuesLimit = 6

	// MinUsernameLength is the shortest username accepted at registration.
	MinUsernameLength = 3

	DefaultProfileImage = "https://github.com/SoNam11012/CST-SportSpot/blob/main/default-avatar.png?raw=true"
)

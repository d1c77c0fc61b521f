// README: Recipient organization (NGO) profile.
package recipient

import (
	"time"

	"foodbridge/internal/types"
)

type Recipient struct {
	// ID is the Firebase UID of the organization's account.
	ID   types.ID
	Name string
	// Coords is nil until the organization sets its location.
	Coords *types.Point
	// PickupRadiusKm <= 0 means unset; the matching engine applies its
	// default.
	PickupRadiusKm float64
	CreatedAt      time.Time
}

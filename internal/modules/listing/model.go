// README: Donation listing aggregate.
package listing

import (
	"time"

	"foodbridge/internal/types"
)

type Status string

const (
	StatusOpen    Status = "open"
	StatusClaimed Status = "claimed"
	StatusClosed  Status = "closed"
)

type Listing struct {
	ID       types.ID
	DonorID  types.ID
	FoodName string
	Quantity float64
	Unit     string
	Address  string
	// Coords is nil when the donor supplied neither coordinates nor a
	// geocodable address.
	Coords    *types.Point
	ExpiresAt time.Time
	Status    Status
	CreatedAt time.Time
}

// HoursToExpiry returns the remaining shelf time relative to now. Negative
// values mean the food is already past expiry; the matching engine still
// scores those in the most urgent bracket.
func (l *Listing) HoursToExpiry(now time.Time) float64 {
	return l.ExpiresAt.Sub(now).Hours()
}

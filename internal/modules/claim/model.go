// README: Claim aggregate and delivery status definitions.
package claim

import (
	"time"

	"foodbridge/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPickedUp  Status = "picked_up"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusVerified  Status = "verified"
	StatusCancelled Status = "cancelled"
)

type Claim struct {
	ID            types.ID
	ListingID     types.ID
	RecipientID   types.ID
	Status        Status
	StatusVersion int
	Note          string
	CreatedAt     time.Time
	ApprovedAt    *time.Time
	PickedUpAt    *time.Time
	DeliveredAt   *time.Time
	VerifiedAt    *time.Time
	CancelledAt   *time.Time
	CancelReason  *string
}

type Event struct {
	ID         int64
	ClaimID    types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the delivery state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusRequested: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusInTransit},
	StatusInTransit: {StatusDelivered},
	StatusDelivered: {StatusVerified},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// README: Matching engine input and output types.
package matching

import "foodbridge/internal/types"

// Listing is the donation being matched. It is an immutable input to the
// engine; persistence belongs to the listing module.
type Listing struct {
	FoodName      string
	Quantity      float64
	HoursToExpiry float64
	// Coords is nil when the donor supplied no coordinates. The location
	// component is then skipped for every candidate, not scored as zero.
	Coords *types.Point
}

// Candidate is a recipient organization scored against a listing.
type Candidate struct {
	ID     types.ID
	Name   string
	Coords *types.Point
	// PickupRadiusKm <= 0 means unset; defaultPickupRadiusKm applies.
	PickupRadiusKm float64
}

// ClaimSample is one historical claim of a candidate, inspected only in
// aggregate for the reliability component.
type ClaimSample struct {
	Status string
}

// ScoreBreakdown carries the independently rounded component scores attached
// to a ranked result. DistanceKm is 0 when the location component was skipped.
type ScoreBreakdown struct {
	LocationScore    int     `json:"locationScore"`
	DistanceKm       float64 `json:"distanceKm"`
	ExpiryScore      int     `json:"expiryScore"`
	CapacityScore    int     `json:"capacityScore"`
	ReliabilityScore int     `json:"reliabilityScore"`
}

// MatchResult is one candidate's computed score for a listing.
type MatchResult struct {
	CandidateID   types.ID       `json:"candidateId"`
	CandidateName string         `json:"candidateName"`
	TotalScore    int            `json:"totalScore"`
	Breakdown     ScoreBreakdown `json:"breakdown"`
}

const (
	// Component maxima. They sum to exactly 100, which is what makes the
	// total a 0-100 scale.
	maxLocationScore    = 40.0
	maxExpiryScore      = 30.0
	maxCapacityScore    = 15.0
	maxReliabilityScore = 15.0

	// fullDistanceKm is the distance at which the location component
	// reaches zero; closer candidates score linearly up to the maximum.
	fullDistanceKm = 20.0

	// defaultPickupRadiusKm applies when a candidate has no radius set.
	defaultPickupRadiusKm = 10.0

	// capacityDivisor converts listing quantity into the rough handling
	// threshold compared against the pickup radius.
	capacityDivisor = 10.0

	// newRecipientReliability is the flat benefit-of-the-doubt score for
	// candidates with no sampled claims.
	newRecipientReliability = 10.0

	// historySampleLimit bounds how many recent claims feed the
	// reliability component. Older history is deliberately ignored.
	historySampleLimit = 20

	// shortlistSize is how many ranked candidates are returned.
	shortlistSize = 5
)

// unnamedCandidate is the display name used when a candidate has none.
const unnamedCandidate = "Unnamed organization"

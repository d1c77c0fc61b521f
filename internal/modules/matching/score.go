// README: Scoring components for the NGO matching engine.
package matching

import "math"

// isSuccessStatus reports whether a historical claim counts toward
// reliability. The status set is open-ended; only these two count.
func isSuccessStatus(status string) bool {
	return status == "fulfilled" || status == "approved"
}

// locationScore maps a great-circle distance onto 0..40 linearly, reaching
// zero at fullDistanceKm.
func locationScore(distanceKm float64) float64 {
	return maxLocationScore * (1 - math.Min(distanceKm/fullDistanceKm, 1))
}

// expiryScore maps hours-to-expiry onto the urgency brackets. Boundaries are
// inclusive on the lower side, and zero or negative hours (already expired)
// still land in the most urgent bracket.
func expiryScore(hoursToExpiry float64) float64 {
	switch {
	case hoursToExpiry <= 2:
		return maxExpiryScore
	case hoursToExpiry <= 6:
		return 20
	case hoursToExpiry <= 24:
		return 10
	default:
		return 0
	}
}

// capacityScore is a binary heuristic: the candidate's pickup radius stands in
// for handling ability and is compared against quantity/capacityDivisor.
// The divisor and comparison direction are part of the scoring contract.
func capacityScore(pickupRadiusKm, quantity float64) float64 {
	if pickupRadiusKm <= 0 {
		pickupRadiusKm = defaultPickupRadiusKm
	}
	if pickupRadiusKm >= quantity/capacityDivisor {
		return maxCapacityScore
	}
	return 0
}

// reliabilityScore derives 0..15 from the success ratio over at most
// historySampleLimit recent claims. Candidates with no sampled history get a
// flat benefit-of-the-doubt score rather than zero.
func reliabilityScore(samples []ClaimSample) float64 {
	if len(samples) > historySampleLimit {
		samples = samples[:historySampleLimit]
	}
	if len(samples) == 0 {
		return newRecipientReliability
	}
	successes := 0
	for _, s := range samples {
		if isSuccessStatus(s.Status) {
			successes++
		}
	}
	return math.Round(float64(successes) / float64(len(samples)) * maxReliabilityScore)
}

// scoreCandidate computes one candidate's total score and breakdown for a
// listing. The location component only applies when both sides have
// coordinates; otherwise it contributes nothing and DistanceKm stays 0.
func scoreCandidate(l Listing, c Candidate, samples []ClaimSample) (int, ScoreBreakdown) {
	var location, distanceKm float64
	if l.Coords != nil && c.Coords != nil {
		distanceKm = haversineKm(l.Coords.Lat, l.Coords.Lng, c.Coords.Lat, c.Coords.Lng)
		location = locationScore(distanceKm)
	}

	expiry := expiryScore(l.HoursToExpiry)
	capacity := capacityScore(c.PickupRadiusKm, l.Quantity)
	reliability := reliabilityScore(samples)

	total := int(math.Round(location + expiry + capacity + reliability))
	breakdown := ScoreBreakdown{
		LocationScore:    int(math.Round(location)),
		DistanceKm:       distanceKm,
		ExpiryScore:      int(math.Round(expiry)),
		CapacityScore:    int(math.Round(capacity)),
		ReliabilityScore: int(math.Round(reliability)),
	}
	return total, breakdown
}

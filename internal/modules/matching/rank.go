// README: Pure ranking over caller-supplied candidates and claim histories.
package matching

import (
	"errors"
	"math"
	"sort"
)

// ErrInvalidListing signals a listing whose quantity or hours-to-expiry is
// missing or not a finite number. Rejected before any scoring happens.
var ErrInvalidListing = errors.New("listing quantity and hours-to-expiry must be finite numbers")

// Rank scores every candidate against the listing and returns the shortlist
// sorted descending by total score, plus the count of all scored candidates.
//
// histories is index-aligned with candidates; a nil entry means no sampled
// history (lookup failed or the candidate is new) and falls back to the
// new-recipient reliability default. The sort is stable, so ties keep
// candidate enumeration order. Identical inputs always produce identical
// output.
func Rank(l Listing, candidates []Candidate, histories [][]ClaimSample) ([]MatchResult, int, error) {
	if err := validateListing(l); err != nil {
		return nil, 0, err
	}
	if len(candidates) == 0 {
		return []MatchResult{}, 0, nil
	}

	results := make([]MatchResult, len(candidates))
	for i, c := range candidates {
		var samples []ClaimSample
		if i < len(histories) {
			samples = histories[i]
		}
		total, breakdown := scoreCandidate(l, c, samples)
		name := c.Name
		if name == "" {
			name = unnamedCandidate
		}
		results[i] = MatchResult{
			CandidateID:   c.ID,
			CandidateName: name,
			TotalScore:    total,
			Breakdown:     breakdown,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalScore > results[j].TotalScore
	})

	total := len(results)
	if len(results) > shortlistSize {
		results = results[:shortlistSize]
	}
	return results, total, nil
}

func validateListing(l Listing) error {
	if !isFinite(l.Quantity) || !isFinite(l.HoursToExpiry) {
		return ErrInvalidListing
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

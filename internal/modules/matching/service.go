// README: Matching service orchestrates candidate and history acquisition
// around the pure ranking engine.
package matching

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"foodbridge/internal/metrics"
	"foodbridge/internal/types"
)

// CandidateSource lists every recipient-role organization eligible for
// matching.
type CandidateSource interface {
	ListCandidates(ctx context.Context) ([]Candidate, error)
}

// HistorySource returns up to limit most-recent claim samples for a
// candidate. Ordering beyond recency-bounding is not required.
type HistorySource interface {
	RecentClaims(ctx context.Context, candidateID types.ID, limit int) ([]ClaimSample, error)
}

// ShortlistStore records ranked shortlists for later retrieval.
type ShortlistStore interface {
	RecordShortlist(ctx context.Context, listingID types.ID, results []MatchResult, totalNGOs int) error
}

type Service struct {
	candidates CandidateSource
	history    HistorySource
	store      ShortlistStore
}

func NewService(candidates CandidateSource, history HistorySource, store ShortlistStore) *Service {
	return &Service{candidates: candidates, history: history, store: store}
}

// Outcome is the caller-facing result of a ranking invocation. Success with
// an empty Matches slice means "no recipients available", which is distinct
// from an error.
type Outcome struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message,omitempty"`
	Matches   []MatchResult `json:"matchedNGOs"`
	TotalNGOs int           `json:"totalNGOs"`
}

// MatchListing ranks all recipient organizations for a listing and records
// the shortlist under listingID when a store is configured.
//
// Claim-history lookups fan out concurrently; each failure is absorbed by the
// reliability fallback and never aborts the batch. If ctx is cancelled before
// the fan-out completes the whole ranking fails rather than degrading to
// partial results.
func (s *Service) MatchListing(ctx context.Context, listingID types.ID, l Listing) (Outcome, error) {
	start := time.Now()
	defer func() { metrics.MatchDuration.Observe(time.Since(start).Seconds()) }()

	if err := validateListing(l); err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("invalid").Inc()
		return Outcome{}, err
	}

	candidates, err := s.candidates.ListCandidates(ctx)
	if err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("error").Inc()
		return Outcome{}, fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		metrics.MatchRequestsTotal.WithLabelValues("no_candidates").Inc()
		return Outcome{
			Success: true,
			Message: "no recipient organizations available",
			Matches: []MatchResult{},
		}, nil
	}

	histories := s.fetchHistories(ctx, candidates)
	if err := ctx.Err(); err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("error").Inc()
		return Outcome{}, fmt.Errorf("history fan-out interrupted: %w", err)
	}

	results, totalNGOs, err := Rank(l, candidates, histories)
	if err != nil {
		metrics.MatchRequestsTotal.WithLabelValues("invalid").Inc()
		return Outcome{}, err
	}

	if s.store != nil && listingID != "" {
		if err := s.store.RecordShortlist(ctx, listingID, results, totalNGOs); err != nil {
			// Bookkeeping only; the ranking itself succeeded.
			log.Printf("matching: record shortlist for %s: %v", listingID, err)
		}
	}

	metrics.MatchRequestsTotal.WithLabelValues("matched").Inc()
	return Outcome{Success: true, Matches: results, TotalNGOs: totalNGOs}, nil
}

// fetchHistories collects claim samples for every candidate into an
// index-aligned slice. Collect-then-rank keeps the output deterministic no
// matter how the goroutines interleave.
func (s *Service) fetchHistories(ctx context.Context, candidates []Candidate) [][]ClaimSample {
	histories := make([][]ClaimSample, len(candidates))
	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, id types.ID) {
			defer wg.Done()
			samples, err := s.history.RecentClaims(ctx, id, historySampleLimit)
			if err != nil {
				metrics.HistoryLookupFailures.Inc()
				log.Printf("matching: claim history for %s: %v (using reliability fallback)", id, err)
				return
			}
			histories[i] = samples
		}(i, c.ID)
	}
	wg.Wait()
	return histories
}

// README: Listing service validates donations and triggers matching.
package listing

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"foodbridge/internal/metrics"
	"foodbridge/internal/modules/matching"
	"foodbridge/internal/types"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("listing not found")
)

// Geocoder resolves a free-text address to coordinates. Optional; when nil or
// failing, the listing is created without coordinates and matched without the
// location component.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

// Matcher ranks recipient organizations for a listing.
type Matcher interface {
	MatchListing(ctx context.Context, listingID types.ID, l matching.Listing) (matching.Outcome, error)
}

type Service struct {
	store    *Store
	geocoder Geocoder
	matcher  Matcher
}

func NewService(store *Store, geocoder Geocoder, matcher Matcher) *Service {
	return &Service{store: store, geocoder: geocoder, matcher: matcher}
}

type CreateCommand struct {
	DonorID  types.ID
	FoodName string
	// Quantity and HoursToExpiry are pointers so a missing field is
	// distinguishable from zero; both are required.
	Quantity      *float64
	HoursToExpiry *float64
	Unit          string
	Address       string
	Coords        *types.Point
}

// CreateResult carries the stored listing alongside the ranked shortlist
// produced for it.
type CreateResult struct {
	Listing *Listing
	Match   matching.Outcome
}

// Create validates and stores a donation listing, then synchronously ranks
// recipient organizations for it. An already-expired listing is accepted; the
// engine scores it in the most urgent bracket.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*CreateResult, error) {
	if cmd.DonorID == "" || cmd.FoodName == "" {
		return nil, ErrBadRequest
	}
	if cmd.Quantity == nil || !isFinite(*cmd.Quantity) || *cmd.Quantity <= 0 {
		return nil, ErrBadRequest
	}
	if cmd.HoursToExpiry == nil || !isFinite(*cmd.HoursToExpiry) {
		return nil, ErrBadRequest
	}

	coords := cmd.Coords
	if coords == nil && cmd.Address != "" && s.geocoder != nil {
		if p, err := s.geocoder.Geocode(ctx, cmd.Address); err == nil {
			coords = &p
		} else {
			log.Printf("listing: geocode %q: %v (matching without location)", cmd.Address, err)
		}
	}

	unit := cmd.Unit
	if unit == "" {
		unit = "kg"
	}
	now := time.Now()
	l := &Listing{
		ID:        types.ID(uuid.NewString()),
		DonorID:   cmd.DonorID,
		FoodName:  cmd.FoodName,
		Quantity:  *cmd.Quantity,
		Unit:      unit,
		Address:   cmd.Address,
		Coords:    coords,
		ExpiresAt: now.Add(time.Duration(*cmd.HoursToExpiry * float64(time.Hour))),
		Status:    StatusOpen,
		CreatedAt: now,
	}
	if err := s.store.Create(ctx, l); err != nil {
		return nil, err
	}
	metrics.ListingsCreatedTotal.Inc()

	outcome, err := s.matcher.MatchListing(ctx, l.ID, matching.Listing{
		FoodName:      l.FoodName,
		Quantity:      l.Quantity,
		HoursToExpiry: *cmd.HoursToExpiry,
		Coords:        l.Coords,
	})
	if err != nil {
		// The listing is already stored; report the matching failure in
		// the outcome instead of losing the donation.
		log.Printf("listing: match %s: %v", l.ID, err)
		outcome = matching.Outcome{Message: "matching failed"}
	}
	return &CreateResult{Listing: l, Match: outcome}, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Listing, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListOpen(ctx context.Context) ([]*Listing, error) {
	return s.store.ListOpen(ctx)
}

// MarkClaimed and MarkOpen satisfy the claim module's ListingMarker.

func (s *Service) MarkClaimed(ctx context.Context, id types.ID) error {
	return s.store.SetStatus(ctx, id, StatusClaimed)
}

func (s *Service) MarkOpen(ctx context.Context, id types.ID) error {
	return s.store.SetStatus(ctx, id, StatusOpen)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

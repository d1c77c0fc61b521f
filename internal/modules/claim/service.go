// README: Claim service implements the delivery state machine and persistence.
package claim

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"foodbridge/internal/metrics"
	"foodbridge/internal/modules/matching"
	"foodbridge/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid claim state transition")
	ErrNotFound     = errors.New("claim not found")
	ErrConflict     = errors.New("claim state conflict")
	ErrActiveClaim  = errors.New("listing already has an active claim")
	ErrBadRequest   = errors.New("bad request")
)

// ListingMarker lets the claim workflow flip listing availability without
// depending on the listing package directly.
type ListingMarker interface {
	MarkClaimed(ctx context.Context, listingID types.ID) error
	MarkOpen(ctx context.Context, listingID types.ID) error
}

type Service struct {
	store    *Store
	listings ListingMarker
}

func NewService(store *Store, listings ListingMarker) *Service {
	return &Service{store: store, listings: listings}
}

type RequestCommand struct {
	ListingID   types.ID
	RecipientID types.ID
	Note        string
}

type TransitionCommand struct {
	ClaimID   types.ID
	ActorType string
	ActorID   types.ID
}

type CancelCommand struct {
	ClaimID   types.ID
	ActorType string
	ActorID   types.ID
	Reason    string
}

// Request opens a claim on a listing. A listing carries at most one claim in
// flight at a time.
func (s *Service) Request(ctx context.Context, cmd RequestCommand) (types.ID, error) {
	if cmd.ListingID == "" || cmd.RecipientID == "" {
		return "", ErrBadRequest
	}
	active, err := s.store.HasActiveByListing(ctx, cmd.ListingID)
	if err != nil {
		return "", err
	}
	if active {
		return "", ErrActiveClaim
	}

	id := types.ID(uuid.NewString())
	now := time.Now()
	c := &Claim{
		ID:            id,
		ListingID:     cmd.ListingID,
		RecipientID:   cmd.RecipientID,
		Status:        StatusRequested,
		StatusVersion: 0,
		Note:          cmd.Note,
		CreatedAt:     now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return "", err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		ClaimID:    id,
		FromStatus: StatusNone,
		ToStatus:   StatusRequested,
		ActorType:  "recipient",
		ActorID:    &cmd.RecipientID,
		CreatedAt:  now,
	})
	metrics.ClaimTransitionsTotal.WithLabelValues(string(StatusRequested)).Inc()
	return id, nil
}

// Approve moves a requested claim to approved and marks the listing claimed.
func (s *Service) Approve(ctx context.Context, cmd TransitionCommand) error {
	c, err := s.transition(ctx, cmd.ClaimID, StatusApproved, cmd.ActorType, cmd.ActorID)
	if err != nil {
		return err
	}
	if s.listings != nil {
		_ = s.listings.MarkClaimed(ctx, c.ListingID)
	}
	return nil
}

// Reject declines a requested claim; the listing stays open for other
// recipients.
func (s *Service) Reject(ctx context.Context, cmd TransitionCommand) error {
	_, err := s.transition(ctx, cmd.ClaimID, StatusRejected, cmd.ActorType, cmd.ActorID)
	return err
}

func (s *Service) MarkPickedUp(ctx context.Context, cmd TransitionCommand) error {
	_, err := s.transition(ctx, cmd.ClaimID, StatusPickedUp, cmd.ActorType, cmd.ActorID)
	return err
}

func (s *Service) MarkInTransit(ctx context.Context, cmd TransitionCommand) error {
	_, err := s.transition(ctx, cmd.ClaimID, StatusInTransit, cmd.ActorType, cmd.ActorID)
	return err
}

func (s *Service) MarkDelivered(ctx context.Context, cmd TransitionCommand) error {
	_, err := s.transition(ctx, cmd.ClaimID, StatusDelivered, cmd.ActorType, cmd.ActorID)
	return err
}

// Verify is the donor's confirmation that the delivery arrived; it closes the
// workflow.
func (s *Service) Verify(ctx context.Context, cmd TransitionCommand) error {
	_, err := s.transition(ctx, cmd.ClaimID, StatusVerified, cmd.ActorType, cmd.ActorID)
	return err
}

// Cancel aborts an in-flight claim and reopens the listing if it had already
// been marked claimed.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	c, err := s.store.Get(ctx, cmd.ClaimID)
	if err != nil {
		return err
	}
	if !CanTransition(c.Status, StatusCancelled) {
		return ErrInvalidState
	}
	ok, err := s.store.Cancel(ctx, c.ID, c.Status, c.StatusVersion, cmd.Reason)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	wasApproved := c.Status == StatusApproved
	actorID := cmd.ActorID
	_ = s.store.AppendEvent(ctx, &Event{
		ClaimID:    c.ID,
		FromStatus: c.Status,
		ToStatus:   StatusCancelled,
		ActorType:  cmd.ActorType,
		ActorID:    &actorID,
		CreatedAt:  time.Now(),
	})
	metrics.ClaimTransitionsTotal.WithLabelValues(string(StatusCancelled)).Inc()
	if wasApproved && s.listings != nil {
		_ = s.listings.MarkOpen(ctx, c.ListingID)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Claim, error) {
	return s.store.Get(ctx, id)
}

// RecentClaims exposes the store's history adapter on the service for
// callers that hold one.
func (s *Service) RecentClaims(ctx context.Context, recipientID types.ID, limit int) ([]matching.ClaimSample, error) {
	return s.store.RecentClaims(ctx, recipientID, limit)
}

func (s *Service) transition(ctx context.Context, claimID types.ID, to Status, actorType string, actorID types.ID) (*Claim, error) {
	c, err := s.store.Get(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(c.Status, to) {
		return nil, ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, c.ID, c.Status, to, c.StatusVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	var actor *types.ID
	if actorID != "" {
		actor = &actorID
	}
	_ = s.store.AppendEvent(ctx, &Event{
		ClaimID:    c.ID,
		FromStatus: c.Status,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    actor,
		CreatedAt:  time.Now(),
	})
	metrics.ClaimTransitionsTotal.WithLabelValues(string(to)).Inc()
	return c, nil
}

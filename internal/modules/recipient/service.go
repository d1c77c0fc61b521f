// README: Recipient service; also the matching engine's candidate source.
package recipient

import (
	"context"
	"errors"

	"foodbridge/internal/modules/matching"
	"foodbridge/internal/types"
)

var ErrBadRequest = errors.New("bad request")

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type UpsertCommand struct {
	ID             types.ID
	Name           string
	Coords         *types.Point
	PickupRadiusKm float64
}

func (s *Service) Upsert(ctx context.Context, cmd UpsertCommand) error {
	if cmd.ID == "" {
		return ErrBadRequest
	}
	if cmd.PickupRadiusKm < 0 {
		return ErrBadRequest
	}
	return s.store.Upsert(ctx, &Recipient{
		ID:             cmd.ID,
		Name:           cmd.Name,
		Coords:         cmd.Coords,
		PickupRadiusKm: cmd.PickupRadiusKm,
	})
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Recipient, error) {
	return s.store.Get(ctx, id)
}

// ListCandidates adapts stored recipients to matching candidates. Candidate
// order follows store order (created_at), which is what breaks score ties.
func (s *Service) ListCandidates(ctx context.Context) ([]matching.Candidate, error) {
	recipients, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	candidates := make([]matching.Candidate, len(recipients))
	for i, r := range recipients {
		candidates[i] = matching.Candidate{
			ID:             r.ID,
			Name:           r.Name,
			Coords:         r.Coords,
			PickupRadiusKm: r.PickupRadiusKm,
		}
	}
	return candidates, nil
}

// README: Claim store backed by PostgreSQL.
package claim

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"foodbridge/internal/modules/matching"
	"foodbridge/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, c *Claim) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO claims (
            id, listing_id, recipient_id, status, status_version, note, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(c.ID),
		string(c.ListingID),
		string(c.RecipientID),
		string(c.Status),
		c.StatusVersion,
		c.Note,
		c.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Claim, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, listing_id, recipient_id, status, status_version, note,
               created_at, approved_at, picked_up_at, delivered_at, verified_at,
               cancelled_at, cancellation_reason
        FROM claims
        WHERE id = $1`, string(id),
	)

	var c Claim
	var approvedAt, pickedUpAt, deliveredAt, verifiedAt, cancelledAt sql.NullTime
	var cancelReason sql.NullString

	err := row.Scan(
		&c.ID, &c.ListingID, &c.RecipientID, &c.Status, &c.StatusVersion, &c.Note,
		&c.CreatedAt, &approvedAt, &pickedUpAt, &deliveredAt, &verifiedAt,
		&cancelledAt, &cancelReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	c.ApprovedAt = toTimePtr(approvedAt)
	c.PickedUpAt = toTimePtr(pickedUpAt)
	c.DeliveredAt = toTimePtr(deliveredAt)
	c.VerifiedAt = toTimePtr(verifiedAt)
	c.CancelledAt = toTimePtr(cancelledAt)
	if cancelReason.Valid {
		c.CancelReason = &cancelReason.String
	}
	return &c, nil
}

// UpdateStatus performs an optimistic compare-and-set on status and
// status_version, stamping the matching timestamp column.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE claims
        SET status = $1,
            status_version = status_version + 1,
            approved_at = CASE WHEN $1 = 'approved' THEN NOW() ELSE approved_at END,
            picked_up_at = CASE WHEN $1 = 'picked_up' THEN NOW() ELSE picked_up_at END,
            delivered_at = CASE WHEN $1 = 'delivered' THEN NOW() ELSE delivered_at END,
            verified_at = CASE WHEN $1 = 'verified' THEN NOW() ELSE verified_at END,
            cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
        WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to),
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Cancel is the cancelled-case counterpart of UpdateStatus; it additionally
// persists the caller-supplied reason.
func (s *Store) Cancel(ctx context.Context, id types.ID, from Status, version int, reason string) (bool, error) {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE claims
        SET status = 'cancelled',
            status_version = status_version + 1,
            cancelled_at = NOW(),
            cancellation_reason = $1
        WHERE id = $2 AND status = $3 AND status_version = $4`,
		reasonPtr,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO claim_state_events (
            claim_id, from_status, to_status, actor_type, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.ClaimID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		toStringPtr(e.ActorID),
		e.CreatedAt,
	)
	return err
}

// HasActiveByListing reports whether a listing already has a claim in flight.
func (s *Store) HasActiveByListing(ctx context.Context, listingID types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM claims
            WHERE listing_id = $1
              AND status IN ('requested','approved','picked_up','in_transit','delivered')
        )`, string(listingID),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// RecentStatuses returns the statuses of a recipient's most recent claims,
// newest first, bounded by limit. This feeds the reliability component of the
// matching engine.
func (s *Store) RecentStatuses(ctx context.Context, recipientID types.ID, limit int) ([]Status, error) {
	rows, err := s.db.Query(ctx, `
        SELECT status FROM claims
        WHERE recipient_id = $1
        ORDER BY created_at DESC
        LIMIT $2`, string(recipientID), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []Status
	for rows.Next() {
		var st Status
		if err := rows.Scan(&st); err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, rows.Err()
}

// RecentClaims adapts stored claim history to the matching engine's history
// source contract. Statuses are reported verbatim; the engine decides which
// count as successes.
func (s *Store) RecentClaims(ctx context.Context, recipientID types.ID, limit int) ([]matching.ClaimSample, error) {
	statuses, err := s.RecentStatuses(ctx, recipientID, limit)
	if err != nil {
		return nil, err
	}
	samples := make([]matching.ClaimSample, len(statuses))
	for i, st := range statuses {
		samples[i] = matching.ClaimSample{Status: string(st)}
	}
	return samples, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

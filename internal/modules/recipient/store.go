// README: Recipient store backed by PostgreSQL.
package recipient

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"foodbridge/internal/types"
)

var ErrNotFound = errors.New("recipient not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Upsert creates or updates a recipient profile keyed by account ID.
func (s *Store) Upsert(ctx context.Context, r *Recipient) error {
	var lat, lng *float64
	if r.Coords != nil {
		lat, lng = &r.Coords.Lat, &r.Coords.Lng
	}
	var radius *float64
	if r.PickupRadiusKm > 0 {
		radius = &r.PickupRadiusKm
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO recipients (id, name, lat, lng, pickup_radius_km, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (id) DO UPDATE
        SET name = EXCLUDED.name,
            lat = EXCLUDED.lat,
            lng = EXCLUDED.lng,
            pickup_radius_km = EXCLUDED.pickup_radius_km`,
		string(r.ID), r.Name, lat, lng, radius,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Recipient, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, name, lat, lng, pickup_radius_km, created_at
        FROM recipients
        WHERE id = $1`, string(id),
	)
	r, err := scanRecipient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// ListAll returns every recipient-role organization. The matching engine
// scores all of them; there is no pre-filtering by distance.
func (s *Store) ListAll(ctx context.Context) ([]*Recipient, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, lat, lng, pickup_radius_km, created_at
        FROM recipients
        ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Recipient
	for rows.Next() {
		r, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipient(row rowScanner) (*Recipient, error) {
	var r Recipient
	var lat, lng, radius sql.NullFloat64
	err := row.Scan(&r.ID, &r.Name, &lat, &lng, &radius, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		r.Coords = &types.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	if radius.Valid {
		r.PickupRadiusKm = radius.Float64
	}
	return &r, nil
}

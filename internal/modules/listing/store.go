// README: Listing store backed by PostgreSQL.
package listing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"foodbridge/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, l *Listing) error {
	var lat, lng *float64
	if l.Coords != nil {
		lat, lng = &l.Coords.Lat, &l.Coords.Lng
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO listings (
            id, donor_id, food_name, quantity, unit, address,
            lat, lng, expires_at, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(l.ID),
		string(l.DonorID),
		l.FoodName,
		l.Quantity,
		l.Unit,
		l.Address,
		lat, lng,
		l.ExpiresAt,
		string(l.Status),
		l.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Listing, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, donor_id, food_name, quantity, unit, address,
               lat, lng, expires_at, status, created_at
        FROM listings
        WHERE id = $1`, string(id),
	)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

func (s *Store) ListOpen(ctx context.Context) ([]*Listing, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, donor_id, food_name, quantity, unit, address,
               lat, lng, expires_at, status, created_at
        FROM listings
        WHERE status = 'open'
        ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SetStatus flips listing availability. It is a plain last-write-wins update:
// the claim workflow serializes contention at the claim level.
func (s *Store) SetStatus(ctx context.Context, id types.ID, status Status) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE listings SET status = $1 WHERE id = $2`,
		string(status), string(id),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*Listing, error) {
	var l Listing
	var lat, lng sql.NullFloat64
	err := row.Scan(
		&l.ID, &l.DonorID, &l.FoodName, &l.Quantity, &l.Unit, &l.Address,
		&lat, &lng, &l.ExpiresAt, &l.Status, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat.Valid && lng.Valid {
		l.Coords = &types.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &l, nil
}

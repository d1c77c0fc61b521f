// README: Recipient store/service tests (DB-backed).
package recipient

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"foodbridge/internal/types"
)

func TestUpsertAndGet(t *testing.T) {
	svc := NewService(setupTestStore(t))
	ctx := context.Background()

	err := svc.Upsert(ctx, UpsertCommand{
		ID:             "ngo_upsert",
		Name:           "Harbor Shelter",
		Coords:         &types.Point{Lat: 25.12, Lng: 121.73},
		PickupRadiusKm: 25,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := svc.Get(ctx, "ngo_upsert")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Harbor Shelter" || got.PickupRadiusKm != 25 {
		t.Errorf("unexpected profile: %+v", got)
	}
	if got.Coords == nil || got.Coords.Lat != 25.12 {
		t.Errorf("expected coords persisted, got %+v", got.Coords)
	}

	// Second upsert replaces the profile.
	if err := svc.Upsert(ctx, UpsertCommand{ID: "ngo_upsert", Name: "Harbor Shelter West"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = svc.Get(ctx, "ngo_upsert")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "Harbor Shelter West" {
		t.Errorf("expected updated name, got %q", got.Name)
	}
	if got.Coords != nil {
		t.Errorf("expected coords cleared by replacement, got %+v", got.Coords)
	}
}

func TestGet_UnknownRecipient_NotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Get(context.Background(), "no_such_recipient"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown recipient, got %v", err)
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("FOODBRIDGE_TEST_DSN")
	if dsn == "" {
		t.Skip("FOODBRIDGE_TEST_DSN not set; skipping DB-backed recipient tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS recipients (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL DEFAULT '',
            lat DOUBLE PRECISION,
            lng DOUBLE PRECISION,
            pickup_radius_km DOUBLE PRECISION,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(ctx, `DELETE FROM recipients`); err != nil {
		t.Fatalf("clean table: %v", err)
	}

	return NewStore(db)
}

// README: Seeds demo recipients, listings and claim history for local runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"foodbridge/internal/config"
	"foodbridge/internal/infra"
	"foodbridge/internal/modules/claim"
	"foodbridge/internal/modules/listing"
	"foodbridge/internal/modules/recipient"
	"foodbridge/internal/types"
)

func main() {
	_ = godotenv.Load()

	var migrationPath string
	flag.StringVar(&migrationPath, "migrations", "migrations/0001_init.sql", "migration file to apply before seeding (empty to skip)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if migrationPath != "" {
		raw, err := os.ReadFile(migrationPath)
		if err != nil {
			log.Fatalf("read migration: %v", err)
		}
		for _, stmt := range strings.Split(string(raw), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.Exec(ctx, stmt); err != nil {
				log.Fatalf("apply migration: %v", err)
			}
		}
	}

	recipientStore := recipient.NewStore(db)
	recipients := []*recipient.Recipient{
		{ID: "ngo_central_kitchen", Name: "Central Community Kitchen", Coords: &types.Point{Lat: 25.0330, Lng: 121.5654}, PickupRadiusKm: 15},
		{ID: "ngo_riverside_pantry", Name: "Riverside Food Pantry", Coords: &types.Point{Lat: 25.0478, Lng: 121.5319}, PickupRadiusKm: 10},
		{ID: "ngo_harbor_shelter", Name: "Harbor Shelter", Coords: &types.Point{Lat: 25.1276, Lng: 121.7392}, PickupRadiusKm: 25},
		{ID: "ngo_no_location", Name: "Mobile Relief Team"},
	}
	for _, r := range recipients {
		if err := recipientStore.Upsert(ctx, r); err != nil {
			log.Fatalf("seed recipient %s: %v", r.ID, err)
		}
	}

	listingStore := listing.NewStore(db)
	now := time.Now()
	listings := []*listing.Listing{
		{ID: "listing_bakery_surplus", DonorID: "donor_bakery", FoodName: "Day-old bread", Quantity: 25, Unit: "kg", Coords: &types.Point{Lat: 25.0375, Lng: 121.5637}, ExpiresAt: now.Add(4 * time.Hour), Status: listing.StatusOpen, CreatedAt: now},
		{ID: "listing_event_catering", DonorID: "donor_caterer", FoodName: "Boxed meals", Quantity: 60, Unit: "boxes", Coords: &types.Point{Lat: 25.0418, Lng: 121.5436}, ExpiresAt: now.Add(2 * time.Hour), Status: listing.StatusOpen, CreatedAt: now},
	}
	for _, l := range listings {
		if err := listingStore.Create(ctx, l); err != nil {
			log.Fatalf("seed listing %s: %v", l.ID, err)
		}
	}

	// Claim history so reliability scores differ between organizations.
	claimStore := claim.NewStore(db)
	history := []struct {
		recipient types.ID
		status    claim.Status
	}{
		{"ngo_central_kitchen", claim.StatusApproved},
		{"ngo_central_kitchen", claim.StatusApproved},
		{"ngo_central_kitchen", claim.StatusCancelled},
		{"ngo_riverside_pantry", claim.StatusApproved},
		{"ngo_riverside_pantry", claim.StatusRejected},
	}
	for i, h := range history {
		c := &claim.Claim{
			ID:          types.ID(fmt.Sprintf("seed_claim_%d", i)),
			ListingID:   types.ID(fmt.Sprintf("seed_past_listing_%d", i)),
			RecipientID: h.recipient,
			Status:      h.status,
			CreatedAt:   now.Add(-time.Duration(i+1) * 24 * time.Hour),
		}
		if err := claimStore.Create(ctx, c); err != nil {
			log.Fatalf("seed claim: %v", err)
		}
	}

	log.Printf("seeded %d recipients, %d listings, %d claims", len(recipients), len(listings), len(history))
}

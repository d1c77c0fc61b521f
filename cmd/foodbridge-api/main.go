// README: Entry point; loads config, wires module services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"foodbridge/internal/config"
	httptransport "foodbridge/internal/http"
	"foodbridge/internal/infra"
	"foodbridge/internal/maps"
	"foodbridge/internal/modules/claim"
	"foodbridge/internal/modules/listing"
	"foodbridge/internal/modules/matching"
	"foodbridge/internal/modules/recipient"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("FOODBRIDGE_FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	var geocoder listing.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		geocoder = g
	} else {
		log.Print("GOOGLE_MAPS_API_KEY not set; address geocoding disabled")
	}

	recipientStore := recipient.NewStore(dbPool)
	recipientSvc := recipient.NewService(recipientStore)

	claimStore := claim.NewStore(dbPool)

	matchingStore := matching.NewStore(redisClient)
	matchingSvc := matching.NewService(recipientSvc, claimStore, matchingStore)

	listingStore := listing.NewStore(dbPool)
	listingSvc := listing.NewService(listingStore, geocoder, matchingSvc)

	claimSvc := claim.NewService(claimStore, listingSvc)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Listings:   listingSvc,
		Claims:     claimSvc,
		Recipients: recipientSvc,
		Shortlists: matchingStore,
		Verifier:   verifier,
		Config:     &cfg,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

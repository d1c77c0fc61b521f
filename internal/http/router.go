// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"

	"foodbridge/internal/config"
	"foodbridge/internal/http/handlers"
	"foodbridge/internal/http/middleware"
	"foodbridge/internal/infra"
	"foodbridge/internal/metrics"
	"foodbridge/internal/modules/claim"
	"foodbridge/internal/modules/listing"
	"foodbridge/internal/modules/matching"
	"foodbridge/internal/modules/recipient"
)

type RouterDeps struct {
	Listings   *listing.Service
	Claims     *claim.Service
	Recipients *recipient.Service
	Shortlists *matching.Store
	Verifier   infra.TokenVerifier
	Config     *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logging())
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.Use(middleware.Auth(deps.Verifier))
	api.Use(middleware.RateLimit(deps.Config.RateLimit.RequestsPerSecond, deps.Config.RateLimit.Burst))

	listingHandler := handlers.NewListingHandler(deps.Listings, deps.Shortlists)
	api.POST("/listings", listingHandler.Create)
	api.GET("/listings", listingHandler.ListOpen)
	api.GET("/listings/:id", listingHandler.Get)
	api.GET("/listings/:id/matches", listingHandler.Matches)

	claimHandler := handlers.NewClaimHandler(deps.Claims)
	api.POST("/claims", claimHandler.Request)
	api.GET("/claims/:id", claimHandler.Get)
	api.POST("/claims/:id/approve", claimHandler.Approve)
	api.POST("/claims/:id/reject", claimHandler.Reject)
	api.POST("/claims/:id/pickup", claimHandler.Pickup)
	api.POST("/claims/:id/transit", claimHandler.Transit)
	api.POST("/claims/:id/delivered", claimHandler.Delivered)
	api.POST("/claims/:id/verify", claimHandler.Verify)
	api.POST("/claims/:id/cancel", claimHandler.Cancel)

	recipientHandler := handlers.NewRecipientHandler(deps.Recipients)
	api.PUT("/recipients/me", recipientHandler.UpsertMe)
	api.GET("/recipients/me", recipientHandler.GetMe)

	return r
}

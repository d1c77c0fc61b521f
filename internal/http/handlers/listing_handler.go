// README: Listing handlers for create/get/list and recorded shortlists.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"foodbridge/internal/http/middleware"
	"foodbridge/internal/modules/listing"
	"foodbridge/internal/modules/matching"
	"foodbridge/internal/types"
)

type ListingHandler struct {
	listings   *listing.Service
	shortlists *matching.Store
}

func NewListingHandler(listings *listing.Service, shortlists *matching.Store) *ListingHandler {
	return &ListingHandler{listings: listings, shortlists: shortlists}
}

type createListingReq struct {
	FoodName      string   `json:"foodName"`
	Quantity      *float64 `json:"quantity"`
	HoursToExpiry *float64 `json:"hoursToExpiry"`
	Unit          string   `json:"unit"`
	Address       string   `json:"address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}

type listingResp struct {
	ID        string   `json:"id"`
	FoodName  string   `json:"foodName"`
	Quantity  float64  `json:"quantity"`
	Unit      string   `json:"unit"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	ExpiresAt string   `json:"expiresAt"`
	Status    string   `json:"status"`
}

func (h *ListingHandler) Create(c *gin.Context) {
	if middleware.CallerRole(c) != "donor" {
		writeError(c, http.StatusForbidden, "forbidden: donor role required")
		return
	}
	var req createListingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	var coords *types.Point
	if req.Latitude != nil && req.Longitude != nil {
		coords = &types.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	}
	res, err := h.listings.Create(c.Request.Context(), listing.CreateCommand{
		DonorID:       types.ID(middleware.CallerUID(c)),
		FoodName:      req.FoodName,
		Quantity:      req.Quantity,
		HoursToExpiry: req.HoursToExpiry,
		Unit:          req.Unit,
		Address:       req.Address,
		Coords:        coords,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"listingId":   res.Listing.ID,
		"success":     res.Match.Success,
		"message":     res.Match.Message,
		"matchedNGOs": res.Match.Matches,
		"totalNGOs":   res.Match.TotalNGOs,
	})
}

func (h *ListingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing listing id")
		return
	}
	l, err := h.listings.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toListingResp(l))
}

func (h *ListingHandler) ListOpen(c *gin.Context) {
	ls, err := h.listings.ListOpen(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	out := make([]listingResp, len(ls))
	for i, l := range ls {
		out[i] = toListingResp(l)
	}
	writeJSON(c, http.StatusOK, gin.H{"listings": out})
}

// Matches returns the shortlist recorded in Redis when the listing was
// created.
func (h *ListingHandler) Matches(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing listing id")
		return
	}
	results, totalNGOs, found, err := h.shortlists.GetShortlist(c.Request.Context(), types.ID(id))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if !found {
		writeError(c, http.StatusNotFound, "no recorded matches for listing")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"success":     true,
		"matchedNGOs": results,
		"totalNGOs":   totalNGOs,
	})
}

func toListingResp(l *listing.Listing) listingResp {
	resp := listingResp{
		ID:        string(l.ID),
		FoodName:  l.FoodName,
		Quantity:  l.Quantity,
		Unit:      l.Unit,
		Address:   l.Address,
		ExpiresAt: l.ExpiresAt.UTC().Format(time.RFC3339),
		Status:    string(l.Status),
	}
	if l.Coords != nil {
		resp.Latitude = &l.Coords.Lat
		resp.Longitude = &l.Coords.Lng
	}
	return resp
}

// README: Recipient profile handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodbridge/internal/http/middleware"
	"foodbridge/internal/modules/recipient"
	"foodbridge/internal/types"
)

type RecipientHandler struct {
	recipients *recipient.Service
}

func NewRecipientHandler(recipients *recipient.Service) *RecipientHandler {
	return &RecipientHandler{recipients: recipients}
}

type upsertRecipientReq struct {
	Name           string   `json:"name"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	PickupRadiusKm float64  `json:"pickupRadiusKm"`
}

type recipientResp struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	PickupRadiusKm float64  `json:"pickupRadiusKm"`
}

// UpsertMe creates or replaces the calling recipient's profile. The profile id
// is always the authenticated uid, never a client-supplied one.
func (h *RecipientHandler) UpsertMe(c *gin.Context) {
	if middleware.CallerRole(c) != "recipient" {
		writeError(c, http.StatusForbidden, "forbidden: recipient role required")
		return
	}
	var req upsertRecipientReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	var coords *types.Point
	if req.Latitude != nil && req.Longitude != nil {
		coords = &types.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	}
	err := h.recipients.Upsert(c.Request.Context(), recipient.UpsertCommand{
		ID:             types.ID(middleware.CallerUID(c)),
		Name:           req.Name,
		Coords:         coords,
		PickupRadiusKm: req.PickupRadiusKm,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"id": middleware.CallerUID(c)})
}

func (h *RecipientHandler) GetMe(c *gin.Context) {
	if middleware.CallerRole(c) != "recipient" {
		writeError(c, http.StatusForbidden, "forbidden: recipient role required")
		return
	}
	r, err := h.recipients.Get(c.Request.Context(), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	resp := recipientResp{
		ID:             string(r.ID),
		Name:           r.Name,
		PickupRadiusKm: r.PickupRadiusKm,
	}
	if r.Coords != nil {
		resp.Latitude = &r.Coords.Lat
		resp.Longitude = &r.Coords.Lng
	}
	writeJSON(c, http.StatusOK, resp)
}

// README: Claim handlers drive the delivery workflow over HTTP.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"foodbridge/internal/http/middleware"
	"foodbridge/internal/modules/claim"
	"foodbridge/internal/types"
)

type ClaimHandler struct {
	claims *claim.Service
}

func NewClaimHandler(claims *claim.Service) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

type requestClaimReq struct {
	ListingID string `json:"listingId"`
	Note      string `json:"note"`
}

func (h *ClaimHandler) Request(c *gin.Context) {
	if middleware.CallerRole(c) != "recipient" {
		writeError(c, http.StatusForbidden, "forbidden: recipient role required")
		return
	}
	var req requestClaimReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := h.claims.Request(c.Request.Context(), claim.RequestCommand{
		ListingID:   types.ID(req.ListingID),
		RecipientID: types.ID(middleware.CallerUID(c)),
		Note:        req.Note,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"claimId": id})
}

type claimResp struct {
	ID          string `json:"id"`
	ListingID   string `json:"listingId"`
	RecipientID string `json:"recipientId"`
	Status      string `json:"status"`
	Note        string `json:"note,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func (h *ClaimHandler) Get(c *gin.Context) {
	cl, err := h.claims.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, claimResp{
		ID:          string(cl.ID),
		ListingID:   string(cl.ListingID),
		RecipientID: string(cl.RecipientID),
		Status:      string(cl.Status),
		Note:        cl.Note,
		CreatedAt:   cl.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// Approve and Reject are donor decisions on a requested claim.

func (h *ClaimHandler) Approve(c *gin.Context) {
	h.transition(c, "donor", h.claims.Approve)
}

func (h *ClaimHandler) Reject(c *gin.Context) {
	h.transition(c, "donor", h.claims.Reject)
}

// Pickup, Transit and Delivered are reported by the recipient moving the food.

func (h *ClaimHandler) Pickup(c *gin.Context) {
	h.transition(c, "recipient", h.claims.MarkPickedUp)
}

func (h *ClaimHandler) Transit(c *gin.Context) {
	h.transition(c, "recipient", h.claims.MarkInTransit)
}

func (h *ClaimHandler) Delivered(c *gin.Context) {
	h.transition(c, "recipient", h.claims.MarkDelivered)
}

// Verify is the donor's confirmation that the delivery arrived.

func (h *ClaimHandler) Verify(c *gin.Context) {
	h.transition(c, "donor", h.claims.Verify)
}

type cancelClaimReq struct {
	Reason string `json:"reason"`
}

// Cancel is open to both sides; the state machine decides whether the claim
// can still be aborted.
func (h *ClaimHandler) Cancel(c *gin.Context) {
	role := middleware.CallerRole(c)
	if role != "donor" && role != "recipient" {
		writeError(c, http.StatusForbidden, "forbidden")
		return
	}
	var req cancelClaimReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	err := h.claims.Cancel(c.Request.Context(), claim.CancelCommand{
		ClaimID:   types.ID(c.Param("id")),
		ActorType: role,
		ActorID:   types.ID(middleware.CallerUID(c)),
		Reason:    req.Reason,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": string(claim.StatusCancelled)})
}

func (h *ClaimHandler) transition(c *gin.Context, role string, fn func(ctx context.Context, cmd claim.TransitionCommand) error) {
	if middleware.CallerRole(c) != role {
		writeError(c, http.StatusForbidden, "forbidden: "+role+" role required")
		return
	}
	err := fn(c.Request.Context(), claim.TransitionCommand{
		ClaimID:   types.ID(c.Param("id")),
		ActorType: role,
		ActorID:   types.ID(middleware.CallerUID(c)),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	cl, err := h.claims.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": string(cl.Status)})
}

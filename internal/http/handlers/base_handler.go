// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodbridge/internal/modules/claim"
	"foodbridge/internal/modules/listing"
	"foodbridge/internal/modules/matching"
	"foodbridge/internal/modules/recipient"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps module sentinel errors onto HTTP status codes.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, listing.ErrBadRequest),
		errors.Is(err, claim.ErrBadRequest),
		errors.Is(err, recipient.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, matching.ErrInvalidListing):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, listing.ErrNotFound),
		errors.Is(err, claim.ErrNotFound),
		errors.Is(err, recipient.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, claim.ErrInvalidState),
		errors.Is(err, claim.ErrActiveClaim),
		errors.Is(err, claim.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

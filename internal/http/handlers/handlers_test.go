// README: Authorization tests for listing and claim handlers.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"foodbridge/internal/http/handlers"
	httpmiddleware "foodbridge/internal/http/middleware"
	"foodbridge/internal/infra"
	"foodbridge/internal/modules/claim"
	"foodbridge/internal/modules/listing"
	"foodbridge/internal/modules/recipient"
)

// stubTokenVerifier is a test double for infra.TokenVerifier.
type stubTokenVerifier struct {
	token *infra.FirebaseToken
	err   error
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, s.err
}

// buildTestRouter wires a minimal Gin engine with the auth middleware and the
// resource handlers. Nil-backed services are safe here because every role
// check happens before any service method touches its store.
func buildTestRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(httpmiddleware.Auth(verifier))

	lh := handlers.NewListingHandler(listing.NewService(nil, nil, nil), nil)
	r.POST("/api/listings", lh.Create)

	ch := handlers.NewClaimHandler(claim.NewService(nil, nil))
	r.POST("/api/claims", ch.Request)
	r.POST("/api/claims/:id/approve", ch.Approve)
	r.POST("/api/claims/:id/pickup", ch.Pickup)
	r.POST("/api/claims/:id/cancel", ch.Cancel)

	rh := handlers.NewRecipientHandler(recipient.NewService(nil))
	r.PUT("/api/recipients/me", rh.UpsertMe)
	return r
}

func makeVerifier(uid, role string) *stubTokenVerifier {
	claims := map[string]interface{}{}
	if role != "" {
		claims["role"] = role
	}
	return &stubTokenVerifier{token: &infra.FirebaseToken{UID: uid, Claims: claims}}
}

func doRequest(r *gin.Engine, method, path string, body interface{}, authHeader string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateListing_Unauthenticated(t *testing.T) {
	r := buildTestRouter(&stubTokenVerifier{err: errors.New("no token")})
	w := doRequest(r, http.MethodPost, "/api/listings", map[string]any{
		"foodName": "bread", "quantity": 5, "hoursToExpiry": 4,
	}, "Bearer badtoken")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestCreateListing_RequiresDonorRole(t *testing.T) {
	r := buildTestRouter(makeVerifier("org1", "recipient"))
	w := doRequest(r, http.MethodPost, "/api/listings", map[string]any{
		"foodName": "bread", "quantity": 5, "hoursToExpiry": 4,
	}, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestCreateListing_RejectsInvalidJSON(t *testing.T) {
	r := buildTestRouter(makeVerifier("donor1", "donor"))
	req := httptest.NewRequest(http.MethodPost, "/api/listings", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRequestClaim_RequiresRecipientRole(t *testing.T) {
	r := buildTestRouter(makeVerifier("donor1", "donor"))
	w := doRequest(r, http.MethodPost, "/api/claims", map[string]any{
		"listingId": "l1",
	}, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestApproveClaim_RequiresDonorRole(t *testing.T) {
	r := buildTestRouter(makeVerifier("org1", "recipient"))
	w := doRequest(r, http.MethodPost, "/api/claims/c1/approve", nil, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestPickupClaim_RequiresRecipientRole(t *testing.T) {
	r := buildTestRouter(makeVerifier("donor1", "donor"))
	w := doRequest(r, http.MethodPost, "/api/claims/c1/pickup", nil, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestCancelClaim_RejectsUnknownRole(t *testing.T) {
	r := buildTestRouter(makeVerifier("who", ""))
	w := doRequest(r, http.MethodPost, "/api/claims/c1/cancel", nil, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestUpsertRecipient_RequiresRecipientRole(t *testing.T) {
	r := buildTestRouter(makeVerifier("donor1", "donor"))
	w := doRequest(r, http.MethodPut, "/api/recipients/me", map[string]any{
		"name": "Food Bank",
	}, "Bearer sometoken")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

// README: Claim service tests (state machine + DB-backed flow).
package claim

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"foodbridge/internal/types"
)

// TestCanTransition verifies the delivery state machine without a database.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// happy-path forward transitions
		{StatusRequested, StatusApproved, true},
		{StatusApproved, StatusPickedUp, true},
		{StatusPickedUp, StatusInTransit, true},
		{StatusInTransit, StatusDelivered, true},
		{StatusDelivered, StatusVerified, true},
		// rejection and cancels
		{StatusRequested, StatusRejected, true},
		{StatusRequested, StatusCancelled, true},
		{StatusApproved, StatusCancelled, true},
		// invalid: no cancels once food is moving
		{StatusPickedUp, StatusCancelled, false},
		{StatusInTransit, StatusCancelled, false},
		// invalid: terminal states have no outgoing transitions
		{StatusVerified, StatusRequested, false},
		{StatusRejected, StatusApproved, false},
		{StatusCancelled, StatusRequested, false},
		// invalid: skipping states
		{StatusRequested, StatusPickedUp, false},
		{StatusApproved, StatusDelivered, false},
		{StatusPickedUp, StatusVerified, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

// fakeListingMarker records availability flips without a listing store.
type fakeListingMarker struct {
	mu      sync.Mutex
	claimed map[types.ID]bool
}

func newFakeListingMarker() *fakeListingMarker {
	return &fakeListingMarker{claimed: make(map[types.ID]bool)}
}

func (f *fakeListingMarker) MarkClaimed(_ context.Context, id types.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimed[id] = true
	return nil
}

func (f *fakeListingMarker) MarkOpen(_ context.Context, id types.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimed[id] = false
	return nil
}

func (f *fakeListingMarker) isClaimed(id types.ID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.claimed[id]
}

func TestClaimFlowHappyPath(t *testing.T) {
	markers := newFakeListingMarker()
	svc := NewService(setupTestStore(t), markers)
	ctx := context.Background()

	claimID := mustRequestClaim(t, svc, "listing_happy", "ngo1")
	assertStatus(t, svc, claimID, StatusRequested)

	donor := TransitionCommand{ClaimID: claimID, ActorType: "donor", ActorID: "donor1"}
	recipient := TransitionCommand{ClaimID: claimID, ActorType: "recipient", ActorID: "ngo1"}

	if err := svc.Approve(ctx, donor); err != nil {
		t.Fatalf("approve: %v", err)
	}
	assertStatus(t, svc, claimID, StatusApproved)
	if !markers.isClaimed("listing_happy") {
		t.Error("expected listing marked claimed after approval")
	}

	if err := svc.MarkPickedUp(ctx, recipient); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	assertStatus(t, svc, claimID, StatusPickedUp)

	if err := svc.MarkInTransit(ctx, recipient); err != nil {
		t.Fatalf("transit: %v", err)
	}
	assertStatus(t, svc, claimID, StatusInTransit)

	if err := svc.MarkDelivered(ctx, recipient); err != nil {
		t.Fatalf("delivered: %v", err)
	}
	assertStatus(t, svc, claimID, StatusDelivered)

	if err := svc.Verify(ctx, donor); err != nil {
		t.Fatalf("verify: %v", err)
	}
	assertStatus(t, svc, claimID, StatusVerified)
}

func TestClaimRequest_SecondClaimOnListingRejected(t *testing.T) {
	svc := NewService(setupTestStore(t), nil)
	ctx := context.Background()

	mustRequestClaim(t, svc, "listing_single", "ngo1")
	_, err := svc.Request(ctx, RequestCommand{ListingID: "listing_single", RecipientID: "ngo2"})
	if err != ErrActiveClaim {
		t.Fatalf("expected ErrActiveClaim, got %v", err)
	}
}

func TestClaimCancel_AfterApprovalReopensListing(t *testing.T) {
	markers := newFakeListingMarker()
	svc := NewService(setupTestStore(t), markers)
	ctx := context.Background()

	claimID := mustRequestClaim(t, svc, "listing_reopen", "ngo1")
	if err := svc.Approve(ctx, TransitionCommand{ClaimID: claimID, ActorType: "donor", ActorID: "donor1"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := svc.Cancel(ctx, CancelCommand{ClaimID: claimID, ActorType: "recipient", ActorID: "ngo1", Reason: "van broke down"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	assertStatus(t, svc, claimID, StatusCancelled)
	if markers.isClaimed("listing_reopen") {
		t.Error("expected listing reopened after cancel")
	}

	c, err := svc.Get(ctx, claimID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.CancelReason == nil || *c.CancelReason != "van broke down" {
		t.Errorf("expected cancel reason persisted, got %v", c.CancelReason)
	}
	if c.CancelledAt == nil {
		t.Error("expected cancelled_at stamped")
	}
}

func TestGet_UnknownClaim_NotFound(t *testing.T) {
	svc := NewService(setupTestStore(t), nil)
	if _, err := svc.Get(context.Background(), "no_such_claim"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown claim, got %v", err)
	}
}

func TestClaimCancel_InTransitRejected(t *testing.T) {
	svc := NewService(setupTestStore(t), nil)
	ctx := context.Background()

	claimID := mustRequestClaim(t, svc, "listing_moving", "ngo1")
	donor := TransitionCommand{ClaimID: claimID, ActorType: "donor", ActorID: "donor1"}
	recipient := TransitionCommand{ClaimID: claimID, ActorType: "recipient", ActorID: "ngo1"}
	if err := svc.Approve(ctx, donor); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := svc.MarkPickedUp(ctx, recipient); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if err := svc.MarkInTransit(ctx, recipient); err != nil {
		t.Fatalf("transit: %v", err)
	}

	err := svc.Cancel(ctx, CancelCommand{ClaimID: claimID, ActorType: "recipient", ActorID: "ngo1"})
	if err != ErrInvalidState {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

// TestClaimApprove_ConcurrentOnlyOneWins exercises the optimistic lock: two
// donors (or retries) approving simultaneously must not double-apply.
func TestClaimApprove_ConcurrentOnlyOneWins(t *testing.T) {
	svc := NewService(setupTestStore(t), nil)
	ctx := context.Background()

	claimID := mustRequestClaim(t, svc, "listing_race", "ngo1")

	const attempts = 3
	errs := make(chan error, attempts)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs <- svc.Approve(ctx, TransitionCommand{ClaimID: claimID, ActorType: "donor", ActorID: "donor1"})
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if err != ErrConflict && err != ErrInvalidState {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 successful approve, got %d", success)
	}
	assertStatus(t, svc, claimID, StatusApproved)
}

func TestRecentStatuses_NewestFirstBounded(t *testing.T) {
	store := setupTestStore(t)
	svc := NewService(store, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		listingID := types.ID("listing_hist_" + string(rune('a'+i)))
		mustRequestClaim(t, svc, listingID, "ngo_hist")
	}

	samples, err := svc.RecentClaims(ctx, "ngo_hist", 3)
	if err != nil {
		t.Fatalf("recent claims: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	for _, s := range samples {
		if s.Status != string(StatusRequested) {
			t.Errorf("unexpected status %q", s.Status)
		}
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustRequestClaim(t *testing.T, svc *Service, listingID, recipientID types.ID) types.ID {
	t.Helper()
	id, err := svc.Request(context.Background(), RequestCommand{
		ListingID:   listingID,
		RecipientID: recipientID,
		Note:        "we can collect today",
	})
	if err != nil {
		t.Fatalf("request claim: %v", err)
	}
	return id
}

func assertStatus(t *testing.T, svc *Service, claimID types.ID, want Status) {
	t.Helper()
	c, err := svc.Get(context.Background(), claimID)
	if err != nil {
		t.Fatalf("get claim: %v", err)
	}
	if c.Status != want {
		t.Fatalf("expected status %s, got %s", want, c.Status)
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("FOODBRIDGE_TEST_DSN")
	if dsn == "" {
		t.Skip("FOODBRIDGE_TEST_DSN not set; skipping DB-backed claim tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	if _, err := db.Exec(ctx, "TRUNCATE TABLE claim_state_events, claims, listings, recipients"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return NewStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	cleaned := stripSQLComments(string(content))
	for _, stmt := range splitSQL(cleaned) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

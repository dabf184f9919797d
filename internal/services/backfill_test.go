package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/proxe-ai/leadbridge/internal/types"
)

func newTestBackfillService(t *testing.T, sessions *fakeSessionRepo, leads *fakeLeadRepo) BackfillService {
	t.Helper()
	leadSvc := NewLeadService(nil, testLogger(t), leads, nil)
	return NewBackfillService(nil, testLogger(t), sessions, leads, leadSvc)
}

func seedSession(sessions *fakeSessionRepo, brand, externalID string, phone, email *string) *types.ChannelSession {
	s := &types.ChannelSession{
		ID:                uuid.New(),
		ExternalSessionID: externalID,
		Brand:             brand,
		Channel:           types.ChannelWeb,
		CustomerPhone:     phone,
		CustomerEmail:     email,
		CreatedAt:         time.Now().UTC().Add(-time.Hour),
		UpdatedAt:         time.Now().UTC(),
	}
	sessions.sessions = append(sessions.sessions, s)
	return s
}

func TestBackfillLinksSessionsAndCountsOutcomes(t *testing.T) {
	sessions := &fakeSessionRepo{}
	leads := &fakeLeadRepo{}
	svc := newTestBackfillService(t, sessions, leads)
	ctx := context.Background()

	// pre-existing lead for session two's phone: that session must update, not create
	if _, err := NewLeadService(nil, testLogger(t), leads, nil).UpsertFromChannelEvent(ctx, ChannelEvent{
		Brand: "acme", Channel: types.ChannelWhatsApp, Phone: sPtr("9876543210"),
	}); err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	seedSession(sessions, "acme", "sess-1", nil, sPtr("new@example.com"))
	seedSession(sessions, "acme", "sess-2", sPtr("+91 98765 43210"), nil)

	result, err := svc.ReconcileUnlinkedSessions(ctx, "acme", 0)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("processed = %d, want 2", result.Processed)
	}
	if result.Created != 1 || result.Updated != 1 {
		t.Fatalf("created/updated = %d/%d, want 1/1", result.Created, result.Updated)
	}
	if result.Linked != 2 || result.Errors != 0 {
		t.Fatalf("linked/errors = %d/%d, want 2/0", result.Linked, result.Errors)
	}

	for _, s := range sessions.sessions {
		if s.LeadID == nil {
			t.Fatalf("session %s still unlinked", s.ExternalSessionID)
		}
	}
}

func TestBackfillIsolatesPerSessionFailures(t *testing.T) {
	sessions := &fakeSessionRepo{}
	leads := &fakeLeadRepo{}
	svc := newTestBackfillService(t, sessions, leads)

	// session with a phone that normalizes to nothing fails validation;
	// the rest of the batch must still be processed
	seedSession(sessions, "acme", "bad", sPtr("12345"), nil)
	seedSession(sessions, "acme", "ok-1", sPtr("9876543210"), nil)
	seedSession(sessions, "acme", "ok-2", nil, sPtr("a@example.com"))
	seedSession(sessions, "acme", "ok-3", nil, sPtr("b@example.com"))
	seedSession(sessions, "acme", "ok-4", sPtr("9123456780"), nil)

	result, err := svc.ReconcileUnlinkedSessions(context.Background(), "acme", 0)
	if err != nil {
		t.Fatalf("reconcile must not abort on a bad session: %v", err)
	}
	if result.Processed != 5 {
		t.Fatalf("processed = %d, want 5", result.Processed)
	}
	if result.Errors != 1 {
		t.Fatalf("errors = %d, want 1", result.Errors)
	}
	if result.Linked != 4 {
		t.Fatalf("linked = %d, want 4", result.Linked)
	}
}

func TestBackfillSecondRunIsNoOp(t *testing.T) {
	sessions := &fakeSessionRepo{}
	leads := &fakeLeadRepo{}
	svc := newTestBackfillService(t, sessions, leads)
	ctx := context.Background()

	seedSession(sessions, "acme", "sess-1", sPtr("9876543210"), nil)

	first, err := svc.ReconcileUnlinkedSessions(ctx, "acme", 0)
	if err != nil || first.Linked != 1 {
		t.Fatalf("first run: %+v err=%v", first, err)
	}

	second, err := svc.ReconcileUnlinkedSessions(ctx, "acme", 0)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Processed != 0 || second.Created != 0 || second.Updated != 0 || second.Linked != 0 {
		t.Fatalf("second run did work: %+v", second)
	}
}

func TestBackfillRequiresBrand(t *testing.T) {
	svc := newTestBackfillService(t, &fakeSessionRepo{}, &fakeLeadRepo{})
	_, err := svc.ReconcileUnlinkedSessions(context.Background(), "", 10)
	if !errors.Is(err, types.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBackfillStatus(t *testing.T) {
	sessions := &fakeSessionRepo{}
	leads := &fakeLeadRepo{}
	svc := newTestBackfillService(t, sessions, leads)
	ctx := context.Background()

	seedSession(sessions, "acme", "sess-1", sPtr("9876543210"), nil)

	status, err := svc.Status(ctx, "acme")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.UnlinkedSessions != 1 || !status.NeedsBackfill {
		t.Fatalf("status before reconcile: %+v", status)
	}

	if _, err := svc.ReconcileUnlinkedSessions(ctx, "acme", 0); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	status, err = svc.Status(ctx, "acme")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.UnlinkedSessions != 0 || status.NeedsBackfill {
		t.Fatalf("status after reconcile: %+v", status)
	}
	if status.TotalLeads != 1 {
		t.Fatalf("total_leads = %d, want 1", status.TotalLeads)
	}
}

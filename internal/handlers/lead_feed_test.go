package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/types"
)

func feedLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestLeadFeedBroadcastReachesSubscribers(t *testing.T) {
	feed := NewLeadFeedHandler(feedLogger(t))

	id1, ch1 := feed.subscribe()
	defer feed.unsubscribe(id1)
	id2, ch2 := feed.subscribe()
	defer feed.unsubscribe(id2)

	event := types.LeadEvent{
		Type:    types.LeadEventCreated,
		LeadID:  uuid.New(),
		Brand:   "acme",
		Channel: types.ChannelWhatsApp,
		At:      time.Now().UTC(),
	}
	feed.Broadcast(event)

	for _, ch := range []chan types.LeadEvent{ch1, ch2} {
		select {
		case got := <-ch:
			if got.LeadID != event.LeadID || got.Type != types.LeadEventCreated {
				t.Fatalf("unexpected event: %+v", got)
			}
		default:
			t.Fatalf("subscriber did not receive event")
		}
	}
}

func TestLeadFeedSlowClientDropsInsteadOfBlocking(t *testing.T) {
	feed := NewLeadFeedHandler(feedLogger(t))

	id, ch := feed.subscribe()
	defer feed.unsubscribe(id)

	// fill the buffer without draining
	for i := 0; i < feedClientBuffer+5; i++ {
		feed.Broadcast(types.LeadEvent{Type: types.LeadEventUpdated, LeadID: uuid.New()})
	}
	if len(ch) != feedClientBuffer {
		t.Fatalf("expected buffer to cap at %d, got %d", feedClientBuffer, len(ch))
	}
}

func TestLeadFeedUnsubscribeStopsDelivery(t *testing.T) {
	feed := NewLeadFeedHandler(feedLogger(t))

	id, ch := feed.subscribe()
	feed.unsubscribe(id)

	feed.Broadcast(types.LeadEvent{Type: types.LeadEventCreated, LeadID: uuid.New()})
	if len(ch) != 0 {
		t.Fatalf("unsubscribed client still received %d events", len(ch))
	}
}

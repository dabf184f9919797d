package handlers

import (
	"io"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/proxe-ai/leadbridge/internal/middleware"
	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/types"
)

const feedClientBuffer = 16

// LeadFeedHandler streams lead create/update events to dashboard clients over
// SSE. Events arrive via Broadcast, which the redis forwarder feeds, so every
// API instance sees events published by every other instance.
type LeadFeedHandler struct {
	log  *logger.Logger
	mu   sync.Mutex
	subs map[uuid.UUID]chan types.LeadEvent
}

func NewLeadFeedHandler(log *logger.Logger) *LeadFeedHandler {
	return &LeadFeedHandler{
		log:  log.With("handler", "LeadFeedHandler"),
		subs: make(map[uuid.UUID]chan types.LeadEvent),
	}
}

// Broadcast fans one event out to connected clients. Slow clients drop
// events rather than blocking the forwarder.
func (lf *LeadFeedHandler) Broadcast(event types.LeadEvent) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	for id, ch := range lf.subs {
		select {
		case ch <- event:
		default:
			lf.log.Debug("Dropping lead event for slow feed client", "client_id", id)
		}
	}
}

func (lf *LeadFeedHandler) subscribe() (uuid.UUID, chan types.LeadEvent) {
	id := uuid.New()
	ch := make(chan types.LeadEvent, feedClientBuffer)
	lf.mu.Lock()
	lf.subs[id] = ch
	lf.mu.Unlock()
	return id, ch
}

func (lf *LeadFeedHandler) unsubscribe(id uuid.UUID) {
	lf.mu.Lock()
	delete(lf.subs, id)
	lf.mu.Unlock()
}

func (lf *LeadFeedHandler) Stream(c *gin.Context) {
	brand := c.GetString(middleware.ContextKeyBrand)

	id, ch := lf.subscribe()
	defer lf.unsubscribe(id)
	lf.log.Debug("Feed client connected", "client_id", id, "brand", brand)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, ok := <-ch:
			if !ok {
				return false
			}
			// brand claim scopes the feed; service tokens without one see all
			if brand != "" && event.Brand != brand {
				return true
			}
			c.SSEvent("lead", event)
			return true
		}
	})
}

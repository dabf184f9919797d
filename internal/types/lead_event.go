package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	LeadEventCreated = "lead.created"
	LeadEventUpdated = "lead.updated"
)

// LeadEvent is published on the realtime bus after a lead write commits, so
// dashboards can refresh without polling.
type LeadEvent struct {
	Type    string    `json:"type"`
	LeadID  uuid.UUID `json:"lead_id"`
	Brand   string    `json:"brand"`
	Channel Channel   `json:"channel"`
	At      time.Time `json:"at"`
}

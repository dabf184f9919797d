package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChannelSession is a per-channel conversation record. LeadID is a weak
// back-reference populated either at creation (when contact info is present)
// or later by the backfill reconciler; it is not re-validated afterwards.
type ChannelSession struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ExternalSessionID   string         `gorm:"not null;uniqueIndex:uq_sessions_brand_external,priority:2" json:"external_session_id"`
	Brand               string         `gorm:"not null;uniqueIndex:uq_sessions_brand_external,priority:1" json:"brand"`
	Channel             Channel        `gorm:"not null;default:web" json:"channel"`
	CustomerName        *string        `gorm:"column:customer_name" json:"customer_name,omitempty"`
	CustomerEmail       *string        `gorm:"column:customer_email" json:"customer_email,omitempty"`
	CustomerPhone       *string        `gorm:"column:customer_phone" json:"customer_phone,omitempty"`
	ConversationSummary string         `json:"conversation_summary,omitempty"`
	UserInputsSummary   string         `json:"user_inputs_summary,omitempty"`
	BookingStatus       string         `json:"booking_status,omitempty"`
	BookingDate         *string        `json:"booking_date,omitempty"`
	BookingTime         *string        `json:"booking_time,omitempty"`
	MessageCount        int            `gorm:"default:0" json:"message_count"`
	LeadID              *uuid.UUID     `gorm:"type:uuid;index" json:"lead_id,omitempty"`
	Metadata            datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt           time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChannelSession) TableName() string {
	return "channel_sessions"
}

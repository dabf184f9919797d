package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Message is one turn in a conversation. Append-only; never mutated after
// insertion.
type Message struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LeadID      *uuid.UUID     `gorm:"type:uuid;index" json:"lead_id,omitempty"`
	SessionID   *uuid.UUID     `gorm:"type:uuid;index" json:"session_id,omitempty"`
	Brand       string         `gorm:"not null;index" json:"brand"`
	Channel     Channel        `gorm:"not null" json:"channel"`
	Sender      string         `gorm:"not null" json:"sender"`
	Content     string         `gorm:"not null" json:"content"`
	MessageType string         `gorm:"default:text" json:"message_type"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

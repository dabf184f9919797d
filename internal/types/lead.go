package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Lead is the canonical cross-channel identity record for a prospective
// customer. At most one row per (brand, customer_phone_normalized) and per
// (brand, email); the partial unique indexes below are the storage-level
// guarantee the upsert coordinator's conflict-retry relies on.
type Lead struct {
	ID                      uuid.UUID                          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Brand                   string                             `gorm:"not null;uniqueIndex:uq_leads_brand_phone,priority:1;uniqueIndex:uq_leads_brand_email,priority:1" json:"brand"`
	CustomerName            *string                            `gorm:"column:customer_name" json:"customer_name,omitempty"`
	Email                   *string                            `gorm:"uniqueIndex:uq_leads_brand_email,priority:2,where:email IS NOT NULL" json:"email,omitempty"`
	Phone                   *string                            `json:"phone,omitempty"`
	CustomerPhoneNormalized *string                            `gorm:"column:customer_phone_normalized;uniqueIndex:uq_leads_brand_phone,priority:2,where:customer_phone_normalized IS NOT NULL" json:"customer_phone_normalized,omitempty"`
	FirstTouchpoint         Channel                            `gorm:"not null" json:"first_touchpoint"`
	LastTouchpoint          Channel                            `gorm:"not null" json:"last_touchpoint"`
	LastInteractionAt       time.Time                          `gorm:"not null" json:"last_interaction_at"`
	LeadScore               int                                `gorm:"default:0" json:"lead_score"`
	LeadStage               string                             `gorm:"default:new" json:"lead_stage"`
	Status                  string                             `gorm:"default:new" json:"status"`
	BookingDate             *string                            `json:"booking_date,omitempty"`
	BookingTime             *string                            `json:"booking_time,omitempty"`
	UnifiedContext          datatypes.JSONType[UnifiedContext] `gorm:"column:unified_context" json:"unified_context"`
	Metadata                datatypes.JSON                     `json:"metadata,omitempty"`
	CreatedAt               time.Time                          `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt               time.Time                          `gorm:"not null;default:now()" json:"updated_at"`
}

func (Lead) TableName() string {
	return "all_leads"
}

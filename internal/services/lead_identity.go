package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/proxe-ai/leadbridge/internal/clients/redis"
	"github.com/proxe-ai/leadbridge/internal/normalization"
	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/repos"
	"github.com/proxe-ai/leadbridge/internal/types"
)

// ChannelEvent is one inbound signal from any channel: a web chat turn, a
// WhatsApp webhook delivery, a voice webhook delivery, or a backfilled
// session.
type ChannelEvent struct {
	Brand        string
	Channel      types.Channel
	CustomerName *string
	Email        *string
	Phone        *string
	Context      types.ChannelContextUpdate
	// OccurredAt defaults to time.Now when zero. Webhook redeliveries advance
	// timestamps; last write wins by design.
	OccurredAt time.Time
}

type LeadResult struct {
	LeadID  uuid.UUID `json:"lead_id"`
	Created bool      `json:"created"`
}

type LeadService interface {
	// UpsertFromChannelEvent resolves the event to exactly one canonical lead:
	// normalize -> match (phone before email) -> create or merge-update. A lost
	// insert race (unique violation) is re-matched and turned into an update,
	// never surfaced to the caller.
	UpsertFromChannelEvent(ctx context.Context, event ChannelEvent) (LeadResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Lead, error)
	ListByBrand(ctx context.Context, brand string, limit int) ([]*types.Lead, error)
	CountByBrand(ctx context.Context, brand string) (int64, error)
}

type leadService struct {
	db       *gorm.DB
	log      *logger.Logger
	leadRepo repos.LeadRepo
	bus      redisclient.LeadBus
	now      func() time.Time
}

func NewLeadService(db *gorm.DB, log *logger.Logger, leadRepo repos.LeadRepo, bus redisclient.LeadBus) LeadService {
	serviceLog := log.With("service", "LeadService")
	return &leadService{
		db:       db,
		log:      serviceLog,
		leadRepo: leadRepo,
		bus:      bus,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (ls *leadService) UpsertFromChannelEvent(ctx context.Context, event ChannelEvent) (LeadResult, error) {
	if event.Brand == "" {
		return LeadResult{}, types.ValidationError("brand is required")
	}
	if !event.Channel.Valid() {
		return LeadResult{}, types.ValidationError(fmt.Sprintf("unknown channel %q", event.Channel))
	}

	normalizedPhone := normalization.PhonePtr(event.Phone)
	email := normalization.EmailPtr(event.Email)
	if normalizedPhone == nil && email == nil {
		return LeadResult{}, types.ValidationError("channel event has no phone or email")
	}

	now := event.OccurredAt
	if now.IsZero() {
		now = ls.now()
	}

	existing, err := ls.findExisting(ctx, event.Brand, normalizedPhone, email)
	if err != nil {
		return LeadResult{}, err
	}

	if existing == nil {
		created, createErr := ls.createLead(ctx, event, normalizedPhone, email, now)
		if createErr == nil {
			ls.publish(ctx, types.LeadEventCreated, created.ID, event, now)
			return LeadResult{LeadID: created.ID, Created: true}, nil
		}
		if !errors.Is(createErr, types.ErrConflict) {
			return LeadResult{}, createErr
		}
		// Another request inserted the same identity between our match and our
		// insert. Re-match and fall through to the update path.
		ls.log.Debug("Lead insert lost uniqueness race, re-matching",
			"brand", event.Brand, "channel", event.Channel)
		existing, err = ls.findExisting(ctx, event.Brand, normalizedPhone, email)
		if err != nil {
			return LeadResult{}, err
		}
		if existing == nil {
			return LeadResult{}, types.MapStorageError("re-match after conflict", createErr)
		}
	}

	if err := ls.updateLead(ctx, existing, event, normalizedPhone, email, now); err != nil {
		return LeadResult{}, err
	}
	ls.publish(ctx, types.LeadEventUpdated, existing.ID, event, now)
	return LeadResult{LeadID: existing.ID, Created: false}, nil
}

// findExisting implements the match order: normalized phone is the stronger
// key and wins over an email match.
func (ls *leadService) findExisting(ctx context.Context, brand string, normalizedPhone, email *string) (*types.Lead, error) {
	if normalizedPhone != nil {
		lead, err := ls.leadRepo.GetByNormalizedPhone(ctx, nil, brand, *normalizedPhone)
		if err != nil {
			return nil, err
		}
		if lead != nil {
			return lead, nil
		}
	}
	if email != nil {
		lead, err := ls.leadRepo.GetByEmail(ctx, nil, brand, *email)
		if err != nil {
			return nil, err
		}
		if lead != nil {
			return lead, nil
		}
	}
	return nil, nil
}

func (ls *leadService) createLead(ctx context.Context, event ChannelEvent, normalizedPhone, email *string, now time.Time) (*types.Lead, error) {
	unified := types.UnifiedContext{}.MergeChannel(event.Channel, event.Context, now)
	lead := &types.Lead{
		ID:                      uuid.New(),
		Brand:                   event.Brand,
		CustomerName:            event.CustomerName,
		Email:                   email,
		Phone:                   event.Phone,
		CustomerPhoneNormalized: normalizedPhone,
		FirstTouchpoint:         event.Channel,
		LastTouchpoint:          event.Channel,
		LastInteractionAt:       now,
		BookingDate:             event.Context.BookingDate,
		BookingTime:             event.Context.BookingTime,
		UnifiedContext:          datatypes.NewJSONType(unified),
		Metadata:                datatypes.JSON([]byte("{}")),
	}
	return ls.leadRepo.Create(ctx, nil, lead)
}

// updateLead overwrites scalar contact fields only with supplied values and
// applies the field-level context merge. first_touchpoint is never touched.
func (ls *leadService) updateLead(ctx context.Context, lead *types.Lead, event ChannelEvent, normalizedPhone, email *string, now time.Time) error {
	merged := lead.UnifiedContext.Data().MergeChannel(event.Channel, event.Context, now)

	fields := map[string]interface{}{
		"last_touchpoint":     event.Channel,
		"last_interaction_at": now,
		"unified_context":     datatypes.NewJSONType(merged),
	}
	if event.CustomerName != nil {
		fields["customer_name"] = *event.CustomerName
	}
	if email != nil {
		fields["email"] = *email
	}
	if event.Phone != nil {
		fields["phone"] = *event.Phone
	}
	if normalizedPhone != nil {
		fields["customer_phone_normalized"] = *normalizedPhone
	}
	if event.Context.BookingDate != nil {
		fields["booking_date"] = *event.Context.BookingDate
	}
	if event.Context.BookingTime != nil {
		fields["booking_time"] = *event.Context.BookingTime
	}
	return ls.leadRepo.UpdateFields(ctx, nil, lead.ID, fields)
}

// publish is best-effort: a realtime feed miss must not fail the upsert.
func (ls *leadService) publish(ctx context.Context, eventType string, leadID uuid.UUID, event ChannelEvent, now time.Time) {
	if ls.bus == nil {
		return
	}
	err := ls.bus.Publish(ctx, types.LeadEvent{
		Type:    eventType,
		LeadID:  leadID,
		Brand:   event.Brand,
		Channel: event.Channel,
		At:      now,
	})
	if err != nil {
		ls.log.Warn("Failed to publish lead event", "type", eventType, "lead_id", leadID, "error", err)
	}
}

func (ls *leadService) GetByID(ctx context.Context, id uuid.UUID) (*types.Lead, error) {
	return ls.leadRepo.GetByID(ctx, nil, id)
}

func (ls *leadService) ListByBrand(ctx context.Context, brand string, limit int) ([]*types.Lead, error) {
	return ls.leadRepo.ListByBrand(ctx, nil, brand, limit)
}

func (ls *leadService) CountByBrand(ctx context.Context, brand string) (int64, error) {
	return ls.leadRepo.CountByBrand(ctx, nil, brand)
}

package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func sPtr(s string) *string { return &s }
func iPtr(i int) *int       { return &i }

// fakeLeadRepo is an in-memory LeadRepo that enforces the same uniqueness the
// partial indexes do, so the coordinator's conflict path can be exercised
// without Postgres.
type fakeLeadRepo struct {
	mu    sync.Mutex
	leads []*types.Lead

	// forceConflicts makes the next N Create calls fail with ErrConflict even
	// when no duplicate exists, simulating a lost insert race.
	forceConflicts int
	// raceLead, when set, is appended on a forced conflict, mimicking the
	// concurrent writer whose insert won.
	raceLead *types.Lead

	createCalls int
}

func conflictErr() error {
	return types.MapStorageError("create lead", gorm.ErrDuplicatedKey)
}

func (f *fakeLeadRepo) Create(ctx context.Context, tx *gorm.DB, lead *types.Lead) (*types.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	if f.forceConflicts > 0 {
		f.forceConflicts--
		if f.raceLead != nil {
			f.leads = append(f.leads, f.raceLead)
			f.raceLead = nil
		}
		return nil, conflictErr()
	}

	for _, existing := range f.leads {
		if existing.Brand != lead.Brand {
			continue
		}
		if lead.CustomerPhoneNormalized != nil && existing.CustomerPhoneNormalized != nil &&
			*lead.CustomerPhoneNormalized == *existing.CustomerPhoneNormalized {
			return nil, conflictErr()
		}
		if lead.Email != nil && existing.Email != nil && *lead.Email == *existing.Email {
			return nil, conflictErr()
		}
	}

	cp := *lead
	f.leads = append(f.leads, &cp)
	return &cp, nil
}

func (f *fakeLeadRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leads {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLeadRepo) GetByNormalizedPhone(ctx context.Context, tx *gorm.DB, brand, normalizedPhone string) (*types.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leads {
		if l.Brand == brand && l.CustomerPhoneNormalized != nil && *l.CustomerPhoneNormalized == normalizedPhone {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLeadRepo) GetByEmail(ctx context.Context, tx *gorm.DB, brand, email string) (*types.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leads {
		if l.Brand == brand && l.Email != nil && *l.Email == email {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLeadRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leads {
		if l.ID != id {
			continue
		}
		for k, v := range fields {
			switch k {
			case "last_touchpoint":
				l.LastTouchpoint = v.(types.Channel)
			case "last_interaction_at":
				l.LastInteractionAt = v.(time.Time)
			case "unified_context":
				l.UnifiedContext = v.(datatypes.JSONType[types.UnifiedContext])
			case "customer_name":
				l.CustomerName = sPtr(v.(string))
			case "email":
				l.Email = sPtr(v.(string))
			case "phone":
				l.Phone = sPtr(v.(string))
			case "customer_phone_normalized":
				l.CustomerPhoneNormalized = sPtr(v.(string))
			case "booking_date":
				l.BookingDate = sPtr(v.(string))
			case "booking_time":
				l.BookingTime = sPtr(v.(string))
			}
		}
		return nil
	}
	return fmt.Errorf("lead %s not found", id)
}

func (f *fakeLeadRepo) ListByBrand(ctx context.Context, tx *gorm.DB, brand string, limit int) ([]*types.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Lead
	for _, l := range f.leads {
		if l.Brand == brand {
			cp := *l
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLeadRepo) CountByBrand(ctx context.Context, tx *gorm.DB, brand string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, l := range f.leads {
		if brand == "" || l.Brand == brand {
			n++
		}
	}
	return n, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []*types.ChannelSession
}

func (f *fakeSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.ChannelSession) (*types.ChannelSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Brand == session.Brand && s.ExternalSessionID == session.ExternalSessionID {
			return nil, types.MapStorageError("create channel session", gorm.ErrDuplicatedKey)
		}
	}
	cp := *session
	f.sessions = append(f.sessions, &cp)
	return &cp, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChannelSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) GetByExternalID(ctx context.Context, tx *gorm.DB, brand, externalSessionID string) (*types.ChannelSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.Brand == brand && s.ExternalSessionID == externalSessionID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) GetUnlinkedWithContact(ctx context.Context, tx *gorm.DB, brand string, limit int) ([]*types.ChannelSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.ChannelSession
	for _, s := range f.sessions {
		if s.Brand != brand || s.LeadID != nil {
			continue
		}
		if s.CustomerPhone == nil && s.CustomerEmail == nil {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessionRepo) CountUnlinkedWithContact(ctx context.Context, tx *gorm.DB, brand string) (int64, error) {
	rows, err := f.GetUnlinkedWithContact(ctx, tx, brand, 0)
	return int64(len(rows)), err
}

func (f *fakeSessionRepo) SetLeadID(ctx context.Context, tx *gorm.DB, id uuid.UUID, leadID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID == id {
			lid := leadID
			s.LeadID = &lid
			return nil
		}
	}
	return fmt.Errorf("session %s not found", id)
}

func (f *fakeSessionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ID != id {
			continue
		}
		for k, v := range fields {
			switch k {
			case "message_count":
				s.MessageCount = v.(int)
			case "customer_name":
				s.CustomerName = sPtr(v.(string))
			case "customer_email":
				s.CustomerEmail = sPtr(v.(string))
			case "customer_phone":
				s.CustomerPhone = sPtr(v.(string))
			case "updated_at":
				s.UpdatedAt = v.(time.Time)
			}
		}
		return nil
	}
	return fmt.Errorf("session %s not found", id)
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*types.Message
}

func (f *fakeMessageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range messages {
		cp := *m
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		f.messages = append(f.messages, &cp)
	}
	return messages, nil
}

func (f *fakeMessageRepo) GetByLeadID(ctx context.Context, tx *gorm.DB, leadID uuid.UUID, limit int) ([]*types.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Message
	for _, m := range f.messages {
		if m.LeadID != nil && *m.LeadID == leadID {
			cp := *m
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeMessageRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, limit int) ([]*types.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Message
	for _, m := range f.messages {
		if m.SessionID != nil && *m.SessionID == sessionID {
			cp := *m
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeLeadBus struct {
	mu     sync.Mutex
	events []types.LeadEvent
}

func (f *fakeLeadBus) Publish(ctx context.Context, event types.LeadEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeLeadBus) StartForwarder(ctx context.Context, onEvent func(e types.LeadEvent)) error {
	return nil
}

func (f *fakeLeadBus) Close() error { return nil }

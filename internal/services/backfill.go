package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/repos"
	"github.com/proxe-ai/leadbridge/internal/types"
)

const defaultBackfillLimit = 100

// BackfillResult aggregates one reconciliation pass. Partial failure is
// normal: errors counts sessions that could not be processed, the rest of the
// batch still runs.
type BackfillResult struct {
	Processed int `json:"processed"`
	Created   int `json:"leads_created"`
	Updated   int `json:"leads_updated"`
	Linked    int `json:"sessions_linked"`
	Errors    int `json:"errors"`
}

// BackfillStatus reports how much reconciliation work remains.
type BackfillStatus struct {
	UnlinkedSessions int64 `json:"unlinked_sessions"`
	TotalLeads       int64 `json:"total_leads"`
	NeedsBackfill    bool  `json:"needs_backfill"`
}

type BackfillService interface {
	// ReconcileUnlinkedSessions retroactively links channel sessions that have
	// contact info but no lead_id. Each session is its own unit of work; a
	// second pass over an unchanged session set does nothing, because linked
	// sessions are excluded by the selection query.
	ReconcileUnlinkedSessions(ctx context.Context, brand string, limit int) (BackfillResult, error)
	Status(ctx context.Context, brand string) (BackfillStatus, error)
}

type backfillService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.ChannelSessionRepo
	leadRepo    repos.LeadRepo
	leadService LeadService
}

func NewBackfillService(db *gorm.DB, log *logger.Logger, sessionRepo repos.ChannelSessionRepo, leadRepo repos.LeadRepo, leadService LeadService) BackfillService {
	serviceLog := log.With("service", "BackfillService")
	return &backfillService{
		db:          db,
		log:         serviceLog,
		sessionRepo: sessionRepo,
		leadRepo:    leadRepo,
		leadService: leadService,
	}
}

func (bs *backfillService) ReconcileUnlinkedSessions(ctx context.Context, brand string, limit int) (BackfillResult, error) {
	if brand == "" {
		return BackfillResult{}, types.ValidationError("brand is required")
	}
	if limit <= 0 {
		limit = defaultBackfillLimit
	}

	sessions, err := bs.sessionRepo.GetUnlinkedWithContact(ctx, nil, brand, limit)
	if err != nil {
		return BackfillResult{}, err
	}

	var result BackfillResult
	for _, session := range sessions {
		result.Processed++
		if err := bs.reconcileOne(ctx, brand, session, &result); err != nil {
			result.Errors++
			bs.log.Warn("Backfill failed for session",
				"session_id", session.ID,
				"external_session_id", session.ExternalSessionID,
				"error", err)
		}
	}

	bs.log.Info("Backfill complete",
		"brand", brand,
		"processed", result.Processed,
		"created", result.Created,
		"updated", result.Updated,
		"linked", result.Linked,
		"errors", result.Errors)
	return result, nil
}

func (bs *backfillService) reconcileOne(ctx context.Context, brand string, session *types.ChannelSession, result *BackfillResult) error {
	sessionBrand := session.Brand
	if sessionBrand == "" {
		sessionBrand = brand
	}
	channel := session.Channel
	if !channel.Valid() {
		channel = types.ChannelWeb
	}

	occurredAt := session.UpdatedAt
	if occurredAt.IsZero() {
		occurredAt = session.CreatedAt
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	update := types.ChannelContextUpdate{}
	if session.ConversationSummary != "" {
		update.ConversationSummary = &session.ConversationSummary
	}
	if session.BookingStatus != "" {
		update.BookingStatus = &session.BookingStatus
	}
	update.BookingDate = session.BookingDate
	update.BookingTime = session.BookingTime
	if session.MessageCount > 0 {
		update.MessageCount = &session.MessageCount
	}

	upserted, err := bs.leadService.UpsertFromChannelEvent(ctx, ChannelEvent{
		Brand:        sessionBrand,
		Channel:      channel,
		CustomerName: session.CustomerName,
		Email:        session.CustomerEmail,
		Phone:        session.CustomerPhone,
		Context:      update,
		OccurredAt:   occurredAt,
	})
	if err != nil {
		// includes validation failures: a session can carry a non-null phone
		// column that still normalizes to nothing
		return err
	}

	if upserted.Created {
		result.Created++
	} else {
		result.Updated++
	}

	if err := bs.sessionRepo.SetLeadID(ctx, nil, session.ID, upserted.LeadID); err != nil {
		return err
	}
	result.Linked++
	return nil
}

func (bs *backfillService) Status(ctx context.Context, brand string) (BackfillStatus, error) {
	unlinked, err := bs.sessionRepo.CountUnlinkedWithContact(ctx, nil, brand)
	if err != nil {
		return BackfillStatus{}, err
	}
	totalLeads, err := bs.leadRepo.CountByBrand(ctx, nil, brand)
	if err != nil {
		return BackfillStatus{}, err
	}
	return BackfillStatus{
		UnlinkedSessions: unlinked,
		TotalLeads:       totalLeads,
		NeedsBackfill:    unlinked > 0,
	}, nil
}

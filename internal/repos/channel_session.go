package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/types"
)

type ChannelSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.ChannelSession) (*types.ChannelSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChannelSession, error)
	GetByExternalID(ctx context.Context, tx *gorm.DB, brand, externalSessionID string) (*types.ChannelSession, error)
	GetUnlinkedWithContact(ctx context.Context, tx *gorm.DB, brand string, limit int) ([]*types.ChannelSession, error)
	CountUnlinkedWithContact(ctx context.Context, tx *gorm.DB, brand string) (int64, error)
	SetLeadID(ctx context.Context, tx *gorm.DB, id uuid.UUID, leadID uuid.UUID) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
}

type channelSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChannelSessionRepo(db *gorm.DB, baseLog *logger.Logger) ChannelSessionRepo {
	repoLog := baseLog.With("repo", "ChannelSessionRepo")
	return &channelSessionRepo{db: db, log: repoLog}
}

func (sr *channelSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.ChannelSession) (*types.ChannelSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, types.MapStorageError("create channel session", err)
	}
	return session, nil
}

func (sr *channelSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ChannelSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var session types.ChannelSession
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, types.MapStorageError("get channel session", err)
	}
	return &session, nil
}

func (sr *channelSessionRepo) GetByExternalID(ctx context.Context, tx *gorm.DB, brand, externalSessionID string) (*types.ChannelSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var session types.ChannelSession
	err := transaction.WithContext(ctx).
		Where("brand = ? AND external_session_id = ?", brand, externalSessionID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, types.MapStorageError("get channel session by external id", err)
	}
	return &session, nil
}

// GetUnlinkedWithContact selects sessions the backfill reconciler can act on:
// no lead_id yet, and at least one of phone/email present. Already-linked
// sessions never come back, which is what makes a re-run a no-op.
func (sr *channelSessionRepo) GetUnlinkedWithContact(ctx context.Context, tx *gorm.DB, brand string, limit int) ([]*types.ChannelSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.ChannelSession
	q := transaction.WithContext(ctx).
		Where("brand = ?", brand).
		Where("lead_id IS NULL").
		Where("customer_phone IS NOT NULL OR customer_email IS NOT NULL").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, types.MapStorageError("list unlinked sessions", err)
	}
	return results, nil
}

func (sr *channelSessionRepo) CountUnlinkedWithContact(ctx context.Context, tx *gorm.DB, brand string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var count int64
	q := transaction.WithContext(ctx).
		Model(&types.ChannelSession{}).
		Where("lead_id IS NULL").
		Where("customer_phone IS NOT NULL OR customer_email IS NOT NULL")
	if brand != "" {
		q = q.Where("brand = ?", brand)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, types.MapStorageError("count unlinked sessions", err)
	}
	return count, nil
}

func (sr *channelSessionRepo) SetLeadID(ctx context.Context, tx *gorm.DB, id uuid.UUID, leadID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).
		Model(&types.ChannelSession{}).
		Where("id = ?", id).
		Update("lead_id", leadID).Error; err != nil {
		return types.MapStorageError("link session to lead", err)
	}
	return nil
}

func (sr *channelSessionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(fields) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.ChannelSession{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return types.MapStorageError("update channel session", err)
	}
	return nil
}

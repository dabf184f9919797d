package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/proxe-ai/leadbridge/internal/pkg/logger"
	"github.com/proxe-ai/leadbridge/internal/types"
)

type LeadRepo interface {
	Create(ctx context.Context, tx *gorm.DB, lead *types.Lead) (*types.Lead, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lead, error)
	GetByNormalizedPhone(ctx context.Context, tx *gorm.DB, brand, normalizedPhone string) (*types.Lead, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, brand, email string) (*types.Lead, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	ListByBrand(ctx context.Context, tx *gorm.DB, brand string, limit int) ([]*types.Lead, error)
	CountByBrand(ctx context.Context, tx *gorm.DB, brand string) (int64, error)
}

type leadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLeadRepo(db *gorm.DB, baseLog *logger.Logger) LeadRepo {
	repoLog := baseLog.With("repo", "LeadRepo")
	return &leadRepo{db: db, log: repoLog}
}

func (lr *leadRepo) Create(ctx context.Context, tx *gorm.DB, lead *types.Lead) (*types.Lead, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	if err := transaction.WithContext(ctx).Create(lead).Error; err != nil {
		return nil, types.MapStorageError("create lead", err)
	}
	return lead, nil
}

func (lr *leadRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lead, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var lead types.Lead
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, types.MapStorageError("get lead by id", err)
	}
	return &lead, nil
}

func (lr *leadRepo) GetByNormalizedPhone(ctx context.Context, tx *gorm.DB, brand, normalizedPhone string) (*types.Lead, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var lead types.Lead
	err := transaction.WithContext(ctx).
		Where("brand = ? AND customer_phone_normalized = ?", brand, normalizedPhone).
		First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, types.MapStorageError("get lead by phone", err)
	}
	return &lead, nil
}

func (lr *leadRepo) GetByEmail(ctx context.Context, tx *gorm.DB, brand, email string) (*types.Lead, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var lead types.Lead
	err := transaction.WithContext(ctx).
		Where("brand = ? AND email = ?", brand, email).
		First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, types.MapStorageError("get lead by email", err)
	}
	return &lead, nil
}

func (lr *leadRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	if len(fields) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Lead{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return types.MapStorageError("update lead", err)
	}
	return nil
}

func (lr *leadRepo) ListByBrand(ctx context.Context, tx *gorm.DB, brand string, limit int) ([]*types.Lead, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var results []*types.Lead
	q := transaction.WithContext(ctx).
		Where("brand = ?", brand).
		Order("last_interaction_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, types.MapStorageError("list leads", err)
	}
	return results, nil
}

func (lr *leadRepo) CountByBrand(ctx context.Context, tx *gorm.DB, brand string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = lr.db
	}
	var count int64
	q := transaction.WithContext(ctx).Model(&types.Lead{})
	if brand != "" {
		q = q.Where("brand = ?", brand)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, types.MapStorageError("count leads", err)
	}
	return count, nil
}

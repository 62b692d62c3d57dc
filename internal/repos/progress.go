package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/types"
)

type ProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Progress) error
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tutorialID string) (*types.Progress, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	ListCompleted(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Progress, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	repoLog := baseLog.With("repo", "ProgressRepo")
	return &progressRepo{db: db, log: repoLog}
}

func (r *progressRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Progress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *progressRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tutorialID string) (*types.Progress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Progress
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND tutorial_id = ?", userID, tutorialID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *progressRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Progress{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *progressRepo) ListCompleted(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Progress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Progress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND completed = ?", userID, true).
		Order("completed_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *progressRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.Progress{}).Error
}

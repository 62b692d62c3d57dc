package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/types"
)

type SavedPromptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.SavedPrompt) error
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, promptID string) (*types.SavedPrompt, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SavedPrompt, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type savedPromptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSavedPromptRepo(db *gorm.DB, baseLog *logger.Logger) SavedPromptRepo {
	repoLog := baseLog.With("repo", "SavedPromptRepo")
	return &savedPromptRepo{db: db, log: repoLog}
}

func (r *savedPromptRepo) Create(ctx context.Context, tx *gorm.DB, row *types.SavedPrompt) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *savedPromptRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, promptID string) (*types.SavedPrompt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.SavedPrompt
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND prompt_id = ?", userID, promptID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *savedPromptRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.SavedPrompt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SavedPrompt
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *savedPromptRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.SavedPrompt{}).Error
}

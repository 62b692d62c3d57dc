package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/types"
)

type BadgeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Badge) error
	Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, badgeID string) (bool, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Badge, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type badgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBadgeRepo(db *gorm.DB, baseLog *logger.Logger) BadgeRepo {
	repoLog := baseLog.With("repo", "BadgeRepo")
	return &badgeRepo{db: db, log: repoLog}
}

func (r *badgeRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Badge) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *badgeRepo) Exists(ctx context.Context, tx *gorm.DB, userID uuid.UUID, badgeID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Badge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *badgeRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Badge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Badge
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *badgeRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.Badge{}).Error
}

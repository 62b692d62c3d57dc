package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/types"
)

type ActivityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Activity) error
	RecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Activity, error)
	TrimToNewest(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keep int) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	repoLog := baseLog.With("repo", "ActivityRepo")
	return &activityRepo{db: db, log: repoLog}
}

func (r *activityRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Activity) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *activityRepo) RecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Activity
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// TrimToNewest enforces the activity retention policy: only the `keep`
// most-recent rows per user survive.
func (r *activityRepo) TrimToNewest(ctx context.Context, tx *gorm.DB, userID uuid.UUID, keep int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if keep <= 0 {
		return nil
	}

	sub := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(keep)
	return transaction.WithContext(ctx).
		Where("user_id = ? AND id NOT IN (?)", userID, sub).
		Delete(&types.Activity{}).Error
}

func (r *activityRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.Activity{}).Error
}

package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/types"
)

type FavoriteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Favorite) error
	Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemType, itemID string) (*types.Favorite, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemType string) ([]*types.Favorite, error)
	Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemType, itemID string) (int64, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type favoriteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) FavoriteRepo {
	repoLog := baseLog.With("repo", "FavoriteRepo")
	return &favoriteRepo{db: db, log: repoLog}
}

func (r *favoriteRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Favorite) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *favoriteRepo) Get(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemType, itemID string) (*types.Favorite, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Favorite
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *favoriteRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemType string) ([]*types.Favorite, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Favorite
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if itemType != "" {
		q = q.Where("item_type = ?", itemType)
	}
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *favoriteRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, itemType, itemID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		Delete(&types.Favorite{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *favoriteRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.Favorite{}).Error
}

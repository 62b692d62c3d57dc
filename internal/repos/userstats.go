package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/types"
)

type UserStatsRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.UserStats) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error)
	GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.UserStats) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type userStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserStatsRepo(db *gorm.DB, baseLog *logger.Logger) UserStatsRepo {
	repoLog := baseLog.With("repo", "UserStatsRepo")
	return &userStatsRepo{db: db, log: repoLog}
}

func (r *userStatsRepo) Create(ctx context.Context, tx *gorm.DB, row *types.UserStats) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *userStatsRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.UserStats
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetByUserIDForUpdate reads the row under a row lock so read-modify-write
// callers cannot lose an increment to a concurrent transaction. Sqlite has a
// single writer and no FOR UPDATE syntax, so the clause is postgres-only.
func (r *userStatsRepo) GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if transaction.Dialector.Name() == "postgres" {
		transaction = transaction.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var result types.UserStats
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userStatsRepo) Save(ctx context.Context, tx *gorm.DB, row *types.UserStats) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *userStatsRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.UserStats{}).Error
}

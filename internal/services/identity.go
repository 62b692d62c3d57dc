package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/repos"
	"github.com/ainexus/nexus-backend/internal/types"
)

const defaultUsername = "default_user"
const defaultEmail = "user@nexus.local"

// IdentityService maps sessions to the stable default identity, creating it
// (plus its stats row) on first touch. A durable-layer failure yields
// (uuid.Nil, false) instead of an error so callers degrade to the session
// store rather than crash.
type IdentityService interface {
	Resolve(ctx context.Context) (uuid.UUID, bool)
	// Invalidate drops the cached handle when it matches userID, so the
	// next Resolve re-runs the get-or-create instead of handing out a
	// deleted user's id.
	Invalidate(userID uuid.UUID)
}

type identityService struct {
	db    *gorm.DB
	log   *logger.Logger
	users repos.UserRepo
	stats repos.UserStatsRepo

	mu     sync.Mutex
	cached uuid.UUID
}

func NewIdentityService(db *gorm.DB, baseLog *logger.Logger, users repos.UserRepo, stats repos.UserStatsRepo) IdentityService {
	return &identityService{
		db:    db,
		log:   baseLog.With("service", "IdentityService"),
		users: users,
		stats: stats,
	}
}

func (s *identityService) Resolve(ctx context.Context) (uuid.UUID, bool) {
	if s.db == nil {
		return uuid.Nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != uuid.Nil {
		return s.cached, true
	}

	var userID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.users.GetByUsername(ctx, tx, defaultUsername)
		if err != nil {
			return err
		}
		if existing != nil {
			userID = existing.ID
			return nil
		}
		now := time.Now().UTC()
		user := &types.User{
			ID:        uuid.New(),
			Username:  defaultUsername,
			Email:     defaultEmail,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.users.Create(ctx, tx, user); err != nil {
			if isDuplicate(err) {
				// Raced with another process; read the winner.
				winner, gerr := s.users.GetByUsername(ctx, tx, defaultUsername)
				if gerr != nil {
					return gerr
				}
				userID = winner.ID
				return nil
			}
			return err
		}
		userID = user.ID
		return s.stats.Create(ctx, tx, &types.UserStats{
			ID:        uuid.New(),
			UserID:    user.ID,
			Level:     1,
			UpdatedAt: now,
		})
	})
	if err != nil {
		s.log.Warn("identity resolution failed, falling back to session store", "error", err)
		return uuid.Nil, false
	}

	s.cached = userID
	s.log.Info("User session initialized", "user_id", userID)
	return userID, true
}

func (s *identityService) Invalidate(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == userID {
		s.cached = uuid.Nil
	}
}

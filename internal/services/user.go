package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/repos"
	"github.com/ainexus/nexus-backend/internal/types"
)

// ProfileUpdate carries the mutable profile fields. Nil pointers are left
// untouched.
type ProfileUpdate struct {
	Role          *string        `json:"role,omitempty"`
	Industry      *string        `json:"industry,omitempty"`
	SkillLevel    *string        `json:"skill_level,omitempty"`
	TechStack     []string       `json:"tech_stack,omitempty"`
	LearningStyle *string        `json:"learning_style,omitempty"`
	Preferences   map[string]any `json:"preferences,omitempty"`
}

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*types.User, error)
	// Delete removes the user and all owned personalization rows in one
	// transaction.
	Delete(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	db        *gorm.DB
	log       *logger.Logger
	identity  IdentityService
	users     repos.UserRepo
	favorites repos.FavoriteRepo
	progress  repos.ProgressRepo
	activity  repos.ActivityRepo
	prompts   repos.SavedPromptRepo
	badges    repos.BadgeRepo
	stats     repos.UserStatsRepo
}

func NewUserService(
	db *gorm.DB,
	baseLog *logger.Logger,
	identity IdentityService,
	users repos.UserRepo,
	favorites repos.FavoriteRepo,
	progress repos.ProgressRepo,
	activity repos.ActivityRepo,
	prompts repos.SavedPromptRepo,
	badges repos.BadgeRepo,
	stats repos.UserStatsRepo,
) UserService {
	return &userService{
		db:        db,
		log:       baseLog.With("service", "UserService"),
		identity:  identity,
		users:     users,
		favorites: favorites,
		progress:  progress,
		activity:  activity,
		prompts:   prompts,
		badges:    badges,
		stats:     stats,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		s.log.Error("get profile failed", "user_id", userID, "error", err)
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*types.User, error) {
	updates := map[string]any{}
	if update.Role != nil {
		updates["role"] = *update.Role
	}
	if update.Industry != nil {
		updates["industry"] = *update.Industry
	}
	if update.SkillLevel != nil {
		updates["skill_level"] = *update.SkillLevel
	}
	if update.LearningStyle != nil {
		updates["learning_style"] = *update.LearningStyle
	}
	if update.TechStack != nil {
		raw, err := json.Marshal(update.TechStack)
		if err != nil {
			return nil, err
		}
		updates["tech_stack"] = raw
	}
	if update.Preferences != nil {
		raw, err := json.Marshal(update.Preferences)
		if err != nil {
			return nil, err
		}
		updates["preferences"] = raw
	}

	var out *types.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.users.GetByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("user %s not found", userID)
		}
		if len(updates) > 0 {
			updates["updated_at"] = time.Now().UTC()
			if err := s.users.UpdateFields(ctx, tx, userID, updates); err != nil {
				return err
			}
		}
		out, err = s.users.GetByID(ctx, tx, userID)
		return err
	})
	if err != nil {
		s.log.Error("update profile failed", "user_id", userID, "error", err)
		return nil, err
	}
	return out, nil
}

func (s *userService) Delete(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.favorites.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.progress.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.activity.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.prompts.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.badges.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.stats.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.users.Delete(ctx, tx, userID)
	})
	if err != nil {
		s.log.Error("delete user failed", "user_id", userID, "error", err)
		return err
	}
	if s.identity != nil {
		s.identity.Invalidate(userID)
	}
	s.log.Info("user deleted", "user_id", userID)
	return nil
}

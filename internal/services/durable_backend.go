package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/config"
	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/repos"
	"github.com/ainexus/nexus-backend/internal/types"
)

// durableBackend serves personalization calls from the relational store.
// Every mutating call runs inside its own short-lived transaction; nothing is
// held open across the handler boundary.
type durableBackend struct {
	db        *gorm.DB
	log       *logger.Logger
	policy    config.Policy
	favorites repos.FavoriteRepo
	progress  repos.ProgressRepo
	activity  repos.ActivityRepo
	prompts   repos.SavedPromptRepo
	badges    repos.BadgeRepo
}

func newDurableBackend(
	db *gorm.DB,
	baseLog *logger.Logger,
	policy config.Policy,
	favorites repos.FavoriteRepo,
	progress repos.ProgressRepo,
	activity repos.ActivityRepo,
	prompts repos.SavedPromptRepo,
	badges repos.BadgeRepo,
) *durableBackend {
	return &durableBackend{
		db:        db,
		log:       baseLog.With("backend", "durable"),
		policy:    policy,
		favorites: favorites,
		progress:  progress,
		activity:  activity,
		prompts:   prompts,
		badges:    badges,
	}
}

// isDuplicate reports whether err is a uniqueness-constraint violation, which
// the contract resolves to idempotent success.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func (b *durableBackend) AddFavorite(ctx context.Context, scope uuid.UUID, kind, itemID string, payload json.RawMessage) (bool, error) {
	inserted := false
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := b.favorites.Get(ctx, tx, scope, kind, itemID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		row := &types.Favorite{
			ID:        uuid.New(),
			UserID:    scope,
			ItemType:  kind,
			ItemID:    itemID,
			ItemData:  datatypes.JSON(payload),
			CreatedAt: time.Now().UTC(),
		}
		if err := b.favorites.Create(ctx, tx, row); err != nil {
			if isDuplicate(err) {
				return nil
			}
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (b *durableBackend) RemoveFavorite(ctx context.Context, scope uuid.UUID, kind, itemID string) (bool, error) {
	var removed int64
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := b.favorites.Delete(ctx, tx, scope, kind, itemID)
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func (b *durableBackend) IsFavorite(ctx context.Context, scope uuid.UUID, kind, itemID string) (bool, error) {
	row, err := b.favorites.Get(ctx, nil, scope, kind, itemID)
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (b *durableBackend) ListFavorites(ctx context.Context, scope uuid.UUID, kind string) ([]FavoriteItem, error) {
	rows, err := b.favorites.ListByUser(ctx, nil, scope, kind)
	if err != nil {
		return nil, err
	}
	out := make([]FavoriteItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, FavoriteItem{
			Kind:    row.ItemType,
			ItemID:  row.ItemID,
			Payload: json.RawMessage(row.ItemData),
			AddedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (b *durableBackend) CompleteTutorial(ctx context.Context, scope uuid.UUID, tutorialID string) (bool, error) {
	firstCompletion := false
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		existing, err := b.progress.Get(ctx, tx, scope, tutorialID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Completed {
				return nil
			}
			if err := b.progress.UpdateFields(ctx, tx, existing.ID, map[string]any{
				"completed":        true,
				"progress_percent": 100,
				"completed_at":     now,
				"updated_at":       now,
			}); err != nil {
				return err
			}
			firstCompletion = true
			return nil
		}
		row := &types.Progress{
			ID:              uuid.New(),
			UserID:          scope,
			TutorialID:      tutorialID,
			Completed:       true,
			ProgressPercent: 100,
			StartedAt:       now,
			CompletedAt:     &now,
			UpdatedAt:       now,
		}
		if err := b.progress.Create(ctx, tx, row); err != nil {
			if isDuplicate(err) {
				return nil
			}
			return err
		}
		firstCompletion = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return firstCompletion, nil
}

func (b *durableBackend) IsTutorialComplete(ctx context.Context, scope uuid.UUID, tutorialID string) (bool, error) {
	row, err := b.progress.Get(ctx, nil, scope, tutorialID)
	if err != nil {
		return false, err
	}
	return row != nil && row.Completed, nil
}

func (b *durableBackend) ListCompletedTutorials(ctx context.Context, scope uuid.UUID) ([]string, error) {
	rows, err := b.progress.ListCompleted(ctx, nil, scope)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TutorialID)
	}
	return ids, nil
}

func (b *durableBackend) SavePrompt(ctx context.Context, scope uuid.UUID, promptID string, payload json.RawMessage, note string) (bool, error) {
	inserted := false
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := b.prompts.Get(ctx, tx, scope, promptID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		row := &types.SavedPrompt{
			ID:          uuid.New(),
			UserID:      scope,
			PromptID:    promptID,
			PromptData:  datatypes.JSON(payload),
			CustomNotes: note,
			CreatedAt:   time.Now().UTC(),
		}
		if err := b.prompts.Create(ctx, tx, row); err != nil {
			if isDuplicate(err) {
				return nil
			}
			return err
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (b *durableBackend) ListSavedPrompts(ctx context.Context, scope uuid.UUID) ([]SavedItem, error) {
	rows, err := b.prompts.ListByUser(ctx, nil, scope)
	if err != nil {
		return nil, err
	}
	out := make([]SavedItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, SavedItem{
			PromptID: row.PromptID,
			Payload:  json.RawMessage(row.PromptData),
			Note:     row.CustomNotes,
			SavedAt:  row.CreatedAt,
		})
	}
	return out, nil
}

func (b *durableBackend) AppendActivity(ctx context.Context, scope uuid.UUID, kind, itemID string, detail map[string]any) error {
	var detailsJSON datatypes.JSON
	if len(detail) > 0 {
		raw, err := json.Marshal(detail)
		if err != nil {
			return err
		}
		detailsJSON = datatypes.JSON(raw)
	}
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &types.Activity{
			ID:           uuid.New(),
			UserID:       scope,
			ActivityType: kind,
			ItemID:       itemID,
			Details:      detailsJSON,
			CreatedAt:    time.Now().UTC(),
		}
		if err := b.activity.Create(ctx, tx, row); err != nil {
			return err
		}
		return b.activity.TrimToNewest(ctx, tx, scope, b.policy.ActivityRetention)
	})
}

func (b *durableBackend) RecentActivity(ctx context.Context, scope uuid.UUID, limit int) ([]ActivityEntry, error) {
	rows, err := b.activity.RecentByUser(ctx, nil, scope, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityEntry, 0, len(rows))
	for _, row := range rows {
		var detail map[string]any
		if len(row.Details) > 0 {
			if err := json.Unmarshal(row.Details, &detail); err != nil {
				b.log.Warn("undecodable activity detail", "activity_id", row.ID, "error", err)
				detail = nil
			}
		}
		out = append(out, ActivityEntry{
			Kind:      row.ActivityType,
			ItemID:    row.ItemID,
			Detail:    detail,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (b *durableBackend) AwardBadge(ctx context.Context, scope uuid.UUID, badgeID string) (bool, error) {
	granted := false
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := b.badges.Exists(ctx, tx, scope, badgeID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		row := &types.Badge{
			ID:       uuid.New(),
			UserID:   scope,
			BadgeID:  badgeID,
			EarnedAt: time.Now().UTC(),
		}
		if err := b.badges.Create(ctx, tx, row); err != nil {
			if isDuplicate(err) {
				return nil
			}
			return err
		}
		granted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return granted, nil
}

func (b *durableBackend) ListBadges(ctx context.Context, scope uuid.UUID) ([]BadgeGrant, error) {
	rows, err := b.badges.ListByUser(ctx, nil, scope)
	if err != nil {
		return nil, err
	}
	out := make([]BadgeGrant, 0, len(rows))
	for _, row := range rows {
		out = append(out, BadgeGrant{BadgeID: row.BadgeID, EarnedAt: row.EarnedAt})
	}
	return out, nil
}

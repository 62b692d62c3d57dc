package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item kinds accepted by the personalization surface. Anything else is a
// caller bug and fails fast.
const (
	KindTool     = "tool"
	KindPrompt   = "prompt"
	KindTutorial = "tutorial"
)

// Item ids are opaque handles minted by external catalogs, so no charset is
// assumed. Only empty ids and unbounded lengths are rejected.
const maxItemIDLen = 200

func validateKind(kind string) error {
	switch kind {
	case KindTool, KindPrompt, KindTutorial:
		return nil
	}
	return fmt.Errorf("unknown item kind %q", kind)
}

func validateItemID(itemID string) error {
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("empty item id")
	}
	if len(itemID) > maxItemIDLen {
		return fmt.Errorf("item id exceeds %d bytes", maxItemIDLen)
	}
	return nil
}

// FavoriteItem is the backend-agnostic favorite shape. Both the durable and
// the session backend return exactly this, so callers cannot tell which
// backend served a call.
type FavoriteItem struct {
	Kind    string          `json:"kind"`
	ItemID  string          `json:"item_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
	AddedAt time.Time       `json:"added_at"`
}

type SavedItem struct {
	PromptID string          `json:"prompt_id"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Note     string          `json:"note,omitempty"`
	SavedAt  time.Time       `json:"saved_at"`
}

type ActivityEntry struct {
	Kind      string         `json:"kind"`
	ItemID    string         `json:"item_id,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// backend is the single strategy-selection point between the durable record
// store and the ephemeral session store. Scope is the user id for the durable
// backend and the session id for the fallback. Mutating methods report
// whether the call changed state (first insert / first completion), which
// drives the stats side effects.
type backend interface {
	AddFavorite(ctx context.Context, scope uuid.UUID, kind, itemID string, payload json.RawMessage) (bool, error)
	RemoveFavorite(ctx context.Context, scope uuid.UUID, kind, itemID string) (bool, error)
	IsFavorite(ctx context.Context, scope uuid.UUID, kind, itemID string) (bool, error)
	ListFavorites(ctx context.Context, scope uuid.UUID, kind string) ([]FavoriteItem, error)

	CompleteTutorial(ctx context.Context, scope uuid.UUID, tutorialID string) (bool, error)
	IsTutorialComplete(ctx context.Context, scope uuid.UUID, tutorialID string) (bool, error)
	ListCompletedTutorials(ctx context.Context, scope uuid.UUID) ([]string, error)

	SavePrompt(ctx context.Context, scope uuid.UUID, promptID string, payload json.RawMessage, note string) (bool, error)
	ListSavedPrompts(ctx context.Context, scope uuid.UUID) ([]SavedItem, error)

	AppendActivity(ctx context.Context, scope uuid.UUID, kind, itemID string, detail map[string]any) error
	RecentActivity(ctx context.Context, scope uuid.UUID, limit int) ([]ActivityEntry, error)

	AwardBadge(ctx context.Context, scope uuid.UUID, badgeID string) (bool, error)
	ListBadges(ctx context.Context, scope uuid.UUID) ([]BadgeGrant, error)
}

type BadgeGrant struct {
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

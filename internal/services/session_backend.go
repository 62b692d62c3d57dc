package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ainexus/nexus-backend/internal/logger"
)

// SessionBackend is the degraded-mode store: an in-process map scoped by
// session id, used when the durable layer is unavailable or no identity
// exists. Same shapes, same contracts, no persistence beyond the process.
type SessionBackend struct {
	mu        sync.Mutex
	log       *logger.Logger
	retention int
	sessions  map[uuid.UUID]*sessionState
}

type sessionState struct {
	favorites map[string]FavoriteItem // keyed by kind+"/"+itemID
	completed map[string]time.Time    // tutorialID -> completed at
	prompts   map[string]SavedItem
	activity  []ActivityEntry // oldest first, capped at retention
	badges    map[string]time.Time
}

func NewSessionBackend(baseLog *logger.Logger, retention int) *SessionBackend {
	if retention <= 0 {
		retention = 100
	}
	return &SessionBackend{
		log:       baseLog.With("backend", "session"),
		retention: retention,
		sessions:  make(map[uuid.UUID]*sessionState),
	}
}

func (b *SessionBackend) state(scope uuid.UUID) *sessionState {
	st, ok := b.sessions[scope]
	if !ok {
		st = &sessionState{
			favorites: make(map[string]FavoriteItem),
			completed: make(map[string]time.Time),
			prompts:   make(map[string]SavedItem),
			badges:    make(map[string]time.Time),
		}
		b.sessions[scope] = st
	}
	return st
}

func favoriteKey(kind, itemID string) string { return kind + "/" + itemID }

func (b *SessionBackend) AddFavorite(_ context.Context, scope uuid.UUID, kind, itemID string, payload json.RawMessage) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	key := favoriteKey(kind, itemID)
	if _, ok := st.favorites[key]; ok {
		return false, nil
	}
	st.favorites[key] = FavoriteItem{
		Kind:    kind,
		ItemID:  itemID,
		Payload: append(json.RawMessage(nil), payload...),
		AddedAt: time.Now().UTC(),
	}
	return true, nil
}

func (b *SessionBackend) RemoveFavorite(_ context.Context, scope uuid.UUID, kind, itemID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	key := favoriteKey(kind, itemID)
	if _, ok := st.favorites[key]; !ok {
		return false, nil
	}
	delete(st.favorites, key)
	return true, nil
}

func (b *SessionBackend) IsFavorite(_ context.Context, scope uuid.UUID, kind, itemID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.state(scope).favorites[favoriteKey(kind, itemID)]
	return ok, nil
}

func (b *SessionBackend) ListFavorites(_ context.Context, scope uuid.UUID, kind string) ([]FavoriteItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	out := make([]FavoriteItem, 0, len(st.favorites))
	for _, fav := range st.favorites {
		if kind != "" && fav.Kind != kind {
			continue
		}
		out = append(out, fav)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	return out, nil
}

func (b *SessionBackend) CompleteTutorial(_ context.Context, scope uuid.UUID, tutorialID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	if _, ok := st.completed[tutorialID]; ok {
		return false, nil
	}
	st.completed[tutorialID] = time.Now().UTC()
	return true, nil
}

func (b *SessionBackend) IsTutorialComplete(_ context.Context, scope uuid.UUID, tutorialID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.state(scope).completed[tutorialID]
	return ok, nil
}

func (b *SessionBackend) ListCompletedTutorials(_ context.Context, scope uuid.UUID) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	type entry struct {
		id string
		at time.Time
	}
	entries := make([]entry, 0, len(st.completed))
	for id, at := range st.completed {
		entries = append(entries, entry{id: id, at: at})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.After(entries[j].at) })
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.id)
	}
	return ids, nil
}

func (b *SessionBackend) SavePrompt(_ context.Context, scope uuid.UUID, promptID string, payload json.RawMessage, note string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	if _, ok := st.prompts[promptID]; ok {
		return false, nil
	}
	st.prompts[promptID] = SavedItem{
		PromptID: promptID,
		Payload:  append(json.RawMessage(nil), payload...),
		Note:     note,
		SavedAt:  time.Now().UTC(),
	}
	return true, nil
}

func (b *SessionBackend) ListSavedPrompts(_ context.Context, scope uuid.UUID) ([]SavedItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	out := make([]SavedItem, 0, len(st.prompts))
	for _, item := range st.prompts {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

func (b *SessionBackend) AppendActivity(_ context.Context, scope uuid.UUID, kind, itemID string, detail map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	st.activity = append(st.activity, ActivityEntry{
		Kind:      kind,
		ItemID:    itemID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	})
	if len(st.activity) > b.retention {
		st.activity = st.activity[len(st.activity)-b.retention:]
	}
	return nil
}

func (b *SessionBackend) RecentActivity(_ context.Context, scope uuid.UUID, limit int) ([]ActivityEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	n := len(st.activity)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]ActivityEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, st.activity[i])
	}
	return out, nil
}

func (b *SessionBackend) AwardBadge(_ context.Context, scope uuid.UUID, badgeID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	if _, ok := st.badges[badgeID]; ok {
		return false, nil
	}
	st.badges[badgeID] = time.Now().UTC()
	return true, nil
}

func (b *SessionBackend) ListBadges(_ context.Context, scope uuid.UUID) ([]BadgeGrant, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	out := make([]BadgeGrant, 0, len(st.badges))
	for id, at := range st.badges {
		out = append(out, BadgeGrant{BadgeID: id, EarnedAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	return out, nil
}

// Counts returns the raw counters for a session so callers can derive a
// transient stats view in degraded mode.
func (b *SessionBackend) Counts(scope uuid.UUID) (completed, prompts, tools int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state(scope)
	for _, fav := range st.favorites {
		if fav.Kind == KindTool {
			tools++
		}
	}
	return len(st.completed), len(st.prompts), tools
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ainexus/nexus-backend/internal/config"
	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/repos"
	"github.com/ainexus/nexus-backend/internal/sessiondata"
)

// Activity kinds logged by the facade's side effects.
const (
	ActivityFavoriteAdded     = "favorite_added"
	ActivityFavoriteRemoved   = "favorite_removed"
	ActivityTutorialCompleted = "tutorial_completed"
	ActivityPromptSaved       = "prompt_saved"
	ActivityBadgeEarned       = "badge_earned"
)

// StatsView is the read shape for derived counters. In degraded mode it is
// computed transiently from session counters.
type StatsView struct {
	TotalScore         int        `json:"total_score"`
	Level              int        `json:"level"`
	TutorialsCompleted int        `json:"tutorials_completed"`
	PromptsSaved       int        `json:"prompts_saved"`
	ToolsFavorited     int        `json:"tools_favorited"`
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	LastActivityDate   *time.Time `json:"last_activity_date,omitempty"`
}

// PersonalizationService is the façade every caller uses. All operations are
// idempotent under re-invocation with identical arguments; storage failures
// are logged here and never propagate as unhandled faults.
type PersonalizationService interface {
	AddFavorite(ctx context.Context, kind, itemID string, payload json.RawMessage) (bool, error)
	RemoveFavorite(ctx context.Context, kind, itemID string) (bool, error)
	IsFavorite(ctx context.Context, kind, itemID string) (bool, error)
	ListFavorites(ctx context.Context, kind string) ([]FavoriteItem, error)

	CompleteTutorial(ctx context.Context, tutorialID string) (bool, error)
	IsTutorialComplete(ctx context.Context, tutorialID string) (bool, error)
	ListCompletedTutorials(ctx context.Context) ([]string, error)

	SaveItem(ctx context.Context, promptID string, payload json.RawMessage, note string) (bool, error)
	ListSavedItems(ctx context.Context) ([]SavedItem, error)

	LogActivity(ctx context.Context, kind, itemID string, detail map[string]any) (bool, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error)

	GetStats(ctx context.Context) (*StatsView, error)
	AwardBadge(ctx context.Context, badgeID string) (bool, error)
	ListBadges(ctx context.Context) ([]BadgeGrant, error)
}

type personalizationService struct {
	log     *logger.Logger
	policy  config.Policy
	durable backend // nil when the durable layer never initialized
	session *SessionBackend
	stats   StatsService // nil alongside durable
}

// NewPersonalizationService wires the facade. db and stats may be nil, in
// which case every call is served by the session backend.
func NewPersonalizationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	policy config.Policy,
	stats StatsService,
	session *SessionBackend,
	favorites repos.FavoriteRepo,
	progress repos.ProgressRepo,
	activity repos.ActivityRepo,
	prompts repos.SavedPromptRepo,
	badges repos.BadgeRepo,
) PersonalizationService {
	svc := &personalizationService{
		log:     baseLog.With("service", "PersonalizationService"),
		policy:  policy,
		session: session,
		stats:   stats,
	}
	if db != nil {
		svc.durable = newDurableBackend(db, baseLog, policy, favorites, progress, activity, prompts, badges)
	}
	return svc
}

// route picks the backend and scope for one call: the durable store keyed by
// user id when an identity is resolved, otherwise the session store keyed by
// session id. This is the only branch point between the two backends.
func (s *personalizationService) route(ctx context.Context) (backend, uuid.UUID, bool, error) {
	sd := sessiondata.GetSessionData(ctx)
	if sd == nil {
		return nil, uuid.Nil, false, fmt.Errorf("no session data in context")
	}
	if s.durable != nil && sd.UserID != uuid.Nil {
		return s.durable, sd.UserID, true, nil
	}
	if sd.SessionID == uuid.Nil {
		return nil, uuid.Nil, false, fmt.Errorf("no session id in context")
	}
	return s.session, sd.SessionID, false, nil
}

// recordMilestone applies the stats delta and appends the activity row for a
// first-time milestone. Best effort: failures are logged, never returned, so
// the primary write is not undone by a side-effect failure.
func (s *personalizationService) recordMilestone(ctx context.Context, be backend, scope uuid.UUID, durable bool, delta StatsDelta, kind, itemID string, detail map[string]any) {
	if durable {
		if err := s.stats.Apply(ctx, scope, delta); err != nil {
			s.log.Warn("stats increment failed", "op", kind, "user_id", scope, "item_id", itemID, "error", err)
		}
	}
	s.appendActivity(ctx, be, scope, durable, kind, itemID, detail)
}

func (s *personalizationService) appendActivity(ctx context.Context, be backend, scope uuid.UUID, durable bool, kind, itemID string, detail map[string]any) {
	if err := be.AppendActivity(ctx, scope, kind, itemID, detail); err != nil {
		s.log.Warn("activity append failed", "op", kind, "user_id", scope, "item_id", itemID, "error", err)
		return
	}
	if durable {
		if err := s.stats.Touch(ctx, scope, time.Now().UTC()); err != nil {
			s.log.Warn("last-activity update failed", "op", kind, "user_id", scope, "error", err)
		}
	}
}

func (s *personalizationService) AddFavorite(ctx context.Context, kind, itemID string, payload json.RawMessage) (bool, error) {
	if err := validateKind(kind); err != nil {
		return false, err
	}
	if err := validateItemID(itemID); err != nil {
		return false, err
	}
	be, scope, durable, err := s.route(ctx)
	if err != nil {
		return false, err
	}
	inserted, err := be.AddFavorite(ctx, scope, kind, itemID, payload)
	if err != nil {
		s.log.Error("add favorite failed", "kind", kind, "item_id", itemID, "scope", scope, "error", err)
		return false, err
	}
	if inserted {
		delta := StatsDelta{}
		if kind == KindTool {
			delta.ToolsFavorited = 1
		}
		s.recordMilestone(ctx, be, scope, durable, delta, ActivityFavoriteAdded, itemID, map[string]any{"type": kind})
	}
	return true, nil
}

func (s *personalizationService) RemoveFavorite(ctx context.Context, kind, itemID string) (bool, error) {
	if err := validateKind(kind); err != nil {
		return false, err
	}
	if err := validateItemID(itemID); err != nil {
		return false, err
	}
	be, scope, durable, err := s.route(ctx)
	if err != nil {
		return false, err
	}
	removed, err := be.RemoveFavorite(ctx, scope, kind, itemID)
	if err != nil {
		s.log.Error("remove favorite failed", "kind", kind, "item_id", itemID, "scope", scope, "error", err)
		return false, err
	}
	if removed {
		s.appendActivity(ctx, be, scope, durable, ActivityFavoriteRemoved, itemID, map[string]any{"type": kind})
	}
	return removed, nil
}

func (s *personalizationService) IsFavorite(ctx context.Context, kind, itemID string) (bool, error) {
	if err := validateKind(kind); err != nil {
		return false, err
	}
	if err := validateItemID(itemID); err != nil {
		return false, err
	}
	be, scope, _, err := s.route(ctx)
	if err != nil {
		return false, err
	}
	return be.IsFavorite(ctx, scope, kind, itemID)
}

func (s *personalizationService) ListFavorites(ctx context.Context, kind string) ([]FavoriteItem, error) {
	if kind != "" {
		if err := validateKind(kind); err != nil {
			return nil, err
		}
	}
	be, scope, _, err := s.route(ctx)
	if err != nil {
		return nil, err
	}
	return be.ListFavorites(ctx, scope, kind)
}

func (s *personalizationService) CompleteTutorial(ctx context.Context, tutorialID string) (bool, error) {
	if err := validateItemID(tutorialID); err != nil {
		return false, err
	}
	be, scope, durable, err := s.route(ctx)
	if err != nil {
		return false, err
	}
	first, err := be.CompleteTutorial(ctx, scope, tutorialID)
	if err != nil {
		s.log.Error("complete tutorial failed", "tutorial_id", tutorialID, "scope", scope, "error", err)
		return false, err
	}
	if first {
		s.recordMilestone(ctx, be, scope, durable, StatsDelta{TutorialsCompleted: 1}, ActivityTutorialCompleted, tutorialID, nil)
	}
	return true, nil
}

func (s *personalizationService) IsTutorialComplete(ctx context.Context, tutorialID string) (bool, error) {
	if err := validateItemID(tutorialID); err != nil {
		return false, err
	}
	be, scope, _, err := s.route(ctx)
	if err != nil {
		return false, err
	}
	return be.IsTutorialComplete(ctx, scope, tutorialID)
}

func (s *personalizationService) ListCompletedTutorials(ctx context.Context) ([]string, error) {
	be, scope, _, err := s.route(ctx)
	if err != nil {
		return nil, err
	}
	return be.ListCompletedTutorials(ctx, scope)
}

func (s *personalizationService) SaveItem(ctx context.Context, promptID string, payload json.RawMessage, note string) (bool, error) {
	if err := validateItemID(promptID); err != nil {
		return false, err
	}
	be, scope, durable, err := s.route(ctx)
	if err != nil {
		return false, err
	}
	inserted, err := be.SavePrompt(ctx, scope, promptID, payload, note)
	if err != nil {
		s.log.Error("save prompt failed", "prompt_id", promptID, "scope", scope, "error", err)
		return false, err
	}
	if inserted {
		s.recordMilestone(ctx, be, scope, durable, StatsDelta{PromptsSaved: 1}, ActivityPromptSaved, promptID, nil)
	}
	return true, nil
}

func (s *personalizationService) ListSavedItems(ctx context.Context) ([]SavedItem, error) {
	be, scope, _, err := s.route(ctx)
	if err != nil {
		return nil, err
	}
	return be.ListSavedPrompts(ctx, scope)
}

func (s *personalizationService) LogActivity(ctx context.Context, kind, itemID string, detail map[string]any) (bool, error) {
	if kind == "" {
		return false, fmt.Errorf("empty activity kind")
	}
	be, scope, durable, err := s.route(ctx)
	if err != nil {
		return false, err
	}
	if err := be.AppendActivity(ctx, scope, kind, itemID, detail); err != nil {
		s.log.Error("log activity failed", "kind", kind, "item_id", itemID, "scope", scope, "error", err)
		return false, err
	}
	if durable {
		if err := s.stats.Touch(ctx, scope, time.Now().UTC()); err != nil {
			s.log.Warn("last-activity update failed", "kind", kind, "user_id", scope, "error", err)
		}
	}
	return true, nil
}

func (s *personalizationService) RecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 || limit > s.policy.ActivityRetention {
		limit = s.policy.ActivityRetention
	}
	be, scope, _, err := s.route(ctx)
	if err != nil {
		return nil, err
	}
	return be.RecentActivity(ctx, scope, limit)
}

func (s *personalizationService) GetStats(ctx context.Context) (*StatsView, error) {
	_, scope, durable, err := s.route(ctx)
	if err != nil {
		return nil, err
	}
	if durable {
		row, err := s.stats.Get(ctx, scope)
		if err != nil {
			return nil, err
		}
		return &StatsView{
			TotalScore:         row.TotalScore,
			Level:              row.Level,
			TutorialsCompleted: row.TutorialsCompleted,
			PromptsSaved:       row.PromptsSaved,
			ToolsFavorited:     row.ToolsFavorited,
			CurrentStreak:      row.CurrentStreak,
			LongestStreak:      row.LongestStreak,
			LastActivityDate:   row.LastActivityDate,
		}, nil
	}
	completed, prompts, tools := s.session.Counts(scope)
	score := Score(s.policy, completed, prompts, tools)
	return &StatsView{
		TotalScore:         score,
		Level:              Level(s.policy, score),
		TutorialsCompleted: completed,
		PromptsSaved:       prompts,
		ToolsFavorited:     tools,
	}, nil
}

func (s *personalizationService) AwardBadge(ctx context.Context, badgeID string) (bool, error) {
	if err := validateItemID(badgeID); err != nil {
		return false, err
	}
	be, scope, durable, err := s.route(ctx)
	if err != nil {
		return false, err
	}
	granted, err := be.AwardBadge(ctx, scope, badgeID)
	if err != nil {
		s.log.Error("award badge failed", "badge_id", badgeID, "scope", scope, "error", err)
		return false, err
	}
	if granted {
		s.appendActivity(ctx, be, scope, durable, ActivityBadgeEarned, badgeID, nil)
	}
	return true, nil
}

func (s *personalizationService) ListBadges(ctx context.Context) ([]BadgeGrant, error) {
	be, scope, _, err := s.route(ctx)
	if err != nil {
		return nil, err
	}
	return be.ListBadges(ctx, scope)
}

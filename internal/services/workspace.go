package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ainexus/nexus-backend/internal/logger"
)

const workspaceExportVersion = "1.0"

// WorkspaceSnapshot is the portable export format. Metrics are informational;
// import recomputes counters from the merged assets instead of trusting them.
type WorkspaceSnapshot struct {
	Metadata WorkspaceMetadata `json:"metadata"`
	Metrics  *StatsView        `json:"metrics,omitempty"`
	Assets   WorkspaceAssets   `json:"assets"`
}

type WorkspaceMetadata struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
}

type WorkspaceAssets struct {
	SavedPrompts       []SavedItem    `json:"saved_prompts"`
	FavoriteTools      []FavoriteItem `json:"favorite_tools"`
	CompletedTutorials []string       `json:"completed_tutorials"`
}

// ImportSummary reports what an import actually changed. Entries already
// present are counted as skipped, never duplicated.
type ImportSummary struct {
	PromptsImported   int `json:"prompts_imported"`
	PromptsSkipped    int `json:"prompts_skipped"`
	FavoritesImported int `json:"favorites_imported"`
	FavoritesSkipped  int `json:"favorites_skipped"`
	TutorialsImported int `json:"tutorials_imported"`
	TutorialsSkipped  int `json:"tutorials_skipped"`
}

type WorkspaceService interface {
	Export(ctx context.Context) (*WorkspaceSnapshot, error)
	Import(ctx context.Context, raw json.RawMessage) (*ImportSummary, error)
}

type workspaceService struct {
	log             *logger.Logger
	personalization PersonalizationService
}

func NewWorkspaceService(baseLog *logger.Logger, personalization PersonalizationService) WorkspaceService {
	return &workspaceService{
		log:             baseLog.With("service", "WorkspaceService"),
		personalization: personalization,
	}
}

func (s *workspaceService) Export(ctx context.Context) (*WorkspaceSnapshot, error) {
	prompts, err := s.personalization.ListSavedItems(ctx)
	if err != nil {
		return nil, err
	}
	tools, err := s.personalization.ListFavorites(ctx, KindTool)
	if err != nil {
		return nil, err
	}
	tutorials, err := s.personalization.ListCompletedTutorials(ctx)
	if err != nil {
		return nil, err
	}
	metrics, err := s.personalization.GetStats(ctx)
	if err != nil {
		s.log.Warn("export continues without metrics", "error", err)
		metrics = nil
	}
	return &WorkspaceSnapshot{
		Metadata: WorkspaceMetadata{
			Version:    workspaceExportVersion,
			ExportedAt: time.Now().UTC(),
		},
		Metrics: metrics,
		Assets: WorkspaceAssets{
			SavedPrompts:       prompts,
			FavoriteTools:      tools,
			CompletedTutorials: tutorials,
		},
	}, nil
}

// Import union-merges a snapshot into the current scope. Each asset goes
// through the same idempotent write path as a live action, so existing
// entries are skipped and milestone counters only move for genuinely new
// rows.
func (s *workspaceService) Import(ctx context.Context, raw json.RawMessage) (*ImportSummary, error) {
	var snapshot WorkspaceSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("malformed workspace snapshot: %w", err)
	}
	if snapshot.Metadata.Version == "" {
		return nil, fmt.Errorf("workspace snapshot missing metadata.version")
	}

	summary := &ImportSummary{}
	existing, err := s.personalization.ListSavedItems(ctx)
	if err != nil {
		return nil, err
	}
	knownPrompts := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		knownPrompts[e.PromptID] = struct{}{}
	}
	for _, item := range snapshot.Assets.SavedPrompts {
		if err := validateItemID(item.PromptID); err != nil {
			s.log.Warn("skipping invalid prompt in import", "prompt_id", item.PromptID, "error", err)
			summary.PromptsSkipped++
			continue
		}
		if _, ok := knownPrompts[item.PromptID]; ok {
			summary.PromptsSkipped++
			continue
		}
		knownPrompts[item.PromptID] = struct{}{}
		if _, err := s.personalization.SaveItem(ctx, item.PromptID, item.Payload, item.Note); err != nil {
			return nil, err
		}
		summary.PromptsImported++
	}

	for _, fav := range snapshot.Assets.FavoriteTools {
		kind := fav.Kind
		if kind == "" {
			kind = KindTool
		}
		if err := validateKind(kind); err != nil {
			s.log.Warn("skipping invalid favorite in import", "item_id", fav.ItemID, "error", err)
			summary.FavoritesSkipped++
			continue
		}
		if err := validateItemID(fav.ItemID); err != nil {
			s.log.Warn("skipping invalid favorite in import", "item_id", fav.ItemID, "error", err)
			summary.FavoritesSkipped++
			continue
		}
		already, err := s.personalization.IsFavorite(ctx, kind, fav.ItemID)
		if err != nil {
			return nil, err
		}
		if already {
			summary.FavoritesSkipped++
			continue
		}
		if _, err := s.personalization.AddFavorite(ctx, kind, fav.ItemID, fav.Payload); err != nil {
			return nil, err
		}
		summary.FavoritesImported++
	}

	for _, tutorialID := range snapshot.Assets.CompletedTutorials {
		if err := validateItemID(tutorialID); err != nil {
			s.log.Warn("skipping invalid tutorial in import", "tutorial_id", tutorialID, "error", err)
			summary.TutorialsSkipped++
			continue
		}
		done, err := s.personalization.IsTutorialComplete(ctx, tutorialID)
		if err != nil {
			return nil, err
		}
		if done {
			summary.TutorialsSkipped++
			continue
		}
		if _, err := s.personalization.CompleteTutorial(ctx, tutorialID); err != nil {
			return nil, err
		}
		summary.TutorialsImported++
	}

	s.log.Info("workspace import finished",
		"prompts_imported", summary.PromptsImported,
		"favorites_imported", summary.FavoritesImported,
		"tutorials_imported", summary.TutorialsImported)
	return summary, nil
}

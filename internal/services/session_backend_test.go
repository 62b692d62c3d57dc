package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/ainexus/nexus-backend/internal/logger"
)

func testLogger(t testing.TB) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func TestSessionBackendFavorites(t *testing.T) {
	b := NewSessionBackend(testLogger(t), 100)
	ctx := context.Background()
	scope := uuid.New()

	inserted, err := b.AddFavorite(ctx, scope, KindTool, "code-assistant", []byte(`{"name":"Code Assistant"}`))
	if err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if !inserted {
		t.Fatal("AddFavorite: expected insert on first call")
	}

	inserted, err = b.AddFavorite(ctx, scope, KindTool, "code-assistant", nil)
	if err != nil {
		t.Fatalf("AddFavorite (repeat): %v", err)
	}
	if inserted {
		t.Fatal("AddFavorite (repeat): expected no-op")
	}

	favorited, err := b.IsFavorite(ctx, scope, KindTool, "code-assistant")
	if err != nil || !favorited {
		t.Fatalf("IsFavorite: got (%v, %v), want (true, nil)", favorited, err)
	}

	// Other sessions never see this entry.
	favorited, err = b.IsFavorite(ctx, uuid.New(), KindTool, "code-assistant")
	if err != nil || favorited {
		t.Fatalf("IsFavorite (other scope): got (%v, %v), want (false, nil)", favorited, err)
	}

	removed, err := b.RemoveFavorite(ctx, scope, KindTool, "code-assistant")
	if err != nil || !removed {
		t.Fatalf("RemoveFavorite: got (%v, %v), want (true, nil)", removed, err)
	}
	removed, err = b.RemoveFavorite(ctx, scope, KindTool, "code-assistant")
	if err != nil || removed {
		t.Fatalf("RemoveFavorite (repeat): got (%v, %v), want (false, nil)", removed, err)
	}
}

func TestSessionBackendListFavoritesFilter(t *testing.T) {
	b := NewSessionBackend(testLogger(t), 100)
	ctx := context.Background()
	scope := uuid.New()

	mustAdd := func(kind, id string) {
		t.Helper()
		if _, err := b.AddFavorite(ctx, scope, kind, id, nil); err != nil {
			t.Fatalf("AddFavorite(%s, %s): %v", kind, id, err)
		}
	}
	mustAdd(KindTool, "tool-a")
	mustAdd(KindTool, "tool-b")
	mustAdd(KindPrompt, "prompt-a")

	tools, err := b.ListFavorites(ctx, scope, KindTool)
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("ListFavorites(tool): expected 2, got %d", len(tools))
	}

	all, err := b.ListFavorites(ctx, scope, "")
	if err != nil {
		t.Fatalf("ListFavorites (all): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListFavorites (all): expected 3, got %d", len(all))
	}
}

func TestSessionBackendTutorials(t *testing.T) {
	b := NewSessionBackend(testLogger(t), 100)
	ctx := context.Background()
	scope := uuid.New()

	first, err := b.CompleteTutorial(ctx, scope, "getting-started")
	if err != nil || !first {
		t.Fatalf("CompleteTutorial: got (%v, %v), want (true, nil)", first, err)
	}
	first, err = b.CompleteTutorial(ctx, scope, "getting-started")
	if err != nil || first {
		t.Fatalf("CompleteTutorial (repeat): got (%v, %v), want (false, nil)", first, err)
	}

	done, err := b.IsTutorialComplete(ctx, scope, "getting-started")
	if err != nil || !done {
		t.Fatalf("IsTutorialComplete: got (%v, %v), want (true, nil)", done, err)
	}

	ids, err := b.ListCompletedTutorials(ctx, scope)
	if err != nil {
		t.Fatalf("ListCompletedTutorials: %v", err)
	}
	if len(ids) != 1 || ids[0] != "getting-started" {
		t.Fatalf("ListCompletedTutorials: unexpected result %v", ids)
	}
}

func TestSessionBackendActivityRetention(t *testing.T) {
	b := NewSessionBackend(testLogger(t), 5)
	ctx := context.Background()
	scope := uuid.New()

	for i := 0; i < 8; i++ {
		if err := b.AppendActivity(ctx, scope, "viewed", fmt.Sprintf("item-%d", i), nil); err != nil {
			t.Fatalf("AppendActivity: %v", err)
		}
	}

	entries, err := b.RecentActivity(ctx, scope, 0)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected retention to cap at 5 entries, got %d", len(entries))
	}
	// Newest first; the oldest three were dropped.
	if entries[0].ItemID != "item-7" || entries[4].ItemID != "item-3" {
		t.Fatalf("unexpected window: first=%s last=%s", entries[0].ItemID, entries[4].ItemID)
	}
}

func TestSessionBackendCounts(t *testing.T) {
	b := NewSessionBackend(testLogger(t), 100)
	ctx := context.Background()
	scope := uuid.New()

	if _, err := b.AddFavorite(ctx, scope, KindTool, "tool-a", nil); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if _, err := b.AddFavorite(ctx, scope, KindPrompt, "prompt-a", nil); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if _, err := b.CompleteTutorial(ctx, scope, "t1"); err != nil {
		t.Fatalf("CompleteTutorial: %v", err)
	}
	if _, err := b.SavePrompt(ctx, scope, "p1", nil, ""); err != nil {
		t.Fatalf("SavePrompt: %v", err)
	}

	completed, prompts, tools := b.Counts(scope)
	if completed != 1 || prompts != 1 || tools != 1 {
		t.Fatalf("Counts: got (%d, %d, %d), want (1, 1, 1)", completed, prompts, tools)
	}
}

func TestSessionBackendBadges(t *testing.T) {
	b := NewSessionBackend(testLogger(t), 100)
	ctx := context.Background()
	scope := uuid.New()

	granted, err := b.AwardBadge(ctx, scope, "first-steps")
	if err != nil || !granted {
		t.Fatalf("AwardBadge: got (%v, %v), want (true, nil)", granted, err)
	}
	granted, err = b.AwardBadge(ctx, scope, "first-steps")
	if err != nil || granted {
		t.Fatalf("AwardBadge (repeat): got (%v, %v), want (false, nil)", granted, err)
	}

	badges, err := b.ListBadges(ctx, scope)
	if err != nil {
		t.Fatalf("ListBadges: %v", err)
	}
	if len(badges) != 1 || badges[0].BadgeID != "first-steps" {
		t.Fatalf("ListBadges: unexpected result %+v", badges)
	}
}

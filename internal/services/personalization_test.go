package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ainexus/nexus-backend/internal/config"
	"github.com/ainexus/nexus-backend/internal/repos"
	"github.com/ainexus/nexus-backend/internal/sessiondata"
	"github.com/ainexus/nexus-backend/internal/types"
)

func testDB(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nexus_test.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = gdb.AutoMigrate(
		&types.User{},
		&types.Favorite{},
		&types.Progress{},
		&types.Activity{},
		&types.SavedPrompt{},
		&types.Badge{},
		&types.UserStats{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return gdb
}

type testEnv struct {
	db      *gorm.DB
	svc     PersonalizationService
	stats   StatsService
	session *SessionBackend
	userID  uuid.UUID
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	log := testLogger(t)
	gdb := testDB(t)
	policy := config.DefaultPolicy()

	user := &types.User{
		ID:        uuid.New(),
		Username:  "default_user",
		Email:     "user@nexus.local",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	stats := NewStatsService(gdb, log, policy, repos.NewUserStatsRepo(gdb, log))
	session := NewSessionBackend(log, policy.ActivityRetention)
	svc := NewPersonalizationService(
		gdb,
		log,
		policy,
		stats,
		session,
		repos.NewFavoriteRepo(gdb, log),
		repos.NewProgressRepo(gdb, log),
		repos.NewActivityRepo(gdb, log),
		repos.NewSavedPromptRepo(gdb, log),
		repos.NewBadgeRepo(gdb, log),
	)
	return &testEnv{db: gdb, svc: svc, stats: stats, session: session, userID: user.ID}
}

func durableCtx(userID uuid.UUID) context.Context {
	return sessiondata.WithSessionData(context.Background(), &sessiondata.SessionData{
		SessionID: uuid.New(),
		UserID:    userID,
	})
}

func fallbackCtx() context.Context {
	return sessiondata.WithSessionData(context.Background(), &sessiondata.SessionData{
		SessionID: uuid.New(),
	})
}

func TestAddFavoriteIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := durableCtx(env.userID)

	for i := 0; i < 2; i++ {
		if _, err := env.svc.AddFavorite(ctx, KindTool, "code-assistant", []byte(`{"name":"Code Assistant"}`)); err != nil {
			t.Fatalf("AddFavorite: %v", err)
		}
	}

	favorited, err := env.svc.IsFavorite(ctx, KindTool, "code-assistant")
	if err != nil || !favorited {
		t.Fatalf("IsFavorite: got (%v, %v), want (true, nil)", favorited, err)
	}

	stats, err := env.svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.ToolsFavorited != 1 {
		t.Fatalf("ToolsFavorited = %d, want 1 (repeat must not double-count)", stats.ToolsFavorited)
	}
	if stats.TotalScore != 1 {
		t.Fatalf("TotalScore = %d, want 1", stats.TotalScore)
	}

	entries, err := env.svc.RecentActivity(ctx, 10)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind != ActivityFavoriteAdded {
		t.Fatalf("expected a single %s entry, got %+v", ActivityFavoriteAdded, entries)
	}
}

func TestRemoveFavoriteKeepsMilestones(t *testing.T) {
	env := newTestEnv(t)
	ctx := durableCtx(env.userID)

	if _, err := env.svc.AddFavorite(ctx, KindTool, "code-assistant", nil); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	removed, err := env.svc.RemoveFavorite(ctx, KindTool, "code-assistant")
	if err != nil || !removed {
		t.Fatalf("RemoveFavorite: got (%v, %v), want (true, nil)", removed, err)
	}

	favorited, err := env.svc.IsFavorite(ctx, KindTool, "code-assistant")
	if err != nil || favorited {
		t.Fatalf("IsFavorite after remove: got (%v, %v), want (false, nil)", favorited, err)
	}

	// Milestone counters are cumulative: removal never decrements.
	stats, err := env.svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.ToolsFavorited != 1 {
		t.Fatalf("ToolsFavorited = %d, want 1", stats.ToolsFavorited)
	}
}

func TestCompleteTutorialFirstCompletionOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := durableCtx(env.userID)

	for i := 0; i < 3; i++ {
		if _, err := env.svc.CompleteTutorial(ctx, "getting-started"); err != nil {
			t.Fatalf("CompleteTutorial: %v", err)
		}
	}

	done, err := env.svc.IsTutorialComplete(ctx, "getting-started")
	if err != nil || !done {
		t.Fatalf("IsTutorialComplete: got (%v, %v), want (true, nil)", done, err)
	}

	stats, err := env.svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TutorialsCompleted != 1 {
		t.Fatalf("TutorialsCompleted = %d, want 1", stats.TutorialsCompleted)
	}
	if stats.TotalScore != 5 {
		t.Fatalf("TotalScore = %d, want 5", stats.TotalScore)
	}

	ids, err := env.svc.ListCompletedTutorials(ctx)
	if err != nil {
		t.Fatalf("ListCompletedTutorials: %v", err)
	}
	if len(ids) != 1 || ids[0] != "getting-started" {
		t.Fatalf("ListCompletedTutorials: unexpected result %v", ids)
	}
}

func TestSavePromptIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := durableCtx(env.userID)

	for i := 0; i < 2; i++ {
		if _, err := env.svc.SaveItem(ctx, "debug-helper", []byte(`{"title":"Debug Helper"}`), "my go-to"); err != nil {
			t.Fatalf("SaveItem: %v", err)
		}
	}

	items, err := env.svc.ListSavedItems(ctx)
	if err != nil {
		t.Fatalf("ListSavedItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 saved prompt, got %d", len(items))
	}
	if items[0].PromptID != "debug-helper" || items[0].Note != "my go-to" {
		t.Fatalf("unexpected saved prompt: %+v", items[0])
	}

	stats, err := env.svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.PromptsSaved != 1 {
		t.Fatalf("PromptsSaved = %d, want 1", stats.PromptsSaved)
	}
}

func TestValidationRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := durableCtx(env.userID)

	if _, err := env.svc.AddFavorite(ctx, "widget", "x", nil); err == nil {
		t.Fatal("expected error for unknown item kind")
	}
	if _, err := env.svc.CompleteTutorial(ctx, ""); err == nil {
		t.Fatal("expected error for empty tutorial id")
	}
	if _, err := env.svc.CompleteTutorial(ctx, "   "); err == nil {
		t.Fatal("expected error for whitespace-only tutorial id")
	}

	long := make([]byte, maxItemIDLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := env.svc.SaveItem(ctx, string(long), nil, ""); err == nil {
		t.Fatal("expected error for over-long prompt id")
	}

	// Catalog ids are opaque: spaces and slashes pass through.
	if _, err := env.svc.AddFavorite(ctx, KindTool, "tools/code assistant v2", nil); err != nil {
		t.Fatalf("AddFavorite with opaque id: %v", err)
	}
	favorited, err := env.svc.IsFavorite(ctx, KindTool, "tools/code assistant v2")
	if err != nil || !favorited {
		t.Fatalf("IsFavorite (opaque id): got (%v, %v), want (true, nil)", favorited, err)
	}
}

func TestFallbackRoutesToSessionStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := fallbackCtx()

	if _, err := env.svc.AddFavorite(ctx, KindTool, "tool-a", nil); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if _, err := env.svc.CompleteTutorial(ctx, "t1"); err != nil {
		t.Fatalf("CompleteTutorial: %v", err)
	}
	if _, err := env.svc.SaveItem(ctx, "p1", nil, ""); err != nil {
		t.Fatalf("SaveItem: %v", err)
	}

	// Nothing reaches the durable store.
	var n int64
	if err := env.db.Model(&types.Favorite{}).Count(&n).Error; err != nil {
		t.Fatalf("count favorites: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no durable favorites, got %d", n)
	}

	// The transient stats view follows the same scoring rules.
	stats, err := env.svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TutorialsCompleted != 1 || stats.PromptsSaved != 1 || stats.ToolsFavorited != 1 {
		t.Fatalf("unexpected transient counters: %+v", stats)
	}
	if stats.TotalScore != 8 {
		t.Fatalf("TotalScore = %d, want 8", stats.TotalScore)
	}

	// A different session starts clean.
	other, err := env.svc.GetStats(fallbackCtx())
	if err != nil {
		t.Fatalf("GetStats (other session): %v", err)
	}
	if other.TotalScore != 0 {
		t.Fatalf("expected isolated sessions, got score %d", other.TotalScore)
	}
}

func TestActivityRetentionDurable(t *testing.T) {
	env := newTestEnv(t)
	ctx := durableCtx(env.userID)

	for i := 0; i < 105; i++ {
		if _, err := env.svc.LogActivity(ctx, "viewed", "item", nil); err != nil {
			t.Fatalf("LogActivity: %v", err)
		}
	}

	var n int64
	if err := env.db.Model(&types.Activity{}).Where("user_id = ?", env.userID).Count(&n).Error; err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if n != 100 {
		t.Fatalf("expected retention to hold 100 rows, got %d", n)
	}
}

func TestAwardBadgeIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := durableCtx(env.userID)

	for i := 0; i < 2; i++ {
		if _, err := env.svc.AwardBadge(ctx, "first-steps"); err != nil {
			t.Fatalf("AwardBadge: %v", err)
		}
	}

	badges, err := env.svc.ListBadges(ctx)
	if err != nil {
		t.Fatalf("ListBadges: %v", err)
	}
	if len(badges) != 1 || badges[0].BadgeID != "first-steps" {
		t.Fatalf("ListBadges: unexpected result %+v", badges)
	}
}

func TestStatsStreakAdvancesOnActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	day1 := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	if err := env.stats.Touch(ctx, env.userID, day1); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := env.stats.Touch(ctx, env.userID, day1.Add(24*time.Hour)); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	row, err := env.stats.Get(ctx, env.userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if row.CurrentStreak != 2 || row.LongestStreak != 2 {
		t.Fatalf("streaks = (%d, %d), want (2, 2)", row.CurrentStreak, row.LongestStreak)
	}

	// A three-day gap resets current but keeps longest.
	if err := env.stats.Touch(ctx, env.userID, day1.Add(5*24*time.Hour)); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	row, err = env.stats.Get(ctx, env.userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if row.CurrentStreak != 1 || row.LongestStreak != 2 {
		t.Fatalf("streaks = (%d, %d), want (1, 2)", row.CurrentStreak, row.LongestStreak)
	}
}

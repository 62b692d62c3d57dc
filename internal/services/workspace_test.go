package services

import (
	"encoding/json"
	"testing"
)

func TestWorkspaceExportImportRoundTrip(t *testing.T) {
	source := newTestEnv(t)
	sourceCtx := durableCtx(source.userID)
	sourceWS := NewWorkspaceService(testLogger(t), source.svc)

	if _, err := source.svc.AddFavorite(sourceCtx, KindTool, "code-assistant", []byte(`{"name":"Code Assistant"}`)); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if _, err := source.svc.CompleteTutorial(sourceCtx, "getting-started"); err != nil {
		t.Fatalf("CompleteTutorial: %v", err)
	}
	if _, err := source.svc.SaveItem(sourceCtx, "debug-helper", []byte(`{"title":"Debug Helper"}`), "note"); err != nil {
		t.Fatalf("SaveItem: %v", err)
	}

	snapshot, err := sourceWS.Export(sourceCtx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if snapshot.Metadata.Version == "" {
		t.Fatal("export missing metadata version")
	}
	if len(snapshot.Assets.SavedPrompts) != 1 || len(snapshot.Assets.FavoriteTools) != 1 || len(snapshot.Assets.CompletedTutorials) != 1 {
		t.Fatalf("unexpected export assets: %+v", snapshot.Assets)
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	target := newTestEnv(t)
	targetCtx := durableCtx(target.userID)
	targetWS := NewWorkspaceService(testLogger(t), target.svc)

	summary, err := targetWS.Import(targetCtx, raw)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.PromptsImported != 1 || summary.FavoritesImported != 1 || summary.TutorialsImported != 1 {
		t.Fatalf("unexpected import summary: %+v", summary)
	}

	stats, err := target.svc.GetStats(targetCtx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TutorialsCompleted != 1 || stats.PromptsSaved != 1 || stats.ToolsFavorited != 1 {
		t.Fatalf("import did not move milestone counters: %+v", stats)
	}
}

func TestWorkspaceImportSkipsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := durableCtx(env.userID)
	ws := NewWorkspaceService(testLogger(t), env.svc)

	if _, err := env.svc.AddFavorite(ctx, KindTool, "code-assistant", nil); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if _, err := env.svc.SaveItem(ctx, "debug-helper", nil, ""); err != nil {
		t.Fatalf("SaveItem: %v", err)
	}

	snapshot, err := ws.Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	// Importing into the same workspace is a union-merge: everything skips.
	summary, err := ws.Import(ctx, raw)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.PromptsImported != 0 || summary.FavoritesImported != 0 {
		t.Fatalf("expected no new rows, got %+v", summary)
	}
	if summary.PromptsSkipped != 1 || summary.FavoritesSkipped != 1 {
		t.Fatalf("expected duplicates to be skipped, got %+v", summary)
	}

	stats, err := env.svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.PromptsSaved != 1 || stats.ToolsFavorited != 1 {
		t.Fatalf("re-import must not double-count: %+v", stats)
	}
}

func TestWorkspaceImportRejectsMalformedSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ws := NewWorkspaceService(testLogger(t), env.svc)

	if _, err := ws.Import(durableCtx(env.userID), json.RawMessage(`{"assets":`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	if _, err := ws.Import(durableCtx(env.userID), json.RawMessage(`{"assets":{}}`)); err == nil {
		t.Fatal("expected error for missing metadata version")
	}
}

func TestWorkspaceImportSkipsInvalidEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := durableCtx(env.userID)
	ws := NewWorkspaceService(testLogger(t), env.svc)

	raw := json.RawMessage(`{
		"metadata": {"version": "1.0", "exported_at": "2025-06-01T00:00:00Z"},
		"assets": {
			"saved_prompts": [{"prompt_id": "   "}],
			"favorite_tools": [{"item_id": "ok-tool"}],
			"completed_tutorials": ["", "valid-tutorial"]
		}
	}`)
	summary, err := ws.Import(ctx, raw)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if summary.PromptsSkipped != 1 || summary.PromptsImported != 0 {
		t.Fatalf("invalid prompt should be skipped: %+v", summary)
	}
	if summary.FavoritesImported != 1 {
		t.Fatalf("favorite without kind should default to tool: %+v", summary)
	}
	if summary.TutorialsImported != 1 || summary.TutorialsSkipped != 1 {
		t.Fatalf("unexpected tutorial handling: %+v", summary)
	}
}

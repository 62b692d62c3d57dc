package services

import "testing"

func earnedSet(snapshot StatsSnapshot) map[string]bool {
	out := map[string]bool{}
	for _, a := range EvaluateAchievements(snapshot) {
		out[a.BadgeID] = a.Earned
	}
	return out
}

func TestEvaluateAchievements(t *testing.T) {
	t.Run("fresh account earns only first steps", func(t *testing.T) {
		earned := earnedSet(StatsSnapshot{})
		if !earned["first-steps"] {
			t.Fatal("first-steps should always be earned")
		}
		for id, ok := range earned {
			if id != "first-steps" && ok {
				t.Fatalf("badge %s should not be earned on a fresh account", id)
			}
		}
	})

	t.Run("scholar boundary", func(t *testing.T) {
		if earnedSet(StatsSnapshot{TutorialsCompleted: 4})["scholar"] {
			t.Fatal("scholar should not be earned at 4 tutorials")
		}
		if !earnedSet(StatsSnapshot{TutorialsCompleted: 5})["scholar"] {
			t.Fatal("scholar should be earned at 5 tutorials")
		}
	})

	t.Run("score badges", func(t *testing.T) {
		earned := earnedSet(StatsSnapshot{TotalScore: 79})
		if !earned["rising-star"] || earned["expert"] {
			t.Fatalf("score 79: rising-star=%v expert=%v", earned["rising-star"], earned["expert"])
		}
		earned = earnedSet(StatsSnapshot{TotalScore: 80})
		if !earned["expert"] {
			t.Fatal("expert should be earned at score 80")
		}
	})

	t.Run("power user needs both counters", func(t *testing.T) {
		if earnedSet(StatsSnapshot{PromptsSaved: 25, ToolsFavorited: 9})["power-user"] {
			t.Fatal("power-user requires 10 favorited tools")
		}
		if !earnedSet(StatsSnapshot{PromptsSaved: 25, ToolsFavorited: 10})["power-user"] {
			t.Fatal("power-user should be earned at 25 prompts and 10 tools")
		}
	})

	t.Run("table order is stable", func(t *testing.T) {
		achievements := EvaluateAchievements(StatsSnapshot{})
		if len(achievements) != 8 {
			t.Fatalf("expected 8 achievements, got %d", len(achievements))
		}
		if achievements[0].BadgeID != "first-steps" || achievements[7].BadgeID != "power-user" {
			t.Fatalf("unexpected order: first=%s last=%s", achievements[0].BadgeID, achievements[7].BadgeID)
		}
	})
}

func TestEarnedBadgeIDs(t *testing.T) {
	ids := EarnedBadgeIDs(StatsSnapshot{TutorialsCompleted: 5, TotalScore: 50})
	want := map[string]bool{"first-steps": true, "scholar": true, "rising-star": true}
	if len(ids) != len(want) {
		t.Fatalf("expected %d earned badges, got %v", len(want), ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Fatalf("unexpected earned badge %s", id)
		}
	}
}

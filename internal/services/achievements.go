package services

// Achievement evaluation is a pure function over current stats. It persists
// nothing: handlers call it at read time to render earned/locked state, and a
// caller may separately persist qualifying badges through AwardBadge.

type StatsSnapshot struct {
	TutorialsCompleted int
	PromptsSaved       int
	ToolsFavorited     int
	TotalScore         int
}

type Achievement struct {
	BadgeID     string `json:"badge_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

type achievementRule struct {
	badgeID     string
	name        string
	description string
	predicate   func(StatsSnapshot) bool
}

var achievementRules = []achievementRule{
	{
		badgeID:     "first-steps",
		name:        "First Steps",
		description: "Complete your profile",
		predicate:   func(StatsSnapshot) bool { return true },
	},
	{
		badgeID:     "scholar",
		name:        "Scholar",
		description: "Complete 5 tutorials",
		predicate:   func(s StatsSnapshot) bool { return s.TutorialsCompleted >= 5 },
	},
	{
		badgeID:     "collector",
		name:        "Collector",
		description: "Save 10 prompts",
		predicate:   func(s StatsSnapshot) bool { return s.PromptsSaved >= 10 },
	},
	{
		badgeID:     "tool-master",
		name:        "Tool Master",
		description: "Favorite 5 tools",
		predicate:   func(s StatsSnapshot) bool { return s.ToolsFavorited >= 5 },
	},
	{
		badgeID:     "rising-star",
		name:        "Rising Star",
		description: "Reach score 50+",
		predicate:   func(s StatsSnapshot) bool { return s.TotalScore >= 50 },
	},
	{
		badgeID:     "expert",
		name:        "Expert",
		description: "Reach score 80+",
		predicate:   func(s StatsSnapshot) bool { return s.TotalScore >= 80 },
	},
	{
		badgeID:     "completionist",
		name:        "Completionist",
		description: "Complete 20 tutorials",
		predicate:   func(s StatsSnapshot) bool { return s.TutorialsCompleted >= 20 },
	},
	{
		badgeID:     "power-user",
		name:        "Power User",
		description: "Save 25 prompts and favorite 10 tools",
		predicate:   func(s StatsSnapshot) bool { return s.PromptsSaved >= 25 && s.ToolsFavorited >= 10 },
	},
}

// EvaluateAchievements returns every badge with its earned flag for the given
// stats, in the fixed table order.
func EvaluateAchievements(snapshot StatsSnapshot) []Achievement {
	out := make([]Achievement, 0, len(achievementRules))
	for _, rule := range achievementRules {
		out = append(out, Achievement{
			BadgeID:     rule.badgeID,
			Name:        rule.name,
			Description: rule.description,
			Earned:      rule.predicate(snapshot),
		})
	}
	return out
}

// EarnedBadgeIDs is the set view over EvaluateAchievements.
func EarnedBadgeIDs(snapshot StatsSnapshot) []string {
	var ids []string
	for _, a := range EvaluateAchievements(snapshot) {
		if a.Earned {
			ids = append(ids, a.BadgeID)
		}
	}
	return ids
}

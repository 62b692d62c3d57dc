package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/services"
)

type StatsHandler struct {
	log *logger.Logger
	svc services.PersonalizationService
}

func NewStatsHandler(log *logger.Logger, svc services.PersonalizationService) *StatsHandler {
	return &StatsHandler{
		log: log.With("handler", "StatsHandler"),
		svc: svc,
	}
}

// GET /api/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_stats_failed", err)
		return
	}
	RespondOK(c, stats)
}

// GET /api/achievements
//
// Evaluates the badge table against current stats, persists any newly
// qualifying badge, and returns the full earned/locked list.
func (h *StatsHandler) GetAchievements(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := h.svc.GetStats(ctx)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_stats_failed", err)
		return
	}
	achievements := services.EvaluateAchievements(services.StatsSnapshot{
		TutorialsCompleted: stats.TutorialsCompleted,
		PromptsSaved:       stats.PromptsSaved,
		ToolsFavorited:     stats.ToolsFavorited,
		TotalScore:         stats.TotalScore,
	})
	for _, a := range achievements {
		if !a.Earned {
			continue
		}
		if _, err := h.svc.AwardBadge(ctx, a.BadgeID); err != nil {
			h.log.Warn("badge persist failed", "badge_id", a.BadgeID, "error", err)
		}
	}
	RespondOK(c, gin.H{"achievements": achievements})
}

// GET /api/badges
func (h *StatsHandler) ListBadges(c *gin.Context) {
	badges, err := h.svc.ListBadges(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_badges_failed", err)
		return
	}
	RespondOK(c, gin.H{"badges": badges})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/services"
)

type PersonalizationHandler struct {
	log *logger.Logger
	svc services.PersonalizationService
}

func NewPersonalizationHandler(log *logger.Logger, svc services.PersonalizationService) *PersonalizationHandler {
	return &PersonalizationHandler{
		log: log.With("handler", "PersonalizationHandler"),
		svc: svc,
	}
}

type addFavoriteRequest struct {
	Type     string          `json:"type" binding:"required"`
	ItemID   string          `json:"item_id" binding:"required"`
	ItemData json.RawMessage `json:"item_data,omitempty"`
}

// POST /api/favorites
func (h *PersonalizationHandler) AddFavorite(c *gin.Context) {
	var req addFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ok, err := h.svc.AddFavorite(c.Request.Context(), req.Type, req.ItemID, req.ItemData)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "add_favorite_failed", err)
		return
	}
	RespondOK(c, gin.H{"favorited": ok})
}

// DELETE /api/favorites/:type/:itemID
func (h *PersonalizationHandler) RemoveFavorite(c *gin.Context) {
	removed, err := h.svc.RemoveFavorite(c.Request.Context(), c.Param("type"), c.Param("itemID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "remove_favorite_failed", err)
		return
	}
	RespondOK(c, gin.H{"removed": removed})
}

// GET /api/favorites/:type/:itemID
func (h *PersonalizationHandler) CheckFavorite(c *gin.Context) {
	favorited, err := h.svc.IsFavorite(c.Request.Context(), c.Param("type"), c.Param("itemID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "check_favorite_failed", err)
		return
	}
	RespondOK(c, gin.H{"favorited": favorited})
}

// GET /api/favorites?type=tool
func (h *PersonalizationHandler) ListFavorites(c *gin.Context) {
	items, err := h.svc.ListFavorites(c.Request.Context(), c.Query("type"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "list_favorites_failed", err)
		return
	}
	RespondOK(c, gin.H{"favorites": items})
}

type completeTutorialRequest struct {
	TutorialID string `json:"tutorial_id" binding:"required"`
}

// POST /api/progress/complete
func (h *PersonalizationHandler) CompleteTutorial(c *gin.Context) {
	var req completeTutorialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ok, err := h.svc.CompleteTutorial(c.Request.Context(), req.TutorialID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "complete_tutorial_failed", err)
		return
	}
	RespondOK(c, gin.H{"completed": ok})
}

// GET /api/progress/:tutorialID
func (h *PersonalizationHandler) CheckTutorial(c *gin.Context) {
	done, err := h.svc.IsTutorialComplete(c.Request.Context(), c.Param("tutorialID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "check_tutorial_failed", err)
		return
	}
	RespondOK(c, gin.H{"completed": done})
}

// GET /api/progress/completed
func (h *PersonalizationHandler) ListCompletedTutorials(c *gin.Context) {
	ids, err := h.svc.ListCompletedTutorials(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_completed_failed", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	RespondOK(c, gin.H{"completed_tutorials": ids})
}

type savePromptRequest struct {
	PromptID   string          `json:"prompt_id" binding:"required"`
	PromptData json.RawMessage `json:"prompt_data,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// POST /api/prompts
func (h *PersonalizationHandler) SavePrompt(c *gin.Context) {
	var req savePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ok, err := h.svc.SaveItem(c.Request.Context(), req.PromptID, req.PromptData, req.Notes)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "save_prompt_failed", err)
		return
	}
	RespondOK(c, gin.H{"saved": ok})
}

// GET /api/prompts
func (h *PersonalizationHandler) ListSavedPrompts(c *gin.Context) {
	items, err := h.svc.ListSavedItems(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_prompts_failed", err)
		return
	}
	RespondOK(c, gin.H{"saved_prompts": items})
}

type logActivityRequest struct {
	Type    string         `json:"type" binding:"required"`
	ItemID  string         `json:"item_id,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// POST /api/activity
func (h *PersonalizationHandler) LogActivity(c *gin.Context) {
	var req logActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ok, err := h.svc.LogActivity(c.Request.Context(), req.Type, req.ItemID, req.Details)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "log_activity_failed", err)
		return
	}
	RespondOK(c, gin.H{"logged": ok})
}

// GET /api/activity?limit=20
func (h *PersonalizationHandler) RecentActivity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = parsed
	}
	entries, err := h.svc.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "recent_activity_failed", err)
		return
	}
	RespondOK(c, gin.H{"activity": entries})
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/services"
	"github.com/ainexus/nexus-backend/internal/sessiondata"
)

type ProfileHandler struct {
	log *logger.Logger
	svc services.UserService
}

func NewProfileHandler(log *logger.Logger, svc services.UserService) *ProfileHandler {
	return &ProfileHandler{
		log: log.With("handler", "ProfileHandler"),
		svc: svc,
	}
}

func resolvedUserID(c *gin.Context) (uuid.UUID, error) {
	sd := sessiondata.GetSessionData(c.Request.Context())
	if sd == nil || sd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("profile unavailable without a durable identity")
	}
	return sd.UserID, nil
}

// GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := resolvedUserID(c)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "no_identity", err)
		return
	}
	user, err := h.svc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "get_profile_failed", err)
		return
	}
	RespondOK(c, user)
}

// PATCH /api/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := resolvedUserID(c)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "no_identity", err)
		return
	}
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := h.svc.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "update_profile_failed", err)
		return
	}
	RespondOK(c, user)
}

// DELETE /api/profile
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID, err := resolvedUserID(c)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "no_identity", err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), userID); err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_profile_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

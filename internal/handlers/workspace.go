package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ainexus/nexus-backend/internal/logger"
	"github.com/ainexus/nexus-backend/internal/services"
)

// importBodyLimit caps workspace uploads at 4 MiB.
const importBodyLimit = 4 << 20

type WorkspaceHandler struct {
	log *logger.Logger
	svc services.WorkspaceService
}

func NewWorkspaceHandler(log *logger.Logger, svc services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		log: log.With("handler", "WorkspaceHandler"),
		svc: svc,
	}
}

// GET /api/workspace/export
func (h *WorkspaceHandler) Export(c *gin.Context) {
	snapshot, err := h.svc.Export(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	RespondOK(c, snapshot)
}

// POST /api/workspace/import
func (h *WorkspaceHandler) Import(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, importBodyLimit))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	summary, err := h.svc.Import(c.Request.Context(), json.RawMessage(raw))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "import_failed", err)
		return
	}
	RespondOK(c, summary)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mashenjun/snapvault/internal/pkg/errcode"
	"github.com/mashenjun/snapvault/internal/pkg/response"
	"github.com/mashenjun/snapvault/internal/service"
)

type AdminHandler struct {
	pruner *service.RetentionPruner
}

func NewAdminHandler(pruner *service.RetentionPruner) *AdminHandler {
	return &AdminHandler{pruner: pruner}
}

type pruneRequest struct {
	VersionsToKeep int `json:"versions_to_keep"`
	BatchSize      int `json:"batch_size"`
	MaxBatches     int `json:"max_batches"`
}

type pruneResponse struct {
	Deleted int64 `json:"deleted"`
}

// Prune runs one prune invocation synchronously. Omitted or non-positive
// fields fall back to the configured defaults.
func (h *AdminHandler) Prune(c *gin.Context) {
	var req pruneRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, errcode.ErrInvalid, "invalid request body")
			return
		}
	}
	policy := h.pruner.Defaults()
	if req.VersionsToKeep > 0 {
		policy.VersionsToKeep = req.VersionsToKeep
	}
	if req.BatchSize > 0 {
		policy.BatchSize = req.BatchSize
	}
	if req.MaxBatches > 0 {
		policy.MaxBatches = req.MaxBatches
	}
	deleted, err := h.pruner.PruneExpiredVersions(c.Request.Context(), policy)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, pruneResponse{Deleted: deleted})
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mashenjun/snapvault/internal/pkg/errcode"
	"github.com/mashenjun/snapvault/internal/pkg/response"
	"github.com/mashenjun/snapvault/internal/service"
)

type VersionHandler struct {
	dashboards *service.DashboardService
}

func NewVersionHandler(dashboards *service.DashboardService) *VersionHandler {
	return &VersionHandler{dashboards: dashboards}
}

func (h *VersionHandler) List(c *gin.Context) {
	limit := parseUintQuery(c, "limit", 0)
	versions, err := h.dashboards.ListVersions(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, versions)
}

func (h *VersionHandler) Get(c *gin.Context) {
	versionNumber, err := strconv.Atoi(c.Param("version"))
	if err != nil || versionNumber <= 0 {
		response.Error(c, errcode.ErrInvalid, "invalid version")
		return
	}
	version, err := h.dashboards.GetVersion(c.Request.Context(), c.Param("id"), versionNumber)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, version)
}

func (h *VersionHandler) Restore(c *gin.Context) {
	versionNumber, err := strconv.Atoi(c.Param("version"))
	if err != nil || versionNumber <= 0 {
		response.Error(c, errcode.ErrInvalid, "invalid version")
		return
	}
	dash, err := h.dashboards.RestoreVersion(c.Request.Context(), c.Param("id"), versionNumber)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dash)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mashenjun/snapvault/internal/observability"
)

type RouterDeps struct {
	Dashboards *DashboardHandler
	Versions   *VersionHandler
	Admin      *AdminHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/dashboards", deps.Dashboards.Create)
	api.GET("/dashboards", deps.Dashboards.List)
	api.GET("/dashboards/:id", deps.Dashboards.Get)
	api.PUT("/dashboards/:id", deps.Dashboards.Update)
	api.DELETE("/dashboards/:id", deps.Dashboards.Delete)

	api.GET("/dashboards/:id/versions", deps.Versions.List)
	api.GET("/dashboards/:id/versions/:version", deps.Versions.Get)
	api.POST("/dashboards/:id/versions/:version/restore", deps.Versions.Restore)

	api.POST("/admin/retention/prune", deps.Admin.Prune)

	api.GET("/metrics", gin.WrapH(observability.MetricsHandler()))
}

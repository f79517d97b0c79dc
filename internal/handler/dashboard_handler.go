package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mashenjun/snapvault/internal/pkg/errcode"
	"github.com/mashenjun/snapvault/internal/pkg/response"
	"github.com/mashenjun/snapvault/internal/service"
)

type DashboardHandler struct {
	dashboards *service.DashboardService
}

func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

type dashboardSaveRequest struct {
	Title   string `json:"title"`
	Data    string `json:"data"`
	Message string `json:"message"`
}

func (h *DashboardHandler) Create(c *gin.Context) {
	var req dashboardSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if req.Title == "" {
		response.Error(c, errcode.ErrInvalid, "title is required")
		return
	}
	dash, err := h.dashboards.Create(c.Request.Context(), service.DashboardSaveInput{
		Title:   req.Title,
		Data:    req.Data,
		Message: req.Message,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dash)
}

func (h *DashboardHandler) Update(c *gin.Context) {
	var req dashboardSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if req.Title == "" {
		response.Error(c, errcode.ErrInvalid, "title is required")
		return
	}
	dash, err := h.dashboards.Update(c.Request.Context(), c.Param("id"), service.DashboardSaveInput{
		Title:   req.Title,
		Data:    req.Data,
		Message: req.Message,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dash)
}

func (h *DashboardHandler) Get(c *gin.Context) {
	dash, err := h.dashboards.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dash)
}

func (h *DashboardHandler) List(c *gin.Context) {
	limit := parseUintQuery(c, "limit", 50)
	offset := parseUintQuery(c, "offset", 0)
	dashboards, err := h.dashboards.List(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dashboards)
}

func (h *DashboardHandler) Delete(c *gin.Context) {
	if err := h.dashboards.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, nil)
}

func parseUintQuery(c *gin.Context, key string, fallback uint) uint {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return uint(value)
}

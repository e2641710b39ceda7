package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/modules/courses"
	"github.com/yungbote/studyforge-backend/internal/modules/dashboard"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type DashboardHandler struct {
	log       *logger.Logger
	dashboard dashboard.Service
	courses   courses.Service
}

func NewDashboardHandler(log *logger.Logger, dash dashboard.Service, catalog courses.Service) *DashboardHandler {
	return &DashboardHandler{log: log.With("handler", "DashboardHandler"), dashboard: dash, courses: catalog}
}

// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	dash, err := h.dashboard.Load(c.Request.Context(), userID)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("GetDashboard failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, dash)
}

// GET /api/courses?difficulty=
func (h *DashboardHandler) ListCourses(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	listing, err := h.courses.List(c.Request.Context(), userID, c.Query("difficulty"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, listing)
}

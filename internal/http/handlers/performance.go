package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/modules/performance"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type PerformanceHandler struct {
	log         *logger.Logger
	performance performance.Service
}

func NewPerformanceHandler(log *logger.Logger, svc performance.Service) *PerformanceHandler {
	return &PerformanceHandler{log: log.With("handler", "PerformanceHandler"), performance: svc}
}

// GET /api/performance
func (h *PerformanceHandler) Report(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	rep, err := h.performance.Report(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, rep)
}

// GET /api/performance/insights
func (h *PerformanceHandler) Insights(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	text, err := h.performance.Insights(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"insights": text})
}

// GET /api/performance/export
func (h *PerformanceHandler) Export(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sheet, err := h.performance.ExportXLSX(c.Request.Context(), userID)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("Performance export failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(sheet.FileName))
	c.Data(http.StatusOK, performance.XLSXContentType, sheet.Data)
}

// POST /api/performance/recommendation/study
func (h *PerformanceHandler) StudyRecommendation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	action, err := h.performance.StudyRecommendation(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"pending": action})
}

// POST /api/performance/results/:id/study
func (h *PerformanceHandler) StudyResult(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	resultID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	action, err := h.performance.StudyResult(c.Request.Context(), userID, resultID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"pending": action})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/modules/tutor"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type TutorHandler struct {
	log   *logger.Logger
	tutor tutor.Service
}

func NewTutorHandler(log *logger.Logger, svc tutor.Service) *TutorHandler {
	return &TutorHandler{log: log.With("handler", "TutorHandler"), tutor: svc}
}

// GET /api/tutor/messages
func (h *TutorHandler) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	msgs, err := h.tutor.History(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}

// POST /api/tutor/messages
// body: { "message": "..." }
func (h *TutorHandler) Ask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.tutor.Ask(c.Request.Context(), userID, req.Message)
	var ge *domain.GenerationError
	switch {
	case errors.As(err, &ge):
		response.RespondError(c, http.StatusBadGateway, "generation_failed", errors.New(tutor.FailureMessage))
	case err != nil:
		response.RespondAPIError(c, err)
	default:
		c.JSON(http.StatusCreated, gin.H{"message": msg})
	}
}

// DELETE /api/tutor/messages
func (h *TutorHandler) Clear(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	n, err := h.tutor.Clear(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": n})
}

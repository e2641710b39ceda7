package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/modules/quiz"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type QuizHandler struct {
	log  *logger.Logger
	quiz quiz.Service
}

func NewQuizHandler(log *logger.Logger, svc quiz.Service) *QuizHandler {
	return &QuizHandler{log: log.With("handler", "QuizHandler"), quiz: svc}
}

// GET /api/tests/options
func (h *QuizHandler) Options(c *gin.Context) {
	response.RespondOK(c, h.quiz.Options())
}

// POST /api/tests
// body: { "topic", "difficulty", "numQuestions", "timeLimit" }
func (h *QuizHandler) Start(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var cfg quiz.Config
	if !bindJSON(c, &cfg) {
		return
	}
	view, err := h.quiz.Start(c.Request.Context(), userID, cfg)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Warn("Start test failed", "topic", cfg.Topic, "error", err)
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"test": view})
}

// GET /api/tests/:id
func (h *QuizHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.quiz.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"test": view})
}

// PUT /api/tests/:id/answers/:index
// body: { "option": 2 }
func (h *QuizHandler) Answer(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	var req struct {
		Option *int `json:"option" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.quiz.Answer(c.Request.Context(), userID, id, index, *req.Option)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"test": view})
}

// POST /api/tests/:id/submit
func (h *QuizHandler) Submit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.quiz.Submit(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"test": view})
}

// DELETE /api/tests/:id
func (h *QuizHandler) Reset(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.quiz.Reset(c.Request.Context(), userID, id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/tests/results
func (h *QuizHandler) History(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	results, err := h.quiz.History(c.Request.Context(), userID)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("Test history failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"results": results})
}

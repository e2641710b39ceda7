package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/modules/auth"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type ProfileHandler struct {
	log  *logger.Logger
	auth auth.Service
}

func NewProfileHandler(log *logger.Logger, authService auth.Service) *ProfileHandler {
	return &ProfileHandler{log: log.With("handler", "ProfileHandler"), auth: authService}
}

// GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	profile, err := h.auth.Profile(c.Request.Context())
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("GetProfile failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": profile})
}

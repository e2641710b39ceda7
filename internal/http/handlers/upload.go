package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/modules/uploads"
	"github.com/yungbote/studyforge-backend/internal/platform/apierr"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

// multipartOverhead covers boundaries and part headers on top of the file.
const multipartOverhead = 64 << 10

type UploadHandler struct {
	log      *logger.Logger
	uploads  uploads.Service
	maxBytes int64
}

func NewUploadHandler(log *logger.Logger, svc uploads.Service, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = uploads.DefaultMaxBytes
	}
	return &UploadHandler{log: log.With("handler", "UploadHandler"), uploads: svc, maxBytes: maxBytes}
}

// POST /api/uploads (multipart, field "file")
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondAPIError(c, apierr.New(http.StatusRequestEntityTooLarge, "too_large",
				fmt.Errorf("file is larger than %d bytes", h.maxBytes)))
			return
		}
		response.RespondAPIError(c, fmt.Errorf("%w: multipart field \"file\" is required", domain.ErrInvalidArgument))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondAPIError(c, fmt.Errorf("%w: unreadable file", domain.ErrInvalidArgument))
		return
	}
	defer f.Close()

	item, err := h.uploads.Upload(c.Request.Context(), userID, uploads.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"upload": item})
}

// GET /api/uploads
func (h *UploadHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	items, err := h.uploads.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"uploads": items})
}

package handlers

import (
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/modules/pdfs"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type PDFHandler struct {
	log  *logger.Logger
	pdfs pdfs.Service
}

func NewPDFHandler(log *logger.Logger, svc pdfs.Service) *PDFHandler {
	return &PDFHandler{log: log.With("handler", "PDFHandler"), pdfs: svc}
}

type storedPDF struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	Updated     time.Time `json:"updated"`
}

// GET /api/pdfs
func (h *PDFHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	objs, err := h.pdfs.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out := make([]storedPDF, 0, len(objs))
	for _, o := range objs {
		out = append(out, storedPDF{Name: path.Base(o.Name), Size: o.Size, ContentType: o.ContentType, Updated: o.Updated})
	}
	response.RespondOK(c, gin.H{"pdfs": out})
}

// GET /api/pdfs/:name
func (h *PDFHandler) Download(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	name := c.Param("name")
	rc, err := h.pdfs.Download(c.Request.Context(), userID, name)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, pdfContentType, rc, map[string]string{
		"Content-Disposition": attachment(name),
	})
}

// DELETE /api/pdfs/:name
func (h *PDFHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.pdfs.Delete(c.Request.Context(), userID, c.Param("name")); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

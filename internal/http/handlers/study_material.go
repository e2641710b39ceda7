package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/http/response"
	"github.com/yungbote/studyforge-backend/internal/modules/docexport"
	"github.com/yungbote/studyforge-backend/internal/modules/studymaterial"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

const pdfContentType = "application/pdf"

type StudyMaterialHandler struct {
	log      *logger.Logger
	material studymaterial.Service
	exporter docexport.Service
}

func NewStudyMaterialHandler(log *logger.Logger, material studymaterial.Service, exporter docexport.Service) *StudyMaterialHandler {
	return &StudyMaterialHandler{
		log:      log.With("handler", "StudyMaterialHandler"),
		material: material,
		exporter: exporter,
	}
}

type sessionBody struct {
	*studymaterial.Session
	HasMore bool `json:"hasMore"`
}

func newSessionBody(sess *studymaterial.Session) sessionBody {
	return sessionBody{Session: sess, HasMore: sess.HasMore()}
}

// respondSession writes sess, or the error alongside whatever was resolved
// before it.
func (h *StudyMaterialHandler) respondSession(c *gin.Context, sess *studymaterial.Session, err error) {
	switch {
	case err != nil && sess != nil:
		h.log.WithContext(c.Request.Context()).Warn("Study material batch failed", "topic", sess.Topic, "generated", sess.GeneratedCount, "error", err)
		response.RespondErrorWith(c, err, "session", newSessionBody(sess))
	case err != nil:
		response.RespondAPIError(c, err)
	default:
		response.RespondOK(c, gin.H{"session": newSessionBody(sess)})
	}
}

// POST /api/study-material
// body: { "topic": "..." }
func (h *StudyMaterialHandler) Generate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req struct {
		Topic string `json:"topic"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.material.Generate(c.Request.Context(), userID, req.Topic)
	h.respondSession(c, sess, err)
}

// GET /api/study-material
func (h *StudyMaterialHandler) Load(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sess, err := h.material.Load(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	h.respondSession(c, sess, nil)
}

// POST /api/study-material/more
func (h *StudyMaterialHandler) GenerateMore(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	sess, err := h.material.GenerateMore(c.Request.Context(), userID)
	h.respondSession(c, sess, err)
}

// DELETE /api/study-material
func (h *StudyMaterialHandler) Clear(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.material.Clear(c.Request.Context(), userID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/study-material/subtopics/:title
func (h *StudyMaterialHandler) Subtopic(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := h.material.Subtopic(c.Request.Context(), userID, c.Param("title"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// POST /api/study-material/auto
func (h *StudyMaterialHandler) Auto(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	res, err := h.material.AutoGenerate(c.Request.Context(), userID)
	if err == nil && res == nil {
		c.Status(http.StatusNoContent)
		return
	}
	if res == nil || res.Session == nil {
		response.RespondAPIError(c, err)
		return
	}
	if err != nil {
		response.RespondErrorWith(c, err, "session", newSessionBody(res.Session))
		return
	}
	response.RespondOK(c, gin.H{"reason": res.Reason, "session": newSessionBody(res.Session)})
}

// GET /api/study-material/export?store=true
func (h *StudyMaterialHandler) Export(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	store, _ := strconv.ParseBool(c.Query("store"))
	sess, err := h.material.Load(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out, err := h.exporter.Export(c.Request.Context(), userID, docexport.Input{
		Topic:     sess.Topic,
		Subtopics: sess.Generated(),
		Content:   sess.Content,
	}, store)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if out.Stored {
		c.Header("X-Stored-Key", out.Key)
	}
	c.Header("Content-Disposition", attachment(out.FileName))
	c.Data(http.StatusOK, pdfContentType, out.Data)
}

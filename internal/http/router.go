package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/studyforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studyforge-backend/internal/http/middleware"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler        *httpH.HealthHandler
	ProfileHandler       *httpH.ProfileHandler
	DashboardHandler     *httpH.DashboardHandler
	StudyMaterialHandler *httpH.StudyMaterialHandler
	QuizHandler          *httpH.QuizHandler
	TutorHandler         *httpH.TutorHandler
	PerformanceHandler   *httpH.PerformanceHandler
	UploadHandler        *httpH.UploadHandler
	PDFHandler           *httpH.PDFHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "studyforge"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.GetProfile)
		}

		// Dashboard + courses
		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard", cfg.DashboardHandler.GetDashboard)
			protected.GET("/courses", cfg.DashboardHandler.ListCourses)
		}

		// Study material
		if h := cfg.StudyMaterialHandler; h != nil {
			protected.GET("/study-material", h.Load)
			protected.POST("/study-material", h.Generate)
			protected.DELETE("/study-material", h.Clear)
			protected.POST("/study-material/more", h.GenerateMore)
			protected.POST("/study-material/auto", h.Auto)
			protected.GET("/study-material/export", h.Export)
			protected.GET("/study-material/subtopics/:title", h.Subtopic)
		}

		// Tests
		if h := cfg.QuizHandler; h != nil {
			protected.GET("/tests/options", h.Options)
			protected.GET("/tests/results", h.History)
			protected.POST("/tests", h.Start)
			protected.GET("/tests/:id", h.Get)
			protected.PUT("/tests/:id/answers/:index", h.Answer)
			protected.POST("/tests/:id/submit", h.Submit)
			protected.DELETE("/tests/:id", h.Reset)
		}

		// Tutor
		if h := cfg.TutorHandler; h != nil {
			protected.GET("/tutor/messages", h.History)
			protected.POST("/tutor/messages", h.Ask)
			protected.DELETE("/tutor/messages", h.Clear)
		}

		// Performance
		if h := cfg.PerformanceHandler; h != nil {
			protected.GET("/performance", h.Report)
			protected.GET("/performance/insights", h.Insights)
			protected.GET("/performance/export", h.Export)
			protected.POST("/performance/recommendation/study", h.StudyRecommendation)
			protected.POST("/performance/results/:id/study", h.StudyResult)
		}

		// Uploads
		if h := cfg.UploadHandler; h != nil {
			protected.GET("/uploads", h.List)
			protected.POST("/uploads", h.Upload)
		}

		// Stored PDFs
		if h := cfg.PDFHandler; h != nil {
			protected.GET("/pdfs", h.List)
			protected.GET("/pdfs/:name", h.Download)
			protected.DELETE("/pdfs/:name", h.Delete)
		}
	}

	return r
}

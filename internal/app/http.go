package app

import (
	httpx "github.com/yungbote/studyforge-backend/internal/http"
	httpH "github.com/yungbote/studyforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studyforge-backend/internal/http/middleware"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health        *httpH.HealthHandler
	Profile       *httpH.ProfileHandler
	Dashboard     *httpH.DashboardHandler
	StudyMaterial *httpH.StudyMaterialHandler
	Quiz          *httpH.QuizHandler
	Tutor         *httpH.TutorHandler
	Performance   *httpH.PerformanceHandler
	Upload        *httpH.UploadHandler
	PDF           *httpH.PDFHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health:        httpH.NewHealthHandler(),
		Profile:       httpH.NewProfileHandler(log, services.Auth),
		Dashboard:     httpH.NewDashboardHandler(log, services.Dashboard, services.Courses),
		StudyMaterial: httpH.NewStudyMaterialHandler(log, services.StudyMaterial, services.Export),
		Quiz:          httpH.NewQuizHandler(log, services.Quiz),
		Tutor:         httpH.NewTutorHandler(log, services.Tutor),
		Performance:   httpH.NewPerformanceHandler(log, services.Performance),
		Upload:        httpH.NewUploadHandler(log, services.Uploads, cfg.UploadMaxBytes),
	}
	if services.PDFs != nil {
		h.PDF = httpH.NewPDFHandler(log, services.PDFs)
	}
	return h
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *httpx.Server {
	return httpx.NewServer(httpx.RouterConfig{
		Log:                  log,
		ServiceName:          cfg.ServiceName,
		AllowedOrigins:       cfg.AllowedOrigins,
		AuthMiddleware:       middleware.Auth,
		HealthHandler:        handlers.Health,
		ProfileHandler:       handlers.Profile,
		DashboardHandler:     handlers.Dashboard,
		StudyMaterialHandler: handlers.StudyMaterial,
		QuizHandler:          handlers.Quiz,
		TutorHandler:         handlers.Tutor,
		PerformanceHandler:   handlers.Performance,
		UploadHandler:        handlers.Upload,
		PDFHandler:           handlers.PDF,
	})
}

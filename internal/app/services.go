package app

import (
	"fmt"

	"github.com/yungbote/studyforge-backend/internal/modules/auth"
	"github.com/yungbote/studyforge-backend/internal/modules/courses"
	"github.com/yungbote/studyforge-backend/internal/modules/dashboard"
	"github.com/yungbote/studyforge-backend/internal/modules/docexport"
	"github.com/yungbote/studyforge-backend/internal/modules/pdfs"
	"github.com/yungbote/studyforge-backend/internal/modules/performance"
	"github.com/yungbote/studyforge-backend/internal/modules/quiz"
	"github.com/yungbote/studyforge-backend/internal/modules/recommend"
	"github.com/yungbote/studyforge-backend/internal/modules/studymaterial"
	"github.com/yungbote/studyforge-backend/internal/modules/tutor"
	"github.com/yungbote/studyforge-backend/internal/modules/uploads"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type Services struct {
	Auth          auth.Service
	StudyMaterial studymaterial.Service
	Export        docexport.Service
	Quiz          quiz.Service
	QuizSweeper   *quiz.Sweeper
	Tutor         tutor.Service
	Performance   performance.Service
	Dashboard     dashboard.Service
	Courses       courses.Service
	Uploads       uploads.Service
	// PDFs is nil when object storage is disabled.
	PDFs pdfs.Service
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	authService, err := auth.NewService(log, reposet.Profile, auth.Config{
		Secret:    cfg.JWTSecretKey,
		Audience:  cfg.JWTAudience,
		AccessTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	pending := studymaterial.NewPendingStore(clients.KV, cfg.PendingActionTTL)
	material := studymaterial.NewService(
		log,
		studymaterial.NewPipeline(log, clients.Gemini, clients.YouTube),
		studymaterial.NewSessionStore(clients.KV, cfg.StudySessionTTL),
		pending,
		studymaterial.Config{
			SessionTTL: cfg.StudySessionTTL,
			PendingTTL: cfg.PendingActionTTL,
			LockTTL:    cfg.GenerationLockTTL,
		},
	)

	quizService := quiz.NewService(log, clients.Gemini, reposet.TestResult, quiz.ServiceConfig{
		EvalTimeout: cfg.QuizEvalTimeout,
		Retention:   cfg.QuizRetention,
	})

	recs := recommend.New(log, clients.Gemini, reposet.TestResult, reposet.ChatMessage, reposet.Upload)

	out := Services{
		Auth:          authService,
		StudyMaterial: material,
		Export:        docexport.NewService(log, clients.Bucket),
		Quiz:          quizService,
		QuizSweeper:   quiz.NewSweeper(log, quizService, cfg.QuizSweepInterval),
		Tutor:         tutor.NewService(log, clients.Gemini, reposet.ChatMessage, reposet.TestResult),
		Performance:   performance.NewService(log, clients.Gemini, reposet.TestResult, pending),
		Dashboard:     dashboard.NewService(log, reposet.Profile, reposet.TestResult, reposet.ChatMessage, reposet.Upload, recs),
		Courses:       courses.NewService(log, recs),
		Uploads:       uploads.NewService(log, reposet.Upload, cfg.UploadMaxBytes),
	}
	if clients.Bucket != nil {
		out.PDFs = pdfs.NewService(log, clients.Bucket)
	}
	return out, nil
}

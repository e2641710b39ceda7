package app

import (
	"strings"
	"time"

	"github.com/yungbote/studyforge-backend/internal/modules/studymaterial"
	"github.com/yungbote/studyforge-backend/internal/modules/uploads"
	"github.com/yungbote/studyforge-backend/internal/platform/envutil"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type Config struct {
	ServiceName     string
	Environment     string
	Version         string
	Address         string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	JWTSecretKey   string
	JWTAudience    string
	AccessTokenTTL time.Duration

	RedisAddr         string
	StudySessionTTL   time.Duration
	PendingActionTTL  time.Duration
	GenerationLockTTL time.Duration

	QuizRetention     time.Duration
	QuizEvalTimeout   time.Duration
	QuizSweepInterval time.Duration

	UploadMaxBytes int64
	YouTubeAPIKey  string
	ObjectStorage  bool
}

func LoadConfig(log *logger.Logger) Config {
	gatewayTimeout := time.Duration(envutil.Int("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second
	cfg := Config{
		ServiceName:     envutil.String("OTEL_SERVICE_NAME", "studyforge-api"),
		Environment:     envutil.String("APP_ENV", "development"),
		Version:         envutil.String("APP_VERSION", "dev"),
		Address:         ":" + envutil.String("PORT", "8080"),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		AllowedOrigins:  splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", ""),
		JWTAudience:    envutil.String("JWT_AUDIENCE", ""),
		AccessTokenTTL: time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,

		RedisAddr:         envutil.String("REDIS_ADDR", ""),
		StudySessionTTL:   envutil.Duration("STUDY_SESSION_TTL", 24*time.Hour),
		PendingActionTTL:  envutil.Duration("PENDING_ACTION_TTL", time.Hour),
		GenerationLockTTL: envutil.Duration("GENERATION_LOCK_TTL", studymaterial.DefaultLockTTL(gatewayTimeout)),

		QuizRetention:     envutil.Duration("QUIZ_SESSION_RETENTION", 30*time.Minute),
		QuizEvalTimeout:   envutil.Duration("QUIZ_EVAL_TIMEOUT", 90*time.Second),
		QuizSweepInterval: envutil.Duration("QUIZ_SWEEP_INTERVAL", time.Minute),

		UploadMaxBytes: int64(envutil.Int("UPLOAD_MAX_BYTES", uploads.DefaultMaxBytes)),
		YouTubeAPIKey:  envutil.String("YOUTUBE_API_KEY", ""),
		ObjectStorage:  envutil.Bool("OBJECT_STORAGE_ENABLED", true),
	}
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY is not set; the auth service will refuse to start")
	}
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR is not set; study sessions are kept in process memory")
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

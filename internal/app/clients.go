package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/studyforge-backend/internal/platform/gcp"
	"github.com/yungbote/studyforge-backend/internal/platform/gemini"
	"github.com/yungbote/studyforge-backend/internal/platform/kvstore"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
	"github.com/yungbote/studyforge-backend/internal/platform/youtube"
)

type Clients struct {
	KV      kvstore.Store
	Gemini  gemini.Client
	YouTube youtube.Client
	Bucket  gcp.BucketService
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// KV
	var kv kvstore.Store
	if cfg.RedisAddr != "" {
		store, err := kvstore.NewRedisStore(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis store: %w", err)
		}
		kv = store
	} else {
		kv = kvstore.NewMemoryStore()
	}

	// Gemini
	ai, err := gemini.NewClient(log)
	if err != nil {
		_ = kv.Close()
		return Clients{}, fmt.Errorf("init gemini client: %w", err)
	}

	// YouTube
	var videos youtube.Client
	yt, err := youtube.NewClient(ctx, log, cfg.YouTubeAPIKey)
	switch {
	case errors.Is(err, youtube.ErrMissingAPIKey):
		log.Warn("YOUTUBE_API_KEY is not set; video search disabled")
	case err != nil:
		_ = kv.Close()
		return Clients{}, fmt.Errorf("init youtube client: %w", err)
	default:
		videos = yt
	}

	// Gcs
	bucket, err := resolveBucketService(log, cfg)
	if err != nil {
		_ = kv.Close()
		return Clients{}, err
	}

	return Clients{KV: kv, Gemini: ai, YouTube: videos, Bucket: bucket}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.KV != nil {
		_ = c.KV.Close()
	}
}

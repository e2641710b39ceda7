package studymaterial

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/prompts"
	"github.com/yungbote/studyforge-backend/internal/platform/gemini"
	"github.com/yungbote/studyforge-backend/internal/platform/httpx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
	"github.com/yungbote/studyforge-backend/internal/platform/youtube"
)

const videoQuerySuffix = " tutorial programming education"

// sharedCallTimeout bounds a coalesced subtopic call, which outlives any single caller.
const sharedCallTimeout = 2 * time.Minute

// Pipeline turns a topic into subtopics and subtopic content. It holds no per-user state.
type Pipeline struct {
	log    *logger.Logger
	ai     gemini.Client
	videos youtube.Client
	group  singleflight.Group
}

// NewPipeline builds a pipeline. videos may be nil, in which case every
// subtopic gets an empty video list.
func NewPipeline(log *logger.Logger, ai gemini.Client, videos youtube.Client) *Pipeline {
	pl := log.With("service", "StudyMaterialPipeline")
	if videos == nil {
		pl.Warn("Video search disabled; subtopics will have no videos")
	}
	return &Pipeline{log: pl, ai: ai, videos: videos}
}

// ListSubtopics makes one gateway call. Concurrent calls for the same topic share it.
func (p *Pipeline) ListSubtopics(ctx context.Context, topic string) ([]domain.Subtopic, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.ErrInvalidArgument
	}
	ch := p.group.DoChan(strings.ToLower(topic), func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		prompt, err := prompts.Render(prompts.Subtopics, map[string]any{"Topic": topic})
		if err != nil {
			return nil, err
		}
		raw, err := p.ai.GenerateText(callCtx, prompt)
		if err != nil {
			return nil, classifyGatewayError("ListSubtopics", err)
		}
		res := ParseSubtopics(raw)
		if !res.OK {
			p.log.Warn("Subtopic response rejected", "topic", topic, "reason", res.Reason)
			return nil, &domain.ParseError{Op: "ListSubtopics", Message: res.Reason, Raw: res.Raw}
		}
		return res.Value, nil
	})
	var r singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r = <-ch:
	}
	if r.Err != nil {
		return nil, r.Err
	}
	subs := r.Val.([]domain.Subtopic)
	if r.Shared {
		subs = append([]domain.Subtopic(nil), subs...)
	}
	return subs, nil
}

// GenerateSubtopicContent runs the documentation, websites and videos steps in order.
// Only a documentation failure or a rate limit aborts; the other steps degrade to empty lists.
func (p *Pipeline) GenerateSubtopicContent(ctx context.Context, sub domain.Subtopic, topic string) (domain.SubtopicContent, error) {
	content := domain.SubtopicContent{Websites: []string{}, Videos: []domain.VideoRef{}}

	docPrompt, err := prompts.Render(prompts.Documentation, map[string]any{"Title": sub.Title, "Topic": topic})
	if err != nil {
		return content, err
	}
	doc, err := p.ai.GenerateText(ctx, docPrompt)
	if err != nil {
		return content, classifyGatewayError("Documentation", err)
	}
	content.Documentation = doc

	webPrompt, err := prompts.Render(prompts.Websites, map[string]any{"Title": sub.Title})
	if err != nil {
		return content, err
	}
	webRaw, err := p.ai.GenerateText(ctx, webPrompt)
	switch {
	case err != nil && isRateLimited(err):
		return content, &domain.RateLimitError{Op: "Websites", Cause: err}
	case err != nil:
		p.log.Warn("Website lookup failed", "subtopic", sub.Title, "error", err)
	default:
		if res := ParseWebsites(webRaw); res.OK {
			content.Websites = res.Value
		} else {
			p.log.Warn("Website response rejected", "subtopic", sub.Title, "reason", res.Reason)
		}
	}

	content.Videos = p.searchVideos(ctx, sub.Title)
	return content, nil
}

func (p *Pipeline) searchVideos(ctx context.Context, title string) []domain.VideoRef {
	out := []domain.VideoRef{}
	if p.videos == nil {
		return out
	}
	found, err := p.videos.SearchVideos(ctx, title+videoQuerySuffix)
	if err != nil {
		p.log.Warn("Video search failed", "subtopic", title, "error", err)
		return out
	}
	for _, v := range found {
		out = append(out, domain.VideoRef{
			ID:           v.ID,
			Title:        v.Title,
			Description:  v.Description,
			Thumbnail:    v.Thumbnail,
			ChannelTitle: v.ChannelTitle,
			PublishedAt:  v.PublishedAt,
		})
	}
	return out
}

func isRateLimited(err error) bool {
	return httpx.IsRateLimited(err) || strings.Contains(err.Error(), "429")
}

func classifyGatewayError(op string, err error) error {
	var (
		rl *domain.RateLimitError
		ge *domain.GenerationError
	)
	switch {
	case errors.As(err, &rl), errors.As(err, &ge):
		return err
	case isRateLimited(err):
		return &domain.RateLimitError{Op: op, Cause: err}
	default:
		return &domain.GenerationError{Op: op, Cause: err}
	}
}

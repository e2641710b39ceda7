package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

const maxResults = 3

var ErrMissingAPIKey = errors.New("missing YOUTUBE_API_KEY")

type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
}

// Client searches educational videos.
type Client interface {
	SearchVideos(ctx context.Context, query string) ([]Video, error)
}

// SearchError carries the mapped message for a failed search.
type SearchError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *SearchError) Error() string { return e.Message }

func (e *SearchError) Unwrap() error { return e.Err }

func (e *SearchError) HTTPStatusCode() int { return e.StatusCode }

type client struct {
	log *logger.Logger
	svc *yt.Service
}

// NewClient builds a search client authenticated with apiKey. Extra options are
// appended after the key (tests use option.WithEndpoint).
func NewClient(ctx context.Context, log *logger.Logger, apiKey string, opts ...option.ClientOption) (Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := yt.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("init youtube service: %w", err)
	}
	return &client{log: log.With("service", "YouTubeClient"), svc: svc}, nil
}

func (c *client) SearchVideos(ctx context.Context, query string) ([]Video, error) {
	resp, err := c.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(maxResults).
		VideoDuration("medium").
		RelevanceLanguage("en").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(err)
	}
	out := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Snippet == nil || item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		out = append(out, Video{
			ID:           item.Id.VideoId,
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			Thumbnail:    thumbnailURL(item.Snippet.Thumbnails),
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
		})
	}
	c.log.WithContext(ctx).Debug("YouTube search completed", "query", query, "results", len(out))
	return out, nil
}

func thumbnailURL(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	if t.Medium != nil && t.Medium.Url != "" {
		return t.Medium.Url
	}
	if t.Default != nil {
		return t.Default.Url
	}
	return ""
}

func mapError(err error) error {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return &SearchError{Message: "YouTube API error: " + err.Error(), Err: err}
	}
	switch gErr.Code {
	case http.StatusForbidden:
		return &SearchError{StatusCode: gErr.Code, Message: "YouTube API access forbidden. Please check your API key and quota.", Err: err}
	case http.StatusTooManyRequests:
		return &SearchError{StatusCode: gErr.Code, Message: "YouTube API rate limit exceeded.", Err: err}
	default:
		return &SearchError{StatusCode: gErr.Code, Message: fmt.Sprintf("YouTube API error: %d", gErr.Code), Err: err}
	}
}

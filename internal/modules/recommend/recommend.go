package recommend

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/prompts"
	"github.com/yungbote/studyforge-backend/internal/modules/studymaterial"
	"github.com/yungbote/studyforge-backend/internal/platform/gemini"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

// Fallback is returned when the gateway reply is not a list of titles.
var Fallback = []string{
	"Introduction to Programming",
	"Data Structures",
	"Web Development",
	"Machine Learning Basics",
	"Database Design",
}

const (
	historyLimit = 20
	maxTitles    = 5
)

// History is the slice of a user's activity the recommendation prompt sees.
type History struct {
	Tests   []*domain.TestResultRecord
	Chats   []*domain.ChatMessage
	Content []*domain.UploadedContent
}

type Recommender interface {
	// FromHistory asks the gateway for course titles. It never fails; any
	// gateway or parse problem yields Fallback.
	FromHistory(ctx context.Context, h History) []string
	// ForUser loads the user's recent history and calls FromHistory.
	ForUser(ctx context.Context, userID uuid.UUID) []string
}

type recommender struct {
	log     *logger.Logger
	ai      gemini.Client
	results repos.TestResultRepo
	chats   repos.ChatMessageRepo
	content repos.UploadedContentRepo
}

func New(log *logger.Logger, ai gemini.Client, results repos.TestResultRepo, chats repos.ChatMessageRepo, content repos.UploadedContentRepo) Recommender {
	return &recommender{
		log:     log.With("service", "Recommender"),
		ai:      ai,
		results: results,
		chats:   chats,
		content: content,
	}
}

type testEntry struct {
	Title      string    `json:"test_title"`
	Topic      string    `json:"topic"`
	Difficulty string    `json:"difficulty"`
	Percentage int       `json:"percentage"`
	CreatedAt  time.Time `json:"created_at"`
}

type chatEntry struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type contentEntry struct {
	Title     string    `json:"title"`
	FileType  string    `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}

type promptHistory struct {
	Tests   []testEntry    `json:"tests"`
	Chats   []chatEntry    `json:"chats"`
	Content []contentEntry `json:"content"`
}

func compact(h History) promptHistory {
	out := promptHistory{Tests: []testEntry{}, Chats: []chatEntry{}, Content: []contentEntry{}}
	for _, t := range h.Tests {
		out.Tests = append(out.Tests, testEntry{Title: t.TestTitle, Topic: t.Topic, Difficulty: t.Difficulty, Percentage: t.Percentage, CreatedAt: t.CreatedAt})
	}
	for _, c := range h.Chats {
		out.Chats = append(out.Chats, chatEntry{Message: c.Message, CreatedAt: c.CreatedAt})
	}
	for _, c := range h.Content {
		out.Content = append(out.Content, contentEntry{Title: c.Title, FileType: c.FileType, CreatedAt: c.CreatedAt})
	}
	return out
}

func (r *recommender) FromHistory(ctx context.Context, h History) []string {
	log := r.log.WithContext(ctx)
	raw, err := json.Marshal(compact(h))
	if err != nil {
		log.Error("Encoding recommendation history failed", "error", err)
		return fallback()
	}
	prompt, err := prompts.Render(prompts.Recommendations, map[string]any{"History": string(raw)})
	if err != nil {
		log.Error("Recommendation prompt failed", "error", err)
		return fallback()
	}
	reply, err := r.ai.GenerateText(ctx, prompt)
	if err != nil {
		log.Warn("Recommendation call failed", "error", err)
		return fallback()
	}
	titles, ok := ParseTitles(reply)
	if !ok {
		log.Warn("Recommendation reply rejected", "raw_len", len(reply))
		return fallback()
	}
	return titles
}

func (r *recommender) ForUser(ctx context.Context, userID uuid.UUID) []string {
	h := History{}
	log := r.log.WithContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.results.ListRecentByUserID(gctx, nil, userID, historyLimit)
		if err != nil {
			log.Warn("Recommendation history: loading tests failed", "error", err)
			return nil
		}
		h.Tests = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.chats.ListRecentByUserID(gctx, nil, userID, historyLimit)
		if err != nil {
			log.Warn("Recommendation history: loading chats failed", "error", err)
			return nil
		}
		h.Chats = rows
		return nil
	})
	g.Go(func() error {
		rows, err := r.content.ListByUserID(gctx, nil, userID, historyLimit)
		if err != nil {
			log.Warn("Recommendation history: loading uploads failed", "error", err)
			return nil
		}
		h.Content = rows
		return nil
	})
	_ = g.Wait()
	return r.FromHistory(ctx, h)
}

// ParseTitles reads a JSON array of strings. Blank entries are dropped and at
// most five titles are kept. ok is false when nothing usable remains.
func ParseTitles(raw string) ([]string, bool) {
	var items []string
	if err := json.Unmarshal([]byte(studymaterial.StripCodeFences(raw)), &items); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it); t != "" {
			out = append(out, t)
		}
		if len(out) == maxTitles {
			break
		}
	}
	return out, len(out) > 0
}

func fallback() []string {
	return append([]string(nil), Fallback...)
}

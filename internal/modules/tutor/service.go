package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/prompts"
	"github.com/yungbote/studyforge-backend/internal/platform/gemini"
	"github.com/yungbote/studyforge-backend/internal/platform/httpx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

// FailureMessage is shown when the tutor could not answer.
const FailureMessage = "Sorry, I encountered an error. Please try again."

const (
	historyLimit     = 20
	contextTestLimit = 5
	contextChatLimit = 10
	maxMessageLen    = 4000
)

type Service interface {
	// History returns the latest messages, oldest first.
	History(ctx context.Context, userID uuid.UUID) ([]*domain.ChatMessage, error)
	// Ask answers message with the user's recent tests and chats as context
	// and stores the exchange. Nothing is stored when the gateway fails.
	Ask(ctx context.Context, userID uuid.UUID, message string) (*domain.ChatMessage, error)
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	log     *logger.Logger
	ai      gemini.Client
	chats   repos.ChatMessageRepo
	results repos.TestResultRepo
}

func NewService(log *logger.Logger, ai gemini.Client, chats repos.ChatMessageRepo, results repos.TestResultRepo) Service {
	return &service{log: log.With("service", "TutorService"), ai: ai, chats: chats, results: results}
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]*domain.ChatMessage, error) {
	msgs, err := s.chats.ListRecentByUserID(ctx, nil, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	slices.Reverse(msgs)
	return msgs, nil
}

type testContext struct {
	TestTitle      string    `json:"test_title"`
	Topic          string    `json:"topic"`
	Difficulty     string    `json:"difficulty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	CreatedAt      time.Time `json:"created_at"`
}

type chatContext struct {
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

type promptContext struct {
	RecentTests []testContext `json:"recent_tests"`
	RecentChats []chatContext `json:"recent_chats"`
	UserID      uuid.UUID     `json:"user_id"`
}

// loadContext reads recent tests and chats in parallel. A failed read
// leaves its list empty.
func (s *service) loadContext(ctx context.Context, userID uuid.UUID) promptContext {
	pc := promptContext{RecentTests: []testContext{}, RecentChats: []chatContext{}, UserID: userID}
	log := s.log.WithContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tests, err := s.results.ListRecentByUserID(gctx, nil, userID, contextTestLimit)
		if err != nil {
			log.Warn("Tutor context: loading tests failed", "error", err)
			return nil
		}
		for _, t := range tests {
			pc.RecentTests = append(pc.RecentTests, testContext{
				TestTitle:      t.TestTitle,
				Topic:          t.Topic,
				Difficulty:     t.Difficulty,
				Score:          t.Score,
				TotalQuestions: t.TotalQuestions,
				Percentage:     t.Percentage,
				CreatedAt:      t.CreatedAt,
			})
		}
		return nil
	})
	g.Go(func() error {
		chats, err := s.chats.ListRecentByUserID(gctx, nil, userID, contextChatLimit)
		if err != nil {
			log.Warn("Tutor context: loading chats failed", "error", err)
			return nil
		}
		for _, c := range chats {
			pc.RecentChats = append(pc.RecentChats, chatContext{Message: c.Message, Response: c.Response, CreatedAt: c.CreatedAt})
		}
		return nil
	})
	_ = g.Wait()
	return pc
}

func (s *service) Ask(ctx context.Context, userID uuid.UUID, message string) (*domain.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidArgument)
	}
	if len(message) > maxMessageLen {
		return nil, fmt.Errorf("%w: message is longer than %d characters", domain.ErrInvalidArgument, maxMessageLen)
	}

	pc := s.loadContext(ctx, userID)
	ctxJSON, err := json.Marshal(pc)
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Render(prompts.Tutor, map[string]any{"Context": string(ctxJSON), "Message": message})
	if err != nil {
		return nil, err
	}

	reply, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		s.log.WithContext(ctx).Warn("Tutor reply failed", "error", err)
		if httpx.IsRateLimited(err) {
			return nil, &domain.RateLimitError{Op: "TutorAsk", Cause: err}
		}
		return nil, &domain.GenerationError{Op: "TutorAsk", Cause: err}
	}

	msg := &domain.ChatMessage{
		UserID:   userID,
		Message:  message,
		Response: reply,
		Context:  datatypes.JSON(ctxJSON),
	}
	return s.chats.Create(ctx, nil, msg)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.chats.DeleteByUserID(ctx, nil, userID)
	if err != nil {
		return 0, err
	}
	s.log.WithContext(ctx).Info("Cleared tutor history", "deleted", n)
	return n, nil
}

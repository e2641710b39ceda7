package performance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/prompts"
	"github.com/yungbote/studyforge-backend/internal/modules/studymaterial"
	"github.com/yungbote/studyforge-backend/internal/platform/gemini"
	"github.com/yungbote/studyforge-backend/internal/platform/httpx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PendingQueue hands a study topic to the study-material flow.
type PendingQueue interface {
	SetPending(ctx context.Context, userID uuid.UUID, action studymaterial.PendingAction) error
}

type Spreadsheet struct {
	FileName string
	Data     []byte
}

type Service interface {
	Report(ctx context.Context, userID uuid.UUID) (*Report, error)
	Insights(ctx context.Context, userID uuid.UUID) (string, error)
	ExportXLSX(ctx context.Context, userID uuid.UUID) (*Spreadsheet, error)
	// StudyRecommendation queues the overall recommendation. It fails with
	// ErrInvalidState when the history does not call for one.
	StudyRecommendation(ctx context.Context, userID uuid.UUID) (*studymaterial.PendingAction, error)
	StudyResult(ctx context.Context, userID, resultID uuid.UUID) (*studymaterial.PendingAction, error)
}

type service struct {
	log     *logger.Logger
	ai      gemini.Client
	results repos.TestResultRepo
	pending PendingQueue
	now     func() time.Time
}

func NewService(log *logger.Logger, ai gemini.Client, results repos.TestResultRepo, pending PendingQueue) Service {
	return &service{
		log:     log.With("service", "PerformanceService"),
		ai:      ai,
		results: results,
		pending: pending,
		now:     time.Now,
	}
}

func (s *service) Report(ctx context.Context, userID uuid.UUID) (*Report, error) {
	rows, err := s.results.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	rep := Analyze(rows)
	return &rep, nil
}

type insightEntry struct {
	TestTitle      string    `json:"test_title"`
	Topic          string    `json:"topic"`
	Difficulty     string    `json:"difficulty"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	TimeTaken      int       `json:"time_taken"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *service) Insights(ctx context.Context, userID uuid.UUID) (string, error) {
	log := s.log.WithContext(ctx)
	rows, err := s.results.ListByUserID(ctx, nil, userID)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: no test results yet", domain.ErrInvalidState)
	}
	entries := make([]insightEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, insightEntry{
			TestTitle:      r.TestTitle,
			Topic:          r.Topic,
			Difficulty:     r.Difficulty,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage,
			TimeTaken:      r.TimeTaken,
			CreatedAt:      r.CreatedAt,
		})
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	prompt, err := prompts.Render(prompts.Insights, map[string]any{"Results": string(raw)})
	if err != nil {
		return "", err
	}
	out, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		log.Warn("Performance insights failed", "tests", len(rows), "error", err)
		if httpx.IsRateLimited(err) {
			return "", &domain.RateLimitError{Op: "PerformanceInsights", Cause: err}
		}
		return "", &domain.GenerationError{Op: "PerformanceInsights", Cause: err}
	}
	return out, nil
}

func (s *service) ExportXLSX(ctx context.Context, userID uuid.UUID) (*Spreadsheet, error) {
	rep, err := s.Report(ctx, userID)
	if err != nil {
		return nil, err
	}
	data, err := WriteXLSX(*rep)
	if err != nil {
		s.log.WithContext(ctx).Error("Performance export failed", "error", err)
		return nil, err
	}
	return &Spreadsheet{
		FileName: fmt.Sprintf("performance_%s.xlsx", s.now().UTC().Format("2006-01-02")),
		Data:     data,
	}, nil
}

func (s *service) StudyRecommendation(ctx context.Context, userID uuid.UUID) (*studymaterial.PendingAction, error) {
	rep, err := s.Report(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rep.Recommendation == nil {
		return nil, fmt.Errorf("%w: no study recommendation for this history", domain.ErrInvalidState)
	}
	return s.queue(ctx, userID, *rep.Recommendation)
}

func (s *service) StudyResult(ctx context.Context, userID, resultID uuid.UUID) (*studymaterial.PendingAction, error) {
	rec, err := s.results.GetByID(ctx, nil, userID, resultID)
	if err != nil {
		return nil, err
	}
	return s.queue(ctx, userID, ResultRecommendation(rec))
}

func (s *service) queue(ctx context.Context, userID uuid.UUID, rec Recommendation) (*studymaterial.PendingAction, error) {
	action := studymaterial.PendingAction{Topic: rec.Topic, Reason: rec.Reason}
	if err := s.pending.SetPending(ctx, userID, action); err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("Queued study material", "topic", action.Topic)
	return &action, nil
}

package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/prompts"
	"github.com/yungbote/studyforge-backend/internal/platform/gemini"
	"github.com/yungbote/studyforge-backend/internal/platform/httpx"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type ServiceConfig struct {
	EvalTimeout time.Duration
	Retention   time.Duration
	Clock       Clock
}

type Service interface {
	Options() Options
	// Start generates the questions and starts the countdown. Any idle test
	// of the user is discarded.
	Start(ctx context.Context, userID uuid.UUID, cfg Config) (*View, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*View, error)
	Answer(ctx context.Context, userID, id uuid.UUID, index, option int) (*View, error)
	// Submit evaluates the test once; later calls return the stored result.
	Submit(ctx context.Context, userID, id uuid.UUID) (*View, error)
	Reset(ctx context.Context, userID, id uuid.UUID) error
	History(ctx context.Context, userID uuid.UUID) ([]*domain.TestResultRecord, error)
	// Sweep drops finished and abandoned sessions and returns how many went.
	Sweep(now time.Time) int
	// SweepExpired is Sweep as of the service clock.
	SweepExpired() int
	Close()
}

type service struct {
	log         *logger.Logger
	ai          gemini.Client
	results     repos.TestResultRepo
	sessions    *registry
	clock       Clock
	evalTimeout time.Duration
	retention   time.Duration
}

func NewService(log *logger.Logger, ai gemini.Client, results repos.TestResultRepo, cfg ServiceConfig) Service {
	s := &service{
		log:         log.With("service", "QuizService"),
		ai:          ai,
		results:     results,
		sessions:    newRegistry(),
		clock:       cfg.Clock,
		evalTimeout: cfg.EvalTimeout,
		retention:   cfg.Retention,
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.evalTimeout <= 0 {
		s.evalTimeout = 90 * time.Second
	}
	if s.retention <= 0 {
		s.retention = 30 * time.Minute
	}
	return s
}

func (s *service) Options() Options { return AvailableOptions() }

func (s *service) Start(ctx context.Context, userID uuid.UUID, cfg Config) (*View, error) {
	log := s.log.WithContext(ctx)
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompt, err := prompts.Render(prompts.QuizGenerate, map[string]any{
		"Count":      cfg.NumQuestions,
		"Topic":      cfg.Topic,
		"Difficulty": cfg.Difficulty,
	})
	if err != nil {
		return nil, err
	}
	raw, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		log.Warn("Question generation failed", "topic", cfg.Topic, "error", err)
		return nil, classifyGatewayError("GenerateQuestions", err)
	}
	qs, err := ParseQuestions(raw, cfg.NumQuestions)
	if err != nil {
		log.Warn("Generated questions rejected", "topic", cfg.Topic, "error", err)
		return nil, err
	}

	for _, old := range s.sessions.removeIdle(userID) {
		old.stopCountdown()
	}
	sess := newSession(ctx, userID, cfg, qs, s.clock.Now())
	s.sessions.put(sess)
	go s.countdown(sess, s.clock.NewTicker(time.Second))

	log.Info("Test started", "test_id", sess.ID, "topic", cfg.Topic, "questions", len(qs), "time_limit", cfg.TimeLimitSeconds())
	return sess.view(), nil
}

// countdown ticks once per second until the session stops or time runs out.
// Running out submits with the answers recorded so far.
func (s *service) countdown(sess *Session, tk Ticker) {
	defer tk.Stop()
	for {
		select {
		case <-sess.halt:
			return
		case <-tk.C():
			if sess.tick() {
				s.log.Info("Test time expired", "test_id", sess.ID)
				_ = s.submit(sess)
				return
			}
		}
	}
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*View, error) {
	sess, err := s.sessions.get(userID, id)
	if err != nil {
		return nil, err
	}
	return sess.view(), nil
}

func (s *service) Answer(ctx context.Context, userID, id uuid.UUID, index, option int) (*View, error) {
	sess, err := s.sessions.get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := sess.answer(index, option); err != nil {
		return nil, err
	}
	return sess.view(), nil
}

func (s *service) Submit(ctx context.Context, userID, id uuid.UUID) (*View, error) {
	sess, err := s.sessions.get(userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.submit(sess); err != nil {
		return nil, err
	}
	select {
	case <-sess.evalDone:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return sess.view(), nil
}

// submit evaluates and persists the session if this is the first submission.
// Evaluation runs on the session's detached context so it finishes even when
// the caller goes away.
func (s *service) submit(sess *Session) error {
	sheet, taken, first, err := sess.beginSubmit(s.clock.Now())
	if err != nil || !first {
		return err
	}
	ctx, cancel := context.WithTimeout(sess.base, s.evalTimeout)
	defer cancel()

	res := s.evaluate(ctx, sess.Config, sheet, taken)
	recordID := s.persist(ctx, sess, res)
	sess.finish(res, recordID, s.clock.Now())
	s.log.WithContext(ctx).Info("Test evaluated", "test_id", sess.ID, "score", res.Score, "correct", res.CorrectAnswers, "total", res.TotalQuestions)
	return nil
}

// evaluate always produces a result. Gateway or parse failures fall back to
// local scoring.
func (s *service) evaluate(ctx context.Context, cfg Config, sheet []answerSheet, taken int) *domain.TestResult {
	log := s.log.WithContext(ctx)
	prompt, err := evaluationPrompt(cfg, sheet, taken)
	if err != nil {
		log.Error("Evaluation prompt failed", "error", err)
		return localEvaluation(sheet, taken)
	}
	raw, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		log.Warn("Evaluation call failed; scoring locally", "error", err)
		return localEvaluation(sheet, taken)
	}
	parsed, err := parseEvaluation(raw, len(sheet))
	if err != nil {
		log.Warn("Evaluation rejected; scoring locally", "error", err)
		return localEvaluation(sheet, taken)
	}
	return normalize(parsed, sheet, taken)
}

func (s *service) persist(ctx context.Context, sess *Session, res *domain.TestResult) uuid.UUID {
	suggestions, _ := json.Marshal(res.Suggestions)
	detailed, _ := json.Marshal(res.DetailedResults)
	rec := &domain.TestResultRecord{
		UserID:          sess.UserID,
		TestTitle:       "Custom Test: " + sess.Config.Topic,
		Topic:           sess.Config.Topic,
		Difficulty:      sess.Config.Difficulty,
		TotalQuestions:  res.TotalQuestions,
		Score:           res.CorrectAnswers,
		Percentage:      res.Score,
		TimeTaken:       res.TimeTaken,
		TimeLimit:       sess.Config.TimeLimitSeconds(),
		Suggestions:     datatypes.JSON(suggestions),
		DetailedResults: datatypes.JSON(detailed),
	}
	saved, err := s.results.Create(ctx, nil, rec)
	if err != nil {
		var se *domain.StorageError
		code := domain.StorageInternal
		if errors.As(err, &se) {
			code = se.Code
		}
		s.log.WithContext(ctx).Error("Saving test result failed", "test_id", sess.ID, "code", code, "error", err)
		return uuid.Nil
	}
	return saved.ID
}

func (s *service) Reset(ctx context.Context, userID, id uuid.UUID) error {
	sess, err := s.sessions.get(userID, id)
	if err != nil {
		return err
	}
	if st := sess.State(); st == StateEvaluating {
		return fmt.Errorf("%w: test is %s", domain.ErrInvalidState, st)
	}
	s.sessions.remove(id)
	sess.stopCountdown()
	return nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID) ([]*domain.TestResultRecord, error) {
	return s.results.ListByUserID(ctx, nil, userID)
}

func (s *service) SweepExpired() int { return s.Sweep(s.clock.Now()) }

func (s *service) Sweep(now time.Time) int {
	gone := s.sessions.sweep(now, s.retention, s.evalTimeout)
	for _, sess := range gone {
		sess.stopCountdown()
	}
	if len(gone) > 0 {
		s.log.Debug("Swept test sessions", "count", len(gone), "remaining", s.sessions.size())
	}
	return len(gone)
}

// Close stops every countdown. Sessions are not evaluated.
func (s *service) Close() {
	for _, sess := range s.sessions.drain() {
		sess.stopCountdown()
	}
}

func classifyGatewayError(op string, err error) error {
	if httpx.IsRateLimited(err) || strings.Contains(err.Error(), "429") {
		return &domain.RateLimitError{Op: op, Cause: err}
	}
	return &domain.GenerationError{Op: op, Cause: err}
}

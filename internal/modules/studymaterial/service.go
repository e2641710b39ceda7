package studymaterial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type Config struct {
	SessionTTL time.Duration
	PendingTTL time.Duration
	LockTTL    time.Duration
}

// SubtopicView is one subtopic with its content split into display blocks.
type SubtopicView struct {
	Subtopic domain.Subtopic        `json:"subtopic"`
	Content  domain.SubtopicContent `json:"content"`
	Blocks   []ContentBlock         `json:"blocks"`
}

// AutoResult is the outcome of consuming a pending action.
type AutoResult struct {
	Reason  string   `json:"reason"`
	Session *Session `json:"session"`
}

type Service interface {
	Load(ctx context.Context, userID uuid.UUID) (*Session, error)
	// Generate starts over with topic and resolves the first batch. On a batch
	// error the returned session holds what was resolved before the failure.
	Generate(ctx context.Context, userID uuid.UUID, topic string) (*Session, error)
	GenerateMore(ctx context.Context, userID uuid.UUID) (*Session, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Subtopic(ctx context.Context, userID uuid.UUID, title string) (*SubtopicView, error)
	SetPending(ctx context.Context, userID uuid.UUID, action PendingAction) error
	// AutoGenerate consumes the pending action; it returns nil when none is queued.
	AutoGenerate(ctx context.Context, userID uuid.UUID) (*AutoResult, error)
}

type service struct {
	log      *logger.Logger
	pipeline *Pipeline
	sessions *SessionStore
	pending  *PendingStore
	lockTTL  time.Duration
}

func NewService(log *logger.Logger, pipeline *Pipeline, sessions *SessionStore, pending *PendingStore, cfg Config) Service {
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL(time.Minute)
	}
	return &service{
		log:      log.With("service", "StudyMaterialService"),
		pipeline: pipeline,
		sessions: sessions,
		pending:  pending,
		lockTTL:  lockTTL,
	}
}

func (s *service) Load(ctx context.Context, userID uuid.UUID) (*Session, error) {
	return s.sessions.Load(ctx, userID)
}

func (s *service) Generate(ctx context.Context, userID uuid.UUID, topic string) (*Session, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", domain.ErrInvalidArgument)
	}
	unlock, err := s.sessions.TryLock(ctx, userID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.generateLocked(ctx, userID, topic)
}

func (s *service) generateLocked(ctx context.Context, userID uuid.UUID, topic string) (*Session, error) {
	log := s.log.WithContext(ctx)
	if err := s.sessions.Clear(ctx, userID); err != nil {
		return nil, err
	}

	subs, err := s.pipeline.ListSubtopics(ctx, topic)
	if err != nil {
		log.Warn("Subtopic listing failed", "topic", topic, "error", err)
		return nil, err
	}

	sess := newSession(userID)
	sess.Topic = topic
	sess.AllSubtopics = subs
	batchErr := s.resolveBatch(ctx, sess)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if batchErr != nil {
		log.Warn("Study material batch failed", "topic", topic, "generated", sess.GeneratedCount, "resolved", len(sess.Content), "error", batchErr)
		return sess, batchErr
	}
	log.Info("Study material generated", "topic", topic, "subtopics", len(subs), "generated", sess.GeneratedCount)
	return sess, nil
}

func (s *service) GenerateMore(ctx context.Context, userID uuid.UUID) (*Session, error) {
	unlock, err := s.sessions.TryLock(ctx, userID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess.Empty() {
		return nil, fmt.Errorf("%w: no study material session", domain.ErrInvalidState)
	}
	if !sess.HasMore() {
		return sess, nil
	}
	batchErr := s.resolveBatch(ctx, sess)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	if batchErr != nil {
		s.log.WithContext(ctx).Warn("Study material batch failed", "topic", sess.Topic, "generated", sess.GeneratedCount, "error", batchErr)
		var ge *domain.GenerationError
		if errors.As(batchErr, &ge) {
			batchErr = &domain.GenerationError{Op: domain.OpGenerateMore, Cause: batchErr}
		}
		return sess, batchErr
	}
	return sess, nil
}

// resolveBatch fills content for the next BatchSize subtopics in list order.
// Subtopics that already have content are skipped. GeneratedCount only moves
// when the whole batch succeeded.
func (s *service) resolveBatch(ctx context.Context, sess *Session) error {
	end := min(sess.GeneratedCount+BatchSize, len(sess.AllSubtopics))
	for _, sub := range sess.AllSubtopics[sess.GeneratedCount:end] {
		if _, ok := sess.Content[sub.Title]; ok {
			continue
		}
		content, err := s.pipeline.GenerateSubtopicContent(ctx, sub, sess.Topic)
		if err != nil {
			return err
		}
		sess.Content[sub.Title] = content
	}
	sess.GeneratedCount = end
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.Clear(ctx, userID)
}

func (s *service) Subtopic(ctx context.Context, userID uuid.UUID, title string) (*SubtopicView, error) {
	sess, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub, ok := sess.find(title)
	if !ok {
		return nil, fmt.Errorf("%w: subtopic %q", domain.ErrNotFound, title)
	}
	content, ok := sess.Content[sub.Title]
	if !ok {
		return nil, fmt.Errorf("%w: subtopic %q has no content yet", domain.ErrNotFound, title)
	}
	return &SubtopicView{Subtopic: sub, Content: content, Blocks: ParseContentBlocks(content.Documentation)}, nil
}

func (s *service) SetPending(ctx context.Context, userID uuid.UUID, action PendingAction) error {
	return s.pending.SetPending(ctx, userID, action)
}

func (s *service) AutoGenerate(ctx context.Context, userID uuid.UUID) (*AutoResult, error) {
	unlock, err := s.sessions.TryLock(ctx, userID, s.lockTTL)
	if err != nil {
		return nil, err
	}
	defer unlock()

	action, err := s.pending.ConsumePending(ctx, userID)
	if err != nil || action == nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("Auto-generating study material", "topic", action.Topic)
	sess, err := s.generateLocked(ctx, userID, action.Topic)
	return &AutoResult{Reason: action.Reason, Session: sess}, err
}

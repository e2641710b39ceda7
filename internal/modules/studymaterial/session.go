package studymaterial

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/kvstore"
)

// BatchSize is the number of subtopics resolved per Generate/GenerateMore call.
const BatchSize = 3

// DefaultLockTTL covers the slowest batch: the subtopic listing plus three
// gateway calls per subtopic, each allowed up to callTimeout.
func DefaultLockTTL(callTimeout time.Duration) time.Duration {
	return time.Duration(3*BatchSize+1) * callTimeout
}

// Session is one user's study-material state for a single topic.
type Session struct {
	UserID         uuid.UUID                         `json:"-"`
	Topic          string                            `json:"topic"`
	AllSubtopics   []domain.Subtopic                 `json:"allSubtopics"`
	GeneratedCount int                               `json:"generatedCount"`
	Content        map[string]domain.SubtopicContent `json:"subtopicContent"`
}

func newSession(userID uuid.UUID) *Session {
	return &Session{
		UserID:       userID,
		AllSubtopics: []domain.Subtopic{},
		Content:      map[string]domain.SubtopicContent{},
	}
}

func (s *Session) Empty() bool { return s.Topic == "" }

func (s *Session) HasMore() bool { return s.GeneratedCount < len(s.AllSubtopics) }

// Generated returns the subtopics covered by GeneratedCount, in list order.
func (s *Session) Generated() []domain.Subtopic {
	n := min(s.GeneratedCount, len(s.AllSubtopics))
	return s.AllSubtopics[:n]
}

// Resolved returns the subtopics that have content, in list order.
func (s *Session) Resolved() []domain.Subtopic {
	out := []domain.Subtopic{}
	for _, sub := range s.AllSubtopics {
		if _, ok := s.Content[sub.Title]; ok {
			out = append(out, sub)
		}
	}
	return out
}

func (s *Session) find(title string) (domain.Subtopic, bool) {
	for _, sub := range s.AllSubtopics {
		if sub.Title == title {
			return sub, true
		}
	}
	return domain.Subtopic{}, false
}

// SessionStore persists sessions in a kvstore.Store, one key per field.
type SessionStore struct {
	kv  kvstore.Store
	ttl time.Duration
}

func NewSessionStore(kv kvstore.Store, ttl time.Duration) *SessionStore {
	return &SessionStore{kv: kv, ttl: ttl}
}

func sessionKey(userID uuid.UUID, field string) string {
	return fmt.Sprintf("studyMaterial:%s:%s", userID, field)
}

const (
	fieldTopic          = "topic"
	fieldAllSubtopics   = "allSubtopics"
	fieldGeneratedCount = "generatedCount"
	fieldContent        = "subtopicContent"
	fieldPending        = "pending"
	fieldLock           = "lock"
)

// Load returns the stored session, or an empty one when nothing is stored.
func (st *SessionStore) Load(ctx context.Context, userID uuid.UUID) (*Session, error) {
	s := newSession(userID)
	topic, err := st.kv.Get(ctx, sessionKey(userID, fieldTopic))
	if errors.Is(err, kvstore.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session topic: %w", err)
	}
	s.Topic = topic

	if raw, err := st.kv.Get(ctx, sessionKey(userID, fieldAllSubtopics)); err == nil {
		if err := json.Unmarshal([]byte(raw), &s.AllSubtopics); err != nil {
			return nil, fmt.Errorf("decode session subtopics: %w", err)
		}
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		return nil, fmt.Errorf("load session subtopics: %w", err)
	}

	if raw, err := st.kv.Get(ctx, sessionKey(userID, fieldGeneratedCount)); err == nil {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return nil, fmt.Errorf("decode session count: %w", convErr)
		}
		s.GeneratedCount = min(max(n, 0), len(s.AllSubtopics))
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		return nil, fmt.Errorf("load session count: %w", err)
	}

	if raw, err := st.kv.Get(ctx, sessionKey(userID, fieldContent)); err == nil {
		if err := json.Unmarshal([]byte(raw), &s.Content); err != nil {
			return nil, fmt.Errorf("decode session content: %w", err)
		}
		if s.Content == nil {
			s.Content = map[string]domain.SubtopicContent{}
		}
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		return nil, fmt.Errorf("load session content: %w", err)
	}
	return s, nil
}

func (st *SessionStore) Save(ctx context.Context, s *Session) error {
	subs, err := json.Marshal(s.AllSubtopics)
	if err != nil {
		return err
	}
	content, err := json.Marshal(s.Content)
	if err != nil {
		return err
	}
	writes := []struct{ field, value string }{
		{fieldTopic, s.Topic},
		{fieldAllSubtopics, string(subs)},
		{fieldGeneratedCount, strconv.Itoa(s.GeneratedCount)},
		{fieldContent, string(content)},
	}
	for _, w := range writes {
		if err := st.kv.Set(ctx, sessionKey(s.UserID, w.field), w.value, st.ttl); err != nil {
			return fmt.Errorf("save session %s: %w", w.field, err)
		}
	}
	return nil
}

func (st *SessionStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return st.kv.Del(ctx,
		sessionKey(userID, fieldTopic),
		sessionKey(userID, fieldAllSubtopics),
		sessionKey(userID, fieldGeneratedCount),
		sessionKey(userID, fieldContent),
	)
}

// TryLock takes the per-user generation lock. The lock expires after ttl and
// the returned release only removes it while this caller still owns it.
func (st *SessionStore) TryLock(ctx context.Context, userID uuid.UUID, ttl time.Duration) (func(), error) {
	key := sessionKey(userID, fieldLock)
	token := uuid.NewString()
	ok, err := st.kv.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire generation lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrGenerationInProgress
	}
	return func() { _, _ = st.kv.DelIfEqual(context.WithoutCancel(ctx), key, token) }, nil
}

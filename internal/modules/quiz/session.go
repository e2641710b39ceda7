package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyforge-backend/internal/domain"
)

type State string

const (
	StateConfiguring State = "configuring"
	StateGenerating  State = "generating"
	StateActive      State = "active"
	StateEvaluating  State = "evaluating"
	StateComplete    State = "complete"
	StateError       State = "error"
)

// Session is one running test. Generation happens before a Session exists,
// so a Session starts Active and only moves forward.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Config    Config
	Questions []domain.TestQuestion

	mu          sync.Mutex
	state       State
	answers     map[int]int
	current     int
	remaining   int
	startedAt   time.Time
	completedAt time.Time
	result      *domain.TestResult
	recordID    uuid.UUID

	// base carries the values of the starting request without its cancellation.
	base     context.Context
	halt     chan struct{}
	haltOnce sync.Once
	evalDone chan struct{}
}

func newSession(ctx context.Context, userID uuid.UUID, cfg Config, qs []domain.TestQuestion, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Config:    cfg,
		Questions: qs,
		state:     StateActive,
		answers:   map[int]int{},
		remaining: cfg.TimeLimitSeconds(),
		startedAt: now,
		base:      context.WithoutCancel(ctx),
		halt:      make(chan struct{}),
		evalDone:  make(chan struct{}),
	}
}

func (s *Session) stopCountdown() {
	s.haltOnce.Do(func() { close(s.halt) })
}

func (s *Session) answer(index, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return fmt.Errorf("%w: test is %s", domain.ErrInvalidState, s.state)
	}
	if index < 0 || index >= len(s.Questions) {
		return fmt.Errorf("%w: question index %d out of range", domain.ErrInvalidArgument, index)
	}
	if option < 0 || option >= optionsPerQuestion {
		return fmt.Errorf("%w: option %d out of range", domain.ErrInvalidArgument, option)
	}
	s.answers[index] = option
	s.current = index
	return nil
}

// tick counts one second down and reports whether time ran out.
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	return s.remaining == 0
}

// beginSubmit moves an Active session to Evaluating. first is false when a
// submission already happened; the caller then waits on evalDone.
func (s *Session) beginSubmit(now time.Time) (sheet []answerSheet, timeTaken int, first bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateActive:
	case StateEvaluating, StateComplete:
		return nil, 0, false, nil
	default:
		return nil, 0, false, fmt.Errorf("%w: test is %s", domain.ErrInvalidState, s.state)
	}
	s.state = StateEvaluating
	s.stopCountdown()
	timeTaken = int(now.Sub(s.startedAt) / time.Second)
	timeTaken = min(max(timeTaken, 0), s.Config.TimeLimitSeconds())
	return buildSheet(s.Questions, s.answers), timeTaken, true, nil
}

func (s *Session) finish(res *domain.TestResult, recordID uuid.UUID, now time.Time) {
	s.mu.Lock()
	s.result = res
	s.recordID = recordID
	s.state = StateComplete
	s.completedAt = now
	s.mu.Unlock()
	close(s.evalDone)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

type QuestionView struct {
	Index         int      `json:"index"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// View is the client-facing snapshot of a session. Correct answers and
// explanations are only included once the test is complete.
type View struct {
	ID            uuid.UUID          `json:"id"`
	State         State              `json:"state"`
	Config        Config             `json:"config"`
	Questions     []QuestionView     `json:"questions"`
	Answers       map[int]int        `json:"answers"`
	Current       int                `json:"currentQuestionIndex"`
	TimeRemaining int                `json:"timeRemaining"`
	StartedAt     time.Time          `json:"startedAt"`
	Result        *domain.TestResult `json:"result,omitempty"`
	ResultID      *uuid.UUID         `json:"resultId,omitempty"`
}

func (s *Session) view() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := &View{
		ID:            s.ID,
		State:         s.state,
		Config:        s.Config,
		Questions:     make([]QuestionView, len(s.Questions)),
		Answers:       make(map[int]int, len(s.answers)),
		Current:       s.current,
		TimeRemaining: s.remaining,
		StartedAt:     s.startedAt,
	}
	for k, a := range s.answers {
		v.Answers[k] = a
	}
	complete := s.state == StateComplete
	for i, q := range s.Questions {
		qv := QuestionView{Index: i, Question: q.Question, Options: append([]string(nil), q.Options...)}
		if complete {
			correct := q.CorrectAnswer
			qv.CorrectAnswer = &correct
			qv.Explanation = q.Explanation
		}
		v.Questions[i] = qv
	}
	if complete {
		v.Result = s.result
		if s.recordID != uuid.Nil {
			id := s.recordID
			v.ResultID = &id
		}
	}
	return v
}

// expired reports whether the sweeper may drop the session at now.
func (s *Session) expired(now time.Time, retention, evalTimeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateComplete:
		return now.Sub(s.completedAt) > retention
	case StateEvaluating:
		return now.Sub(s.startedAt) > time.Duration(s.Config.TimeLimitSeconds())*time.Second+evalTimeout+retention
	default:
		return now.Sub(s.startedAt) > time.Duration(s.Config.TimeLimitSeconds())*time.Second+retention
	}
}

type registry struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Session
}

func newRegistry() *registry {
	return &registry{byID: map[uuid.UUID]*Session{}}
}

func (r *registry) put(s *Session) {
	r.mu.Lock()
	r.byID[s.ID] = s
	r.mu.Unlock()
}

// get returns the session only to its owner.
func (r *registry) get(userID, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok || s.UserID != userID {
		return nil, fmt.Errorf("%w: test %s", domain.ErrNotFound, id)
	}
	return s, nil
}

func (r *registry) remove(id uuid.UUID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byID[id]
	delete(r.byID, id)
	return s
}

// removeIdle drops the user's sessions that are not being evaluated.
func (r *registry) removeIdle(userID uuid.UUID) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Session
	for id, s := range r.byID {
		if s.UserID == userID && s.State() != StateEvaluating {
			delete(r.byID, id)
			out = append(out, s)
		}
	}
	return out
}

func (r *registry) sweep(now time.Time, retention, evalTimeout time.Duration) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Session
	for id, s := range r.byID {
		if s.expired(now, retention, evalTimeout) {
			delete(r.byID, id)
			out = append(out, s)
		}
	}
	return out
}

func (r *registry) drain() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	r.byID = map[uuid.UUID]*Session{}
	return out
}

func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

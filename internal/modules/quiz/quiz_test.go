package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/platform/gemini"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) lastTicker() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[len(c.tickers)-1]
}

type fakeAI struct {
	mu        sync.Mutex
	generate  func() (string, error)
	evaluate  func(prompt string) (string, error)
	evalCalls int
	prompts   []string
}

func (f *fakeAI) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	isEval := strings.HasPrefix(prompt, "Evaluate this test")
	if isEval {
		f.evalCalls++
	}
	f.mu.Unlock()
	if isEval {
		if f.evaluate == nil {
			return "not json", nil
		}
		return f.evaluate(prompt)
	}
	return f.generate()
}

func (f *fakeAI) evaluations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.evalCalls
}

type fakeResults struct {
	mu    sync.Mutex
	saved []*domain.TestResultRecord
	err   error
}

func (f *fakeResults) Create(ctx context.Context, tx *gorm.DB, rec *domain.TestResultRecord) (*domain.TestResultRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rec.ID = uuid.New()
	f.saved = append(f.saved, rec)
	return rec, nil
}

func (f *fakeResults) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.TestResultRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*domain.TestResultRecord(nil), f.saved...), nil
}

func (f *fakeResults) ListRecentByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*domain.TestResultRecord, error) {
	return nil, nil
}

func (f *fakeResults) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeResults) GetByID(ctx context.Context, tx *gorm.DB, userID, id uuid.UUID) (*domain.TestResultRecord, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeResults) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func questionsJSON(n int) string {
	qs := make([]domain.TestQuestion, n)
	for i := range qs {
		qs[i] = domain.TestQuestion{
			Question:      fmt.Sprintf("Question %d?", i+1),
			Options:       []string{fmt.Sprintf("A%d", i), fmt.Sprintf("B%d", i), fmt.Sprintf("C%d", i), fmt.Sprintf("D%d", i)},
			CorrectAnswer: 1,
			Explanation:   "Because B.",
		}
	}
	b, _ := json.Marshal(qs)
	return string(b)
}

type harness struct {
	svc     *service
	clock   *fakeClock
	ai      *fakeAI
	results *fakeResults
	user    uuid.UUID
}

func newHarness(t *testing.T, n int) *harness {
	t.Helper()
	h := &harness{
		clock:   newFakeClock(),
		ai:      &fakeAI{generate: func() (string, error) { return "```json\n" + questionsJSON(n) + "\n```", nil }},
		results: &fakeResults{},
		user:    uuid.New(),
	}
	h.svc = NewService(logger.Nop(), h.ai, h.results, ServiceConfig{Clock: h.clock, Retention: 10 * time.Minute}).(*service)
	t.Cleanup(h.svc.Close)
	return h
}

func (h *harness) start(t *testing.T, cfg Config) *View {
	t.Helper()
	v, err := h.svc.Start(context.Background(), h.user, cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return v
}

func waitDone(t *testing.T, sess *Session) {
	t.Helper()
	select {
	case <-sess.evalDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("evaluation did not finish")
	}
}

func waitStopped(t *testing.T, tk *fakeTicker) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !tk.isStopped() {
		if time.Now().After(deadline) {
			t.Fatalf("countdown still running")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConfigDefaultsAndValidation(t *testing.T) {
	c := Config{Topic: "React"}.WithDefaults()
	if c.TimeLimit != 30 || c.NumQuestions != 10 || c.Difficulty != "medium" {
		t.Fatalf("defaults: got=%+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	bad := []Config{
		{Topic: "", Difficulty: "easy", NumQuestions: 5, TimeLimit: 15},
		{Topic: "Cooking", Difficulty: "easy", NumQuestions: 5, TimeLimit: 15},
		{Topic: "ML", Difficulty: "extreme", NumQuestions: 5, TimeLimit: 15},
		{Topic: "ML", Difficulty: "easy", NumQuestions: 7, TimeLimit: 15},
		{Topic: "ML", Difficulty: "easy", NumQuestions: 5, TimeLimit: 20},
	}
	for _, b := range bad {
		if err := b.Validate(); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("Validate(%+v): want ErrInvalidArgument got=%v", b, err)
		}
	}
}

func TestSanitizeQuestions(t *testing.T) {
	raw := "Here you go:\n```json\n[{\"question\":\"Q?\",\"options\":[\"a\",\"b\",\"c\",\"d\"],\"correctAnswer\":2,\"explanation\":\"x\",},]\n```\nGood luck"
	qs, err := ParseQuestions(raw, 5)
	if err != nil {
		t.Fatalf("ParseQuestions: %v", err)
	}
	if len(qs) != 1 || qs[0].CorrectAnswer != 2 {
		t.Fatalf("questions: got=%+v", qs)
	}
}

func TestParseQuestionsKeepsFirstN(t *testing.T) {
	qs, err := ParseQuestions(questionsJSON(12), 10)
	if err != nil {
		t.Fatalf("ParseQuestions: %v", err)
	}
	if len(qs) != 10 || qs[9].Question != "Question 10?" {
		t.Fatalf("questions: want=10 got=%d", len(qs))
	}
}

func TestParseQuestionsRejectsMalformed(t *testing.T) {
	cases := []string{
		"no json at all",
		"[]",
		`[{"question":"Q?","options":["a","b","c"],"correctAnswer":0}]`,
		`[{"question":"Q?","options":["a","b","c","d"],"correctAnswer":4}]`,
		`[{"question":"  ","options":["a","b","c","d"],"correctAnswer":0}]`,
	}
	for _, raw := range cases {
		_, err := ParseQuestions(raw, 5)
		var pe *domain.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ParseQuestions(%q): want ParseError got=%v", raw, err)
		}
	}
}

func TestStartParseFailureCreatesNoSession(t *testing.T) {
	h := newHarness(t, 5)
	h.ai.generate = func() (string, error) { return "I cannot do that", nil }
	_, err := h.svc.Start(context.Background(), h.user, Config{Topic: "Python"})
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Start: want ParseError got=%v", err)
	}
	if n := h.svc.sessions.size(); n != 0 {
		t.Fatalf("sessions: want=0 got=%d", n)
	}
}

func TestStartRateLimited(t *testing.T) {
	h := newHarness(t, 5)
	h.ai.generate = func() (string, error) { return "", &gemini.HTTPError{StatusCode: 429, Body: "quota"} }
	_, err := h.svc.Start(context.Background(), h.user, Config{Topic: "Python"})
	if !domain.IsRateLimit(err) {
		t.Fatalf("Start: want rate limit got=%v", err)
	}
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	h := newHarness(t, 5)
	v := h.start(t, Config{Topic: "ML", NumQuestions: 5, TimeLimit: 15})
	if v.TimeRemaining != 900 {
		t.Fatalf("time remaining: want=900 got=%d", v.TimeRemaining)
	}
	if _, err := h.svc.Answer(context.Background(), h.user, v.ID, 0, 1); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	tk := h.clock.lastTicker()
	for i := 0; i < 899; i++ {
		tk.ch <- time.Time{}
	}
	h.clock.Advance(15 * time.Minute)
	tk.ch <- time.Time{}

	sess, _ := h.svc.sessions.get(h.user, v.ID)
	waitDone(t, sess)

	got, err := h.svc.Submit(context.Background(), h.user, v.ID)
	if err != nil {
		t.Fatalf("Submit after expiry: %v", err)
	}
	if got.State != StateComplete || got.TimeRemaining != 0 {
		t.Fatalf("state: want=complete/0 got=%s/%d", got.State, got.TimeRemaining)
	}
	if n := h.ai.evaluations(); n != 1 {
		t.Fatalf("evaluations: want=1 got=%d", n)
	}
	if n := h.results.count(); n != 1 {
		t.Fatalf("saved results: want=1 got=%d", n)
	}
	if got.Result.TimeTaken != 900 || got.Result.CorrectAnswers != 1 {
		t.Fatalf("result: got=%+v", got.Result)
	}
	waitStopped(t, tk)
}

func TestSubmitEarlyWithLocalFallback(t *testing.T) {
	h := newHarness(t, 10)
	v := h.start(t, Config{Topic: "React", NumQuestions: 10, TimeLimit: 30})
	for i := 0; i < 10; i++ {
		opt := 1
		if i == 3 {
			opt = 0
		}
		if _, err := h.svc.Answer(context.Background(), h.user, v.ID, i, opt); err != nil {
			t.Fatalf("Answer %d: %v", i, err)
		}
	}
	h.clock.Advance(125 * time.Second)

	got, err := h.svc.Submit(context.Background(), h.user, v.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	res := got.Result
	if res.TimeTaken != 125 || res.TimeTaken >= 30*60 {
		t.Fatalf("time taken: want=125 got=%d", res.TimeTaken)
	}
	if len(res.DetailedResults) != 10 || res.CorrectAnswers != 9 || res.Score != 90 {
		t.Fatalf("result: got correct=%d score=%d details=%d", res.CorrectAnswers, res.Score, len(res.DetailedResults))
	}
	if res.DetailedResults[3].Explanation != "Incorrect answer" || res.DetailedResults[0].Explanation != "Correct answer!" {
		t.Fatalf("explanations: got=%q / %q", res.DetailedResults[3].Explanation, res.DetailedResults[0].Explanation)
	}
	if strings.Join(res.Suggestions, "|") != strings.Join(fallbackSuggestions, "|") {
		t.Fatalf("suggestions: got=%v", res.Suggestions)
	}

	rec := h.results.saved[0]
	if rec.TestTitle != "Custom Test: React" || rec.Score != 9 || rec.Percentage != 90 || rec.TimeLimit != 1800 || rec.TotalQuestions != 10 {
		t.Fatalf("saved record: got=%+v", rec)
	}
	if got.ResultID == nil || *got.ResultID != rec.ID {
		t.Fatalf("result id: got=%v want=%s", got.ResultID, rec.ID)
	}
}

func TestGatewayEvaluationIsNormalized(t *testing.T) {
	h := newHarness(t, 3)
	h.ai.evaluate = func(string) (string, error) {
		res := domain.TestResult{
			TotalQuestions: 7,
			CorrectAnswers: 3,
			Score:          100,
			TimeTaken:      9999,
			Suggestions:    []string{"Revisit gradients"},
			DetailedResults: []domain.DetailedResult{
				{Question: "x", UserAnswer: "B0", IsCorrect: true, Explanation: "Right."},
				{Question: "y", UserAnswer: "A1", IsCorrect: false, Explanation: "Wrong."},
				{Question: "z", UserAnswer: "whatever", IsCorrect: true},
			},
		}
		b, _ := json.Marshal(res)
		return "```json\n" + string(b) + "\n```", nil
	}
	v := h.start(t, Config{Topic: "ML", NumQuestions: 5, TimeLimit: 15})
	_, _ = h.svc.Answer(context.Background(), h.user, v.ID, 0, 1)
	_, _ = h.svc.Answer(context.Background(), h.user, v.ID, 1, 0)
	h.clock.Advance(61 * time.Second)

	got, err := h.svc.Submit(context.Background(), h.user, v.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	res := got.Result
	if res.TotalQuestions != 3 || res.CorrectAnswers != 1 || res.Score != 33 || res.TimeTaken != 61 {
		t.Fatalf("normalized: got total=%d correct=%d score=%d time=%d", res.TotalQuestions, res.CorrectAnswers, res.Score, res.TimeTaken)
	}
	last := res.DetailedResults[2]
	if last.IsCorrect || last.UserAnswer != notAnswered || last.Question != "Question 3?" || last.Explanation != "Incorrect answer" {
		t.Fatalf("unanswered detail: got=%+v", last)
	}
	if len(res.Suggestions) != 1 || res.Suggestions[0] != "Revisit gradients" {
		t.Fatalf("suggestions: got=%v", res.Suggestions)
	}
}

func TestEvaluationLengthMismatchFallsBack(t *testing.T) {
	h := newHarness(t, 5)
	h.ai.evaluate = func(string) (string, error) {
		return `{"totalQuestions":5,"correctAnswers":5,"score":100,"timeTaken":1,"suggestions":[],"detailedResults":[{"question":"q","userAnswer":"a","correctAnswer":"a","isCorrect":true,"explanation":"e"}]}`, nil
	}
	v := h.start(t, Config{Topic: "Python", NumQuestions: 5, TimeLimit: 15})
	got, err := h.svc.Submit(context.Background(), h.user, v.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.Result.CorrectAnswers != 0 || got.Result.Score != 0 || len(got.Result.DetailedResults) != 5 {
		t.Fatalf("fallback result: got=%+v", got.Result)
	}
}

func TestEvaluationPromptFormat(t *testing.T) {
	qs := []domain.TestQuestion{{Question: "What is 2+2?", Options: []string{"3", "4", "5", "6"}, CorrectAnswer: 1}}
	prompt, err := evaluationPrompt(Config{Topic: "Algorithms", Difficulty: "easy", TimeLimit: 15}, buildSheet(qs, map[int]int{}), 125)
	if err != nil {
		t.Fatalf("evaluationPrompt: %v", err)
	}
	for _, want := range []string{
		`Evaluate this test on "Algorithms" with easy difficulty level.`,
		"- Time Taken: 2 minutes 5 seconds",
		"1. Question: What is 2+2?\n   Student Answer: Not answered\n   Correct Answer: 4\n   Options: 3, 4, 5, 6",
		`"timeTaken": 125,`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestCorrectAnswersHiddenUntilComplete(t *testing.T) {
	h := newHarness(t, 5)
	v := h.start(t, Config{Topic: "Database", NumQuestions: 5, TimeLimit: 15})
	for _, q := range v.Questions {
		if q.CorrectAnswer != nil || q.Explanation != "" {
			t.Fatalf("active view leaks answer: %+v", q)
		}
	}
	done, err := h.svc.Submit(context.Background(), h.user, v.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if done.Questions[0].CorrectAnswer == nil || *done.Questions[0].CorrectAnswer != 1 {
		t.Fatalf("complete view: want correct answer 1 got=%v", done.Questions[0].CorrectAnswer)
	}
}

func TestAnswerValidationAndState(t *testing.T) {
	h := newHarness(t, 5)
	v := h.start(t, Config{Topic: "Algorithms", NumQuestions: 5, TimeLimit: 15})
	ctx := context.Background()
	if _, err := h.svc.Answer(ctx, h.user, v.ID, 5, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("index out of range: got=%v", err)
	}
	if _, err := h.svc.Answer(ctx, h.user, v.ID, 0, 4); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("option out of range: got=%v", err)
	}
	got, err := h.svc.Answer(ctx, h.user, v.ID, 2, 3)
	if err != nil || got.Current != 2 || got.Answers[2] != 3 {
		t.Fatalf("Answer: got=%+v err=%v", got, err)
	}
	if _, err := h.svc.Submit(ctx, h.user, v.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := h.svc.Answer(ctx, h.user, v.ID, 0, 0); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("answer after complete: got=%v", err)
	}
}

func TestSessionsAreOwned(t *testing.T) {
	h := newHarness(t, 5)
	v := h.start(t, Config{Topic: "React", NumQuestions: 5, TimeLimit: 15})
	if _, err := h.svc.Get(context.Background(), uuid.New(), v.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign Get: want ErrNotFound got=%v", err)
	}
}

func TestResetDiscardsSession(t *testing.T) {
	h := newHarness(t, 5)
	v := h.start(t, Config{Topic: "React", NumQuestions: 5, TimeLimit: 15})
	tk := h.clock.lastTicker()
	if err := h.svc.Reset(context.Background(), h.user, v.ID); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := h.svc.Get(context.Background(), h.user, v.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get after reset: want ErrNotFound got=%v", err)
	}
	waitStopped(t, tk)
	if n := h.ai.evaluations(); n != 0 {
		t.Fatalf("evaluations after reset: want=0 got=%d", n)
	}
}

func TestStartReplacesIdleSession(t *testing.T) {
	h := newHarness(t, 5)
	first := h.start(t, Config{Topic: "React", NumQuestions: 5, TimeLimit: 15})
	second := h.start(t, Config{Topic: "Python", NumQuestions: 5, TimeLimit: 15})
	if _, err := h.svc.Get(context.Background(), h.user, first.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("first session: want ErrNotFound got=%v", err)
	}
	if _, err := h.svc.Get(context.Background(), h.user, second.ID); err != nil {
		t.Fatalf("second session: %v", err)
	}
}

func TestSweepDropsFinishedSessions(t *testing.T) {
	h := newHarness(t, 5)
	v := h.start(t, Config{Topic: "ML", NumQuestions: 5, TimeLimit: 15})
	if _, err := h.svc.Submit(context.Background(), h.user, v.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if n := h.svc.Sweep(h.clock.Now().Add(5 * time.Minute)); n != 0 {
		t.Fatalf("early sweep: want=0 got=%d", n)
	}
	if n := h.svc.Sweep(h.clock.Now().Add(11 * time.Minute)); n != 1 {
		t.Fatalf("sweep: want=1 got=%d", n)
	}
}

func TestSweeperUsesServiceClock(t *testing.T) {
	h := newHarness(t, 5)
	v := h.start(t, Config{Topic: "ML", NumQuestions: 5, TimeLimit: 15})
	if _, err := h.svc.Submit(context.Background(), h.user, v.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	sw := NewSweeper(logger.Nop(), h.svc, time.Minute)
	sw.run()
	if got := h.svc.sessions.size(); got != 1 {
		t.Fatalf("sessions before retention: want=1 got=%d", got)
	}
	h.clock.Advance(11 * time.Minute)
	sw.run()
	if got := h.svc.sessions.size(); got != 0 {
		t.Fatalf("sessions after retention: want=0 got=%d", got)
	}
}

func TestStorageFailureDoesNotBlockResult(t *testing.T) {
	h := newHarness(t, 5)
	h.results.err = &domain.StorageError{Code: domain.StorageRetryable, Op: "TestResultRepo.Create", Cause: errors.New("down")}
	v := h.start(t, Config{Topic: "ML", NumQuestions: 5, TimeLimit: 15})
	got, err := h.svc.Submit(context.Background(), h.user, v.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.Result == nil || got.ResultID != nil {
		t.Fatalf("result: want result without id got=%+v", got)
	}
}

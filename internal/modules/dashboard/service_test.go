package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/data/repos/testutil"
	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/recommend"
)

type fakeRecs struct {
	got recommend.History
}

func (f *fakeRecs) FromHistory(ctx context.Context, h recommend.History) []string {
	f.got = h
	return []string{"Graph Theory"}
}

func (f *fakeRecs) ForUser(ctx context.Context, userID uuid.UUID) []string {
	return f.FromHistory(ctx, recommend.History{})
}

type failingResults struct {
	repos.TestResultRepo
}

func (failingResults) ListByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.TestResultRecord, error) {
	return nil, errors.New("connection reset")
}

type harness struct {
	svc     Service
	recs    *fakeRecs
	results repos.TestResultRepo
	chats   repos.ChatMessageRepo
	uploads repos.UploadedContentRepo
	prof    repos.ProfileRepo
}

func newHarness(t *testing.T, wrapResults func(repos.TestResultRepo) repos.TestResultRepo) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		recs:    &fakeRecs{},
		results: repos.NewTestResultRepo(db, log),
		chats:   repos.NewChatMessageRepo(db, log),
		uploads: repos.NewUploadedContentRepo(db, log),
		prof:    repos.NewProfileRepo(db, log),
	}
	results := h.results
	if wrapResults != nil {
		results = wrapResults(results)
	}
	h.svc = NewService(log, h.prof, results, h.chats, h.uploads, h.recs)
	return h
}

func seed(t *testing.T, h *harness, user uuid.UUID, base time.Time) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.prof.Upsert(ctx, nil, &domain.Profile{ID: user, Email: "ada@example.com", FullName: "Ada"}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	for i, tr := range []struct {
		topic          string
		correct, total int
	}{{"Go", 6, 10}, {"SQL", 8, 10}, {"Go", 9, 10}, {"React", 7, 10}} {
		rec := &domain.TestResultRecord{
			UserID: user, TestTitle: "Custom Test: " + tr.topic, Topic: tr.topic,
			Score: tr.correct, TotalQuestions: tr.total, Percentage: tr.correct * 10,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if _, err := h.results.Create(ctx, nil, rec); err != nil {
			t.Fatalf("seed result: %v", err)
		}
	}
	long := strings.Repeat("x", 80)
	if _, err := h.chats.Create(ctx, nil, &domain.ChatMessage{UserID: user, Message: long, Response: "ok", CreatedAt: base.Add(150 * time.Minute)}); err != nil {
		t.Fatalf("seed chat: %v", err)
	}
	if _, err := h.uploads.Create(ctx, nil, &domain.UploadedContent{UserID: user, Title: "lecture", Content: "body", FileType: "text/plain", CreatedAt: base.Add(5 * time.Hour)}); err != nil {
		t.Fatalf("seed upload: %v", err)
	}
}

func TestLoadAggregatesEverything(t *testing.T) {
	h := newHarness(t, nil)
	user := uuid.New()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	seed(t, h, user, base)

	d, err := h.svc.Load(context.Background(), user)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Profile == nil || d.Profile.Email != "ada@example.com" {
		t.Fatalf("profile: got=%+v", d.Profile)
	}
	want := Stats{TotalTests: 4, AverageScore: 75, TotalMessages: 1, UploadedContent: 1}
	if d.Stats != want {
		t.Fatalf("stats: want=%+v got=%+v", want, d.Stats)
	}
	if len(d.RecentActivity) != 5 {
		t.Fatalf("activity: want=5 got=%d", len(d.RecentActivity))
	}
	first, second := d.RecentActivity[0], d.RecentActivity[1]
	if first.Type != ActivityUpload || first.Title != "lecture" {
		t.Fatalf("activity[0]: got=%+v", first)
	}
	if second.Type != ActivityTest || second.Title != "Custom Test: React" || second.Score == nil || *second.Score != 70 {
		t.Fatalf("activity[1]: got=%+v", second)
	}
	if chat := d.RecentActivity[2]; chat.Type != ActivityChat || chat.Title != chatActivityTag || len([]rune(chat.Message)) != chatPreviewLen+3 {
		t.Fatalf("activity[2]: got=%+v", chat)
	}
	if len(d.Recommendations) != 1 || len(h.recs.got.Tests) != 4 || len(h.recs.got.Content) != 1 {
		t.Fatalf("recommendations: got=%v history=%+v", d.Recommendations, h.recs.got)
	}
}

func TestLoadDegradesOnFailedRead(t *testing.T) {
	h := newHarness(t, func(r repos.TestResultRepo) repos.TestResultRepo { return failingResults{r} })
	user := uuid.New()
	seed(t, h, user, time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC))

	d, err := h.svc.Load(context.Background(), user)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Stats.TotalTests != 0 || d.Stats.AverageScore != 0 || d.Stats.TotalMessages != 1 {
		t.Fatalf("stats: got=%+v", d.Stats)
	}
	for _, a := range d.RecentActivity {
		if a.Type == ActivityTest {
			t.Fatalf("activity should not list tests: got=%+v", a)
		}
	}
}

func TestLoadUnknownUser(t *testing.T) {
	h := newHarness(t, nil)
	d, err := h.svc.Load(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Profile != nil || d.Stats != (Stats{}) || len(d.RecentActivity) != 0 {
		t.Fatalf("dashboard: got=%+v", d)
	}
}

func TestAveragePercentIgnoresEmptyTests(t *testing.T) {
	got := averagePercent([]*domain.TestResultRecord{{Score: 1, TotalQuestions: 3}, {Score: 0, TotalQuestions: 0}})
	if got != 17 {
		t.Fatalf("average: want=17 got=%d", got)
	}
}

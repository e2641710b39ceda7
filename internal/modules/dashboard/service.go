package dashboard

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/studyforge-backend/internal/data/repos"
	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/recommend"
	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

const (
	recentPerKind   = 3
	recentLimit     = 5
	historyForRecs  = 20
	chatPreviewLen  = 50
	chatActivityTag = "TutorBot Conversation"
)

type ActivityKind string

const (
	ActivityTest   ActivityKind = "test"
	ActivityChat   ActivityKind = "chat"
	ActivityUpload ActivityKind = "upload"
)

type Stats struct {
	TotalTests      int64 `json:"totalTests"`
	AverageScore    int   `json:"averageScore"`
	TotalMessages   int64 `json:"totalMessages"`
	UploadedContent int64 `json:"uploadedContent"`
}

type Activity struct {
	Type    ActivityKind `json:"type"`
	Title   string       `json:"title"`
	Score   *int         `json:"score,omitempty"`
	Message string       `json:"message,omitempty"`
	Date    time.Time    `json:"date"`
}

type Dashboard struct {
	Profile         *domain.Profile `json:"profile"`
	Stats           Stats           `json:"stats"`
	RecentActivity  []Activity      `json:"recentActivity"`
	Recommendations []string        `json:"recommendations"`
}

type Service interface {
	// Load never fails on a single read; the affected part stays empty.
	Load(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
}

type service struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
	results  repos.TestResultRepo
	chats    repos.ChatMessageRepo
	uploads  repos.UploadedContentRepo
	recs     recommend.Recommender
}

func NewService(
	log *logger.Logger,
	profiles repos.ProfileRepo,
	results repos.TestResultRepo,
	chats repos.ChatMessageRepo,
	uploads repos.UploadedContentRepo,
	recs recommend.Recommender,
) Service {
	return &service{
		log:      log.With("service", "DashboardService"),
		profiles: profiles,
		results:  results,
		chats:    chats,
		uploads:  uploads,
		recs:     recs,
	}
}

func (s *service) Load(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	log := s.log.WithContext(ctx)
	var (
		profile     *domain.Profile
		tests       []*domain.TestResultRecord
		chats       []*domain.ChatMessage
		uploads     []*domain.UploadedContent
		chatCount   int64
		uploadCount int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.GetByID(gctx, nil, userID)
		if err != nil {
			log.Warn("Dashboard: loading profile failed", "error", err)
			return nil
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		rows, err := s.results.ListByUserID(gctx, nil, userID)
		if err != nil {
			log.Warn("Dashboard: loading tests failed", "error", err)
			return nil
		}
		tests = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.chats.ListRecentByUserID(gctx, nil, userID, historyForRecs)
		if err != nil {
			log.Warn("Dashboard: loading chats failed", "error", err)
			return nil
		}
		chats = rows
		n, err := s.chats.CountByUserID(gctx, nil, userID)
		if err != nil {
			log.Warn("Dashboard: counting chats failed", "error", err)
			n = int64(len(rows))
		}
		chatCount = n
		return nil
	})
	g.Go(func() error {
		rows, err := s.uploads.ListByUserID(gctx, nil, userID, historyForRecs)
		if err != nil {
			log.Warn("Dashboard: loading uploads failed", "error", err)
			return nil
		}
		uploads = rows
		n, err := s.uploads.CountByUserID(gctx, nil, userID)
		if err != nil {
			log.Warn("Dashboard: counting uploads failed", "error", err)
			n = int64(len(rows))
		}
		uploadCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recentTests := tests
	if len(recentTests) > historyForRecs {
		recentTests = recentTests[len(recentTests)-historyForRecs:]
	}
	return &Dashboard{
		Profile: profile,
		Stats: Stats{
			TotalTests:      int64(len(tests)),
			AverageScore:    averagePercent(tests),
			TotalMessages:   chatCount,
			UploadedContent: uploadCount,
		},
		RecentActivity:  recentActivity(tests, chats, uploads),
		Recommendations: s.recs.FromHistory(ctx, recommend.History{Tests: recentTests, Chats: chats, Content: uploads}),
	}, nil
}

// averagePercent recomputes each percentage from the raw counts.
func averagePercent(tests []*domain.TestResultRecord) int {
	if len(tests) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tests {
		if t.TotalQuestions > 0 {
			sum += float64(t.Score) / float64(t.TotalQuestions) * 100
		}
	}
	return int(math.Round(sum / float64(len(tests))))
}

// recentActivity merges the latest tests (ascending input), chats and
// uploads (newest-first input), newest first.
func recentActivity(tests []*domain.TestResultRecord, chats []*domain.ChatMessage, uploads []*domain.UploadedContent) []Activity {
	out := []Activity{}
	for _, t := range tests[max(0, len(tests)-recentPerKind):] {
		score := 0
		if t.TotalQuestions > 0 {
			score = int(math.Round(float64(t.Score) / float64(t.TotalQuestions) * 100))
		}
		out = append(out, Activity{Type: ActivityTest, Title: t.TestTitle, Score: &score, Date: t.CreatedAt})
	}
	for _, c := range chats[:min(len(chats), recentPerKind)] {
		out = append(out, Activity{Type: ActivityChat, Title: chatActivityTag, Message: preview(c.Message), Date: c.CreatedAt})
	}
	for _, u := range uploads[:min(len(uploads), recentPerKind)] {
		out = append(out, Activity{Type: ActivityUpload, Title: u.Title, Date: u.CreatedAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > recentLimit {
		out = out[:recentLimit]
	}
	return out
}

func preview(msg string) string {
	r := []rune(msg)
	if len(r) > chatPreviewLen {
		r = r[:chatPreviewLen]
	}
	return string(r) + "..."
}

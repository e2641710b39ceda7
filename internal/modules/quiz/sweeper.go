package quiz

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/yungbote/studyforge-backend/internal/platform/logger"
)

// Sweeper runs Service.Sweep on a fixed interval.
type Sweeper struct {
	log       *logger.Logger
	svc       Service
	scheduler *gocron.Scheduler
	interval  time.Duration
}

func NewSweeper(log *logger.Logger, svc Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Sweeper{
		log:       log.With("job", "QuizSessionSweeper"),
		svc:       svc,
		scheduler: s,
		interval:  interval,
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.run); err != nil {
		return fmt.Errorf("schedule quiz sweeper: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("Quiz session sweeper started", "interval", s.interval.String())
	return nil
}

func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

func (s *Sweeper) run() {
	if n := s.svc.SweepExpired(); n > 0 {
		s.log.Info("Swept quiz sessions", "count", n)
	}
}

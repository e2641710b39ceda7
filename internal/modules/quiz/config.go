package quiz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yungbote/studyforge-backend/internal/domain"
)

var (
	Topics        = []string{"Gen AI", "ML", "Python", "React", "JavaScript", "Data Structures", "Algorithms", "Web Development", "Database", "Cloud Computing"}
	Difficulties  = []string{"easy", "medium", "hard"}
	QuestionCount = []int{5, 10, 15, 20}
	TimeLimits    = []int{15, 30, 45, 60}
)

const (
	DefaultDifficulty    = "medium"
	DefaultQuestionCount = 10
	DefaultTimeLimit     = 30
	optionsPerQuestion   = 4
)

// Config describes a test before it is generated. TimeLimit is in minutes.
type Config struct {
	Topic        string `json:"topic"`
	Difficulty   string `json:"difficulty"`
	NumQuestions int    `json:"numQuestions"`
	TimeLimit    int    `json:"timeLimit"`
}

// WithDefaults fills zero values with the defaults.
func (c Config) WithDefaults() Config {
	c.Topic = strings.TrimSpace(c.Topic)
	c.Difficulty = strings.ToLower(strings.TrimSpace(c.Difficulty))
	if c.Difficulty == "" {
		c.Difficulty = DefaultDifficulty
	}
	if c.NumQuestions == 0 {
		c.NumQuestions = DefaultQuestionCount
	}
	if c.TimeLimit == 0 {
		c.TimeLimit = DefaultTimeLimit
	}
	return c
}

func (c Config) Validate() error {
	switch {
	case c.Topic == "":
		return fmt.Errorf("%w: topic is required", domain.ErrInvalidArgument)
	case !slices.Contains(Topics, c.Topic):
		return fmt.Errorf("%w: unknown topic %q", domain.ErrInvalidArgument, c.Topic)
	case !slices.Contains(Difficulties, c.Difficulty):
		return fmt.Errorf("%w: difficulty must be one of %v", domain.ErrInvalidArgument, Difficulties)
	case !slices.Contains(QuestionCount, c.NumQuestions):
		return fmt.Errorf("%w: number of questions must be one of %v", domain.ErrInvalidArgument, QuestionCount)
	case !slices.Contains(TimeLimits, c.TimeLimit):
		return fmt.Errorf("%w: time limit must be one of %v minutes", domain.ErrInvalidArgument, TimeLimits)
	}
	return nil
}

func (c Config) TimeLimitSeconds() int { return c.TimeLimit * 60 }

type Options struct {
	Topics        []string `json:"topics"`
	Difficulties  []string `json:"difficulties"`
	QuestionCount []int    `json:"questionCounts"`
	TimeLimits    []int    `json:"timeLimits"`
	Defaults      Config   `json:"defaults"`
}

func AvailableOptions() Options {
	return Options{
		Topics:        slices.Clone(Topics),
		Difficulties:  slices.Clone(Difficulties),
		QuestionCount: slices.Clone(QuestionCount),
		TimeLimits:    slices.Clone(TimeLimits),
		Defaults:      Config{Difficulty: DefaultDifficulty, NumQuestions: DefaultQuestionCount, TimeLimit: DefaultTimeLimit},
	}
}

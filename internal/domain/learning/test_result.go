package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TestQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type DetailedResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
}

// TestResult is the scored outcome of one submitted test.
type TestResult struct {
	TotalQuestions  int              `json:"totalQuestions"`
	CorrectAnswers  int              `json:"correctAnswers"`
	Score           int              `json:"score"`
	TimeTaken       int              `json:"timeTaken"`
	Suggestions     []string         `json:"suggestions"`
	DetailedResults []DetailedResult `json:"detailedResults"`
}

// TestResultRecord is the persisted row of a TestResult.
// Score holds the number of correct answers; Percentage holds 0..100.
type TestResultRecord struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	TestTitle       string         `gorm:"column:test_title;not null" json:"test_title"`
	Topic           string         `gorm:"column:topic;not null;index" json:"topic"`
	Difficulty      string         `gorm:"column:difficulty" json:"difficulty"`
	TotalQuestions  int            `gorm:"column:total_questions;not null" json:"total_questions"`
	Score           int            `gorm:"column:score;not null" json:"score"`
	Percentage      int            `gorm:"column:percentage;not null" json:"percentage"`
	TimeTaken       int            `gorm:"column:time_taken;not null" json:"time_taken"`
	TimeLimit       int            `gorm:"column:time_limit" json:"time_limit"`
	Suggestions     datatypes.JSON `gorm:"column:suggestions" json:"suggestions,omitempty"`
	DetailedResults datatypes.JSON `gorm:"column:detailed_results" json:"detailed_results,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (TestResultRecord) TableName() string { return "test_results" }

func (r *TestResultRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

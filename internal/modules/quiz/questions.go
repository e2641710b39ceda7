package quiz

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/studyforge-backend/internal/domain"
)

var (
	questionFenceRE = regexp.MustCompile("```json[\\s\\S]*?\\n|```")
	trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)
)

// SanitizeQuestions strips fences and trailing commas and cuts raw down to
// its outermost JSON array.
func SanitizeQuestions(raw string) string {
	s := strings.TrimSpace(questionFenceRE.ReplaceAllString(raw, ""))
	s = trailingCommaRE.ReplaceAllString(s, "$1")
	first, last := strings.Index(s, "["), strings.LastIndex(s, "]")
	if first != -1 && last > first {
		s = s[first : last+1]
	}
	return s
}

// ParseQuestions decodes and validates the generation response. At most
// want questions are kept; every kept question must be well formed.
func ParseQuestions(raw string, want int) ([]domain.TestQuestion, error) {
	var qs []domain.TestQuestion
	if err := json.Unmarshal([]byte(SanitizeQuestions(raw)), &qs); err != nil {
		return nil, &domain.ParseError{Op: "ParseQuestions", Message: "Could not parse the generated questions.", Raw: raw, Cause: err}
	}
	if len(qs) == 0 {
		return nil, &domain.ParseError{Op: "ParseQuestions", Message: "No questions were generated.", Raw: raw}
	}
	if len(qs) > want {
		qs = qs[:want]
	}
	for i := range qs {
		if err := validateQuestion(&qs[i]); err != nil {
			return nil, &domain.ParseError{Op: "ParseQuestions", Message: fmt.Sprintf("Question %d is invalid: %v.", i+1, err), Raw: raw}
		}
	}
	return qs, nil
}

func validateQuestion(q *domain.TestQuestion) error {
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return fmt.Errorf("empty question text")
	}
	if len(q.Options) != optionsPerQuestion {
		return fmt.Errorf("want %d options, got %d", optionsPerQuestion, len(q.Options))
	}
	for i, o := range q.Options {
		if q.Options[i] = strings.TrimSpace(o); q.Options[i] == "" {
			return fmt.Errorf("option %d is empty", i+1)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= optionsPerQuestion {
		return fmt.Errorf("correct answer %d out of range", q.CorrectAnswer)
	}
	return nil
}

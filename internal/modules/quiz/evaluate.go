package quiz

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/yungbote/studyforge-backend/internal/domain"
	"github.com/yungbote/studyforge-backend/internal/modules/prompts"
)

const notAnswered = "Not answered"

var (
	fallbackSuggestions = []string{"Review the topics you found challenging", "Practice more questions", "Focus on time management"}
	evalFenceRE         = regexp.MustCompile("```json\\n?|\\n?```")
)

// answerSheet is the authoritative view of what the student answered.
type answerSheet struct {
	question string
	user     string
	correct  string
	options  []string
	answered bool
}

func buildSheet(qs []domain.TestQuestion, answers map[int]int) []answerSheet {
	out := make([]answerSheet, len(qs))
	for i, q := range qs {
		a := answerSheet{question: q.Question, user: notAnswered, correct: q.Options[q.CorrectAnswer], options: q.Options}
		if opt, ok := answers[i]; ok {
			a.user, a.answered = q.Options[opt], true
		}
		out[i] = a
	}
	return out
}

func evaluationPrompt(cfg Config, sheet []answerSheet, timeTaken int) (string, error) {
	entries := make([]string, len(sheet))
	for i, a := range sheet {
		entries[i] = fmt.Sprintf("%d. Question: %s\n   Student Answer: %s\n   Correct Answer: %s\n   Options: %s",
			i+1, a.question, a.user, a.correct, strings.Join(a.options, ", "))
	}
	return prompts.Render(prompts.QuizEvaluate, map[string]any{
		"Topic":            cfg.Topic,
		"Difficulty":       cfg.Difficulty,
		"Total":            len(sheet),
		"TimeLimitMinutes": cfg.TimeLimit,
		"TakenMinutes":     timeTaken / 60,
		"TakenSeconds":     timeTaken % 60,
		"Answers":          strings.Join(entries, "\n\n"),
		"TimeTaken":        timeTaken,
	})
}

// parseEvaluation decodes the gateway evaluation. It fails when the JSON is
// malformed or does not cover every question.
func parseEvaluation(raw string, total int) (*domain.TestResult, error) {
	cleaned := strings.TrimSpace(evalFenceRE.ReplaceAllString(raw, ""))
	var res domain.TestResult
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return nil, &domain.ParseError{Op: "ParseEvaluation", Message: "Could not parse the evaluation.", Raw: raw, Cause: err}
	}
	if len(res.DetailedResults) != total {
		return nil, &domain.ParseError{
			Op:      "ParseEvaluation",
			Message: fmt.Sprintf("Evaluation covers %d of %d questions.", len(res.DetailedResults), total),
			Raw:     raw,
		}
	}
	return &res, nil
}

// normalize makes a gateway result consistent with the answer sheet: the
// question set and answers come from the sheet, unanswered questions are
// never correct and the totals are recomputed.
func normalize(res *domain.TestResult, sheet []answerSheet, timeTaken int) *domain.TestResult {
	out := &domain.TestResult{
		TotalQuestions:  len(sheet),
		TimeTaken:       timeTaken,
		Suggestions:     cleanSuggestions(res.Suggestions),
		DetailedResults: make([]domain.DetailedResult, len(sheet)),
	}
	for i, a := range sheet {
		d := res.DetailedResults[i]
		d.Question, d.UserAnswer, d.CorrectAnswer = a.question, a.user, a.correct
		if !a.answered {
			d.IsCorrect = false
		}
		if strings.TrimSpace(d.Explanation) == "" {
			d.Explanation = localExplanation(d.IsCorrect)
		}
		if d.IsCorrect {
			out.CorrectAnswers++
		}
		out.DetailedResults[i] = d
	}
	out.Score = percent(out.CorrectAnswers, out.TotalQuestions)
	return out
}

// localEvaluation scores by exact match of the chosen and correct option text.
func localEvaluation(sheet []answerSheet, timeTaken int) *domain.TestResult {
	out := &domain.TestResult{
		TotalQuestions:  len(sheet),
		TimeTaken:       timeTaken,
		Suggestions:     append([]string(nil), fallbackSuggestions...),
		DetailedResults: make([]domain.DetailedResult, len(sheet)),
	}
	for i, a := range sheet {
		ok := a.answered && a.user == a.correct
		if ok {
			out.CorrectAnswers++
		}
		out.DetailedResults[i] = domain.DetailedResult{
			Question:      a.question,
			UserAnswer:    a.user,
			CorrectAnswer: a.correct,
			IsCorrect:     ok,
			Explanation:   localExplanation(ok),
		}
	}
	out.Score = percent(out.CorrectAnswers, out.TotalQuestions)
	return out
}

func localExplanation(correct bool) string {
	if correct {
		return "Correct answer!"
	}
	return "Incorrect answer"
}

func cleanSuggestions(in []string) []string {
	out := []string{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return append(out, fallbackSuggestions...)
	}
	return out
}

func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

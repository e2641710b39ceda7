package performance

import (
	"fmt"
	"math"
	"time"

	"github.com/yungbote/studyforge-backend/internal/domain"
)

// GeneralTopic is recommended when no single topic stands out.
const GeneralTopic = "General Learning"

const (
	recommendBelowAverage = 70
	recommendBelowTopic   = 60
	recommendUnderTests   = 3
	chartDateLayout       = "1/2/2006"
)

type Stats struct {
	TotalTests    int `json:"totalTests"`
	AverageScore  int `json:"averageScore"`
	BestScore     int `json:"bestScore"`
	WorstScore    int `json:"worstScore"`
	Improvement   int `json:"improvement"`
	TotalTime     int `json:"totalTime"`
	TopicsCovered int `json:"topicsCovered"`
}

type ChartPoint struct {
	Test  string `json:"test"`
	Score int    `json:"score"`
	Date  string `json:"date"`
	Topic string `json:"topic"`
}

type TopicCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ScoredResult is a stored result with its percentage recomputed from the
// raw counts.
type ScoredResult struct {
	*domain.TestResultRecord
	Percent int `json:"percent"`
}

type Recommendation struct {
	Topic  string `json:"topic"`
	Reason string `json:"reason"`
}

type Report struct {
	Stats          Stats                      `json:"stats"`
	Chart          []ChartPoint               `json:"chart"`
	Topics         []TopicCount               `json:"topicDistribution"`
	ByTopic        map[string][]ScoredResult  `json:"byTopic"`
	Results        []*domain.TestResultRecord `json:"results"`
	Recommendation *Recommendation            `json:"recommendation,omitempty"`
}

// Percent is correct/total*100, or 0 for an empty test.
func Percent(r *domain.TestResultRecord) float64 {
	if r.TotalQuestions <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalQuestions) * 100
}

func round(f float64) int {
	return int(math.Round(f))
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Analyze summarizes results, which must be ordered oldest first.
func Analyze(results []*domain.TestResultRecord) Report {
	rep := Report{
		Chart:   []ChartPoint{},
		Topics:  []TopicCount{},
		ByTopic: map[string][]ScoredResult{},
		Results: results,
	}
	if rep.Results == nil {
		rep.Results = []*domain.TestResultRecord{}
	}
	n := len(results)
	if n == 0 {
		return rep
	}

	scores := make([]float64, n)
	best, worst := math.Inf(-1), math.Inf(1)
	topicIndex := map[string]int{}
	topicScores := map[string][]float64{}
	for i, r := range results {
		p := Percent(r)
		scores[i] = p
		best = math.Max(best, p)
		worst = math.Min(worst, p)
		rep.Stats.TotalTime += r.TimeTaken

		rep.Chart = append(rep.Chart, ChartPoint{
			Test:  fmt.Sprintf("Test %d", i+1),
			Score: round(p),
			Date:  r.CreatedAt.In(time.UTC).Format(chartDateLayout),
			Topic: r.Topic,
		})
		if idx, ok := topicIndex[r.Topic]; ok {
			rep.Topics[idx].Value++
		} else {
			topicIndex[r.Topic] = len(rep.Topics)
			rep.Topics = append(rep.Topics, TopicCount{Name: r.Topic, Value: 1})
		}
		rep.ByTopic[r.Topic] = append(rep.ByTopic[r.Topic], ScoredResult{TestResultRecord: r, Percent: round(p)})
		topicScores[r.Topic] = append(topicScores[r.Topic], p)
	}

	half := n / 2
	rep.Stats.TotalTests = n
	rep.Stats.AverageScore = round(mean(scores))
	rep.Stats.BestScore = round(best)
	rep.Stats.WorstScore = round(worst)
	rep.Stats.TopicsCovered = len(rep.Topics)
	if half > 0 && n-half > 0 {
		rep.Stats.Improvement = round(mean(scores[half:]) - mean(scores[:half]))
	}

	// Ties keep the topic seen first; a topic averaging exactly 100 never wins.
	worstTopic, worstAvg := "", 100.0
	for _, tc := range rep.Topics {
		if avg := mean(topicScores[tc.Name]); avg < worstAvg {
			worstTopic, worstAvg = tc.Name, avg
		}
	}

	avg := rep.Stats.AverageScore
	var reason string
	switch {
	case avg < recommendBelowAverage:
		reason = fmt.Sprintf("Your average score is %d%%. Let's improve your understanding.", avg)
	case worstAvg < recommendBelowTopic:
		reason = fmt.Sprintf("You're struggling with %s. Let's strengthen this area.", worstTopic)
	case n < recommendUnderTests:
		reason = fmt.Sprintf("You've taken %d tests. Let's explore more topics.", n)
	default:
		return rep
	}
	topic := worstTopic
	if topic == "" {
		topic = GeneralTopic
	}
	rep.Recommendation = &Recommendation{Topic: topic, Reason: reason}
	return rep
}

// ResultRecommendation is the study suggestion for a single result.
func ResultRecommendation(r *domain.TestResultRecord) Recommendation {
	return Recommendation{
		Topic:  r.Topic,
		Reason: fmt.Sprintf("You scored %d%% on \"%s\". Let's improve your understanding of %s.", round(Percent(r)), r.TestTitle, r.Topic),
	}
}

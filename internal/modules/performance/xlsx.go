package performance

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	historySheet = "History"
	summarySheet = "Summary"
)

var historyHeader = []any{"Date", "Test", "Topic", "Difficulty", "Correct", "Questions", "Score %", "Time Taken (s)", "Time Limit (s)"}

// WriteXLSX renders the report as a workbook with a row per result and a
// summary sheet.
func WriteXLSX(rep Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", historySheet)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("xlsx: add %s sheet: %w", summarySheet, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}

	if err := f.SetSheetRow(historySheet, "A1", &historyHeader); err != nil {
		return nil, fmt.Errorf("xlsx: history header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(historyHeader))
	if err := f.SetCellStyle(historySheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("xlsx: history header style: %w", err)
	}
	for i, r := range rep.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			r.CreatedAt.In(time.UTC).Format("2006-01-02 15:04"),
			r.TestTitle,
			r.Topic,
			r.Difficulty,
			r.Score,
			r.TotalQuestions,
			round(Percent(r)),
			r.TimeTaken,
			r.TimeLimit,
		}
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx: history row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(historySheet, "A", "B", 24); err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Metric", "Value"},
		{"Total Tests", rep.Stats.TotalTests},
		{"Average Score %", rep.Stats.AverageScore},
		{"Best Score %", rep.Stats.BestScore},
		{"Worst Score %", rep.Stats.WorstScore},
		{"Improvement", rep.Stats.Improvement},
		{"Total Time (s)", rep.Stats.TotalTime},
		{"Topics Covered", rep.Stats.TopicsCovered},
	}
	if rep.Recommendation != nil {
		summary = append(summary,
			[]any{"Recommended Topic", rep.Recommendation.Topic},
			[]any{"Reason", rep.Recommendation.Reason},
		)
	}
	for i := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &summary[i]); err != nil {
			return nil, fmt.Errorf("xlsx: summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}

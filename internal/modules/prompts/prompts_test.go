package prompts

import (
	"strings"
	"testing"
)

func TestRenderSubtopicsExact(t *testing.T) {
	got, err := Render(Subtopics, map[string]any{"Topic": "React"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := `For the topic "React", list the 5-8 most important subtopics as a JSON array of objects. Each object must have a 'title' (string) and a 'summary' (string). Do NOT include any explanation or text outside the JSON array. Example: [{"title": "Stack", "summary": "A stack is a linear data structure..."}, ...]`
	if got != want {
		t.Fatalf("subtopics prompt:\nwant=%s\ngot=%s", want, got)
	}
}

func TestRenderQuizGenerate(t *testing.T) {
	got := MustRender(QuizGenerate, map[string]any{"Count": 5, "Topic": "Python", "Difficulty": "hard"})
	for _, want := range []string{
		`Create 5 multiple choice questions about "Python" with hard difficulty level.`,
		`"correctAnswer": 0,`,
		"appropriate for hard level.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("quiz prompt missing %q:\n%s", want, got)
		}
	}
}

func TestRenderMissingKeyFails(t *testing.T) {
	if _, err := Render(Documentation, map[string]any{"Title": "Hooks"}); err == nil {
		t.Fatalf("expected error for missing Topic")
	}
	if _, err := Render(Name("nope"), nil); err == nil {
		t.Fatalf("expected error for unknown prompt")
	}
}

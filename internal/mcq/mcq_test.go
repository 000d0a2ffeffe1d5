package mcq

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/candidate"
)

// stubGenerator replays a canned completion.
type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) GenerateContent(context.Context, string) (string, error) {
	return s.response, s.err
}

func (s *stubGenerator) Model() string { return "stub" }

const validResponse = "```json\n" + `[
  {"question": "What does ACID stand for?", "options": ["a", "b", "c", "d"], "correct_answer": 2},
  {"question": "Pick the Go keyword", "options": ["defer", "yield", "async", "await"], "correct_answer": 0}
]` + "\n```"

func TestGenerate(t *testing.T) {
	g := NewGenerator(&stubGenerator{response: validResponse}, zap.NewNop())

	questions := g.Generate(context.Background(), "Go backend role", 2)
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Question != "What does ACID stand for?" || questions[0].CorrectAnswer != 2 {
		t.Fatalf("unexpected first question: %+v", questions[0])
	}
	for i, q := range questions {
		if q.ID != i {
			t.Fatalf("expected sequential ids, got %d at %d", q.ID, i)
		}
	}
}

func TestGeneratePadsShortOutput(t *testing.T) {
	g := NewGenerator(&stubGenerator{response: validResponse}, zap.NewNop())

	questions := g.Generate(context.Background(), "Go backend role", 5)
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions after padding, got %d", len(questions))
	}
	// The generated questions come first, the fallback bank fills the rest.
	if questions[0].Question != "What does ACID stand for?" {
		t.Fatalf("expected the generated question first, got %q", questions[0].Question)
	}
	if questions[2].Question != "What does API stand for?" {
		t.Fatalf("expected a fallback question, got %q", questions[2].Question)
	}
	for i, q := range questions {
		if q.ID != i {
			t.Fatalf("expected renumbered ids, got %d at %d", q.ID, i)
		}
	}
}

func TestGenerateFallsBackOnError(t *testing.T) {
	g := NewGenerator(&stubGenerator{err: fmt.Errorf("model overloaded")}, zap.NewNop())

	questions := g.Generate(context.Background(), "role", 5)
	if len(questions) != 5 {
		t.Fatalf("expected the full fallback bank, got %d", len(questions))
	}
	if questions[0].Question != "What does API stand for?" {
		t.Fatalf("unexpected first fallback question: %q", questions[0].Question)
	}
}

func TestGenerateFallsBackOnGarbage(t *testing.T) {
	g := NewGenerator(&stubGenerator{response: "sorry, I can't do that"}, zap.NewNop())

	questions := g.Generate(context.Background(), "role", 3)
	if len(questions) != 3 {
		t.Fatalf("expected 3 fallback questions, got %d", len(questions))
	}
}

func TestGenerateSkipsMalformedQuestions(t *testing.T) {
	response := `[
  {"question": "ok", "options": ["a", "b", "c", "d"], "correct_answer": 1},
  {"question": "", "options": ["a", "b", "c", "d"], "correct_answer": 1},
  {"question": "three options", "options": ["a", "b", "c"], "correct_answer": 1},
  {"question": "answer out of range", "options": ["a", "b", "c", "d"], "correct_answer": 4}
]`
	g := NewGenerator(&stubGenerator{response: response}, zap.NewNop())

	questions := g.Generate(context.Background(), "role", 1)
	if len(questions) != 1 || questions[0].Question != "ok" {
		t.Fatalf("expected only the valid question, got %+v", questions)
	}
}

func TestGenerateDefaultCount(t *testing.T) {
	g := NewGenerator(nil, zap.NewNop())

	// Without a generator only the 5-question fallback bank is available.
	questions := g.Generate(context.Background(), "role", 0)
	if len(questions) != len(fallbackQuestions()) {
		t.Fatalf("expected the whole fallback bank, got %d", len(questions))
	}
}

func sampleQuestions() []candidate.TestQuestion {
	return []candidate.TestQuestion{
		{ID: 0, Question: "q0", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1},
		{ID: 1, Question: "q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 3},
		{ID: 2, Question: "q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
	}
}

func TestGrade(t *testing.T) {
	result := Grade(map[int]int{0: 1, 1: 2, 2: 0}, sampleQuestions())

	if result.CorrectCount != 2 || result.TotalQuestions != 3 {
		t.Fatalf("expected 2/3 correct, got %+v", result)
	}
	if result.ScorePercent != 66.67 {
		t.Fatalf("expected 66.67, got %v", result.ScorePercent)
	}
	if len(result.Details) != 3 {
		t.Fatalf("expected 3 details, got %d", len(result.Details))
	}
	if result.Details[1].IsCorrect || result.Details[1].Selected == nil || *result.Details[1].Selected != 2 {
		t.Fatalf("unexpected detail for the wrong answer: %+v", result.Details[1])
	}
}

func TestGradeUnansweredCountsWrong(t *testing.T) {
	result := Grade(map[int]int{0: 1}, sampleQuestions())

	if result.CorrectCount != 1 {
		t.Fatalf("expected 1 correct, got %d", result.CorrectCount)
	}
	if result.ScorePercent != 33.33 {
		t.Fatalf("expected 33.33, got %v", result.ScorePercent)
	}
	if result.Details[2].Selected != nil {
		t.Fatal("expected no selection recorded for the unanswered question")
	}
}

func TestGradeEmptyTest(t *testing.T) {
	result := Grade(map[int]int{0: 1}, nil)

	if result.ScorePercent != 0 || result.TotalQuestions != 0 {
		t.Fatalf("expected a zero grade for an empty test, got %+v", result)
	}
}

func TestGradePerfectScore(t *testing.T) {
	result := Grade(map[int]int{0: 1, 1: 3, 2: 0}, sampleQuestions())

	if result.ScorePercent != 100 {
		t.Fatalf("expected 100, got %v", result.ScorePercent)
	}
}

package cmd

import (
	"testing"
	"time"
)

func TestParseAnswers(t *testing.T) {
	answers, err := parseAnswers("1=2, 2=0 ,3=3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[int]int{1: 2, 2: 0, 3: 3}
	if len(answers) != len(want) {
		t.Fatalf("expected %d answers, got %d", len(want), len(answers))
	}
	for q, a := range want {
		if answers[q] != a {
			t.Fatalf("expected answer %d for question %d, got %d", a, q, answers[q])
		}
	}
}

func TestParseAnswersErrors(t *testing.T) {
	for _, raw := range []string{"", " , ", "1:2", "x=1", "1=y"} {
		if _, err := parseAnswers(raw); err == nil {
			t.Fatalf("expected an error for %q", raw)
		}
	}
}

func TestParseInterviewTime(t *testing.T) {
	for _, raw := range []string{
		"2026-09-14T10:00:00Z",
		"2026-09-14 10:00",
		"2026-09-14T10:00",
	} {
		got, err := parseInterviewTime(raw)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if got.Year() != 2026 || got.Month() != time.September {
			t.Fatalf("unexpected parse of %q: %v", raw, got)
		}
	}

	if _, err := parseInterviewTime("next tuesday"); err == nil {
		t.Fatal("expected an error for free-form time")
	}
}

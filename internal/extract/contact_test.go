package extract

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleResume = `Jane Doe
Senior Software Engineer
Email: jane.doe@gmail.com
Phone: +1 (555) 123-4567

Experience with Go, PostgreSQL and distributed systems.`

func TestContact(t *testing.T) {
	info := Contact(sampleResume)

	if info.Name != "Jane Doe" {
		t.Fatalf("expected name Jane Doe, got %q", info.Name)
	}
	if info.Email != "jane.doe@gmail.com" {
		t.Fatalf("expected the gmail address, got %q", info.Email)
	}
	if info.Phone == "" {
		t.Fatal("expected a phone number")
	}
}

func TestExtractEmailPrefersPersonalProvider(t *testing.T) {
	text := `Contact: recruiting@bigcorp.io
Personal: jane@gmail.com`

	if got := extractEmail(text); got != "jane@gmail.com" {
		t.Fatalf("expected the gmail address to rank first, got %q", got)
	}
}

func TestExtractEmailSkipsPlaceholders(t *testing.T) {
	text := "Write to your.name@example.com or jane.real@yahoo.com"

	if got := extractEmail(text); got != "jane.real@yahoo.com" {
		t.Fatalf("expected the placeholder to be skipped, got %q", got)
	}

	if got := extractEmail("only placeholder@example.com here"); got != "" {
		t.Fatalf("expected no email, got %q", got)
	}
}

func TestExtractEmailLabeledForm(t *testing.T) {
	if got := extractEmail("E-mail : Jane.Doe@Company.ORG"); got != "jane.doe@company.org" {
		t.Fatalf("expected the lower-cased labeled email, got %q", got)
	}
}

func TestExtractPhone(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"us format", "call (555) 123-4567 today", true},
		{"international", "mobile +44 20 7946 0958", true},
		{"bare ten digits", "reach me at 5551234567", true},
		{"too short", "room 412", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := extractPhone(tc.text)
			if tc.want && got == "" {
				t.Fatalf("expected a phone in %q", tc.text)
			}
			if !tc.want && got != "" {
				t.Fatalf("expected no phone in %q, got %q", tc.text, got)
			}
		})
	}
}

func TestExtractNameSkipsHeadersAndContacts(t *testing.T) {
	text := `Curriculum Vitae
jane.doe@gmail.com
Jane Marie Doe
Software Engineer at Shop`

	if got := extractName(text); got != "Jane Marie Doe" {
		t.Fatalf("expected the capitalized name line, got %q", got)
	}
}

func TestExtractNameFallsBack(t *testing.T) {
	if got := extractName("lowercase only line\nand another"); got != "lowercase only line" {
		t.Fatalf("expected the first line fallback, got %q", got)
	}
	if got := extractName("   \n  "); got != "Unknown" {
		t.Fatalf("expected Unknown for empty text, got %q", got)
	}
}

func TestDocumentExtractorPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte(sampleResume), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := NewDocumentExtractor().Text(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != sampleResume {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestDocumentExtractorMissingFile(t *testing.T) {
	if _, err := NewDocumentExtractor().Text(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

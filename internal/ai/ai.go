package ai

import "context"

// ScoreResult is the outcome of scoring one resume against a job
// description. Score is the ATS compatibility score on the 0..100 scale;
// the identity fields are best-effort extractions from the resume text.
type ScoreResult struct {
	Score          float64
	Name           string
	Email          string
	Phone          string
	Grade          string
	Recommendation string
	Raw            string
}

// Scorer is the external AI scoring capability. Implementations must
// validate that the returned score is numeric and within [0,100] and treat
// anything else as a failure.
type Scorer interface {
	ScoreResume(ctx context.Context, resumeText, jobTitle, jobDescription string) (*ScoreResult, error)
}

// Generator produces free-form model output for a prompt. It is the shared
// lower layer under the scorer and the MCQ test generator.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/jobsai/shortlister/internal/ai"
	"github.com/jobsai/shortlister/internal/util"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// cachingGenerator is the optional cache-aware surface of the generator.
// When a batch scores many resumes against one posting, the job description
// lives in a Gemini cached content resource instead of every prompt.
type cachingGenerator interface {
	contentGenerator
	EnsureJobCache(ctx context.Context, jobRole, jobDescription string) (string, error)
	GenerateContentWithCache(ctx context.Context, prompt, cacheName string) (string, error)
}

// Scorer evaluates resume text against a job description through a content
// generator and parses the model output into an ai.ScoreResult.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewScorer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) ScoreResume(ctx context.Context, resumeText, jobTitle, jobDescription string) (*ai.ScoreResult, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("resume text is required")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("job description is required")
	}

	prompt := buildPrompt(resumeText, jobTitle, jobDescription)

	s.logger.Debug("gemini score resume request",
		zap.String("job_title", jobTitle),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generate(ctx, prompt, jobTitle, jobDescription)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini score resume response",
		zap.String("job_title", jobTitle),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, s.maxLogLen)),
	)

	result, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	result.Raw = raw
	return result, nil
}

// generate prefers the cached-content path when the generator supports it.
// Cache setup failures fall back to the plain prompt so a scoring run never
// dies on a cache quota.
func (s *Scorer) generate(ctx context.Context, prompt, jobTitle, jobDescription string) (string, error) {
	caching, ok := s.generator.(cachingGenerator)
	if !ok {
		return s.generator.GenerateContent(ctx, prompt)
	}

	cacheName, err := caching.EnsureJobCache(ctx, jobTitle, jobDescription)
	if err != nil {
		s.logger.Warn("job description cache unavailable, sending full prompt",
			zap.String("job_title", jobTitle),
			zap.Error(err),
		)
		return s.generator.GenerateContent(ctx, prompt)
	}

	return caching.GenerateContentWithCache(ctx, prompt, cacheName)
}

func buildPrompt(resumeText, jobTitle, jobDescription string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job: {{JOB_TITLE}}\n{{JOB_DESCRIPTION}}\n\nResume:\n{{RESUME_TEXT}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{JOB_TITLE}}", jobTitle)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)
	prompt = strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", resumeText)
	return prompt
}

func parseResponse(raw string) (*ai.ScoreResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = extractJSON(cleaned)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["ats_score"])
	if math.IsNaN(score) {
		return nil, fmt.Errorf("gemini response is missing a numeric ats_score")
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("gemini returned an out-of-range ats_score: %v", score)
	}

	return &ai.ScoreResult{
		Score:          score,
		Name:           coerceString(data["name"]),
		Email:          coerceString(data["email"]),
		Phone:          coerceString(data["phone"]),
		Grade:          coerceString(data["overall_grade"]),
		Recommendation: coerceString(data["hire_recommendation"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

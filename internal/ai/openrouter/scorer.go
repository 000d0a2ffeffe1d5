// Package openrouter implements the resume scoring capability on top of the
// OpenRouter chat-completions API. It is the fallback provider for
// deployments without a Gemini key.
package openrouter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/ai"
	"github.com/jobsai/shortlister/internal/util"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "openai/gpt-4o-mini"
)

type Scorer struct {
	client    *resty.Client
	model     string
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(apiKey, model string, logger *zap.Logger) (*Scorer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(60 * time.Second).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &Scorer{
		client:    client,
		model:     model,
		logger:    logger,
		maxLogLen: 200,
	}, nil
}

func (s *Scorer) Model() string { return s.model }

// GenerateContent runs a free-form completion. It backs the MCQ test
// generator when OpenRouter is the configured provider.
func (s *Scorer) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt is required")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model": s.model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode(), util.TruncateForLog(resp.String(), s.maxLogLen))
	}

	content := gjson.Get(resp.String(), "choices.0.message.content").String()
	if content == "" {
		return "", fmt.Errorf("openrouter returned no completion")
	}
	return content, nil
}

func (s *Scorer) ScoreResume(ctx context.Context, resumeText, jobTitle, jobDescription string) (*ai.ScoreResult, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("resume text is required")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("job description is required")
	}

	prompt := fmt.Sprintf(`Evaluate the resume below against the job description.
Return your answer STRICTLY in JSON format:
{
  "ats_score": <integer 0-100>,
  "name": "<candidate full name or empty string>",
  "email": "<candidate email or empty string>",
  "phone": "<candidate phone or empty string>",
  "overall_grade": "<letter grade>",
  "hire_recommendation": "<Strong Hire | Hire | Maybe | Reject>"
}

JOB TITLE: %s

JOB DESCRIPTION:
%s

RESUME:
%s
`, jobTitle, jobDescription, resumeText)

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model": s.model,
			"messages": []map[string]string{
				{"role": "system", "content": "You are an expert ATS analyzer scoring resumes against job descriptions."},
				{"role": "user", "content": prompt},
			},
		}).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode(), util.TruncateForLog(resp.String(), s.maxLogLen))
	}

	content := gjson.Get(resp.String(), "choices.0.message.content").String()
	if content == "" {
		return nil, fmt.Errorf("openrouter returned no completion")
	}

	s.logger.Debug("openrouter score resume response",
		zap.String("job_title", jobTitle),
		zap.String("response_preview", util.TruncateForLog(content, s.maxLogLen)),
	)

	return parseResult(content)
}

func parseResult(content string) (*ai.ScoreResult, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.Trim(cleaned, "` \n")

	scoreField := gjson.Get(cleaned, "ats_score")
	if !scoreField.Exists() || scoreField.Type == gjson.Null {
		return nil, fmt.Errorf("openrouter response is missing ats_score")
	}

	score := scoreField.Float()
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("openrouter returned an out-of-range ats_score: %v", score)
	}

	return &ai.ScoreResult{
		Score:          score,
		Name:           strings.TrimSpace(gjson.Get(cleaned, "name").String()),
		Email:          strings.TrimSpace(gjson.Get(cleaned, "email").String()),
		Phone:          strings.TrimSpace(gjson.Get(cleaned, "phone").String()),
		Grade:          strings.TrimSpace(gjson.Get(cleaned, "overall_grade").String()),
		Recommendation: strings.TrimSpace(gjson.Get(cleaned, "hire_recommendation").String()),
		Raw:            content,
	}, nil
}

// Package mcq generates the automated screening test for a job description
// and grades submitted answers into the 0..100 mcq score.
package mcq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/ai"
	"github.com/jobsai/shortlister/internal/candidate"
	"github.com/jobsai/shortlister/internal/util"
)

const (
	DefaultQuestionCount = 10
	optionsPerQuestion   = 4
	maxDescriptionChars  = 3000
)

type Generator struct {
	generator ai.Generator
	logger    *zap.Logger
}

func NewGenerator(generator ai.Generator, logger *zap.Logger) *Generator {
	return &Generator{generator: generator, logger: logger}
}

// Generate builds a multiple-choice screening test for the job description.
// Malformed model output degrades to the built-in fallback bank instead of
// failing the analyze batch; short output is padded from the same bank.
func (g *Generator) Generate(ctx context.Context, jobDescription string, count int) []candidate.TestQuestion {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if g.generator == nil {
		return pad(nil, count)
	}

	description := jobDescription
	if len(description) > maxDescriptionChars {
		description = description[:maxDescriptionChars]
	}

	prompt := buildPrompt(description, count)

	raw, err := g.generator.GenerateContent(ctx, prompt)
	if err != nil {
		g.logger.Warn("mcq generation failed, using fallback questions", zap.Error(err))
		return pad(nil, count)
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		g.logger.Warn("mcq response unparseable, using fallback questions",
			zap.Error(err),
			zap.String("response_preview", util.TruncateForLog(raw, 200)),
		)
		return pad(nil, count)
	}

	if len(questions) < count {
		g.logger.Warn("mcq generation came up short, padding with fallback",
			zap.Int("generated", len(questions)),
			zap.Int("requested", count),
		)
	}
	return pad(questions, count)
}

func buildPrompt(jobDescription string, count int) string {
	return fmt.Sprintf(`You are a technical recruiter creating a screening test.
Create %d multiple-choice questions to test candidates on the key skills in the job description.

JOB DESCRIPTION:
%s

The questions should be technical and specific to the role.

Return ONLY a JSON ARRAY of objects. Each object must have:
- "question": string
- "options": array of exactly 4 strings
- "correct_answer": integer (0-3), the index of the correct option

Output strictly valid JSON.`, count, jobDescription)
}

func parseQuestions(raw string) ([]candidate.TestQuestion, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var parsed []candidate.TestQuestion
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("parse mcq response: %w", err)
	}

	valid := make([]candidate.TestQuestion, 0, len(parsed))
	for _, q := range parsed {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		if len(q.Options) != optionsPerQuestion {
			continue
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= optionsPerQuestion {
			continue
		}
		q.ID = len(valid)
		valid = append(valid, q)
	}
	return valid, nil
}

// pad tops up questions from the fallback bank and renumbers ids.
func pad(questions []candidate.TestQuestion, count int) []candidate.TestQuestion {
	for _, fb := range fallbackQuestions() {
		if len(questions) >= count {
			break
		}
		questions = append(questions, fb)
	}
	if len(questions) > count {
		questions = questions[:count]
	}
	for i := range questions {
		questions[i].ID = i
	}
	return questions
}

func fallbackQuestions() []candidate.TestQuestion {
	return []candidate.TestQuestion{
		{
			Question:      "What does API stand for?",
			Options:       []string{"Application Programming Interface", "Advanced Python Integration", "Automated Process Interaction", "Applied Protocol Interface"},
			CorrectAnswer: 0,
		},
		{
			Question:      "Which of these is a version control system?",
			Options:       []string{"JIRA", "Git", "Slack", "Trello"},
			CorrectAnswer: 1,
		},
		{
			Question:      "What is the primary function of SQL?",
			Options:       []string{"Styling Web Pages", "Managing Databases", "Compiling Code", "Sending Emails"},
			CorrectAnswer: 1,
		},
		{
			Question:      "Which HTTP method is typically used to retrieve data?",
			Options:       []string{"POST", "PUT", "GET", "DELETE"},
			CorrectAnswer: 2,
		},
		{
			Question:      "What is a 'bug' in software development?",
			Options:       []string{"A feature", "An error or flaw", "A type of virus", "A fast processor"},
			CorrectAnswer: 1,
		},
	}
}

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/ai"
	"github.com/jobsai/shortlister/internal/ai/gemini"
	"github.com/jobsai/shortlister/internal/ai/openrouter"
	"github.com/jobsai/shortlister/internal/candidate"
	"github.com/jobsai/shortlister/internal/candidate/postgres"
	"github.com/jobsai/shortlister/internal/logger"
	"github.com/jobsai/shortlister/internal/mailer"
	"github.com/jobsai/shortlister/internal/ranking"
	"github.com/jobsai/shortlister/internal/scoring"
	"github.com/jobsai/shortlister/internal/secrets"
	"github.com/jobsai/shortlister/internal/tracker"
)

// scorerProvider bundles the two AI capabilities the pipeline needs: resume
// scoring and free-form generation for the MCQ test.
type scorerProvider struct {
	scorer    ai.Scorer
	generator ai.Generator
	name      string
}

func newStore(config *Config, weights *scoring.Weights) (candidate.Store, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}

	recompose := candidate.Recomposer(weights.Recompose)

	switch strings.ToLower(strings.TrimSpace(config.Storage.Driver)) {
	case "", "file":
		return candidate.NewFileStore(config.Storage.Path, recompose)
	case "postgres":
		dsn, err := secrets.Load(secrets.Source{
			Name:  "postgres dsn",
			Value: config.Storage.DSN,
			Env:   "SHORTLISTER_DB_DSN",
			File:  config.Storage.DSNFile,
		})
		if err != nil {
			return nil, err
		}
		return postgres.Open(dsn, recompose)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", config.Storage.Driver)
	}
}

func newScorerProvider(ctx context.Context, config *AIConfig, log *zap.Logger) (*scorerProvider, error) {
	provider := strings.TrimSpace(strings.ToLower(config.Provider))

	switch provider {
	case "", "gemini":
		cfg := config.Gemini
		if cfg == nil {
			cfg = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			Env:  "GEMINI_API_KEY",
			File: cfg.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model)
		if err != nil {
			return nil, err
		}

		scorerLogger := logger.WithScorerFields(log, "gemini", generator.Model())
		return &scorerProvider{
			scorer:    gemini.NewScorer(generator, scorerLogger, cfg.MaxLogLength),
			generator: generator,
			name:      "gemini",
		}, nil

	case "openrouter":
		cfg := config.OpenRouter
		if cfg == nil {
			cfg = &OpenRouterConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "openrouter api key",
			Env:  "OPENROUTER_API_KEY",
			File: cfg.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openrouter.api-key-file or OPENROUTER_API_KEY)", err)
		}

		scorer, err := openrouter.NewScorer(apiKey, cfg.Model, logger.WithScorerFields(log, "openrouter", cfg.Model))
		if err != nil {
			return nil, err
		}
		return &scorerProvider{scorer: scorer, generator: scorer, name: "openrouter"}, nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}
}

func newSender(config *SMTPSettings) (mailer.Sender, error) {
	if config == nil || strings.TrimSpace(config.Host) == "" {
		return nil, fmt.Errorf("smtp host is not configured")
	}

	password, err := secrets.Load(secrets.Source{
		Name: "smtp password",
		Env:  "SHORTLISTER_SMTP_PASSWORD",
		File: config.PasswordFile,
	})
	if err != nil {
		return nil, err
	}

	cfg := config.SMTPConfig
	cfg.Password = password
	return mailer.NewSMTPSender(cfg)
}

func newTracker(config *Config, store candidate.Store, sender mailer.Sender, log *zap.Logger) *tracker.Tracker {
	cfg := tracker.Config{
		TestLinkBase: config.Test.LinkBase,
	}
	if config.SMTP != nil {
		cfg.MaxRetries = config.SMTP.MaxRetries
		cfg.Delay = config.SMTP.Delay
	}
	return tracker.New(store, sender, cfg, log)
}

func newRankingView(config *Config, store candidate.Store) (*ranking.View, error) {
	order, err := ranking.ParseOrder(config.Ranking.Order)
	if err != nil {
		return nil, err
	}
	return ranking.NewView(store, order), nil
}

func parseInterviewTime(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable interview time %q (want RFC3339 or 2006-01-02 15:04)", value)
}

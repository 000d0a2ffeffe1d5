package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobsai/shortlister/internal/mailer"
	"github.com/jobsai/shortlister/internal/scoring"
)

const (
	app = "shortlister"

	defaultHistoryPath = "history.json"
	defaultWorkers     = 6
)

type Config struct {
	Storage *StorageConfig   `mapstructure:"storage"`
	Scoring *scoring.Weights `mapstructure:"scoring"`
	AI      *AIConfig        `mapstructure:"ai"`
	SMTP    *SMTPSettings    `mapstructure:"smtp"`
	Test    *TestConfig      `mapstructure:"test"`
	Ranking *RankingConfig   `mapstructure:"ranking"`
	Workers int              `mapstructure:"workers"`
}

type StorageConfig struct {
	// Driver selects the backend: "file" (default) or "postgres".
	Driver  string `mapstructure:"driver"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

type AIConfig struct {
	// Provider selects the scorer: "gemini" (default) or "openrouter".
	Provider   string            `mapstructure:"provider"`
	Gemini     *GeminiConfig     `mapstructure:"gemini"`
	OpenRouter *OpenRouterConfig `mapstructure:"openrouter"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type OpenRouterConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

// SMTPSettings wraps the mailer config with a password source; the password
// itself never lives in the config file.
type SMTPSettings struct {
	mailer.SMTPConfig `mapstructure:",squash"`
	PasswordFile      string `mapstructure:"password-file"`
}

type TestConfig struct {
	QuestionCount int `mapstructure:"question-count"`
	// LinkBase is prepended to the candidate id to form the test URL sent
	// in invite emails.
	LinkBase string `mapstructure:"link-base"`
}

type RankingConfig struct {
	// Order is "insertion" (default) or "score".
	Order string `mapstructure:"order"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "shortlister scores resumes against a job description and tracks candidates from screening to a scheduled interview",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("storage.dsn", "SHORTLISTER_DB_DSN"); err != nil {
		log.Fatalf("binding SHORTLISTER_DB_DSN environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is shortlister.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without a config file.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// Every setting has a default, so a missing config file is fine.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Storage == nil {
		c.Storage = &StorageConfig{}
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultHistoryPath
	}
	if c.Scoring == nil {
		w := scoring.DefaultWeights()
		c.Scoring = &w
	}
	if c.AI == nil {
		c.AI = &AIConfig{}
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.Test == nil {
		c.Test = &TestConfig{}
	}
	if c.Ranking == nil {
		c.Ranking = &RankingConfig{}
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/candidate"
	"github.com/jobsai/shortlister/internal/extract"
	"github.com/jobsai/shortlister/internal/logger"
	"github.com/jobsai/shortlister/internal/matcher"
	"github.com/jobsai/shortlister/internal/mcq"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var invitePrompt = promptui.Select{
	Label: "Send interview invites to the shortlisted candidates?",
	Items: []string{PromptYes, PromptNo},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score every resume in a directory against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume-dir", "r", "resumes", "directory with resume files (pdf, docx, txt)")
	analyzeCmd.Flags().StringP("job-title", "t", "", "job title to score against")
	analyzeCmd.Flags().String("job-description-file", "", "file with the job description text")
	analyzeCmd.Flags().BoolP("auto-invite", "y", false, "send invites to shortlisted candidates without confirmation")
	analyzeCmd.Flags().Bool("skip-test", false, "do not generate an MCQ test for matched candidates")

	viper.BindPFlag("resume-dir", analyzeCmd.Flags().Lookup("resume-dir"))
}

// analyze is the main command of the cli.
func analyze(cmd *cobra.Command) {
	ctx := context.Background()

	zapLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zapLogger.Fatal("getting a config", zap.Error(err))
	}

	zapLogger.Info("starting the shortlister", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	zapLogger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	jobTitle, _ := cmd.Flags().GetString("job-title")
	if strings.TrimSpace(jobTitle) == "" {
		zapLogger.Fatal("a job title is required", zap.String("hint", "pass --job-title"))
	}

	jobDescription, err := readJobDescription(cmd)
	if err != nil {
		zapLogger.Fatal("reading the job description", zap.Error(err))
	}

	store, err := newStore(config, config.Scoring)
	if err != nil {
		zapLogger.Fatal("opening the candidate store", zap.Error(err))
	}

	provider, err := newScorerProvider(ctx, config.AI, zapLogger)
	if err != nil {
		zapLogger.Fatal("building the resume scorer", zap.Error(err))
	}

	var test []candidate.TestQuestion
	if skip, _ := cmd.Flags().GetBool("skip-test"); !skip {
		test = mcq.NewGenerator(provider.generator, zapLogger).
			Generate(ctx, jobDescription, config.Test.QuestionCount)
		zapLogger.Info("generated the screening test", zap.Int("questions", len(test)))
	}

	resumeDir := viper.GetString("resume-dir")
	m := matcher.New(provider.scorer, store, extract.NewDocumentExtractor(), zapLogger, config.Workers)

	result, err := m.MatchDirectory(ctx, resumeDir, jobTitle, jobDescription, test)
	if err != nil {
		zapLogger.Fatal("matching resumes", zap.Error(err))
	}

	zapLogger.Info("matching finished",
		zap.Int("matched", result.Matched()),
		zap.Int("failed", result.Failed()),
		zap.String("job_title", jobTitle),
	)
	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", outcome.Filename, outcome.Err)
		}
	}

	view, err := newRankingView(config, store)
	if err != nil {
		zapLogger.Fatal("building the ranking view", zap.Error(err))
	}

	shortlist, err := view.Shortlist()
	if err != nil {
		zapLogger.Fatal("loading the shortlist", zap.Error(err))
	}

	if shortlist.Len() == 0 {
		zapLogger.Info("exiting", zap.String("reason", "no candidates above the shortlist threshold"))
		return
	}

	printCandidates(shortlist)

	autoInvite, _ := cmd.Flags().GetBool("auto-invite")
	if !autoInvite {
		_, action, err := invitePrompt.Run()
		if err != nil {
			zapLogger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			zapLogger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	sender, err := newSender(config.SMTP)
	if err != nil {
		zapLogger.Fatal("building the mail sender", zap.Error(err))
	}

	report := newTracker(config, store, sender, zapLogger).SendInvites(ctx, shortlist.IDs())
	zapLogger.Info(report.Summary())
}

func readJobDescription(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("job-description-file")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("a job description is required (pass --job-description-file)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("job description file %q is empty", path)
	}
	return string(data), nil
}

func printCandidates(list *candidate.Candidates) {
	for i, c := range list.Items {
		label := c.Name
		if c.Email != "" {
			label = fmt.Sprintf("%s <%s>", c.Name, c.Email)
		}
		fmt.Printf("%2d. %-40s ats=%5.1f final=%5.2f stage=%-9s %s\n",
			i+1, label, c.ATSScore, c.FinalScore, c.Stage, c.ID)
	}
}

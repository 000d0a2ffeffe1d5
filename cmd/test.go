package cmd

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/logger"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Work with a candidate's screening test",
}

var testShowCmd = &cobra.Command{
	Use:   "show <candidate-id>",
	Short: "Print the test questions without the answer key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		testShow(args[0])
	},
}

var testSubmitCmd = &cobra.Command{
	Use:   "submit <candidate-id>",
	Short: "Grade a candidate's submitted answers",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		testSubmit(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(testCmd)
	testCmd.AddCommand(testShowCmd)
	testCmd.AddCommand(testSubmitCmd)

	testSubmitCmd.Flags().StringP("answers", "a", "", "answers as question=option pairs, e.g. '1=2,2=0,3=3' (required)")
	testSubmitCmd.MarkFlagRequired("answers")
}

func testShow(id string) {
	zapLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zapLogger.Fatal("getting a config", zap.Error(err))
	}

	store, err := newStore(config, config.Scoring)
	if err != nil {
		zapLogger.Fatal("opening the candidate store", zap.Error(err))
	}

	c, err := store.Get(id)
	if err != nil {
		zapLogger.Fatal("loading the candidate", zap.Error(err))
	}

	if len(c.Test) == 0 {
		zapLogger.Info("candidate has no test assigned", zap.String("candidate_id", id))
		return
	}

	for _, q := range c.Test {
		fmt.Printf("%d. %s\n", q.ID, q.Question)
		for i, option := range q.Options {
			fmt.Printf("   %d) %s\n", i, option)
		}
	}
}

func testSubmit(cmd *cobra.Command, id string) {
	zapLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zapLogger.Fatal("getting a config", zap.Error(err))
	}

	rawAnswers, _ := cmd.Flags().GetString("answers")
	answers, err := parseAnswers(rawAnswers)
	if err != nil {
		zapLogger.Fatal("parsing the answers", zap.Error(err))
	}

	store, err := newStore(config, config.Scoring)
	if err != nil {
		zapLogger.Fatal("opening the candidate store", zap.Error(err))
	}

	grade, updated, err := newTracker(config, store, nil, zapLogger).SubmitTest(id, answers)
	if err != nil {
		zapLogger.Fatal("submitting the test", zap.Error(err))
	}

	zapLogger.Info("test graded",
		zap.String("candidate_id", updated.ID),
		zap.Float64("score_percent", grade.ScorePercent),
		zap.Int("correct", grade.CorrectCount),
		zap.Int("total", grade.TotalQuestions),
		zap.Float64("final_score", updated.FinalScore),
		zap.Bool("shortlisted", updated.IsShortlisted),
	)
}

// parseAnswers turns "1=2,2=0" into a question-id to option-index map.
func parseAnswers(raw string) (map[int]int, error) {
	answers := make(map[int]int)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed answer %q (want question=option)", pair)
		}

		question, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("malformed question id in %q: %w", pair, err)
		}
		option, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("malformed option index in %q: %w", pair, err)
		}

		answers[question] = option
	}

	if len(answers) == 0 {
		return nil, fmt.Errorf("no answers provided")
	}
	return answers, nil
}

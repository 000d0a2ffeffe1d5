package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/logger"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <candidate-id>...",
	Short: "Schedule interviews for candidates at one time slot",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		schedule(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringP("at", "a", "", "interview time, RFC3339 or '2006-01-02 15:04' (required)")
	scheduleCmd.MarkFlagRequired("at")
}

func schedule(cmd *cobra.Command, ids []string) {
	zapLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zapLogger.Fatal("getting a config", zap.Error(err))
	}

	rawTime, _ := cmd.Flags().GetString("at")
	at, err := parseInterviewTime(rawTime)
	if err != nil {
		zapLogger.Fatal("parsing the interview time", zap.Error(err))
	}

	store, err := newStore(config, config.Scoring)
	if err != nil {
		zapLogger.Fatal("opening the candidate store", zap.Error(err))
	}

	report := newTracker(config, store, nil, zapLogger).Schedule(ids, at)
	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			zapLogger.Warn("not scheduled",
				zap.String("candidate_id", outcome.CandidateID),
				zap.Error(outcome.Err),
			)
		}
	}
	zapLogger.Info(report.Summary())
}

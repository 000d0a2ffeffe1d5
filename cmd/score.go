package cmd

import (
	"log"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/logger"
)

var scoreCmd = &cobra.Command{
	Use:   "score <candidate-id> <hr-score>",
	Short: "Record the HR interview score (0-10) for a candidate",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		score(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func score(id, rawScore string) {
	zapLogger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zapLogger.Fatal("getting a config", zap.Error(err))
	}

	value, err := strconv.ParseFloat(rawScore, 64)
	if err != nil {
		zapLogger.Fatal("parsing the hr score", zap.Error(err))
	}

	store, err := newStore(config, config.Scoring)
	if err != nil {
		zapLogger.Fatal("opening the candidate store", zap.Error(err))
	}

	updated, err := newTracker(config, store, nil, zapLogger).SetHRScore(id, value)
	if err != nil {
		zapLogger.Fatal("recording the hr score", zap.Error(err))
	}

	zapLogger.Info("candidate updated",
		zap.String("candidate_id", updated.ID),
		zap.String("name", updated.Name),
		zap.Float64("final_score", updated.FinalScore),
		zap.Bool("shortlisted", updated.IsShortlisted),
	)
}

package cmd

import (
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/logger"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked candidates",
	Run: func(cmd *cobra.Command, _ []string) {
		list(cmd)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("shortlisted", "s", false, "only candidates above the shortlist threshold")
	listCmd.Flags().Bool("by-score", false, "order by final score instead of ingestion order")
	listCmd.Flags().BoolP("output-json", "o", false, "dump the candidates as json")
}

func list(cmd *cobra.Command) {
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

	if byScore, _ := cmd.Flags().GetBool("by-score"); byScore {
		config.Ranking.Order = "score"
	}

	view, err := newRankingView(config, store)
	if err != nil {
		zapLogger.Fatal("building the ranking view", zap.Error(err))
	}

	shortlistedOnly, _ := cmd.Flags().GetBool("shortlisted")
	candidates, err := view.List(shortlistedOnly)
	if err != nil {
		zapLogger.Fatal("loading candidates", zap.Error(err))
	}

	if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(candidates.Items); err != nil {
			zapLogger.Fatal("encoding candidates", zap.Error(err))
		}
		return
	}

	if candidates.Len() == 0 {
		zapLogger.Info("no candidates tracked yet")
		return
	}

	printCandidates(candidates)
}

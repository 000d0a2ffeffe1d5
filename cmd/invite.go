package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/logger"
)

var inviteCmd = &cobra.Command{
	Use:   "invite [candidate-id...]",
	Short: "Email interview invites to candidates (defaults to the whole shortlist)",
	Run: func(cmd *cobra.Command, args []string) {
		invite(args)
	},
}

func init() {
	rootCmd.AddCommand(inviteCmd)
}

func invite(ids []string) {
	ctx := context.Background()

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

	if len(ids) == 0 {
		view, err := newRankingView(config, store)
		if err != nil {
			zapLogger.Fatal("building the ranking view", zap.Error(err))
		}
		shortlist, err := view.Shortlist()
		if err != nil {
			zapLogger.Fatal("loading the shortlist", zap.Error(err))
		}
		if shortlist.Len() == 0 {
			zapLogger.Info("exiting", zap.String("reason", "no shortlisted candidates to invite"))
			return
		}
		ids = shortlist.IDs()
	}

	sender, err := newSender(config.SMTP)
	if err != nil {
		zapLogger.Fatal("building the mail sender", zap.Error(err))
	}

	report := newTracker(config, store, sender, zapLogger).SendInvites(ctx, ids)
	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			zapLogger.Warn("invite not delivered",
				zap.String("candidate_id", outcome.CandidateID),
				zap.String("name", outcome.Name),
				zap.Error(outcome.Err),
			)
		}
	}
	zapLogger.Info(report.Summary())
}

package cmd

import (
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsai/shortlister/internal/logger"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <candidate-id>",
	Short: "Remove a candidate permanently",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		deleteCandidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func deleteCandidate(cmd *cobra.Command, id string) {
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

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		confirm := promptui.Select{
			Label: fmt.Sprintf("Delete %s (%s)? There is no undo", c.Name, c.ID),
			Items: []string{PromptNo, PromptYes},
		}
		_, action, err := confirm.Run()
		if err != nil {
			zapLogger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			zapLogger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	if err := newTracker(config, store, nil, zapLogger).Delete(id); err != nil {
		zapLogger.Fatal("deleting the candidate", zap.Error(err))
	}
}

package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"AutoPoster/internal/app"
	"AutoPoster/internal/config"
	"AutoPoster/internal/domain"
	"AutoPoster/internal/logging"
)

func main() {
	_ = godotenv.Load()

	var dryRun bool

	rootCmd := &cobra.Command{
		Use:           "autoposter",
		Short:         "Searches trending topics, drafts a post with an LLM, and publishes it to LinkedIn",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.Load()
			logger := logging.New(cfg.Logging.Level)

			application, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			result, err := application.Run(ctx, dryRun)
			if err != nil {
				if errors.Is(err, domain.ErrNoNovelTopics) {
					logger.Info("nothing to post", "run_id", result.RunID, "candidates", result.Candidates)
					return nil
				}
				logger.Error("run failed", "run_id", result.RunID, "error", err)
				return err
			}

			logger.Info("run finished",
				"run_id", result.RunID,
				"status", result.Status,
				"topic", result.TopicTitle,
				"post_id", result.PostID)
			return nil
		},
	}

	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "generate the post but do not publish or touch history")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Command history-pipeline runs the league history pipeline outside the API.
//
// Usage:
//
//	history-pipeline run --league 4242 --seasons 2019,2020,2021
//	history-pipeline refresh --league 4242 --season 2024
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/fantasy-history/internal/app"
	"github.com/riskibarqy/fantasy-history/internal/config"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	"github.com/riskibarqy/fantasy-history/internal/usecase"
	"github.com/spf13/cobra"
)

type leagueFlags struct {
	leagueID string
	platform string
	swid     string
	espnS2   string
}

func (f *leagueFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.leagueID, "league", "", "League id on the provider")
	cmd.Flags().StringVar(&f.platform, "platform", "ESPN", "Provider platform")
	cmd.Flags().StringVar(&f.swid, "swid", "", "SWID cookie for private leagues (defaults to ESPN_SWID)")
	cmd.Flags().StringVar(&f.espnS2, "espn-s2", "", "espn_s2 cookie for private leagues (defaults to ESPN_S2)")
	_ = cmd.MarkFlagRequired("league")
}

func (f *leagueFlags) credentials() rawseason.Credentials {
	return rawseason.Credentials{SWID: f.swid, ESPNS2: f.espnS2}
}

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "history-pipeline",
		Short:         "Build and refresh fantasy league history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(), refreshCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var flags leagueFlags
	var seasons []int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every listed season and rebuild the league history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(cmd.Context(), func(ctx context.Context, pipeline *usecase.PipelineService) (usecase.RunResult, error) {
				return pipeline.RunLeague(ctx, usecase.RunLeagueInput{
					LeagueID:    flags.leagueID,
					Platform:    flags.platform,
					Seasons:     seasons,
					Credentials: flags.credentials(),
				})
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntSliceVar(&seasons, "seasons", nil, "Comma separated seasons, e.g. 2019,2020")
	_ = cmd.MarkFlagRequired("seasons")
	return cmd
}

func refreshCmd() *cobra.Command {
	var flags leagueFlags
	var season int
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch one season of an onboarded league and recompute every aggregate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPipeline(cmd.Context(), func(ctx context.Context, pipeline *usecase.PipelineService) (usecase.RunResult, error) {
				return pipeline.RefreshSeason(ctx, usecase.RefreshSeasonInput{
					LeagueID:    flags.leagueID,
					Platform:    flags.platform,
					Season:      season,
					Credentials: flags.credentials(),
				})
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&season, "season", 0, "Season to refresh")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

// withPipeline loads config, wires the app and prints the run summary as JSON.
func withPipeline(parent context.Context, fn func(context.Context, *usecase.PipelineService) (usecase.RunResult, error)) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  logging.FormatConsole,
		Service: "history-pipeline",
		Version: cfg.ServiceVersion,
		Output:  os.Stderr,
	})
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() { _ = container.Close() }()

	result, err := fn(ctx, container.Pipeline)
	if err != nil {
		return err
	}

	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/riskibarqy/fantasy-history/internal/app"
	"github.com/riskibarqy/fantasy-history/internal/config"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	"github.com/riskibarqy/fantasy-history/internal/usecase"
)

// Event starts an onboarding run when Seasons is set, otherwise a refresh
// of Season.
type Event struct {
	LeagueID string `json:"league_id"`
	Platform string `json:"platform"`
	Seasons  []int  `json:"seasons"`
	Season   int    `json:"season"`
	SWID     string `json:"swid"`
	ESPNS2   string `json:"espn_s2"`
}

type pipelineRunner interface {
	RunLeague(ctx context.Context, input usecase.RunLeagueInput) (usecase.RunResult, error)
	RefreshSeason(ctx context.Context, input usecase.RefreshSeasonInput) (usecase.RunResult, error)
}

func handle(ctx context.Context, runner pipelineRunner, e Event) (usecase.RunResult, error) {
	creds := rawseason.Credentials{SWID: strings.TrimSpace(e.SWID), ESPNS2: strings.TrimSpace(e.ESPNS2)}
	switch {
	case len(e.Seasons) > 0:
		return runner.RunLeague(ctx, usecase.RunLeagueInput{
			LeagueID:    e.LeagueID,
			Platform:    e.Platform,
			Seasons:     e.Seasons,
			Credentials: creds,
		})
	case e.Season > 0:
		return runner.RefreshSeason(ctx, usecase.RefreshSeasonInput{
			LeagueID:    e.LeagueID,
			Platform:    e.Platform,
			Season:      e.Season,
			Credentials: creds,
		})
	default:
		return usecase.RunResult{}, fmt.Errorf("%w: event needs seasons or season", usecase.ErrInvalidInput)
	}
}

// The container is built once per cold start and reused across invocations.
var container = sync.OnceValues(func() (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Service: cfg.ServiceName,
		Version: cfg.ServiceVersion,
		Output:  os.Stdout,
	})
	logging.SetDefault(logger)
	return app.Build(context.Background(), cfg, logger)
})

func handler(ctx context.Context, e Event) (usecase.RunResult, error) {
	c, err := container()
	if err != nil {
		return usecase.RunResult{}, err
	}
	result, err := handle(ctx, c.Pipeline, e)
	if err != nil {
		logging.Default().ErrorContext(ctx, "pipeline event failed", "league_id", e.LeagueID, "error", err)
		return usecase.RunResult{}, err
	}
	return result, nil
}

func main() {
	lambda.Start(handler)
}

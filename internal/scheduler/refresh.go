package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/riskibarqy/fantasy-history/internal/config"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	"github.com/riskibarqy/fantasy-history/internal/usecase"
)

const defaultRunTimeout = 10 * time.Minute

type SeasonRefresher interface {
	RefreshSeason(ctx context.Context, input usecase.RefreshSeasonInput) (usecase.RunResult, error)
}

type Options struct {
	Cron     string
	Timezone string
	Targets  []config.RefreshTarget
	// RunTimeout bounds one pass over every target.
	RunTimeout time.Duration
}

// RefreshScheduler re-runs RefreshSeason for a fixed set of league seasons on
// a cron schedule. Runs never overlap; a tick that lands while the previous
// pass is still going is skipped.
type RefreshScheduler struct {
	s         gocron.Scheduler
	refresher SeasonRefresher
	targets   []config.RefreshTarget
	timeout   time.Duration
	logger    *logging.Logger
}

func New(refresher SeasonRefresher, opts Options, logger *logging.Logger) (*RefreshScheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("scheduler")

	location := time.UTC
	if opts.Timezone != "" {
		loaded, err := time.LoadLocation(opts.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", opts.Timezone, err)
		}
		location = loaded
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(location))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	timeout := opts.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	rs := &RefreshScheduler{
		s:         s,
		refresher: refresher,
		targets:   append([]config.RefreshTarget(nil), opts.Targets...),
		timeout:   timeout,
		logger:    logger,
	}

	_, err = s.NewJob(
		gocron.CronJob(opts.Cron, false),
		gocron.NewTask(rs.runScheduled),
		gocron.WithName("refresh-seasons"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("create refresh job (cron=%q): %w", opts.Cron, err)
	}

	return rs, nil
}

func (r *RefreshScheduler) Start() {
	r.logger.Info("refresh scheduler started", "targets", len(r.targets))
	r.s.Start()
}

func (r *RefreshScheduler) Stop() error {
	return r.s.Shutdown()
}

func (r *RefreshScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	r.RunOnce(ctx)
}

// RunOnce refreshes every target in order and returns how many failed. One
// failing league does not stop the others.
func (r *RefreshScheduler) RunOnce(ctx context.Context) int {
	failed := 0
	for i, target := range r.targets {
		if ctx.Err() != nil {
			r.logger.WarnContext(ctx, "refresh pass cut short", "skipped", len(r.targets)-i, "error", ctx.Err())
			return failed + len(r.targets) - i
		}

		result, err := r.refresher.RefreshSeason(ctx, usecase.RefreshSeasonInput{
			LeagueID: target.LeagueID,
			Season:   target.Season,
		})
		if err != nil {
			failed++
			log := r.logger.ErrorContext
			if usecase.IsPermanent(err) {
				// Needs an operator to fix REFRESH_LEAGUES or the stored credentials.
				log = r.logger.WarnContext
			}
			log(ctx, "scheduled refresh failed",
				"league_id", target.LeagueID,
				"season", target.Season,
				"permanent", usecase.IsPermanent(err),
				"error", err,
			)
			continue
		}
		r.logger.InfoContext(ctx, "scheduled refresh finished",
			"league_id", target.LeagueID,
			"season", target.Season,
			"run_id", result.RunID,
			"matchups", result.Matchups,
			"duration_ms", result.DurationMs,
		)
	}
	return failed
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-history/internal/domain/halloffame"
	"github.com/riskibarqy/fantasy-history/internal/domain/league"
	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/member"
	"github.com/riskibarqy/fantasy-history/internal/domain/playoff"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawdata"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/riskibarqy/fantasy-history/internal/domain/standings"
	"github.com/riskibarqy/fantasy-history/internal/pipeline"
	"github.com/riskibarqy/fantasy-history/internal/platform/id"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultPipelineWorkers = 4

type PipelineConfig struct {
	MaxWorkers int
}

// HistoryRepositories groups every store the pipeline writes to and the
// read side serves from.
type HistoryRepositories struct {
	League     league.Repository
	Matchups   matchup.Repository
	Members    member.Repository
	Playoffs   playoff.Repository
	Standings  standings.Repository
	HallOfFame halloffame.Repository
}

func (r HistoryRepositories) validate() error {
	if r.League == nil || r.Matchups == nil || r.Members == nil ||
		r.Playoffs == nil || r.Standings == nil || r.HallOfFame == nil {
		return errors.New("history repositories are incomplete")
	}
	return nil
}

type RunLeagueInput struct {
	LeagueID    string
	Platform    string
	Seasons     []int
	Credentials rawseason.Credentials
}

type RefreshSeasonInput struct {
	LeagueID    string
	Platform    string
	Season      int
	Credentials rawseason.Credentials
}

type RunResult struct {
	RunID        string         `json:"run_id"`
	LeagueID     string         `json:"league_id"`
	Platform     string         `json:"platform"`
	LeagueName   string         `json:"league_name"`
	Seasons      []int          `json:"seasons"`
	Matchups     int            `json:"matchups"`
	Members      int            `json:"members"`
	Unplayed     int            `json:"unplayed"`
	Dropped      int            `json:"dropped"`
	Archived     int            `json:"archived"`
	StandingRows map[string]int `json:"standing_rows"`
	DurationMs   int64          `json:"duration_ms"`
}

type PipelineService struct {
	fetcher SeasonFetcher
	archive rawdata.Repository
	repos   HistoryRepositories
	ids     id.Generator
	cfg     PipelineConfig
	logger  *logging.Logger
	now     func() time.Time
}

func NewPipelineService(
	fetcher SeasonFetcher,
	archive rawdata.Repository,
	repos HistoryRepositories,
	ids id.Generator,
	cfg PipelineConfig,
	logger *logging.Logger,
) *PipelineService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultPipelineWorkers
	}

	return &PipelineService{
		fetcher: fetcher,
		archive: archive,
		repos:   repos,
		ids:     ids,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// seasonOutcome is one season after fetch and canonicalization.
type seasonOutcome struct {
	history   pipeline.SeasonHistory
	canonical pipeline.CanonicalSeason
	payloads  []rawdata.Payload
	name      string
}

// RunLeague fetches every requested season, aggregates the combined history
// and rewrites all derived rows. Any fetch or canonicalization failure aborts
// the run before the first write.
func (s *PipelineService) RunLeague(ctx context.Context, input RunLeagueInput) (result RunResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.RunLeague")
	defer func() {
		failSpan(span, err)
		span.End()
	}()

	key, err := parseLeagueKey(input.LeagueID, input.Platform)
	if err != nil {
		return RunResult{}, err
	}
	seasons, err := normalizeSeasons(input.Seasons)
	if err != nil {
		return RunResult{}, err
	}
	span.SetAttributes(leagueAttrs(key)...)
	span.SetAttributes(attribute.Int("league.season_count", len(seasons)))

	start := s.now()
	runID, err := s.ids.NewID()
	if err != nil {
		return RunResult{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := s.logger.With("run_id", runID, "league_id", key.LeagueID, "platform", string(key.Platform))
	logger.InfoContext(ctx, "league history run started", "seasons", seasons)

	outcomes, err := s.fetchSeasons(ctx, key, seasons, input.Credentials, logger)
	if err != nil {
		logger.WarnContext(ctx, "league history run aborted", "error", err)
		return RunResult{}, err
	}

	history := make([]pipeline.SeasonHistory, 0, len(outcomes))
	for _, outcome := range outcomes {
		history = append(history, outcome.history)
	}
	snap := pipeline.Aggregate(history)

	result = RunResult{
		RunID:      runID,
		LeagueID:   key.LeagueID,
		Platform:   string(key.Platform),
		LeagueName: latestLeagueName(outcomes),
		Seasons:    snap.Seasons,
	}
	for _, outcome := range outcomes {
		result.Unplayed += outcome.canonical.Unplayed
		result.Dropped += len(outcome.canonical.Dropped)
	}
	result.Archived = s.archivePayloads(ctx, outcomes, logger)

	if err := s.persist(ctx, key, snap, &result); err != nil {
		logger.ErrorContext(ctx, "persist league history failed", "error", err)
		return RunResult{}, err
	}
	if err := s.writeLeague(ctx, key, runID, result.LeagueName, snap); err != nil {
		return RunResult{}, err
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	logger.InfoContext(ctx, "league history run finished",
		"matchups", result.Matchups,
		"members", result.Members,
		"dropped", result.Dropped,
		"unplayed", result.Unplayed,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// RefreshSeason re-fetches one season of an onboarded league and rebuilds
// every aggregate from the stored history of the other seasons.
func (s *PipelineService) RefreshSeason(ctx context.Context, input RefreshSeasonInput) (result RunResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.RefreshSeason")
	defer func() {
		failSpan(span, err)
		span.End()
	}()

	key, err := parseLeagueKey(input.LeagueID, input.Platform)
	if err != nil {
		return RunResult{}, err
	}
	if input.Season <= 0 {
		return RunResult{}, fmt.Errorf("%w: season must be positive", ErrInvalidInput)
	}
	span.SetAttributes(leagueAttrs(key)...)
	span.SetAttributes(attribute.Int("league.season", input.Season))

	if err := s.repos.validate(); err != nil {
		return RunResult{}, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	current, exists, err := s.repos.League.Get(ctx, key)
	if err != nil {
		return RunResult{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return RunResult{}, fmt.Errorf("%w: league=%s", ErrNotFound, key)
	}

	start := s.now()
	runID, err := s.ids.NewID()
	if err != nil {
		return RunResult{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := s.logger.With("run_id", runID, "league_id", key.LeagueID, "platform", string(key.Platform))
	logger.InfoContext(ctx, "season refresh started", "season", input.Season)

	outcomes, err := s.fetchSeasons(ctx, key, []int{input.Season}, input.Credentials, logger)
	if err != nil {
		return RunResult{}, err
	}
	refreshed := outcomes[0]

	stored, err := s.loadStoredHistory(ctx, key, input.Season)
	if err != nil {
		return RunResult{}, err
	}
	snap := pipeline.Aggregate(append(stored, refreshed.history))

	name := refreshed.name
	if name == "" || (current.CurrentSeason > input.Season && current.Name != "") {
		name = current.Name
	}

	result = RunResult{
		RunID:      runID,
		LeagueID:   key.LeagueID,
		Platform:   string(key.Platform),
		LeagueName: name,
		Seasons:    snap.Seasons,
		Unplayed:   refreshed.canonical.Unplayed,
		Dropped:    len(refreshed.canonical.Dropped),
	}
	result.Archived = s.archivePayloads(ctx, outcomes, logger)

	if err := s.persist(ctx, key, snap, &result); err != nil {
		logger.ErrorContext(ctx, "persist refreshed history failed", "error", err)
		return RunResult{}, err
	}
	if err := s.writeLeague(ctx, key, runID, name, snap); err != nil {
		return RunResult{}, err
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	logger.InfoContext(ctx, "season refresh finished", "season", input.Season, "duration_ms", result.DurationMs)
	return result, nil
}

func normalizeSeasons(seasons []int) ([]int, error) {
	if len(seasons) == 0 {
		return nil, fmt.Errorf("%w: at least one season is required", ErrInvalidInput)
	}
	seen := make(map[int]struct{}, len(seasons))
	out := make([]int, 0, len(seasons))
	for _, season := range seasons {
		if season <= 0 {
			return nil, fmt.Errorf("%w: invalid season %d", ErrInvalidInput, season)
		}
		if _, ok := seen[season]; ok {
			continue
		}
		seen[season] = struct{}{}
		out = append(out, season)
	}
	sort.Ints(out)
	return out, nil
}

// fetchSeasons runs fetch and canonicalization for each season on a worker
// pool. The first failure cancels the remaining tasks. Outcomes come back in
// the order of seasons.
func (s *PipelineService) fetchSeasons(
	ctx context.Context,
	key league.Key,
	seasons []int,
	creds rawseason.Credentials,
	logger *logging.Logger,
) ([]seasonOutcome, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: season fetcher is not configured", ErrDependencyUnavailable)
	}

	workers := s.cfg.MaxWorkers
	if workers > len(seasons) {
		workers = len(seasons)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	workerPool, err := ants.NewPool(workers, ants.WithPanicHandler(func(p any) {
		cancel(fmt.Errorf("season task panic: %v", p))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	outcomes := make([]seasonOutcome, len(seasons))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel(err)
		})
	}

	for i, season := range seasons {
		i, season := i, season
		wg.Add(1)
		if err := workerPool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			outcome, err := s.buildSeason(ctx, key, season, creds, logger)
			if err != nil {
				fail(err)
				return
			}
			outcomes[i] = outcome
		}); err != nil {
			wg.Done()
			fail(fmt.Errorf("submit season %d to worker pool: %w", season, err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if cause := context.Cause(ctx); cause != nil {
		return nil, cause
	}
	return outcomes, nil
}

func (s *PipelineService) buildSeason(
	ctx context.Context,
	key league.Key,
	season int,
	creds rawseason.Credentials,
	logger *logging.Logger,
) (seasonOutcome, error) {
	fetched, err := s.fetcher.FetchSeason(ctx, key.LeagueID, season, creds)
	if err != nil {
		return seasonOutcome{}, fmt.Errorf("fetch season %d: %w", season, err)
	}

	history, canonical, err := pipeline.BuildSeason(season, fetched.Season)
	if err != nil {
		return seasonOutcome{}, fmt.Errorf("build season %d: %w", season, err)
	}
	for _, dropped := range canonical.Dropped {
		logger.WarnContext(ctx, "matchup dropped without roster match",
			"season", season,
			"week", dropped.Week,
			"home_team_id", dropped.HomeTeamID,
			"away_team_id", dropped.AwayTeamID,
		)
	}
	if canonical.Unplayed > 0 {
		logger.DebugContext(ctx, "unplayed matchups skipped", "season", season, "count", canonical.Unplayed)
	}

	return seasonOutcome{
		history:   history,
		canonical: canonical,
		payloads:  fetched.Payloads,
		name:      strings.TrimSpace(fetched.Season.Settings.Name),
	}, nil
}

// archivePayloads stores raw responses. Archive failures are logged and never
// fail the run.
func (s *PipelineService) archivePayloads(ctx context.Context, outcomes []seasonOutcome, logger *logging.Logger) int {
	if s.archive == nil {
		return 0
	}
	var payloads []rawdata.Payload
	for _, outcome := range outcomes {
		payloads = append(payloads, outcome.payloads...)
	}
	if len(payloads) == 0 {
		return 0
	}
	if err := s.archive.UpsertMany(ctx, payloads); err != nil {
		logger.WarnContext(ctx, "archive raw payloads failed", "count", len(payloads), "error", err)
		return 0
	}
	return len(payloads)
}

// persist writes every output category concurrently and stops the remaining
// writes on the first error.
func (s *PipelineService) persist(ctx context.Context, key league.Key, snap pipeline.Snapshot, result *RunResult) error {
	if err := s.repos.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	rowsByKind := make(map[standings.Kind][]standings.Row, len(standings.Kinds))
	for _, kind := range standings.Kinds {
		rows, err := snap.StandingsRows(kind)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnsupported, err)
		}
		rowsByKind[kind] = rows
	}

	writers := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	writers.Go(func(ctx context.Context) error {
		return wrapWrite("matchups", s.repos.Matchups.UpsertMany(ctx, key, snap.Matchups))
	})
	writers.Go(func(ctx context.Context) error {
		return wrapWrite("roster", s.repos.Members.UpsertRoster(ctx, key, snap.Roster))
	})
	writers.Go(func(ctx context.Context) error {
		return wrapWrite("members", s.repos.Members.UpsertMembers(ctx, key, snap.Members))
	})
	writers.Go(func(ctx context.Context) error {
		return wrapWrite("playoff facts", s.repos.Playoffs.UpsertFacts(ctx, key, snap.Facts))
	})
	writers.Go(func(ctx context.Context) error {
		return wrapWrite("championships", s.repos.Playoffs.UpsertChampionships(ctx, key, snap.Championships))
	})
	for _, kind := range standings.Kinds {
		kind, rows := kind, rowsByKind[kind]
		writers.Go(func(ctx context.Context) error {
			return wrapWrite(string(kind)+" standings", s.repos.Standings.UpsertMany(ctx, key, kind, rows))
		})
	}
	for _, list := range snap.HallOfFame.Lists() {
		list := list
		writers.Go(func(ctx context.Context) error {
			return wrapWrite("hall of fame "+string(list.Category), s.repos.HallOfFame.UpsertList(ctx, key, list))
		})
	}
	if err := writers.Wait(); err != nil {
		return err
	}

	result.Matchups = len(snap.Matchups)
	result.Members = len(snap.Members)
	result.StandingRows = make(map[string]int, len(rowsByKind))
	for kind, rows := range rowsByKind {
		result.StandingRows[string(kind)] = len(rows)
	}
	return nil
}

func wrapWrite(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("write %s: %w", what, err)
}

// writeLeague records the metadata row last, so it only exists once every
// other category has been written.
func (s *PipelineService) writeLeague(ctx context.Context, key league.Key, runID, name string, snap pipeline.Snapshot) error {
	item := league.League{
		LeagueID:    key.LeagueID,
		Platform:    key.Platform,
		Name:        name,
		Seasons:     append([]int(nil), snap.Seasons...),
		MemberCount: len(snap.Members),
		LastRunID:   runID,
		UpdatedAt:   s.now().UTC(),
	}
	if n := len(snap.Seasons); n > 0 {
		item.CurrentSeason = snap.Seasons[n-1]
	}
	if err := s.repos.League.Upsert(ctx, item); err != nil {
		return fmt.Errorf("write league metadata: %w", err)
	}
	return nil
}

// loadStoredHistory rebuilds per-season history for every stored season
// except skip.
func (s *PipelineService) loadStoredHistory(ctx context.Context, key league.Key, skip int) ([]pipeline.SeasonHistory, error) {
	matchups, err := s.repos.Matchups.List(ctx, key, matchup.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list stored matchups: %w", err)
	}
	facts, err := s.repos.Playoffs.ListFacts(ctx, key, 0)
	if err != nil {
		return nil, fmt.Errorf("list stored playoff facts: %w", err)
	}
	champions, err := s.repos.Playoffs.ListChampionships(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list stored championships: %w", err)
	}
	roster, err := s.repos.Members.ListRoster(ctx, key, 0)
	if err != nil {
		return nil, fmt.Errorf("list stored roster: %w", err)
	}

	bySeason := make(map[int]*pipeline.SeasonHistory)
	entry := func(season int) *pipeline.SeasonHistory {
		if h, ok := bySeason[season]; ok {
			return h
		}
		h := &pipeline.SeasonHistory{Season: season}
		bySeason[season] = h
		return h
	}
	for _, item := range matchups {
		if item.Season != skip {
			h := entry(item.Season)
			h.Matchups = append(h.Matchups, item)
		}
	}
	for _, item := range facts {
		if item.Season != skip {
			h := entry(item.Season)
			h.Facts = append(h.Facts, item)
		}
	}
	for _, item := range champions {
		if item.Season != skip {
			h := entry(item.Season)
			h.Championships = append(h.Championships, item)
		}
	}
	for _, item := range roster {
		if item.Season != skip {
			h := entry(item.Season)
			h.Roster = append(h.Roster, item)
		}
	}

	out := make([]pipeline.SeasonHistory, 0, len(bySeason))
	for _, h := range bySeason {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out, nil
}

func latestLeagueName(outcomes []seasonOutcome) string {
	for i := len(outcomes) - 1; i >= 0; i-- {
		if outcomes[i].name != "" {
			return outcomes[i].name
		}
	}
	return ""
}

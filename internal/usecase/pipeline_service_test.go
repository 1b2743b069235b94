package usecase

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/riskibarqy/fantasy-history/internal/domain/halloffame"
	"github.com/riskibarqy/fantasy-history/internal/domain/league"
	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawdata"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/riskibarqy/fantasy-history/internal/domain/standings"
	"github.com/riskibarqy/fantasy-history/internal/infrastructure/repository/kvstore"
	leaguemock "github.com/riskibarqy/fantasy-history/internal/mocks/domain/league"
	rawdatamock "github.com/riskibarqy/fantasy-history/internal/mocks/domain/rawdata"
	"github.com/riskibarqy/fantasy-history/internal/pipeline"
	"github.com/riskibarqy/fantasy-history/internal/platform/id"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLeagueKey = league.Key{LeagueID: "4242", Platform: league.PlatformESPN}

type stubFetcher struct {
	mu      sync.Mutex
	seasons map[int]rawseason.Season
	errs    map[int]error
	calls   []int
}

func (s *stubFetcher) FetchSeason(_ context.Context, leagueID string, season int, _ rawseason.Credentials) (FetchedSeason, error) {
	s.mu.Lock()
	s.calls = append(s.calls, season)
	s.mu.Unlock()

	if err := s.errs[season]; err != nil {
		return FetchedSeason{}, err
	}
	raw, ok := s.seasons[season]
	if !ok {
		return FetchedSeason{}, ErrNotFound
	}
	return FetchedSeason{
		Season: raw,
		Payloads: []rawdata.Payload{{
			Platform:    "ESPN",
			LeagueID:    leagueID,
			Season:      season,
			View:        "mTeam,mRoster",
			PayloadJSON: []byte(`{}`),
		}},
	}, nil
}

func (s *stubFetcher) fetched() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.calls...)
}

type game struct {
	week     int
	home     int
	homePts  float64
	away     int
	awayPts  float64
	playoffs string
}

// testSeason builds a three team league: teams 1, 2 and 3 owned by
// Alice, Bob and Cara.
func testSeason(season int, games ...game) rawseason.Season {
	owners := map[int]rawseason.Member{
		1: {ID: "{A}", FirstName: "Alice", LastName: "Adams"},
		2: {ID: "{B}", FirstName: "Bob", LastName: "Brown"},
		3: {ID: "{C}", FirstName: "Cara", LastName: "Cole"},
	}
	raw := rawseason.Season{LeagueID: 4242, SeasonID: season}
	raw.Settings.Name = "League " + strconv.Itoa(season)
	for teamID := 1; teamID <= 3; teamID++ {
		owner := owners[teamID]
		raw.Teams = append(raw.Teams, rawseason.Team{
			ID:     rawseason.TeamRef(strconv.Itoa(teamID)),
			Name:   "Team " + strconv.Itoa(teamID),
			Owners: []string{owner.ID},
		})
		raw.Members = append(raw.Members, owner)
	}
	for _, g := range games {
		raw.Schedule = append(raw.Schedule, rawseason.Matchup{
			MatchupPeriodID: g.week,
			PlayoffTierType: g.playoffs,
			Home:            &rawseason.MatchupSide{TeamID: rawseason.TeamRef(strconv.Itoa(g.home)), TotalPoints: g.homePts},
			Away:            &rawseason.MatchupSide{TeamID: rawseason.TeamRef(strconv.Itoa(g.away)), TotalPoints: g.awayPts},
		})
	}
	return raw
}

type testStore struct {
	store *kvstore.MemoryStore
	repos HistoryRepositories
}

func newTestStore() testStore {
	store := kvstore.NewMemoryStore()
	writer := kvstore.NewBatchWriter(store, kvstore.DefaultWriterConfig(), logging.NewNop())
	return testStore{
		store: store,
		repos: HistoryRepositories{
			League:     kvstore.NewLeagueRepository(store, writer),
			Matchups:   kvstore.NewMatchupRepository(store, writer),
			Members:    kvstore.NewMemberRepository(store, writer),
			Playoffs:   kvstore.NewPlayoffRepository(store, writer),
			Standings:  kvstore.NewStandingsRepository(store, writer),
			HallOfFame: kvstore.NewHallOfFameRepository(store, writer),
		},
	}
}

func newTestPipeline(fetcher SeasonFetcher, archive rawdata.Repository, repos HistoryRepositories) *PipelineService {
	return NewPipelineService(fetcher, archive, repos, id.Static("run-1"), PipelineConfig{MaxWorkers: 2}, logging.NewNop())
}

func twoSeasonFetcher() *stubFetcher {
	return &stubFetcher{seasons: map[int]rawseason.Season{
		2021: testSeason(2021,
			game{week: 1, home: 1, homePts: 110.25, away: 2, awayPts: 99.5},
			game{week: 2, home: 3, homePts: 101, away: 1, awayPts: 120.4},
			game{week: 3, home: 2, homePts: 0, away: 3, awayPts: 0},
		),
		2022: testSeason(2022,
			game{week: 1, home: 2, homePts: 130, away: 1, awayPts: 90},
			game{week: 2, home: 3, homePts: 88.8, away: 2, awayPts: 88.8},
		),
	}}
}

func TestPipelineService_RunLeague_PersistsEveryCategory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ts := newTestStore()
	fetcher := twoSeasonFetcher()
	service := newTestPipeline(fetcher, nil, ts.repos)

	result, err := service.RunLeague(ctx, RunLeagueInput{
		LeagueID: " 4242 ",
		Platform: "espn",
		Seasons:  []int{2022, 2021, 2022},
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, []int{2021, 2022}, result.Seasons)
	assert.Equal(t, 4, result.Matchups)
	assert.Equal(t, 3, result.Members)
	assert.Equal(t, 1, result.Unplayed)
	assert.Equal(t, "League 2022", result.LeagueName)
	assert.ElementsMatch(t, []int{2021, 2022}, fetcher.fetched())

	meta, exists, err := ts.repos.League.Get(ctx, testLeagueKey)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, []int{2021, 2022}, meta.Seasons)
	assert.Equal(t, 2022, meta.CurrentSeason)
	assert.Equal(t, "run-1", meta.LastRunID)

	matchups, err := ts.repos.Matchups.List(ctx, testLeagueKey, matchup.Filter{})
	require.NoError(t, err)
	assert.Len(t, matchups, 4)

	allTime, err := ts.repos.Standings.List(ctx, testLeagueKey, standings.KindAllTime, standings.Filter{OwnerID: "{A}"})
	require.NoError(t, err)
	require.Len(t, allTime, 1)
	alice := allTime[0].(standings.AllTime)
	assert.Equal(t, 2, alice.Wins)
	assert.Equal(t, 1, alice.Losses)
	assert.Equal(t, 2, alice.SeasonsPlayed)

	season, err := ts.repos.Standings.List(ctx, testLeagueKey, standings.KindSeason, standings.Filter{Season: 2022})
	require.NoError(t, err)
	assert.Len(t, season, 3)

	scores, err := ts.repos.HallOfFame.List(ctx, testLeagueKey, halloffame.CategoryTopTeamScores)
	require.NoError(t, err)
	require.NotEmpty(t, scores)
	assert.Equal(t, "130", scores[0].(halloffame.TeamScore).Score.String())
}

func TestPipelineService_RunLeague_FetchFailureAbortsBeforeWrite(t *testing.T) {
	t.Parallel()

	ts := newTestStore()
	fetcher := twoSeasonFetcher()
	fetcher.errs = map[int]error{2022: ErrUnauthorized}
	service := newTestPipeline(fetcher, nil, ts.repos)

	_, err := service.RunLeague(context.Background(), RunLeagueInput{LeagueID: "4242", Seasons: []int{2021, 2022}})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if n := ts.store.Len(kvstore.PartitionKey(testLeagueKey)); n != 0 {
		t.Fatalf("expected no rows written, got %d", n)
	}
}

func TestPipelineService_RunLeague_EmptySeasonIsFatal(t *testing.T) {
	t.Parallel()

	ts := newTestStore()
	fetcher := twoSeasonFetcher()
	fetcher.seasons[2023] = testSeason(2023, game{week: 1, home: 1, away: 2})
	service := newTestPipeline(fetcher, nil, ts.repos)

	_, err := service.RunLeague(context.Background(), RunLeagueInput{LeagueID: "4242", Seasons: []int{2021, 2023}})
	if !errors.Is(err, pipeline.ErrEmptySeason) {
		t.Fatalf("expected ErrEmptySeason, got %v", err)
	}
	if _, exists, _ := ts.repos.League.Get(context.Background(), testLeagueKey); exists {
		t.Fatalf("league metadata must not be written after a failed run")
	}
}

func TestPipelineService_RunLeague_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	ts := newTestStore()
	service := newTestPipeline(twoSeasonFetcher(), nil, ts.repos)

	cases := []struct {
		name  string
		input RunLeagueInput
		want  error
	}{
		{name: "missing league", input: RunLeagueInput{Seasons: []int{2021}}, want: ErrInvalidInput},
		{name: "no seasons", input: RunLeagueInput{LeagueID: "4242"}, want: ErrInvalidInput},
		{name: "negative season", input: RunLeagueInput{LeagueID: "4242", Seasons: []int{-1}}, want: ErrInvalidInput},
		{name: "other platform", input: RunLeagueInput{LeagueID: "4242", Platform: "yahoo", Seasons: []int{2021}}, want: ErrUnsupported},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := service.RunLeague(context.Background(), tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPipelineService_RunLeague_ArchiveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	ts := newTestStore()
	archive := rawdatamock.NewRepository(t)
	archive.
		On("UpsertMany", mock.Anything, mock.MatchedBy(func(items []rawdata.Payload) bool { return len(items) == 2 })).
		Return(errors.New("bucket unavailable")).
		Once()

	service := newTestPipeline(twoSeasonFetcher(), archive, ts.repos)
	result, err := service.RunLeague(context.Background(), RunLeagueInput{LeagueID: "4242", Seasons: []int{2021, 2022}})
	require.NoError(t, err)
	assert.Zero(t, result.Archived)
	assert.Equal(t, 4, result.Matchups)
}

func TestPipelineService_RefreshSeason_RebuildsFromStoredSeasons(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ts := newTestStore()
	fetcher := twoSeasonFetcher()
	service := newTestPipeline(fetcher, nil, ts.repos)

	_, err := service.RunLeague(ctx, RunLeagueInput{LeagueID: "4242", Seasons: []int{2021, 2022}})
	require.NoError(t, err)

	// Bob's week one win in 2022 is corrected to a loss.
	fetcher.mu.Lock()
	fetcher.seasons[2022] = testSeason(2022,
		game{week: 1, home: 2, homePts: 80, away: 1, awayPts: 90},
		game{week: 2, home: 3, homePts: 88.8, away: 2, awayPts: 88.8},
	)
	fetcher.calls = nil
	fetcher.mu.Unlock()

	result, err := service.RefreshSeason(ctx, RefreshSeasonInput{LeagueID: "4242", Season: 2022})
	require.NoError(t, err)
	assert.Equal(t, []int{2022}, fetcher.fetched())
	assert.Equal(t, []int{2021, 2022}, result.Seasons)

	rows, err := ts.repos.Standings.List(ctx, testLeagueKey, standings.KindAllTime, standings.Filter{OwnerID: "{A}"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	alice := rows[0].(standings.AllTime)
	assert.Equal(t, 3, alice.Wins)
	assert.Equal(t, 0, alice.Losses)
	assert.Equal(t, 2, alice.SeasonsPlayed)
}

func TestPipelineService_RefreshSeason_UnknownLeague(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ts := newTestStore()
	leagueRepo := leaguemock.NewRepository(t)
	leagueRepo.
		On("Get", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), testLeagueKey).
		Return(league.League{}, false, nil).
		Once()
	ts.repos.League = leagueRepo

	fetcher := twoSeasonFetcher()
	service := newTestPipeline(fetcher, nil, ts.repos)

	_, err := service.RefreshSeason(ctx, RefreshSeasonInput{LeagueID: "4242", Season: 2022})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls := fetcher.fetched(); len(calls) != 0 {
		t.Fatalf("expected no fetches, got %v", calls)
	}
}

// tiedTwelveTeamSeason pairs teams 1-2, 3-4 ... 11-12 in week one with every
// side scoring the same total.
func tiedTwelveTeamSeason(season int) rawseason.Season {
	raw := rawseason.Season{LeagueID: 4242, SeasonID: season}
	raw.Settings.Name = "Twelve"
	for teamID := 1; teamID <= 12; teamID++ {
		owner := "{O" + strconv.Itoa(teamID) + "}"
		raw.Members = append(raw.Members, rawseason.Member{ID: owner, FirstName: "Owner", LastName: strconv.Itoa(teamID)})
		raw.Teams = append(raw.Teams, rawseason.Team{
			ID:     rawseason.TeamRef(strconv.Itoa(teamID)),
			Name:   "Team " + strconv.Itoa(teamID),
			Owners: []string{owner},
		})
	}
	for home := 1; home <= 11; home += 2 {
		raw.Schedule = append(raw.Schedule, rawseason.Matchup{
			MatchupPeriodID: 1,
			Home:            &rawseason.MatchupSide{TeamID: rawseason.TeamRef(strconv.Itoa(home)), TotalPoints: 100},
			Away:            &rawseason.MatchupSide{TeamID: rawseason.TeamRef(strconv.Itoa(home + 1)), TotalPoints: 100},
		})
	}
	return raw
}

func TestPipelineService_RefreshSeason_KeepsTiedLeaderboardsStable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ts := newTestStore()
	fetcher := &stubFetcher{seasons: map[int]rawseason.Season{
		2021: tiedTwelveTeamSeason(2021),
		2022: tiedTwelveTeamSeason(2022),
	}}
	service := newTestPipeline(fetcher, nil, ts.repos)

	_, err := service.RunLeague(ctx, RunLeagueInput{LeagueID: "4242", Seasons: []int{2021, 2022}})
	require.NoError(t, err)

	categories := []halloffame.Category{halloffame.CategoryTopTeamScores, halloffame.CategoryBottomTeamScores}
	before := make(map[halloffame.Category][]halloffame.Entry, len(categories))
	for _, category := range categories {
		entries, err := ts.repos.HallOfFame.List(ctx, testLeagueKey, category)
		require.NoError(t, err)
		require.Len(t, entries, halloffame.ListSize)
		before[category] = entries
	}

	var teams []string
	for _, entry := range before[halloffame.CategoryTopTeamScores] {
		score := entry.(halloffame.TeamScore)
		assert.Equal(t, 2021, score.Season)
		teams = append(teams, score.TeamID)
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, teams)

	_, err = service.RefreshSeason(ctx, RefreshSeasonInput{LeagueID: "4242", Season: 2022})
	require.NoError(t, err)

	for _, category := range categories {
		after, err := ts.repos.HallOfFame.List(ctx, testLeagueKey, category)
		require.NoError(t, err)
		assert.Equal(t, before[category], after, "category %s changed on refresh", category)
	}
}

package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/riskibarqy/fantasy-history/internal/domain/standings"
)

func buildHistory(t *testing.T) []SeasonHistory {
	t.Helper()

	seasons := map[int]rawseason.Season{
		2020: rawLeague(
			rawGame(1, "NONE", 1, 100, 2, 90),
			rawGame(1, "NONE", 3, 80, 10, 85),
			rawGame(14, "WINNERS_BRACKET", 1, 110, 10, 100),
			rawGame(15, "WINNERS_BRACKET", 1, 120, 3, 60),
			rawGame(16, "WINNERS_BRACKET", 1, 99, 2, 98),
		),
		2021: rawLeague(
			rawGame(1, "NONE", 2, 100, 1, 100),
			rawGame(1, "NONE", 10, 70, 3, 75),
			rawGame(17, "WINNERS_BRACKET", 10, 140, 2, 130),
			rawGame(18, "NONE", 10, 0, 2, 0),
		),
	}

	out := make([]SeasonHistory, 0, len(seasons))
	for _, season := range []int{2021, 2020} {
		history, _, err := BuildSeason(season, seasons[season])
		if err != nil {
			t.Fatalf("build season %d: %v", season, err)
		}
		out = append(out, history)
	}
	return out
}

func TestAggregate_IsDeterministic(t *testing.T) {
	t.Parallel()

	first, err := sonic.ConfigStd.Marshal(Aggregate(buildHistory(t)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := sonic.ConfigStd.Marshal(Aggregate(buildHistory(t)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("aggregate output differs between runs")
	}
}

func TestAggregate_MergesSeasons(t *testing.T) {
	t.Parallel()

	snap := Aggregate(buildHistory(t))

	if len(snap.Seasons) != 2 || snap.Seasons[0] != 2020 {
		t.Fatalf("expected seasons ordered ascending, got %v", snap.Seasons)
	}
	if len(snap.Members) != 4 {
		t.Fatalf("expected 4 members, got %d", len(snap.Members))
	}
	if len(snap.Championships) != 2 {
		t.Fatalf("expected one champion per season, got %+v", snap.Championships)
	}
	if snap.Championships[0].TeamID != "1" || snap.Championships[1].TeamID != "10" {
		t.Fatalf("unexpected champions %+v", snap.Championships)
	}
	if len(snap.HallOfFame.Championships) != 2 {
		t.Fatalf("expected two champion owners, got %+v", snap.HallOfFame.Championships)
	}

	for _, kind := range standings.Kinds {
		rows, err := snap.StandingsRows(kind)
		if err != nil {
			t.Fatalf("rows for %s: %v", kind, err)
		}
		if len(rows) == 0 {
			t.Fatalf("expected rows for %s", kind)
		}
		for _, row := range rows {
			if row.StandingsKind() != kind {
				t.Fatalf("row kind %s under %s", row.StandingsKind(), kind)
			}
		}
	}
}

func TestSnapshot_StandingsRowsRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Snapshot{}.StandingsRows(standings.Kind("power-rankings"))
	if !errors.Is(err, standings.ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
}

func TestGroupBy_KeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	keys, groups := GroupBy([]int{3, 1, 4, 1, 5, 9, 2, 6}, func(v int) bool { return v%2 == 0 })
	if len(keys) != 2 || keys[0] != false || keys[1] != true {
		t.Fatalf("unexpected key order %v", keys)
	}
	if got := groups[false]; len(got) != 5 || got[0] != 3 || got[4] != 9 {
		t.Fatalf("unexpected odd bucket %v", got)
	}
}

func TestAggregate_IgnoresStoredMatchupOrder(t *testing.T) {
	t.Parallel()

	canonical := buildHistory(t)
	want, err := sonic.ConfigStd.Marshal(Aggregate(canonical))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// A store may hand seasons back in any order; reversing is the worst case.
	reloaded := buildHistory(t)
	for i := range reloaded {
		slices.Reverse(reloaded[i].Matchups)
		slices.Reverse(reloaded[i].Facts)
		slices.Reverse(reloaded[i].Roster)
	}
	got, err := sonic.ConfigStd.Marshal(Aggregate(reloaded))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("aggregate depends on matchup input order")
	}
}

func TestSortMatchups_NumericTeamOrder(t *testing.T) {
	t.Parallel()

	items := []matchup.Matchup{
		game(2021, 1, matchup.TierNone, 2, "1", 10, "1"),
		game(2020, 2, matchup.TierNone, 1, "1", 2, "1"),
		game(2021, 1, matchup.TierNone, 3, "1", 10, "1"),
		game(2021, 1, matchup.TierNone, 1, "1", 3, "1"),
	}
	SortMatchups(items)

	var got []string
	for _, m := range items {
		got = append(got, fmt.Sprintf("%d/%d/%s-%s", m.Season, m.Week, m.TeamAID, m.TeamBID))
	}
	want := []string{"2020/2/1-2", "2021/1/1-3", "2021/1/2-10", "2021/1/3-10"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("SortMatchups order = %v, want %v", got, want)
	}
}

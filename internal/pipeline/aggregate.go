package pipeline

import (
	"fmt"
	"sort"

	"github.com/riskibarqy/fantasy-history/internal/domain/halloffame"
	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/member"
	"github.com/riskibarqy/fantasy-history/internal/domain/playoff"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/riskibarqy/fantasy-history/internal/domain/standings"
)

// SeasonHistory is everything the aggregators need from one season.
type SeasonHistory struct {
	Season        int
	Matchups      []matchup.Matchup
	Facts         []playoff.Fact
	Championships []playoff.Championship
	Roster        []member.RosterEntry
}

// Snapshot holds every aggregate derived from a league's history.
type Snapshot struct {
	Seasons         []int
	Matchups        []matchup.Matchup
	Facts           []playoff.Fact
	Championships   []playoff.Championship
	Roster          []member.RosterEntry
	Members         []member.Member
	SeasonStandings []standings.Season
	Weekly          []standings.Weekly
	AllTime         []standings.AllTime
	AllTimePlayoffs []standings.AllTime
	HeadToHead      []standings.HeadToHead
	HallOfFame      halloffame.Board
}

// Aggregate merges seasons in ascending order and runs every aggregator
// over the combined facts.
func Aggregate(history []SeasonHistory) Snapshot {
	ordered := append([]SeasonHistory(nil), history...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Season < ordered[j].Season })

	var snap Snapshot
	for _, season := range ordered {
		snap.Seasons = append(snap.Seasons, season.Season)
		snap.Matchups = append(snap.Matchups, season.Matchups...)
		snap.Facts = append(snap.Facts, season.Facts...)
		snap.Championships = append(snap.Championships, season.Championships...)
		snap.Roster = append(snap.Roster, season.Roster...)
	}
	// Seasons rebuilt from the store arrive in sort-key order. Ties in the
	// leaderboards keep input order, so the canonical order is restored here.
	SortMatchups(snap.Matchups)
	sort.SliceStable(snap.Facts, func(i, j int) bool {
		left, right := snap.Facts[i], snap.Facts[j]
		switch {
		case left.Season != right.Season:
			return left.Season < right.Season
		case left.TeamID != right.TeamID:
			return teamLess(left.TeamID, right.TeamID)
		default:
			return left.Status < right.Status
		}
	})
	sort.SliceStable(snap.Roster, func(i, j int) bool {
		if snap.Roster[i].Season != snap.Roster[j].Season {
			return snap.Roster[i].Season < snap.Roster[j].Season
		}
		return teamLess(snap.Roster[i].TeamID, snap.Roster[j].TeamID)
	})

	snap.Members = UniqueMembers(snap.Roster)
	snap.SeasonStandings = SeasonStandings(snap.Matchups, snap.Facts, snap.Championships)
	snap.Weekly = WeeklyStandings(snap.Matchups)
	snap.AllTime = AllTimeStandings(snap.Matchups)
	snap.AllTimePlayoffs = AllTimePlayoffStandings(snap.Matchups)
	snap.HeadToHead = HeadToHeadStandings(snap.Matchups)
	snap.HallOfFame = CompileHallOfFame(snap.Matchups, snap.Roster, snap.Championships)
	return snap
}

var standingsSelectors = map[standings.Kind]func(Snapshot) []standings.Row{
	standings.KindSeason:          func(s Snapshot) []standings.Row { return asRows(s.SeasonStandings) },
	standings.KindWeekly:          func(s Snapshot) []standings.Row { return asRows(s.Weekly) },
	standings.KindAllTime:         func(s Snapshot) []standings.Row { return asRows(s.AllTime) },
	standings.KindAllTimePlayoffs: func(s Snapshot) []standings.Row { return asRows(s.AllTimePlayoffs) },
	standings.KindHeadToHead:      func(s Snapshot) []standings.Row { return asRows(s.HeadToHead) },
}

// StandingsRows returns the rows of one standings kind.
func (s Snapshot) StandingsRows(kind standings.Kind) ([]standings.Row, error) {
	selector, ok := standingsSelectors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", standings.ErrUnsupportedKind, kind)
	}
	return selector(s), nil
}

func asRows[T standings.Row](items []T) []standings.Row {
	out := make([]standings.Row, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

// BuildSeason canonicalizes one raw season and resolves its playoff facts.
func BuildSeason(season int, raw rawseason.Season) (SeasonHistory, CanonicalSeason, error) {
	canonical, err := Canonicalize(season, raw)
	if err != nil {
		return SeasonHistory{}, CanonicalSeason{}, err
	}
	facts, champions := ResolvePlayoffs(season, canonical.Matchups)
	return SeasonHistory{
		Season:        season,
		Matchups:      canonical.Matchups,
		Facts:         facts,
		Championships: champions,
		Roster:        canonical.Roster,
	}, canonical, nil
}

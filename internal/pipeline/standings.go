package pipeline

import (
	"sort"

	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/playoff"
	"github.com/riskibarqy/fantasy-history/internal/domain/standings"
)

type seasonOwner struct {
	season  int
	ownerID string
}

type seasonTeam struct {
	season int
	teamID string
}

type seasonWeek struct {
	season int
	week   int
}

// SeasonStandings computes regular season records per (season, owner),
// including all-play records and playoff/championship status.
func SeasonStandings(matchups []matchup.Matchup, facts []playoff.Fact, champions []playoff.Championship) []standings.Season {
	rows := Expand(regularSeason(matchups))
	allPlay := AllPlayRecords(rows)

	statusByTeam := make(map[seasonTeam]playoff.Status, len(facts))
	for _, fact := range facts {
		key := seasonTeam{fact.Season, fact.TeamID}
		if current, ok := statusByTeam[key]; ok && current.Rank() >= fact.Status.Rank() {
			continue
		}
		statusByTeam[key] = fact.Status
	}
	championByTeam := make(map[seasonTeam]string, len(champions))
	for _, champ := range champions {
		championByTeam[seasonTeam{champ.Season, champ.TeamID}] = champ.Status
	}

	keys, groups := GroupBy(rows, func(r LongRow) seasonOwner { return seasonOwner{r.Season, r.OwnerID} })
	out := make([]standings.Season, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		t := tallyRows(group)
		first := group[0]

		status := playoff.StatusMissedPlayoffs
		championship := ""
		for _, row := range group {
			st := seasonTeam{row.Season, row.TeamID}
			if candidate, ok := statusByTeam[st]; ok && candidate.Rank() > status.Rank() {
				status = candidate
			}
			if champ, ok := championByTeam[st]; ok {
				championship = champ
			}
		}

		record := allPlay[key]
		out = append(out, standings.Season{
			Season:             key.season,
			OwnerID:            key.ownerID,
			OwnerName:          first.OwnerName,
			TeamID:             first.TeamID,
			TeamName:           first.TeamName,
			Wins:               t.Wins,
			Losses:             t.Losses,
			Ties:               t.Ties,
			WinPct:             ratio(t.Wins, t.Wins+t.Losses),
			PointsFor:          t.pointsFor,
			PointsAgainst:      t.pointsAgainst,
			PointDifferential:  t.pointsFor.Sub(t.pointsAgainst),
			AllPlayWins:        record.Wins,
			AllPlayLosses:      record.Losses,
			AllPlayTies:        record.Ties,
			PlayoffStatus:      status,
			ChampionshipStatus: championship,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		left, right := out[i], out[j]
		if left.Season != right.Season {
			return left.Season < right.Season
		}
		if c := left.WinPct.Cmp(right.WinPct); c != 0 {
			return c > 0
		}
		if c := left.PointsFor.Cmp(right.PointsFor); c != 0 {
			return c > 0
		}
		return left.OwnerID < right.OwnerID
	})
	rank, season := 0, 0
	for i := range out {
		if out[i].Season != season {
			season, rank = out[i].Season, 0
		}
		rank++
		out[i].Rank = rank
	}
	return out
}

// AllPlayRecords compares every row's weekly score with every other row of
// the same week, summed per (season, owner).
func AllPlayRecords(rows []LongRow) map[seasonOwner]Outcome {
	out := make(map[seasonOwner]Outcome)
	keys, weeks := GroupBy(rows, func(r LongRow) seasonWeek { return seasonWeek{r.Season, r.Week} })
	for _, key := range keys {
		week := weeks[key]
		for i, row := range week {
			var o Outcome
			for j, other := range week {
				if i == j {
					continue
				}
				switch row.PointsFor.Cmp(other.PointsFor) {
				case 1:
					o.Wins++
				case -1:
					o.Losses++
				default:
					o.Ties++
				}
			}
			owner := seasonOwner{row.Season, row.OwnerID}
			out[owner] = out[owner].Add(o)
		}
	}
	return out
}

// AllTimeStandings aggregates regular season games across every season.
func AllTimeStandings(matchups []matchup.Matchup) []standings.AllTime {
	return allTime(Expand(regularSeason(matchups)), false)
}

// AllTimePlayoffStandings aggregates winners bracket games only.
func AllTimePlayoffStandings(matchups []matchup.Matchup) []standings.AllTime {
	return allTime(Expand(winnersBracket(matchups)), true)
}

func allTime(rows []LongRow, playoffs bool) []standings.AllTime {
	keys, groups := GroupBy(rows, func(r LongRow) string { return r.OwnerID })
	out := make([]standings.AllTime, 0, len(keys))
	for _, ownerID := range keys {
		group := groups[ownerID]
		t := tallyRows(group)
		out = append(out, standings.AllTime{
			OwnerID:           ownerID,
			OwnerName:         group[0].OwnerName,
			Playoffs:          playoffs,
			SeasonsPlayed:     len(t.seasons),
			GamesPlayed:       t.Wins + t.Losses,
			Wins:              t.Wins,
			Losses:            t.Losses,
			Ties:              t.Ties,
			WinPct:            ratio(t.Wins, t.Wins+t.Losses),
			PointsFor:         t.pointsFor,
			PointsAgainst:     t.pointsAgainst,
			PointDifferential: t.pointsFor.Sub(t.pointsAgainst),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].WinPct.Cmp(out[j].WinPct); c != 0 {
			return c > 0
		}
		if c := out[i].PointsFor.Cmp(out[j].PointsFor); c != 0 {
			return c > 0
		}
		return out[i].OwnerID < out[j].OwnerID
	})
	return out
}

// HeadToHeadStandings tracks each ordered (owner, opponent) pair separately.
func HeadToHeadStandings(matchups []matchup.Matchup) []standings.HeadToHead {
	type pair struct{ owner, opponent string }

	rows := Expand(regularSeason(matchups))
	keys, groups := GroupBy(rows, func(r LongRow) pair { return pair{r.OwnerID, r.OpponentOwnerID} })
	out := make([]standings.HeadToHead, 0, len(keys))
	for _, key := range keys {
		group := groups[key]
		t := tallyRows(group)
		out = append(out, standings.HeadToHead{
			OwnerID:           key.owner,
			OwnerName:         group[0].OwnerName,
			OpponentOwnerID:   key.opponent,
			OpponentOwnerName: group[0].OpponentOwnerName,
			Wins:              t.Wins,
			Losses:            t.Losses,
			Ties:              t.Ties,
			WinPct:            ratio(t.Wins, t.Games()),
			PointsFor:         t.pointsFor,
			PointsAgainst:     t.pointsAgainst,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OwnerID != out[j].OwnerID {
			return out[i].OwnerID < out[j].OwnerID
		}
		return out[i].OpponentOwnerID < out[j].OpponentOwnerID
	})
	return out
}

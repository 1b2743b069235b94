package pipeline

import (
	"sort"

	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/standings"
)

// WeeklyStandings returns cumulative regular season records through every
// week each owner actually played.
func WeeklyStandings(matchups []matchup.Matchup) []standings.Weekly {
	type ownerWeek struct {
		season  int
		ownerID string
		week    int
	}

	rows := Expand(regularSeason(matchups))
	weekKeys, weekGroups := GroupBy(rows, func(r LongRow) ownerWeek { return ownerWeek{r.Season, r.OwnerID, r.Week} })
	ownerKeys, ownerWeeks := GroupBy(weekKeys, func(k ownerWeek) seasonOwner { return seasonOwner{k.season, k.ownerID} })

	out := make([]standings.Weekly, 0, len(weekKeys))
	for _, owner := range ownerKeys {
		weeks := ownerWeeks[owner]
		sort.SliceStable(weeks, func(i, j int) bool { return weeks[i].week < weeks[j].week })

		var running Outcome
		for _, wk := range weeks {
			group := weekGroups[wk]
			for _, row := range group {
				running = running.Add(Classify(row))
			}
			out = append(out, standings.Weekly{
				Season:    wk.season,
				Week:      wk.week,
				OwnerID:   wk.ownerID,
				OwnerName: group[0].OwnerName,
				TeamID:    group[0].TeamID,
				Wins:      running.Wins,
				Losses:    running.Losses,
				Ties:      running.Ties,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		left, right := out[i], out[j]
		if left.Season != right.Season {
			return left.Season < right.Season
		}
		if left.Week != right.Week {
			return left.Week < right.Week
		}
		return left.OwnerID < right.OwnerID
	})
	return out
}

package pipeline

import (
	"sort"

	"github.com/riskibarqy/fantasy-history/internal/domain/halloffame"
	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/member"
	"github.com/riskibarqy/fantasy-history/internal/domain/playoff"
)

// CompileHallOfFame builds every all-time leaderboard. Matchups must be in
// season order; equal scores keep that order.
func CompileHallOfFame(matchups []matchup.Matchup, roster []member.RosterEntry, champions []playoff.Championship) halloffame.Board {
	scores := teamScores(matchups)

	top := append([]halloffame.TeamScore(nil), scores...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Score.GreaterThan(top[j].Score) })
	bottom := append([]halloffame.TeamScore(nil), scores...)
	sort.SliceStable(bottom, func(i, j int) bool { return bottom[i].Score.LessThan(bottom[j].Score) })

	return halloffame.Board{
		TopTeamScores:    rankTeamScores(top, halloffame.CategoryTopTeamScores),
		BottomTeamScores: rankTeamScores(bottom, halloffame.CategoryBottomTeamScores),
		Positions:        positionLeaders(matchups),
		Championships:    ChampionshipCounts(roster, champions),
	}
}

func teamScores(matchups []matchup.Matchup) []halloffame.TeamScore {
	out := make([]halloffame.TeamScore, 0, len(matchups)*2)
	for _, m := range matchups {
		out = append(out,
			halloffame.TeamScore{Season: m.Season, Week: m.Week, OwnerID: m.TeamAOwnerID, OwnerName: m.TeamAOwnerName, TeamID: m.TeamAID, Score: m.TeamAScore},
			halloffame.TeamScore{Season: m.Season, Week: m.Week, OwnerID: m.TeamBOwnerID, OwnerName: m.TeamBOwnerName, TeamID: m.TeamBID, Score: m.TeamBScore},
		)
	}
	return out
}

func rankTeamScores(sorted []halloffame.TeamScore, category halloffame.Category) []halloffame.TeamScore {
	if len(sorted) > halloffame.ListSize {
		sorted = sorted[:halloffame.ListSize]
	}
	out := make([]halloffame.TeamScore, len(sorted))
	for i, item := range sorted {
		item.Category = category
		item.Rank = i + 1
		out[i] = item
	}
	return out
}

func positionLeaders(matchups []matchup.Matchup) map[string][]halloffame.PlayerScore {
	appearances := make([]halloffame.PlayerScore, 0)
	appendLines := func(m matchup.Matchup, ownerID, ownerName string, lines []matchup.PlayerLine) {
		for _, line := range lines {
			appearances = append(appearances, halloffame.PlayerScore{
				Season:       m.Season,
				Week:         m.Week,
				OwnerID:      ownerID,
				OwnerName:    ownerName,
				PlayerID:     line.PlayerID,
				PlayerName:   line.FullName,
				Position:     line.Position,
				PointsScored: line.PointsScored,
			})
		}
	}
	for _, m := range matchups {
		appendLines(m, m.TeamAOwnerID, m.TeamAOwnerName, m.TeamAStarters)
		appendLines(m, m.TeamBOwnerID, m.TeamBOwnerName, m.TeamBStarters)
	}

	_, byPosition := GroupBy(appearances, func(p halloffame.PlayerScore) string { return p.Position })
	out := make(map[string][]halloffame.PlayerScore, len(halloffame.Positions))
	for _, position := range halloffame.Positions {
		group := append([]halloffame.PlayerScore(nil), byPosition[position]...)
		sort.SliceStable(group, func(i, j int) bool { return group[i].PointsScored.GreaterThan(group[j].PointsScored) })
		if len(group) > halloffame.ListSize {
			group = group[:halloffame.ListSize]
		}
		category := halloffame.PositionCategories[position]
		for i := range group {
			group[i].Category = category
			group[i].Rank = i + 1
		}
		out[position] = group
	}
	return out
}

// ChampionshipCounts joins championship facts to the roster by
// (season, team) and counts titles per owner.
func ChampionshipCounts(roster []member.RosterEntry, champions []playoff.Championship) []halloffame.ChampionshipCount {
	rosterByTeam := make(map[seasonTeam]member.RosterEntry, len(roster))
	for _, entry := range roster {
		rosterByTeam[seasonTeam{entry.Season, entry.TeamID}] = entry
	}

	ordered := append([]playoff.Championship(nil), champions...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Season < ordered[j].Season })

	counts := make(map[string]*halloffame.ChampionshipCount)
	order := make([]string, 0)
	for _, champ := range ordered {
		entry, ok := rosterByTeam[seasonTeam{champ.Season, champ.TeamID}]
		if !ok {
			continue
		}
		count, exists := counts[entry.OwnerID]
		if !exists {
			count = &halloffame.ChampionshipCount{OwnerID: entry.OwnerID, OwnerName: entry.OwnerFullName}
			counts[entry.OwnerID] = count
			order = append(order, entry.OwnerID)
		}
		count.Championships++
		count.Seasons = append(count.Seasons, champ.Season)
	}

	out := make([]halloffame.ChampionshipCount, 0, len(order))
	for _, ownerID := range order {
		out = append(out, *counts[ownerID])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Championships != out[j].Championships {
			return out[i].Championships > out[j].Championships
		}
		return out[i].OwnerID < out[j].OwnerID
	})
	return out
}

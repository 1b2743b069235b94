package pipeline

import (
	"sort"

	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/playoff"
	"github.com/shopspring/decimal"
)

// bracketRuleChangeSeason is the first season with a 17 week schedule,
// which pushed every playoff round one week later.
const bracketRuleChangeSeason = 2021

// BracketWeeks names the weeks holding each winners bracket round.
type BracketWeeks struct {
	RoundOne     int
	Bye          int
	Championship int
}

func BracketWeeksFor(season int) BracketWeeks {
	if season < bracketRuleChangeSeason {
		return BracketWeeks{RoundOne: 14, Bye: 15, Championship: 16}
	}
	return BracketWeeks{RoundOne: 15, Bye: 16, Championship: 17}
}

// ResolvePlayoffs derives playoff qualification and the champion from a
// season's winners bracket games. Missing bracket weeks yield empty output.
func ResolvePlayoffs(season int, matchups []matchup.Matchup) ([]playoff.Fact, []playoff.Championship) {
	weeks := BracketWeeksFor(season)
	bracket := Filter(matchups, func(m matchup.Matchup) bool {
		return m.Season == season && m.IsWinnersBracket()
	})

	statusByTeam := make(map[string]playoff.Status)
	tag := func(teamID string, status playoff.Status) {
		if teamID == "" {
			return
		}
		if current, ok := statusByTeam[teamID]; ok && current.Rank() >= status.Rank() {
			return
		}
		statusByTeam[teamID] = status
	}

	var champions []playoff.Championship
	for _, m := range bracket {
		home, away := homeAway(m)
		switch m.Week {
		case weeks.RoundOne:
			if home.teamID != "" && away.teamID != "" {
				tag(home.teamID, playoff.StatusMadePlayoffs)
				tag(away.teamID, playoff.StatusMadePlayoffs)
			}
		case weeks.Bye:
			tag(home.teamID, playoff.StatusClinchedFirstRoundBye)
		case weeks.Championship:
			if len(champions) > 0 {
				continue
			}
			winner := home
			if away.score.GreaterThan(home.score) {
				winner = away
			}
			if winner.teamID != "" {
				champions = append(champions, playoff.Championship{
					Season: season,
					TeamID: winner.teamID,
					Status: playoff.StatusLeagueChampion,
				})
			}
		}
	}

	facts := make([]playoff.Fact, 0, len(statusByTeam))
	for teamID, status := range statusByTeam {
		facts = append(facts, playoff.Fact{Season: season, TeamID: teamID, Status: status})
	}
	sort.Slice(facts, func(i, j int) bool { return teamLess(facts[i].TeamID, facts[j].TeamID) })

	if champions == nil {
		champions = []playoff.Championship{}
	}
	return facts, champions
}

type bracketSide struct {
	teamID string
	score  decimal.Decimal
}

// homeAway maps the canonical A/B sides back to the original home/away slots.
func homeAway(m matchup.Matchup) (bracketSide, bracketSide) {
	a := bracketSide{teamID: m.TeamAID, score: m.TeamAScore}
	b := bracketSide{teamID: m.TeamBID, score: m.TeamBScore}
	if m.HomeTeamID != "" && m.HomeTeamID == m.TeamBID {
		return b, a
	}
	return a, b
}

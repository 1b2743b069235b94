package pipeline

import (
	"strconv"

	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/member"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/shopspring/decimal"
)

var fixtureOwners = map[int]string{1: "{AAA}", 2: "{BBB}", 3: "{CCC}", 10: "{DDD}"}
var fixtureNames = map[string]string{"{AAA}": "Alice Adams", "{BBB}": "Bob Brown", "{CCC}": "Cara Cole", "{DDD}": "Dan Dunn"}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// rawLeague builds a four team season with teams 1, 2, 3 and 10.
func rawLeague(games ...rawseason.Matchup) rawseason.Season {
	season := rawseason.Season{LeagueID: 123, SeasonID: 2022, Schedule: games}
	for _, teamID := range []int{1, 2, 3, 10} {
		owner := fixtureOwners[teamID]
		season.Teams = append(season.Teams, rawseason.Team{
			ID:     rawseason.TeamRef(strconv.Itoa(teamID)),
			Name:   "Team " + strconv.Itoa(teamID),
			Abbrev: "T" + strconv.Itoa(teamID),
			Owners: []string{owner},
		})
	}
	for _, owner := range []string{"{AAA}", "{BBB}", "{CCC}", "{DDD}"} {
		name := fixtureNames[owner]
		first, last := splitName(name)
		season.Members = append(season.Members, rawseason.Member{ID: owner, FirstName: first, LastName: last})
	}
	return season
}

func splitName(name string) (string, string) {
	for i := range name {
		if name[i] == ' ' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}

func rawGame(week int, tier string, homeID int, homePts float64, awayID int, awayPts float64) rawseason.Matchup {
	return rawseason.Matchup{
		MatchupPeriodID: week,
		PlayoffTierType: tier,
		Home:            &rawseason.MatchupSide{TeamID: rawseason.TeamRef(strconv.Itoa(homeID)), TotalPoints: homePts},
		Away:            &rawseason.MatchupSide{TeamID: rawseason.TeamRef(strconv.Itoa(awayID)), TotalPoints: awayPts},
	}
}

func rosterEntry(season int, teamID int) member.RosterEntry {
	owner := fixtureOwners[teamID]
	return member.RosterEntry{
		Season:        season,
		TeamID:        strconv.Itoa(teamID),
		TeamName:      "Team " + strconv.Itoa(teamID),
		OwnerID:       owner,
		OwnerFullName: fixtureNames[owner],
	}
}

// game builds a canonical matchup between fixture teams a < b.
func game(season, week int, tier matchup.PlayoffTier, a int, aScore string, b int, bScore string) matchup.Matchup {
	ownerA, ownerB := fixtureOwners[a], fixtureOwners[b]
	m := matchup.Matchup{
		Season:         season,
		Week:           week,
		TeamAID:        strconv.Itoa(a),
		TeamBID:        strconv.Itoa(b),
		HomeTeamID:     strconv.Itoa(a),
		TeamAScore:     dec(aScore),
		TeamBScore:     dec(bScore),
		TeamAOwnerID:   ownerA,
		TeamBOwnerID:   ownerB,
		TeamAOwnerName: fixtureNames[ownerA],
		TeamBOwnerName: fixtureNames[ownerB],
		TeamAName:      "Team " + strconv.Itoa(a),
		TeamBName:      "Team " + strconv.Itoa(b),
		PlayoffTier:    tier,
	}
	switch m.TeamAScore.Cmp(m.TeamBScore) {
	case 1:
		m.Winner, m.Loser = ownerA, ownerB
	case -1:
		m.Winner, m.Loser = ownerB, ownerA
	default:
		m.Winner, m.Loser = matchup.Tie, matchup.Tie
	}
	return m
}

func withStarters(m matchup.Matchup, a, b []matchup.PlayerLine) matchup.Matchup {
	m.TeamAStarters = a
	m.TeamBStarters = b
	return m
}

func line(id, position, points string) matchup.PlayerLine {
	return matchup.PlayerLine{PlayerID: id, FullName: "Player " + id, Position: position, PointsScored: dec(points)}
}

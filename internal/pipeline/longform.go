package pipeline

import (
	"strings"

	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/shopspring/decimal"
)

// LongRow is one side of a matchup seen from that side's owner.
type LongRow struct {
	Season            int
	Week              int
	TeamID            string
	TeamName          string
	OwnerID           string
	OwnerName         string
	OpponentTeamID    string
	OpponentOwnerID   string
	OpponentOwnerName string
	PointsFor         decimal.Decimal
	PointsAgainst     decimal.Decimal
	PlayoffTier       matchup.PlayoffTier
	Winner            string
	Loser             string
}

// Outcome is a win/loss/tie tally.
type Outcome struct {
	Wins   int
	Losses int
	Ties   int
}

func (o Outcome) Add(other Outcome) Outcome {
	return Outcome{Wins: o.Wins + other.Wins, Losses: o.Losses + other.Losses, Ties: o.Ties + other.Ties}
}

func (o Outcome) Games() int {
	return o.Wins + o.Losses + o.Ties
}

// Classify scores one long-form row for its owner. A row whose owner is
// neither winner nor loser counts as nothing.
func Classify(row LongRow) Outcome {
	switch {
	case strings.EqualFold(strings.TrimSpace(row.Winner), matchup.Tie):
		return Outcome{Ties: 1}
	case row.OwnerID == row.Winner:
		return Outcome{Wins: 1}
	case row.OwnerID == row.Loser:
		return Outcome{Losses: 1}
	default:
		return Outcome{}
	}
}

// Expand emits exactly two rows per matchup, team A's view first.
func Expand(matchups []matchup.Matchup) []LongRow {
	rows := make([]LongRow, 0, len(matchups)*2)
	for _, m := range matchups {
		rows = append(rows,
			LongRow{
				Season:            m.Season,
				Week:              m.Week,
				TeamID:            m.TeamAID,
				TeamName:          m.TeamAName,
				OwnerID:           m.TeamAOwnerID,
				OwnerName:         m.TeamAOwnerName,
				OpponentTeamID:    m.TeamBID,
				OpponentOwnerID:   m.TeamBOwnerID,
				OpponentOwnerName: m.TeamBOwnerName,
				PointsFor:         m.TeamAScore,
				PointsAgainst:     m.TeamBScore,
				PlayoffTier:       m.PlayoffTier,
				Winner:            m.Winner,
				Loser:             m.Loser,
			},
			LongRow{
				Season:            m.Season,
				Week:              m.Week,
				TeamID:            m.TeamBID,
				TeamName:          m.TeamBName,
				OwnerID:           m.TeamBOwnerID,
				OwnerName:         m.TeamBOwnerName,
				OpponentTeamID:    m.TeamAID,
				OpponentOwnerID:   m.TeamAOwnerID,
				OpponentOwnerName: m.TeamAOwnerName,
				PointsFor:         m.TeamBScore,
				PointsAgainst:     m.TeamAScore,
				PlayoffTier:       m.PlayoffTier,
				Winner:            m.Winner,
				Loser:             m.Loser,
			},
		)
	}
	return rows
}

func regularSeason(matchups []matchup.Matchup) []matchup.Matchup {
	return Filter(matchups, matchup.Matchup.IsRegularSeason)
}

func winnersBracket(matchups []matchup.Matchup) []matchup.Matchup {
	return Filter(matchups, matchup.Matchup.IsWinnersBracket)
}

// tally folds a group of rows into an outcome plus point totals.
type tally struct {
	Outcome
	pointsFor     decimal.Decimal
	pointsAgainst decimal.Decimal
	seasons       map[int]struct{}
}

func newTally() *tally {
	return &tally{pointsFor: decimal.Zero, pointsAgainst: decimal.Zero, seasons: make(map[int]struct{})}
}

func (t *tally) add(row LongRow) {
	t.Outcome = t.Outcome.Add(Classify(row))
	t.pointsFor = t.pointsFor.Add(row.PointsFor)
	t.pointsAgainst = t.pointsAgainst.Add(row.PointsAgainst)
	t.seasons[row.Season] = struct{}{}
}

func tallyRows(rows []LongRow) *tally {
	t := newTally()
	for _, row := range rows {
		t.add(row)
	}
	return t
}

package matchup

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tie marks both winner and loser of a drawn game.
const Tie = "TIE"

// PlayoffTier is the bracket a game belongs to. Regular season games use TierNone.
type PlayoffTier string

const (
	TierNone                     PlayoffTier = "NONE"
	TierWinnersBracket           PlayoffTier = "WINNERS_BRACKET"
	TierWinnersConsolationLadder PlayoffTier = "WINNERS_CONSOLATION_LADDER"
	TierLosersConsolationLadder  PlayoffTier = "LOSERS_CONSOLATION_LADDER"
)

func ParseTier(raw string) PlayoffTier {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return TierNone
	}
	return PlayoffTier(value)
}

// PlayerLine is one player's contribution to a side of a matchup.
type PlayerLine struct {
	PlayerID     string          `json:"player_id"`
	FullName     string          `json:"full_name"`
	PointsScored decimal.Decimal `json:"points_scored"`
	Position     string          `json:"position"`
}

// Matchup is a canonical game: TeamA always holds the numerically smaller team id.
type Matchup struct {
	Season         int             `json:"season"`
	Week           int             `json:"week"`
	TeamAID        string          `json:"team_a_id"`
	TeamBID        string          `json:"team_b_id"`
	HomeTeamID     string          `json:"home_team_id"`
	TeamAScore     decimal.Decimal `json:"team_a_score"`
	TeamBScore     decimal.Decimal `json:"team_b_score"`
	TeamAOwnerID   string          `json:"team_a_owner_id"`
	TeamBOwnerID   string          `json:"team_b_owner_id"`
	TeamAOwnerName string          `json:"team_a_owner_full_name"`
	TeamBOwnerName string          `json:"team_b_owner_full_name"`
	TeamAName      string          `json:"team_a_name"`
	TeamBName      string          `json:"team_b_name"`
	TeamAStarters  []PlayerLine    `json:"team_a_starting_players"`
	TeamABench     []PlayerLine    `json:"team_a_bench_players"`
	TeamBStarters  []PlayerLine    `json:"team_b_starting_players"`
	TeamBBench     []PlayerLine    `json:"team_b_bench_players"`
	PlayoffTier    PlayoffTier     `json:"playoff_tier_type"`
	Winner         string          `json:"winner"`
	Loser          string          `json:"loser"`
}

func (m Matchup) IsRegularSeason() bool {
	return m.PlayoffTier == TierNone || m.PlayoffTier == ""
}

func (m Matchup) IsWinnersBracket() bool {
	return m.PlayoffTier == TierWinnersBracket
}

// Filter narrows matchup queries. Zero values match everything.
type Filter struct {
	Season int
	Week   int
}

func (f Filter) Match(m Matchup) bool {
	if f.Season > 0 && m.Season != f.Season {
		return false
	}
	if f.Week > 0 && m.Week != f.Week {
		return false
	}
	return true
}

package standings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/fantasy-history/internal/domain/playoff"
	"github.com/shopspring/decimal"
)

var ErrUnsupportedKind = errors.New("unsupported standings kind")

// Kind is the aggregation window of a standings row.
type Kind string

const (
	KindSeason          Kind = "season"
	KindWeekly          Kind = "weekly"
	KindAllTime         Kind = "all-time"
	KindAllTimePlayoffs Kind = "all-time-playoffs"
	KindHeadToHead      Kind = "head-to-head"
)

// Kinds lists every supported kind in persistence order.
var Kinds = []Kind{KindSeason, KindWeekly, KindAllTime, KindAllTimePlayoffs, KindHeadToHead}

func ParseKind(raw string) (Kind, error) {
	value := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, kind := range Kinds {
		if kind == value {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, raw)
}

// Row is implemented by every standings record type.
type Row interface {
	StandingsKind() Kind
	Owner() string
}

// Season is one owner's regular season record.
type Season struct {
	Season             int             `json:"season"`
	Rank               int             `json:"rank"`
	OwnerID            string          `json:"owner_id"`
	OwnerName          string          `json:"owner_full_name"`
	TeamID             string          `json:"team_id"`
	TeamName           string          `json:"team_name"`
	Wins               int             `json:"wins"`
	Losses             int             `json:"losses"`
	Ties               int             `json:"ties"`
	WinPct             decimal.Decimal `json:"win_pct"`
	PointsFor          decimal.Decimal `json:"points_for"`
	PointsAgainst      decimal.Decimal `json:"points_against"`
	PointDifferential  decimal.Decimal `json:"point_differential"`
	AllPlayWins        int             `json:"all_play_wins"`
	AllPlayLosses      int             `json:"all_play_losses"`
	AllPlayTies        int             `json:"all_play_ties"`
	PlayoffStatus      playoff.Status  `json:"playoff_status"`
	ChampionshipStatus string          `json:"championship_status"`
}

func (Season) StandingsKind() Kind { return KindSeason }
func (s Season) Owner() string     { return s.OwnerID }

// AllTime aggregates every supplied season for one owner. Playoffs selects
// the winners bracket window instead of the regular season.
type AllTime struct {
	OwnerID           string          `json:"owner_id"`
	OwnerName         string          `json:"owner_full_name"`
	Playoffs          bool            `json:"playoffs"`
	SeasonsPlayed     int             `json:"seasons_played"`
	GamesPlayed       int             `json:"games_played"`
	Wins              int             `json:"wins"`
	Losses            int             `json:"losses"`
	Ties              int             `json:"ties"`
	WinPct            decimal.Decimal `json:"win_pct"`
	PointsFor         decimal.Decimal `json:"points_for"`
	PointsAgainst     decimal.Decimal `json:"points_against"`
	PointDifferential decimal.Decimal `json:"point_differential"`
}

func (a AllTime) StandingsKind() Kind {
	if a.Playoffs {
		return KindAllTimePlayoffs
	}
	return KindAllTime
}
func (a AllTime) Owner() string { return a.OwnerID }

// HeadToHead is directional: OwnerID's record against OpponentOwnerID.
type HeadToHead struct {
	OwnerID           string          `json:"owner_id"`
	OwnerName         string          `json:"owner_full_name"`
	OpponentOwnerID   string          `json:"opponent_owner_id"`
	OpponentOwnerName string          `json:"opponent_owner_full_name"`
	Wins              int             `json:"wins"`
	Losses            int             `json:"losses"`
	Ties              int             `json:"ties"`
	WinPct            decimal.Decimal `json:"win_pct"`
	PointsFor         decimal.Decimal `json:"points_for"`
	PointsAgainst     decimal.Decimal `json:"points_against"`
}

func (HeadToHead) StandingsKind() Kind { return KindHeadToHead }
func (h HeadToHead) Owner() string     { return h.OwnerID }

// Weekly holds cumulative totals through Week.
type Weekly struct {
	Season    int    `json:"season"`
	Week      int    `json:"week"`
	OwnerID   string `json:"owner_id"`
	OwnerName string `json:"owner_full_name"`
	TeamID    string `json:"team_id"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	Ties      int    `json:"ties"`
}

func (Weekly) StandingsKind() Kind { return KindWeekly }
func (w Weekly) Owner() string     { return w.OwnerID }

// Filter narrows standings queries. Season is ignored by all-time kinds.
type Filter struct {
	Season  int
	OwnerID string
}

package halloffame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnsupportedCategory = errors.New("unsupported hall of fame category")

// ListSize caps every leaderboard.
const ListSize = 10

type Category string

const (
	CategoryTopTeamScores    Category = "TOP_10_TEAM_SCORES"
	CategoryBottomTeamScores Category = "BOTTOM_10_TEAM_SCORES"
	CategoryTopQB            Category = "TOP_10_QB"
	CategoryTopRB            Category = "TOP_10_RB"
	CategoryTopWR            Category = "TOP_10_WR"
	CategoryTopTE            Category = "TOP_10_TE"
	CategoryTopDST           Category = "TOP_10_DST"
	CategoryTopK             Category = "TOP_10_K"
	CategoryChampionships    Category = "CHAMPIONSHIPS"
)

var Categories = []Category{
	CategoryTopTeamScores,
	CategoryBottomTeamScores,
	CategoryTopQB,
	CategoryTopRB,
	CategoryTopWR,
	CategoryTopTE,
	CategoryTopDST,
	CategoryTopK,
	CategoryChampionships,
}

// PositionCategories maps lineup position labels to their leaderboard.
var PositionCategories = map[string]Category{
	"QB":   CategoryTopQB,
	"RB":   CategoryTopRB,
	"WR":   CategoryTopWR,
	"TE":   CategoryTopTE,
	"D/ST": CategoryTopDST,
	"K":    CategoryTopK,
}

// Positions is the leaderboard order for positional categories.
var Positions = []string{"QB", "RB", "WR", "TE", "D/ST", "K"}

func ParseCategory(raw string) (Category, error) {
	value := Category(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")))
	for _, category := range Categories {
		if category == value {
			return category, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCategory, raw)
}

// Entry is implemented by every leaderboard row type.
type Entry interface {
	EntryCategory() Category
}

type TeamScore struct {
	Category  Category        `json:"category"`
	Rank      int             `json:"rank"`
	Season    int             `json:"season"`
	Week      int             `json:"week"`
	OwnerID   string          `json:"owner_id"`
	OwnerName string          `json:"owner_full_name"`
	TeamID    string          `json:"team_id"`
	Score     decimal.Decimal `json:"score"`
}

func (t TeamScore) EntryCategory() Category { return t.Category }

type PlayerScore struct {
	Category     Category        `json:"category"`
	Rank         int             `json:"rank"`
	Season       int             `json:"season"`
	Week         int             `json:"week"`
	OwnerID      string          `json:"owner_id"`
	OwnerName    string          `json:"owner_full_name"`
	PlayerID     string          `json:"player_id"`
	PlayerName   string          `json:"player_full_name"`
	Position     string          `json:"position"`
	PointsScored decimal.Decimal `json:"points_scored"`
}

func (p PlayerScore) EntryCategory() Category { return p.Category }

type ChampionshipCount struct {
	OwnerID       string `json:"owner_id"`
	OwnerName     string `json:"owner_full_name"`
	Championships int    `json:"championships"`
	Seasons       []int  `json:"seasons"`
}

func (ChampionshipCount) EntryCategory() Category { return CategoryChampionships }

// Board is the full set of leaderboards compiled from one history.
type Board struct {
	TopTeamScores    []TeamScore
	BottomTeamScores []TeamScore
	Positions        map[string][]PlayerScore
	Championships    []ChampionshipCount
}

// List is one category's leaderboard.
type List struct {
	Category Category
	Entries  []Entry
}

// Lists flattens the board into one list per category, in Categories order.
func (b Board) Lists() []List {
	out := make([]List, 0, len(Categories))
	out = append(out, List{Category: CategoryTopTeamScores, Entries: asEntries(b.TopTeamScores)})
	out = append(out, List{Category: CategoryBottomTeamScores, Entries: asEntries(b.BottomTeamScores)})
	for _, position := range Positions {
		out = append(out, List{Category: PositionCategories[position], Entries: asEntries(b.Positions[position])})
	}
	out = append(out, List{Category: CategoryChampionships, Entries: asEntries(b.Championships)})
	return out
}

func asEntries[T Entry](items []T) []Entry {
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

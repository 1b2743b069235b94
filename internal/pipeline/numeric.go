package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/shopspring/decimal"
)

// nonNumericTeamKey orders blank or non-numeric team ids after every real one.
const nonNumericTeamKey int64 = 1_000_000_000_000

func teamSortKey(id string) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return nonNumericTeamKey
	}
	return value
}

// teamLess orders team ids numerically, falling back to the raw string
// when both share a sort key.
func teamLess(left, right string) bool {
	lk, rk := teamSortKey(left), teamSortKey(right)
	if lk != rk {
		return lk < rk
	}
	return left < right
}

func roundScore(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// ratio returns num/den rounded to three places, or zero when den is zero.
func ratio(num, den int) decimal.Decimal {
	if den <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(num)).DivRound(decimal.NewFromInt(int64(den)), 3)
}

// SortMatchups orders matchups by (season, week, team_a, team_b) with team ids
// compared numerically. Store queries return the string order of sort keys,
// where "11" precedes "3", so anything read back goes through here before
// aggregation.
func SortMatchups(items []matchup.Matchup) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i], items[j]
		switch {
		case left.Season != right.Season:
			return left.Season < right.Season
		case left.Week != right.Week:
			return left.Week < right.Week
		case left.TeamAID != right.TeamAID:
			return teamLess(left.TeamAID, right.TeamAID)
		default:
			return teamLess(left.TeamBID, right.TeamBID)
		}
	})
}

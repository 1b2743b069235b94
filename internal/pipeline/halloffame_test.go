package pipeline

import (
	"strconv"
	"testing"

	"github.com/riskibarqy/fantasy-history/internal/domain/halloffame"
	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/member"
	"github.com/riskibarqy/fantasy-history/internal/domain/playoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileHallOfFame_TeamScores(t *testing.T) {
	t.Parallel()

	matchups := make([]matchup.Matchup, 0, 6)
	for week := 1; week <= 6; week++ {
		a := strconv.Itoa(100 + week)
		b := strconv.Itoa(50 + week)
		matchups = append(matchups, game(2022, week, matchup.TierNone, 1, a, 2, b))
	}
	// Equal score to week 6 keeps input order on the leaderboard.
	matchups = append(matchups, game(2023, 1, matchup.TierWinnersBracket, 3, "106", 10, "40"))

	board := CompileHallOfFame(matchups, nil, nil)

	require.Len(t, board.TopTeamScores, halloffame.ListSize)
	require.Len(t, board.BottomTeamScores, halloffame.ListSize)

	top := board.TopTeamScores[0]
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, halloffame.CategoryTopTeamScores, top.Category)
	assert.Equal(t, "106", top.Score.String())
	assert.Equal(t, 2022, top.Season)
	assert.Equal(t, 2023, board.TopTeamScores[1].Season)

	bottom := board.BottomTeamScores[0]
	assert.Equal(t, "40", bottom.Score.String())
	assert.Equal(t, "{DDD}", bottom.OwnerID)
	assert.Equal(t, halloffame.CategoryBottomTeamScores, bottom.Category)
	for i := 1; i < len(board.TopTeamScores); i++ {
		assert.False(t, board.TopTeamScores[i].Score.GreaterThan(board.TopTeamScores[i-1].Score))
	}
}

func TestCompileHallOfFame_Positions(t *testing.T) {
	t.Parallel()

	matchups := []matchup.Matchup{
		withStarters(
			game(2022, 1, matchup.TierNone, 1, "100", 2, "90"),
			[]matchup.PlayerLine{line("11", "QB", "30.5"), line("12", "D/ST", "12")},
			[]matchup.PlayerLine{line("21", "QB", "31.25"), line("22", "UNKNOWN", "50")},
		),
		withStarters(
			game(2022, 2, matchup.TierNone, 1, "100", 2, "90"),
			[]matchup.PlayerLine{line("11", "QB", "10")},
			nil,
		),
	}

	board := CompileHallOfFame(matchups, nil, nil)

	qbs := board.Positions["QB"]
	require.Len(t, qbs, 3)
	assert.Equal(t, "21", qbs[0].PlayerID)
	assert.Equal(t, "{BBB}", qbs[0].OwnerID)
	assert.Equal(t, halloffame.CategoryTopQB, qbs[0].Category)
	assert.Equal(t, 3, qbs[2].Rank)

	require.Len(t, board.Positions["D/ST"], 1)
	assert.Equal(t, halloffame.CategoryTopDST, board.Positions["D/ST"][0].Category)
	assert.Empty(t, board.Positions["K"])
	_, hasUnknown := board.Positions["UNKNOWN"]
	assert.False(t, hasUnknown)

	lists := board.Lists()
	require.Len(t, lists, len(halloffame.Categories))
	for i, list := range lists {
		assert.Equal(t, halloffame.Categories[i], list.Category)
	}
}

func TestChampionshipCounts(t *testing.T) {
	t.Parallel()

	roster := []member.RosterEntry{
		rosterEntry(2020, 1),
		rosterEntry(2021, 2),
		rosterEntry(2022, 2),
		// Bob owns team 10 in 2023.
		{Season: 2023, TeamID: "10", OwnerID: "{BBB}", OwnerFullName: "Bob Brown"},
	}
	champions := []playoff.Championship{
		{Season: 2023, TeamID: "10", Status: playoff.StatusLeagueChampion},
		{Season: 2020, TeamID: "1", Status: playoff.StatusLeagueChampion},
		{Season: 2021, TeamID: "2", Status: playoff.StatusLeagueChampion},
		{Season: 2022, TeamID: "99", Status: playoff.StatusLeagueChampion},
	}

	got := ChampionshipCounts(roster, champions)
	require.Len(t, got, 2)
	assert.Equal(t, "{BBB}", got[0].OwnerID)
	assert.Equal(t, 2, got[0].Championships)
	assert.Equal(t, []int{2021, 2023}, got[0].Seasons)
	assert.Equal(t, "{AAA}", got[1].OwnerID)
	assert.Equal(t, 1, got[1].Championships)
}

package pipeline

import (
	"testing"

	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/playoff"
)

func TestBracketWeeksFor(t *testing.T) {
	t.Parallel()

	if got := BracketWeeksFor(2020); got != (BracketWeeks{RoundOne: 14, Bye: 15, Championship: 16}) {
		t.Fatalf("unexpected pre-2021 weeks %+v", got)
	}
	if got := BracketWeeksFor(2021); got != (BracketWeeks{RoundOne: 15, Bye: 16, Championship: 17}) {
		t.Fatalf("unexpected 2021 weeks %+v", got)
	}
}

func TestResolvePlayoffs_ChampionIsHomeWinner(t *testing.T) {
	t.Parallel()

	final := game(2022, 17, matchup.TierWinnersBracket, 1, "100.0", 2, "95.0")
	_, champions := ResolvePlayoffs(2022, []matchup.Matchup{final})

	if len(champions) != 1 {
		t.Fatalf("expected exactly one champion, got %d", len(champions))
	}
	if champions[0].TeamID != "1" || champions[0].Status != playoff.StatusLeagueChampion {
		t.Fatalf("unexpected champion %+v", champions[0])
	}
}

func TestResolvePlayoffs_UsesHomeSlotAfterCanonicalSwap(t *testing.T) {
	t.Parallel()

	// Home team 10 sorts after team 3, so it lands in the B slot.
	final := game(2022, 17, matchup.TierWinnersBracket, 3, "110.0", 10, "110.0")
	final.HomeTeamID = "10"

	_, champions := ResolvePlayoffs(2022, []matchup.Matchup{final})
	if len(champions) != 1 || champions[0].TeamID != "10" {
		t.Fatalf("expected home team 10 to win an exact tie, got %+v", champions)
	}
}

func TestResolvePlayoffs_PreRuleChangeBracket(t *testing.T) {
	t.Parallel()

	matchups := []matchup.Matchup{
		game(2019, 13, matchup.TierNone, 1, "100", 2, "90"),
		game(2019, 14, matchup.TierWinnersBracket, 2, "100", 3, "90"),
		game(2019, 14, matchup.TierLosersConsolationLadder, 1, "100", 10, "90"),
		game(2019, 15, matchup.TierWinnersBracket, 1, "120", 2, "110"),
		game(2019, 16, matchup.TierWinnersBracket, 1, "99", 2, "101"),
	}

	facts, champions := ResolvePlayoffs(2019, matchups)

	want := map[string]playoff.Status{
		"1": playoff.StatusClinchedFirstRoundBye,
		"2": playoff.StatusMadePlayoffs,
		"3": playoff.StatusMadePlayoffs,
	}
	if len(facts) != len(want) {
		t.Fatalf("expected %d facts, got %+v", len(want), facts)
	}
	for _, fact := range facts {
		if want[fact.TeamID] != fact.Status {
			t.Fatalf("team %s: expected %s, got %s", fact.TeamID, want[fact.TeamID], fact.Status)
		}
	}
	if len(champions) != 1 || champions[0].TeamID != "2" {
		t.Fatalf("expected team 2 champion, got %+v", champions)
	}
}

func TestResolvePlayoffs_ByeBeatsMadePlayoffs(t *testing.T) {
	t.Parallel()

	matchups := []matchup.Matchup{
		game(2023, 15, matchup.TierWinnersBracket, 1, "100", 2, "90"),
		game(2023, 16, matchup.TierWinnersBracket, 1, "100", 3, "90"),
	}
	facts, _ := ResolvePlayoffs(2023, matchups)
	for _, fact := range facts {
		if fact.TeamID == "1" && fact.Status != playoff.StatusClinchedFirstRoundBye {
			t.Fatalf("expected bye status to win, got %s", fact.Status)
		}
	}
}

func TestResolvePlayoffs_MissingWeeksYieldEmpty(t *testing.T) {
	t.Parallel()

	matchups := []matchup.Matchup{game(2022, 3, matchup.TierNone, 1, "100", 2, "90")}
	facts, champions := ResolvePlayoffs(2022, matchups)
	if len(facts) != 0 || len(champions) != 0 {
		t.Fatalf("expected empty output, got %+v %+v", facts, champions)
	}
}

func TestResolvePlayoffs_EveryByeWeekMatchupTagsItsHomeTeam(t *testing.T) {
	t.Parallel()

	second := game(2022, 16, matchup.TierWinnersBracket, 3, "101", 10, "99")
	second.HomeTeamID = "10"
	matchups := []matchup.Matchup{
		game(2022, 16, matchup.TierWinnersBracket, 1, "120", 2, "110"),
		second,
		game(2022, 16, matchup.TierWinnersConsolationLadder, 2, "80", 3, "70"),
	}

	facts, _ := ResolvePlayoffs(2022, matchups)

	got := make(map[string]playoff.Status, len(facts))
	for _, fact := range facts {
		got[fact.TeamID] = fact.Status
	}
	want := map[string]playoff.Status{
		"1":  playoff.StatusClinchedFirstRoundBye,
		"10": playoff.StatusClinchedFirstRoundBye,
	}
	if len(got) != len(want) {
		t.Fatalf("expected byes for teams 1 and 10 only, got %+v", facts)
	}
	for teamID, status := range want {
		if got[teamID] != status {
			t.Fatalf("team %s: expected %s, got %q", teamID, status, got[teamID])
		}
	}
}

package playoff

type Status string

const (
	StatusMadePlayoffs          Status = "MADE_PLAYOFFS"
	StatusClinchedFirstRoundBye Status = "CLINCHED_FIRST_ROUND_BYE"
	// StatusMissedPlayoffs is implied for any team without a Fact.
	StatusMissedPlayoffs Status = "MISSED_PLAYOFFS"
)

// Rank orders statuses so the stronger one survives a merge.
func (s Status) Rank() int {
	switch s {
	case StatusClinchedFirstRoundBye:
		return 2
	case StatusMadePlayoffs:
		return 1
	default:
		return 0
	}
}

const StatusLeagueChampion = "LEAGUE_CHAMPION"

type Fact struct {
	Season int    `json:"season"`
	TeamID string `json:"team_id"`
	Status Status `json:"playoff_status"`
}

// Championship is emitted at most once per season.
type Championship struct {
	Season int    `json:"season"`
	TeamID string `json:"team_id"`
	Status string `json:"championship_status"`
}

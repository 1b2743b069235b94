package rawseason

import (
	"bytes"
	"strconv"
	"strings"
)

// Credentials authenticate requests for private leagues.
type Credentials struct {
	SWID   string
	ESPNS2 string
}

func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.SWID) == "" && strings.TrimSpace(c.ESPNS2) == ""
}

// Season is one league season as returned by the provider, merged across
// the mTeam, mRoster, mMatchupScore, mSettings, mDraftDetail and
// kona_player_info views.
type Season struct {
	LeagueID    int           `json:"id"`
	SeasonID    int           `json:"seasonId"`
	Members     []Member      `json:"members"`
	Teams       []Team        `json:"teams"`
	Schedule    []Matchup     `json:"schedule"`
	Settings    Settings      `json:"settings"`
	DraftDetail DraftDetail   `json:"draftDetail"`
	Players     []PlayerEntry `json:"players"`
}

type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

func (m Member) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(m.FirstName) + " " + strings.TrimSpace(m.LastName))
}

type Team struct {
	ID           TeamRef  `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Nickname     string   `json:"nickname"`
	Abbrev       string   `json:"abbrev"`
	Owners       []string `json:"owners"`
	PrimaryOwner string   `json:"primaryOwner"`
}

// DisplayName falls back to location + nickname for seasons before the
// provider introduced a single name field.
func (t Team) DisplayName() string {
	if name := strings.TrimSpace(t.Name); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(t.Location) + " " + strings.TrimSpace(t.Nickname))
}

type Matchup struct {
	ID              int          `json:"id"`
	MatchupPeriodID int          `json:"matchupPeriodId"`
	PlayoffTierType string       `json:"playoffTierType"`
	Winner          string       `json:"winner"`
	Home            *MatchupSide `json:"home"`
	Away            *MatchupSide `json:"away"`
}

type MatchupSide struct {
	TeamID                        TeamRef `json:"teamId"`
	TotalPoints                   float64 `json:"totalPoints"`
	RosterForMatchupPeriod        *Roster `json:"rosterForMatchupPeriod"`
	RosterForCurrentScoringPeriod *Roster `json:"rosterForCurrentScoringPeriod"`
}

type Roster struct {
	AppliedStatTotal float64       `json:"appliedStatTotal"`
	Entries          []RosterEntry `json:"entries"`
}

type RosterEntry struct {
	PlayerID        int             `json:"playerId"`
	LineupSlotID    int             `json:"lineupSlotId"`
	PlayerPoolEntry PlayerPoolEntry `json:"playerPoolEntry"`
}

type PlayerPoolEntry struct {
	ID               int     `json:"id"`
	AppliedStatTotal float64 `json:"appliedStatTotal"`
	Player           Player  `json:"player"`
}

type Player struct {
	ID                int    `json:"id"`
	FullName          string `json:"fullName"`
	DefaultPositionID int    `json:"defaultPositionId"`
}

type Settings struct {
	Name             string           `json:"name"`
	RosterSettings   RosterSettings   `json:"rosterSettings"`
	ScheduleSettings ScheduleSettings `json:"scheduleSettings"`
}

type RosterSettings struct {
	// LineupSlotCounts maps a lineup slot id to the number of starters
	// allowed in it.
	LineupSlotCounts map[string]int `json:"lineupSlotCounts"`
}

type ScheduleSettings struct {
	MatchupPeriodCount int `json:"matchupPeriodCount"`
	PlayoffTeamCount   int `json:"playoffTeamCount"`
}

type DraftDetail struct {
	Drafted bool        `json:"drafted"`
	Picks   []DraftPick `json:"picks"`
}

type DraftPick struct {
	OverallPickNumber int     `json:"overallPickNumber"`
	RoundID           int     `json:"roundId"`
	RoundPickNumber   int     `json:"roundPickNumber"`
	PlayerID          int     `json:"playerId"`
	TeamID            TeamRef `json:"teamId"`
	Keeper            bool    `json:"keeper"`
}

// PlayerEntry is a season-long player total from the player info view.
type PlayerEntry struct {
	ID       int     `json:"id"`
	OnTeamID TeamRef `json:"onTeamId"`
	Player   Player  `json:"player"`
}

// TeamRef is a team identifier. The provider sends numbers, older
// archives carry strings, and bye slots leave it empty.
type TeamRef string

func (r *TeamRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*r = TeamRef(strings.TrimSpace(unquoted))
		return nil
	}
	*r = TeamRef(string(data))
	return nil
}

func (r TeamRef) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(r), 10, 64); err == nil {
		return []byte(r), nil
	}
	return []byte(strconv.Quote(string(r))), nil
}

func (r TeamRef) String() string {
	return string(r)
}

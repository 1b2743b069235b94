package member

import "strings"

// Member is a league participant. Cross-season aggregation keys on OwnerID.
type Member struct {
	OwnerID   string `json:"owner_id"`
	FullName  string `json:"owner_full_name"`
	FirstName string `json:"owner_first_name"`
	LastName  string `json:"owner_last_name"`
}

// Team is a franchise entity scoped to one season.
type Team struct {
	Season       int      `json:"season"`
	TeamID       string   `json:"team_id"`
	Name         string   `json:"team_name"`
	Abbreviation string   `json:"team_abbreviation"`
	OwnerIDs     []string `json:"owner_ids"`
}

// PrimaryOwnerID returns the first listed owner.
func (t Team) PrimaryOwnerID() string {
	for _, id := range t.OwnerIDs {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	return ""
}

// RosterEntry joins a season's team to its primary owner.
type RosterEntry struct {
	Season           int    `json:"season"`
	TeamID           string `json:"team_id"`
	TeamName         string `json:"team_name"`
	TeamAbbreviation string `json:"team_abbreviation"`
	OwnerID          string `json:"owner_id"`
	OwnerFullName    string `json:"owner_full_name"`
	OwnerFirstName   string `json:"owner_first_name"`
	OwnerLastName    string `json:"owner_last_name"`
}

func (r RosterEntry) Member() Member {
	return Member{
		OwnerID:   r.OwnerID,
		FullName:  r.OwnerFullName,
		FirstName: r.OwnerFirstName,
		LastName:  r.OwnerLastName,
	}
}

package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/member"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/shopspring/decimal"
)

var ErrEmptySeason = errors.New("empty season data")

const UnknownPosition = "UNKNOWN"

var positionLabels = map[int]string{
	1:  "QB",
	2:  "RB",
	3:  "WR",
	4:  "TE",
	5:  "K",
	16: "D/ST",
}

func PositionLabel(positionID int) string {
	if label, ok := positionLabels[positionID]; ok {
		return label
	}
	return UnknownPosition
}

// DroppedMatchup is a game excluded because a side had no roster match.
type DroppedMatchup struct {
	Week       int
	HomeTeamID string
	AwayTeamID string
}

// CanonicalSeason is the canonicalizer output for one season.
type CanonicalSeason struct {
	Season           int
	Matchups         []matchup.Matchup
	Teams            []member.Team
	Roster           []member.RosterEntry
	LineupSlotCounts map[string]int
	// Unplayed counts future weeks skipped on the 0.00/0.00 sentinel.
	Unplayed int
	Dropped  []DroppedMatchup
}

// BuildRoster joins each team to its first owner's member record. Teams whose
// owner is not a known member get no roster entry.
func BuildRoster(season int, raw rawseason.Season) ([]member.Team, []member.RosterEntry) {
	membersByID := make(map[string]rawseason.Member, len(raw.Members))
	for _, m := range raw.Members {
		id := normalizeOwnerID(m.ID)
		if id == "" {
			continue
		}
		if _, exists := membersByID[id]; !exists {
			membersByID[id] = m
		}
	}

	teams := make([]member.Team, 0, len(raw.Teams))
	for _, t := range raw.Teams {
		owners := make([]string, 0, len(t.Owners)+1)
		for _, owner := range t.Owners {
			if owner = strings.TrimSpace(owner); owner != "" {
				owners = append(owners, owner)
			}
		}
		if len(owners) == 0 && strings.TrimSpace(t.PrimaryOwner) != "" {
			owners = append(owners, strings.TrimSpace(t.PrimaryOwner))
		}
		teams = append(teams, member.Team{
			Season:       season,
			TeamID:       t.ID.String(),
			Name:         t.DisplayName(),
			Abbreviation: strings.TrimSpace(t.Abbrev),
			OwnerIDs:     owners,
		})
	}
	sort.SliceStable(teams, func(i, j int) bool { return teamLess(teams[i].TeamID, teams[j].TeamID) })

	roster := make([]member.RosterEntry, 0, len(teams))
	for _, t := range teams {
		ownerID := t.PrimaryOwnerID()
		m, ok := membersByID[normalizeOwnerID(ownerID)]
		if !ok || t.TeamID == "" {
			continue
		}
		fullName := m.FullName()
		if fullName == "" {
			fullName = strings.TrimSpace(m.DisplayName)
		}
		roster = append(roster, member.RosterEntry{
			Season:           season,
			TeamID:           t.TeamID,
			TeamName:         t.Name,
			TeamAbbreviation: t.Abbreviation,
			OwnerID:          strings.TrimSpace(m.ID),
			OwnerFullName:    fullName,
			OwnerFirstName:   strings.TrimSpace(m.FirstName),
			OwnerLastName:    strings.TrimSpace(m.LastName),
		})
	}
	return teams, roster
}

// Canonicalize turns one season of provider data into symmetric matchups
// ordered by (week, team_a, team_b).
func Canonicalize(season int, raw rawseason.Season) (CanonicalSeason, error) {
	switch {
	case len(raw.Members) == 0:
		return CanonicalSeason{}, fmt.Errorf("%w: season %d has no members", ErrEmptySeason, season)
	case len(raw.Teams) == 0:
		return CanonicalSeason{}, fmt.Errorf("%w: season %d has no teams", ErrEmptySeason, season)
	case len(raw.Schedule) == 0:
		return CanonicalSeason{}, fmt.Errorf("%w: season %d has no matchups", ErrEmptySeason, season)
	}

	teams, roster := BuildRoster(season, raw)
	rosterByTeam := make(map[string]member.RosterEntry, len(roster))
	for _, entry := range roster {
		rosterByTeam[entry.TeamID] = entry
	}

	out := CanonicalSeason{
		Season:           season,
		Teams:            teams,
		Roster:           roster,
		LineupSlotCounts: copyCounts(raw.Settings.RosterSettings.LineupSlotCounts),
		Matchups:         make([]matchup.Matchup, 0, len(raw.Schedule)),
	}

	for _, item := range raw.Schedule {
		home := buildSide(item.Home)
		away := buildSide(item.Away)
		if home.total == 0 && away.total == 0 {
			out.Unplayed++
			continue
		}

		a, b := home, away
		if teamLess(away.teamID, home.teamID) {
			a, b = away, home
		}

		ownerA, okA := rosterByTeam[a.teamID]
		ownerB, okB := rosterByTeam[b.teamID]
		if !okA || !okB {
			out.Dropped = append(out.Dropped, DroppedMatchup{
				Week:       item.MatchupPeriodID,
				HomeTeamID: home.teamID,
				AwayTeamID: away.teamID,
			})
			continue
		}

		m := matchup.Matchup{
			Season:         season,
			Week:           item.MatchupPeriodID,
			TeamAID:        a.teamID,
			TeamBID:        b.teamID,
			HomeTeamID:     home.teamID,
			TeamAScore:     a.score,
			TeamBScore:     b.score,
			TeamAOwnerID:   ownerA.OwnerID,
			TeamBOwnerID:   ownerB.OwnerID,
			TeamAOwnerName: ownerA.OwnerFullName,
			TeamBOwnerName: ownerB.OwnerFullName,
			TeamAName:      ownerA.TeamName,
			TeamBName:      ownerB.TeamName,
			TeamAStarters:  a.starters,
			TeamABench:     a.bench,
			TeamBStarters:  b.starters,
			TeamBBench:     b.bench,
			PlayoffTier:    matchup.ParseTier(item.PlayoffTierType),
		}
		// Decided on the stored 2dp scores so results agree with all-play.
		switch a.score.Cmp(b.score) {
		case 1:
			m.Winner, m.Loser = ownerA.OwnerID, ownerB.OwnerID
		case -1:
			m.Winner, m.Loser = ownerB.OwnerID, ownerA.OwnerID
		default:
			m.Winner, m.Loser = matchup.Tie, matchup.Tie
		}
		out.Matchups = append(out.Matchups, m)
	}

	SortMatchups(out.Matchups)

	if len(out.Matchups) == 0 {
		return CanonicalSeason{}, fmt.Errorf("%w: season %d has no played matchups", ErrEmptySeason, season)
	}
	return out, nil
}

type side struct {
	teamID   string
	total    float64
	score    decimal.Decimal
	starters []matchup.PlayerLine
	bench    []matchup.PlayerLine
}

func buildSide(raw *rawseason.MatchupSide) side {
	if raw == nil {
		return side{score: decimal.Zero, starters: []matchup.PlayerLine{}, bench: []matchup.PlayerLine{}}
	}

	out := side{
		teamID:   raw.TeamID.String(),
		total:    raw.TotalPoints,
		score:    roundScore(raw.TotalPoints),
		starters: make([]matchup.PlayerLine, 0),
		bench:    make([]matchup.PlayerLine, 0),
	}

	starting := make(map[string]struct{})
	if raw.RosterForMatchupPeriod != nil {
		for _, entry := range raw.RosterForMatchupPeriod.Entries {
			line := playerLine(entry)
			starting[line.PlayerID] = struct{}{}
			out.starters = append(out.starters, line)
		}
	}
	if raw.RosterForCurrentScoringPeriod != nil {
		for _, entry := range raw.RosterForCurrentScoringPeriod.Entries {
			line := playerLine(entry)
			if _, ok := starting[line.PlayerID]; ok {
				continue
			}
			out.bench = append(out.bench, line)
		}
	}
	return out
}

func playerLine(entry rawseason.RosterEntry) matchup.PlayerLine {
	playerID := entry.PlayerID
	if playerID == 0 {
		playerID = entry.PlayerPoolEntry.Player.ID
	}
	return matchup.PlayerLine{
		PlayerID:     strconv.Itoa(playerID),
		FullName:     strings.TrimSpace(entry.PlayerPoolEntry.Player.FullName),
		PointsScored: roundScore(entry.PlayerPoolEntry.AppliedStatTotal),
		Position:     PositionLabel(entry.PlayerPoolEntry.Player.DefaultPositionID),
	}
}

func normalizeOwnerID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

package league

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Platform is the fantasy provider a league is hosted on.
type Platform string

const (
	PlatformESPN Platform = "ESPN"
)

var supportedPlatforms = map[Platform]struct{}{
	PlatformESPN: {},
}

func ParsePlatform(raw string) (Platform, error) {
	value := Platform(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := supportedPlatforms[value]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, raw)
	}
	return value, nil
}

// Key identifies one league on one platform. Every stored row for the
// league lives under the same key.
type Key struct {
	LeagueID string
	Platform Platform
}

func (k Key) Validate() error {
	if strings.TrimSpace(k.LeagueID) == "" {
		return fmt.Errorf("league id is required")
	}
	if _, ok := supportedPlatforms[k.Platform]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedPlatform, k.Platform)
	}
	return nil
}

func (k Key) String() string {
	return string(k.Platform) + "/" + k.LeagueID
}

// League is the metadata written after a successful history run.
type League struct {
	LeagueID      string    `json:"league_id"`
	Platform      Platform  `json:"platform"`
	Name          string    `json:"name"`
	Seasons       []int     `json:"seasons"`
	CurrentSeason int       `json:"current_season"`
	MemberCount   int       `json:"member_count"`
	LastRunID     string    `json:"last_run_id"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (l League) Key() Key {
	return Key{LeagueID: l.LeagueID, Platform: l.Platform}
}

// HasSeason reports whether season was part of the last run.
func (l League) HasSeason(season int) bool {
	for _, s := range l.Seasons {
		if s == season {
			return true
		}
	}
	return false
}

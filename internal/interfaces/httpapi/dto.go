package httpapi

import (
	"time"

	"github.com/riskibarqy/fantasy-history/internal/domain/league"
)

type listDTO struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	Items []any  `json:"items"`
}

type leagueDTO struct {
	LeagueID      string    `json:"league_id"`
	Platform      string    `json:"platform"`
	Name          string    `json:"name,omitempty"`
	Seasons       []int     `json:"seasons"`
	CurrentSeason int       `json:"current_season"`
	MemberCount   int       `json:"member_count"`
	LastRunID     string    `json:"last_run_id"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func leagueToDTO(v league.League) leagueDTO {
	seasons := v.Seasons
	if seasons == nil {
		seasons = []int{}
	}
	return leagueDTO{
		LeagueID:      v.LeagueID,
		Platform:      string(v.Platform),
		Name:          v.Name,
		Seasons:       seasons,
		CurrentSeason: v.CurrentSeason,
		MemberCount:   v.MemberCount,
		LastRunID:     v.LastRunID,
		UpdatedAt:     v.UpdatedAt,
	}
}

type onboardJobRequest struct {
	LeagueID string `json:"league_id" validate:"required"`
	Platform string `json:"platform" validate:"omitempty,oneof=ESPN espn"`
	Seasons  []int  `json:"seasons" validate:"required,min=1,dive,gt=0"`
	SWID     string `json:"swid"`
	ESPNS2   string `json:"espn_s2"`
}

type refreshJobRequest struct {
	LeagueID string `json:"league_id" validate:"required"`
	Platform string `json:"platform" validate:"omitempty,oneof=ESPN espn"`
	Season   int    `json:"season" validate:"required,gt=0"`
	SWID     string `json:"swid"`
	ESPNS2   string `json:"espn_s2"`
}

func asAny[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

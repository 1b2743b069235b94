package usecase

import (
	"context"

	"github.com/riskibarqy/fantasy-history/internal/domain/rawdata"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
)

// SeasonFetcher pulls one league season from the fantasy provider.
// Authentication failures wrap ErrUnauthorized.
type SeasonFetcher interface {
	FetchSeason(ctx context.Context, leagueID string, season int, creds rawseason.Credentials) (FetchedSeason, error)
}

// FetchedSeason is the decoded season plus the raw responses it was built
// from, kept for archiving.
type FetchedSeason struct {
	Season   rawseason.Season
	Payloads []rawdata.Payload
}

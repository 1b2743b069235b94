package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/riskibarqy/fantasy-history/internal/domain/halloffame"
	"github.com/riskibarqy/fantasy-history/internal/domain/league"
	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/member"
	"github.com/riskibarqy/fantasy-history/internal/domain/standings"
	"github.com/riskibarqy/fantasy-history/internal/pipeline"
)

type StandingsQuery struct {
	LeagueID string
	Platform string
	Kind     string
	Season   int
	OwnerID  string
}

type MembersQuery struct {
	LeagueID string
	Platform string
	// Search is matched fuzzily against owner names. Empty returns everyone.
	Search string
}

type MatchupsQuery struct {
	LeagueID string
	Platform string
	Season   int
	Week     int
}

// HistoryService serves the stored league history. Every read requires the
// league metadata row, so a league that was never onboarded is ErrNotFound.
type HistoryService struct {
	repos HistoryRepositories
}

func NewHistoryService(repos HistoryRepositories) *HistoryService {
	return &HistoryService{repos: repos}
}

func (s *HistoryService) GetLeague(ctx context.Context, leagueID, platform string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.GetLeague")
	defer span.End()

	key, err := parseLeagueKey(leagueID, platform)
	if err != nil {
		return league.League{}, err
	}
	return s.requireLeague(ctx, key)
}

func (s *HistoryService) ListStandings(ctx context.Context, query StandingsQuery) ([]standings.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.ListStandings")
	defer span.End()

	key, err := parseLeagueKey(query.LeagueID, query.Platform)
	if err != nil {
		return nil, err
	}
	kind, err := standings.ParseKind(query.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	if query.Season < 0 {
		return nil, fmt.Errorf("%w: season must not be negative", ErrInvalidInput)
	}
	if _, err := s.requireLeague(ctx, key); err != nil {
		return nil, err
	}

	rows, err := s.repos.Standings.List(ctx, key, kind, standings.Filter{
		Season:  query.Season,
		OwnerID: strings.TrimSpace(query.OwnerID),
	})
	if err != nil {
		return nil, fmt.Errorf("list %s standings: %w", kind, err)
	}
	return rows, nil
}

func (s *HistoryService) ListHallOfFame(ctx context.Context, leagueID, platform, category string) ([]halloffame.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.ListHallOfFame")
	defer span.End()

	key, err := parseLeagueKey(leagueID, platform)
	if err != nil {
		return nil, err
	}
	parsed, err := halloffame.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	if _, err := s.requireLeague(ctx, key); err != nil {
		return nil, err
	}

	entries, err := s.repos.HallOfFame.List(ctx, key, parsed)
	if err != nil {
		return nil, fmt.Errorf("list hall of fame %s: %w", parsed, err)
	}
	return entries, nil
}

func (s *HistoryService) ListMembers(ctx context.Context, query MembersQuery) ([]member.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.ListMembers")
	defer span.End()

	key, err := parseLeagueKey(query.LeagueID, query.Platform)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireLeague(ctx, key); err != nil {
		return nil, err
	}

	members, err := s.repos.Members.ListMembers(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	search := strings.TrimSpace(query.Search)
	if search == "" {
		return members, nil
	}
	return searchMembers(members, search), nil
}

func (s *HistoryService) ListMatchups(ctx context.Context, query MatchupsQuery) ([]matchup.Matchup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.ListMatchups")
	defer span.End()

	key, err := parseLeagueKey(query.LeagueID, query.Platform)
	if err != nil {
		return nil, err
	}
	if query.Season < 0 || query.Week < 0 {
		return nil, fmt.Errorf("%w: season and week must not be negative", ErrInvalidInput)
	}
	if query.Week > 0 && query.Season == 0 {
		return nil, fmt.Errorf("%w: week filter requires a season", ErrInvalidInput)
	}
	if _, err := s.requireLeague(ctx, key); err != nil {
		return nil, err
	}

	items, err := s.repos.Matchups.List(ctx, key, matchup.Filter{Season: query.Season, Week: query.Week})
	if err != nil {
		return nil, fmt.Errorf("list matchups: %w", err)
	}
	// Cached slices are shared between readers.
	items = append([]matchup.Matchup(nil), items...)
	pipeline.SortMatchups(items)
	return items, nil
}

func (s *HistoryService) requireLeague(ctx context.Context, key league.Key) (league.League, error) {
	if s.repos.League == nil {
		return league.League{}, fmt.Errorf("%w: league repository is not configured", ErrDependencyUnavailable)
	}
	item, exists, err := s.repos.League.Get(ctx, key)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, key)
	}
	return item, nil
}

func parseLeagueKey(leagueID, platform string) (league.Key, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.Key{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(platform) == "" {
		platform = string(league.PlatformESPN)
	}
	parsed, err := league.ParsePlatform(platform)
	if err != nil {
		if errors.Is(err, league.ErrUnsupportedPlatform) {
			return league.Key{}, fmt.Errorf("%w: %w", ErrUnsupported, err)
		}
		return league.Key{}, err
	}
	return league.Key{LeagueID: leagueID, Platform: parsed}, nil
}

// searchMembers ranks members by fuzzy distance between search and the
// owner's full name, closest first.
func searchMembers(members []member.Member, search string) []member.Member {
	names := make([]string, len(members))
	for i, item := range members {
		names[i] = item.FullName
	}

	ranks := fuzzy.RankFindNormalizedFold(search, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]member.Member, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, members[rank.OriginalIndex])
	}
	return out
}

package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/fantasy-history/internal/domain/halloffame"
	"github.com/riskibarqy/fantasy-history/internal/domain/league"
	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/member"
	"github.com/riskibarqy/fantasy-history/internal/domain/playoff"
	"github.com/riskibarqy/fantasy-history/internal/domain/standings"
	basecache "github.com/riskibarqy/fantasy-history/internal/platform/cache"
)

// Cache keys are "<repo>:<platform>/<league>:..." so a write can drop every
// read of the same league with one prefix delete.
func leagueScope(repo string, key league.Key) string {
	return repo + ":" + key.String() + ":"
}

func cloned[T any](items []T) []T {
	return append([]T(nil), items...)
}

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) Get(ctx context.Context, key league.Key) (league.League, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, leagueScope("league", key)+"meta", func(ctx context.Context) (cachedLeague, error) {
		item, exists, err := r.next.Get(ctx, key)
		if err != nil {
			return cachedLeague{}, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *LeagueRepository) Upsert(ctx context.Context, item league.League) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, leagueScope("league", item.Key()))
	return nil
}

type cachedLeague struct {
	value  league.League
	exists bool
}

type StandingsRepository struct {
	next  standings.Repository
	cache *basecache.Store
}

func NewStandingsRepository(next standings.Repository, cache *basecache.Store) *StandingsRepository {
	return &StandingsRepository{next: next, cache: cache}
}

func (r *StandingsRepository) List(ctx context.Context, key league.Key, kind standings.Kind, filter standings.Filter) ([]standings.Row, error) {
	cacheKey := leagueScope("standings", key) + string(kind) + ":" + strconv.Itoa(filter.Season) + ":" + filter.OwnerID
	items, err := basecache.Load(ctx, r.cache, cacheKey, func(ctx context.Context) ([]standings.Row, error) {
		items, err := r.next.List(ctx, key, kind, filter)
		if err != nil {
			return nil, err
		}
		return cloned(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloned(items), nil
}

func (r *StandingsRepository) UpsertMany(ctx context.Context, key league.Key, kind standings.Kind, rows []standings.Row) error {
	if err := r.next.UpsertMany(ctx, key, kind, rows); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, leagueScope("standings", key)+string(kind)+":")
	return nil
}

type HallOfFameRepository struct {
	next  halloffame.Repository
	cache *basecache.Store
}

func NewHallOfFameRepository(next halloffame.Repository, cache *basecache.Store) *HallOfFameRepository {
	return &HallOfFameRepository{next: next, cache: cache}
}

func (r *HallOfFameRepository) List(ctx context.Context, key league.Key, category halloffame.Category) ([]halloffame.Entry, error) {
	items, err := basecache.Load(ctx, r.cache, leagueScope("halloffame", key)+string(category), func(ctx context.Context) ([]halloffame.Entry, error) {
		items, err := r.next.List(ctx, key, category)
		if err != nil {
			return nil, err
		}
		return cloned(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloned(items), nil
}

func (r *HallOfFameRepository) UpsertList(ctx context.Context, key league.Key, list halloffame.List) error {
	if err := r.next.UpsertList(ctx, key, list); err != nil {
		return err
	}
	r.cache.Delete(ctx, leagueScope("halloffame", key)+string(list.Category))
	return nil
}

type MemberRepository struct {
	next  member.Repository
	cache *basecache.Store
}

func NewMemberRepository(next member.Repository, cache *basecache.Store) *MemberRepository {
	return &MemberRepository{next: next, cache: cache}
}

func (r *MemberRepository) ListMembers(ctx context.Context, key league.Key) ([]member.Member, error) {
	items, err := basecache.Load(ctx, r.cache, leagueScope("member", key)+"members", func(ctx context.Context) ([]member.Member, error) {
		items, err := r.next.ListMembers(ctx, key)
		if err != nil {
			return nil, err
		}
		return cloned(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloned(items), nil
}

func (r *MemberRepository) UpsertMembers(ctx context.Context, key league.Key, items []member.Member) error {
	if err := r.next.UpsertMembers(ctx, key, items); err != nil {
		return err
	}
	r.cache.Delete(ctx, leagueScope("member", key)+"members")
	return nil
}

func (r *MemberRepository) ListRoster(ctx context.Context, key league.Key, season int) ([]member.RosterEntry, error) {
	cacheKey := leagueScope("member", key) + "roster:" + strconv.Itoa(season)
	items, err := basecache.Load(ctx, r.cache, cacheKey, func(ctx context.Context) ([]member.RosterEntry, error) {
		items, err := r.next.ListRoster(ctx, key, season)
		if err != nil {
			return nil, err
		}
		return cloned(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloned(items), nil
}

func (r *MemberRepository) UpsertRoster(ctx context.Context, key league.Key, items []member.RosterEntry) error {
	if err := r.next.UpsertRoster(ctx, key, items); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, leagueScope("member", key)+"roster:")
	return nil
}

type MatchupRepository struct {
	next  matchup.Repository
	cache *basecache.Store
}

func NewMatchupRepository(next matchup.Repository, cache *basecache.Store) *MatchupRepository {
	return &MatchupRepository{next: next, cache: cache}
}

func (r *MatchupRepository) List(ctx context.Context, key league.Key, filter matchup.Filter) ([]matchup.Matchup, error) {
	cacheKey := leagueScope("matchup", key) + strconv.Itoa(filter.Season) + ":" + strconv.Itoa(filter.Week)
	items, err := basecache.Load(ctx, r.cache, cacheKey, func(ctx context.Context) ([]matchup.Matchup, error) {
		items, err := r.next.List(ctx, key, filter)
		if err != nil {
			return nil, err
		}
		return cloned(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloned(items), nil
}

func (r *MatchupRepository) UpsertMany(ctx context.Context, key league.Key, items []matchup.Matchup) error {
	if err := r.next.UpsertMany(ctx, key, items); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, leagueScope("matchup", key))
	return nil
}

type PlayoffRepository struct {
	next  playoff.Repository
	cache *basecache.Store
}

func NewPlayoffRepository(next playoff.Repository, cache *basecache.Store) *PlayoffRepository {
	return &PlayoffRepository{next: next, cache: cache}
}

func (r *PlayoffRepository) ListFacts(ctx context.Context, key league.Key, season int) ([]playoff.Fact, error) {
	items, err := basecache.Load(ctx, r.cache, leagueScope("playoff", key)+"facts:"+strconv.Itoa(season), func(ctx context.Context) ([]playoff.Fact, error) {
		items, err := r.next.ListFacts(ctx, key, season)
		if err != nil {
			return nil, err
		}
		return cloned(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloned(items), nil
}

func (r *PlayoffRepository) UpsertFacts(ctx context.Context, key league.Key, items []playoff.Fact) error {
	if err := r.next.UpsertFacts(ctx, key, items); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, leagueScope("playoff", key)+"facts:")
	return nil
}

func (r *PlayoffRepository) ListChampionships(ctx context.Context, key league.Key) ([]playoff.Championship, error) {
	items, err := basecache.Load(ctx, r.cache, leagueScope("playoff", key)+"champions", func(ctx context.Context) ([]playoff.Championship, error) {
		items, err := r.next.ListChampionships(ctx, key)
		if err != nil {
			return nil, err
		}
		return cloned(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloned(items), nil
}

func (r *PlayoffRepository) UpsertChampionships(ctx context.Context, key league.Key, items []playoff.Championship) error {
	if err := r.next.UpsertChampionships(ctx, key, items); err != nil {
		return err
	}
	r.cache.Delete(ctx, leagueScope("playoff", key)+"champions")
	return nil
}

package kvstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-history/internal/domain/halloffame"
	"github.com/riskibarqy/fantasy-history/internal/domain/kv"
	"github.com/riskibarqy/fantasy-history/internal/domain/league"
	"github.com/riskibarqy/fantasy-history/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-history/internal/domain/member"
	"github.com/riskibarqy/fantasy-history/internal/domain/playoff"
	"github.com/riskibarqy/fantasy-history/internal/domain/standings"
)

type base struct {
	store  kv.Store
	writer *BatchWriter
	now    func() time.Time
}

func newBase(store kv.Store, writer *BatchWriter) base {
	if writer == nil {
		writer = NewBatchWriter(store, DefaultWriterConfig(), nil)
	}
	return base{store: store, writer: writer, now: time.Now}
}

func (b base) put(ctx context.Context, items []kv.Item) error {
	if len(items) == 0 {
		return nil
	}
	return b.writer.Write(ctx, items)
}

func (b base) query(ctx context.Context, key league.Key, prefix string) ([]kv.Item, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	items, err := b.store.Query(ctx, PartitionKey(key), prefix)
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", key, prefix, err)
	}
	return items, nil
}

func putAll[T any](ctx context.Context, b base, key league.Key, category string, rows []T, sortKey func(T) (string, error)) error {
	if err := key.Validate(); err != nil {
		return err
	}
	items, err := encodeItems(key, category, rows, sortKey, b.now().UTC())
	if err != nil {
		return err
	}
	if err := b.put(ctx, items); err != nil {
		return fmt.Errorf("write %s rows for %s: %w", category, key, err)
	}
	return nil
}

func queryAll[T any](ctx context.Context, b base, key league.Key, prefix string) ([]T, error) {
	items, err := b.query(ctx, key, prefix)
	if err != nil {
		return nil, err
	}
	return decodeItems[T](items)
}

func plainKey[T any](fn func(T) string) func(T) (string, error) {
	return func(v T) (string, error) { return fn(v), nil }
}

type MatchupRepository struct {
	base
}

func NewMatchupRepository(store kv.Store, writer *BatchWriter) *MatchupRepository {
	return &MatchupRepository{base: newBase(store, writer)}
}

func matchupSortKey(m matchup.Matchup) string {
	return joinKey(categoryMatchup, itoa(m.Season), pad2(m.Week), m.TeamAID, m.TeamBID)
}

func (r *MatchupRepository) List(ctx context.Context, key league.Key, filter matchup.Filter) ([]matchup.Matchup, error) {
	prefix := scanPrefix(categoryMatchup)
	switch {
	case filter.Season > 0 && filter.Week > 0:
		prefix = scanPrefix(categoryMatchup, itoa(filter.Season), pad2(filter.Week))
	case filter.Season > 0:
		prefix = scanPrefix(categoryMatchup, itoa(filter.Season))
	}

	items, err := queryAll[matchup.Matchup](ctx, r.base, key, prefix)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, item := range items {
		if filter.Match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MatchupRepository) UpsertMany(ctx context.Context, key league.Key, items []matchup.Matchup) error {
	return putAll(ctx, r.base, key, categoryMatchup, items, plainKey(matchupSortKey))
}

type MemberRepository struct {
	base
}

func NewMemberRepository(store kv.Store, writer *BatchWriter) *MemberRepository {
	return &MemberRepository{base: newBase(store, writer)}
}

func (r *MemberRepository) ListMembers(ctx context.Context, key league.Key) ([]member.Member, error) {
	return queryAll[member.Member](ctx, r.base, key, scanPrefix(categoryMember))
}

func (r *MemberRepository) UpsertMembers(ctx context.Context, key league.Key, items []member.Member) error {
	return putAll(ctx, r.base, key, categoryMember, items, plainKey(func(m member.Member) string {
		return joinKey(categoryMember, m.OwnerID)
	}))
}

func (r *MemberRepository) ListRoster(ctx context.Context, key league.Key, season int) ([]member.RosterEntry, error) {
	prefix := scanPrefix(categoryRoster)
	if season > 0 {
		prefix = scanPrefix(categoryRoster, itoa(season))
	}
	return queryAll[member.RosterEntry](ctx, r.base, key, prefix)
}

func (r *MemberRepository) UpsertRoster(ctx context.Context, key league.Key, items []member.RosterEntry) error {
	return putAll(ctx, r.base, key, categoryRoster, items, plainKey(func(e member.RosterEntry) string {
		return joinKey(categoryRoster, itoa(e.Season), e.TeamID)
	}))
}

type PlayoffRepository struct {
	base
}

func NewPlayoffRepository(store kv.Store, writer *BatchWriter) *PlayoffRepository {
	return &PlayoffRepository{base: newBase(store, writer)}
}

func (r *PlayoffRepository) ListFacts(ctx context.Context, key league.Key, season int) ([]playoff.Fact, error) {
	prefix := scanPrefix(categoryPlayoff)
	if season > 0 {
		prefix = scanPrefix(categoryPlayoff, itoa(season))
	}
	return queryAll[playoff.Fact](ctx, r.base, key, prefix)
}

func (r *PlayoffRepository) UpsertFacts(ctx context.Context, key league.Key, items []playoff.Fact) error {
	return putAll(ctx, r.base, key, categoryPlayoff, items, plainKey(func(f playoff.Fact) string {
		return joinKey(categoryPlayoff, itoa(f.Season), f.TeamID)
	}))
}

func (r *PlayoffRepository) ListChampionships(ctx context.Context, key league.Key) ([]playoff.Championship, error) {
	return queryAll[playoff.Championship](ctx, r.base, key, scanPrefix(categoryChampion))
}

func (r *PlayoffRepository) UpsertChampionships(ctx context.Context, key league.Key, items []playoff.Championship) error {
	return putAll(ctx, r.base, key, categoryChampion, items, plainKey(func(c playoff.Championship) string {
		return joinKey(categoryChampion, itoa(c.Season), c.TeamID)
	}))
}

type StandingsRepository struct {
	base
}

func NewStandingsRepository(store kv.Store, writer *BatchWriter) *StandingsRepository {
	return &StandingsRepository{base: newBase(store, writer)}
}

func (r *StandingsRepository) List(ctx context.Context, key league.Key, kind standings.Kind, filter standings.Filter) ([]standings.Row, error) {
	codec, err := standingsCodecFor(kind)
	if err != nil {
		return nil, err
	}
	items, err := r.query(ctx, key, codec.prefix(filter))
	if err != nil {
		return nil, err
	}

	out := make([]standings.Row, 0, len(items))
	for _, item := range items {
		row, err := codec.decode(item.Payload)
		if err != nil {
			return nil, fmt.Errorf("standings item %s: %w", item.SortKey, err)
		}
		if filter.OwnerID != "" && row.Owner() != filter.OwnerID {
			continue
		}
		out = append(out, row)
	}
	if kind == standings.KindSeason {
		sortSeasonRows(out)
	}
	return out, nil
}

// sortSeasonRows restores rank order, which the sort key does not encode.
func sortSeasonRows(rows []standings.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i].(standings.Season)
		b, _ := rows[j].(standings.Season)
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		return a.Rank < b.Rank
	})
}

func (r *StandingsRepository) UpsertMany(ctx context.Context, key league.Key, kind standings.Kind, rows []standings.Row) error {
	codec, err := standingsCodecFor(kind)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.StandingsKind() != kind {
			return fmt.Errorf("%w: %s row in %s batch", standings.ErrUnsupportedKind, row.StandingsKind(), kind)
		}
	}
	return putAll(ctx, r.base, key, codec.category, rows, codec.sortKey)
}

type HallOfFameRepository struct {
	base
}

func NewHallOfFameRepository(store kv.Store, writer *BatchWriter) *HallOfFameRepository {
	return &HallOfFameRepository{base: newBase(store, writer)}
}

func (r *HallOfFameRepository) List(ctx context.Context, key league.Key, category halloffame.Category) ([]halloffame.Entry, error) {
	codec, err := hallOfFameCodecFor(category)
	if err != nil {
		return nil, err
	}
	items, err := r.query(ctx, key, hallOfFamePrefix(category))
	if err != nil {
		return nil, err
	}

	out := make([]halloffame.Entry, 0, len(items))
	for _, item := range items {
		entry, err := codec.decode(item.Payload)
		if err != nil {
			return nil, fmt.Errorf("hall of fame item %s: %w", item.SortKey, err)
		}
		out = append(out, entry)
	}
	if category == halloffame.CategoryChampionships {
		sortChampionships(out)
	}
	return out, nil
}

func sortChampionships(entries []halloffame.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, _ := entries[i].(halloffame.ChampionshipCount)
		b, _ := entries[j].(halloffame.ChampionshipCount)
		if a.Championships != b.Championships {
			return a.Championships > b.Championships
		}
		return a.OwnerID < b.OwnerID
	})
}

func (r *HallOfFameRepository) UpsertList(ctx context.Context, key league.Key, list halloffame.List) error {
	codec, err := hallOfFameCodecFor(list.Category)
	if err != nil {
		return err
	}
	for _, entry := range list.Entries {
		if entry.EntryCategory() != list.Category {
			return fmt.Errorf("%w: %s entry in %s list", halloffame.ErrUnsupportedCategory, entry.EntryCategory(), list.Category)
		}
	}
	return putAll(ctx, r.base, key, categoryHallOfFame, list.Entries, codec.sortKey)
}

type LeagueRepository struct {
	base
}

func NewLeagueRepository(store kv.Store, writer *BatchWriter) *LeagueRepository {
	return &LeagueRepository{base: newBase(store, writer)}
}

func (r *LeagueRepository) Get(ctx context.Context, key league.Key) (league.League, bool, error) {
	items, err := queryAll[league.League](ctx, r.base, key, categoryMetadata)
	if err != nil {
		return league.League{}, false, err
	}
	if len(items) == 0 {
		return league.League{}, false, nil
	}
	return items[0], true, nil
}

func (r *LeagueRepository) Upsert(ctx context.Context, item league.League) error {
	return putAll(ctx, r.base, item.Key(), categoryMetadata, []league.League{item}, plainKey(func(league.League) string {
		return categoryMetadata
	}))
}

package kvstore

import (
	"fmt"
	"strconv"

	"github.com/riskibarqy/fantasy-history/internal/domain/halloffame"
	"github.com/riskibarqy/fantasy-history/internal/domain/league"
	"github.com/riskibarqy/fantasy-history/internal/domain/standings"
	"github.com/valyala/bytebufferpool"
)

const keySeparator = '#'

// Sort key category prefixes. Every key starts with one of these followed by
// the separator, so prefix scans never cross categories.
const (
	categorySeasonStandings   = "SEASON_STANDINGS"
	categoryWeeklyStandings   = "WEEKLY_STANDINGS"
	categoryAllTimeStandings  = "ALL_TIME_STANDINGS"
	categoryAllTimePlayoffs   = "ALL_TIME_PLAYOFF_STANDINGS"
	categoryHeadToHead        = "H2H_STANDINGS"
	categoryMember            = "MEMBER"
	categoryRoster            = "ROSTER"
	categoryMatchup           = "MATCHUP"
	categoryPlayoff           = "PLAYOFF"
	categoryChampion          = "CHAMPION"
	categoryHallOfFame        = "HALL_OF_FAME"
	categoryMetadata          = "METADATA"
	headToHeadOpponentSegment = "VS"
)

// PartitionKey is shared by every row of one league.
func PartitionKey(key league.Key) string {
	return joinKey("LEAGUE", key.LeagueID, "PLATFORM", string(key.Platform))
}

func joinKey(parts ...string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for i, part := range parts {
		if i > 0 {
			_ = buf.WriteByte(keySeparator)
		}
		_, _ = buf.WriteString(part)
	}
	return buf.String()
}

// scanPrefix joins parts and terminates with the separator.
func scanPrefix(parts ...string) string {
	return joinKey(parts...) + string(keySeparator)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func pad2(v int) string {
	return fmt.Sprintf("%02d", v)
}

type standingsCodec struct {
	category string
	sortKey  func(standings.Row) (string, error)
	prefix   func(standings.Filter) string
	decode   func([]byte) (standings.Row, error)
}

var standingsCodecs = map[standings.Kind]standingsCodec{
	standings.KindSeason: {
		category: categorySeasonStandings,
		sortKey: rowKey(func(r standings.Season) string {
			return joinKey(categorySeasonStandings, itoa(r.Season), r.OwnerID)
		}),
		prefix: func(f standings.Filter) string {
			if f.Season > 0 {
				return scanPrefix(categorySeasonStandings, itoa(f.Season))
			}
			return scanPrefix(categorySeasonStandings)
		},
		decode: decodeRow[standings.Season],
	},
	standings.KindWeekly: {
		category: categoryWeeklyStandings,
		sortKey: rowKey(func(r standings.Weekly) string {
			return joinKey(categoryWeeklyStandings, itoa(r.Season), pad2(r.Week), r.OwnerID)
		}),
		prefix: func(f standings.Filter) string {
			if f.Season > 0 {
				return scanPrefix(categoryWeeklyStandings, itoa(f.Season))
			}
			return scanPrefix(categoryWeeklyStandings)
		},
		decode: decodeRow[standings.Weekly],
	},
	standings.KindAllTime: {
		category: categoryAllTimeStandings,
		sortKey: rowKey(func(r standings.AllTime) string {
			return joinKey(categoryAllTimeStandings, r.OwnerID)
		}),
		prefix: func(standings.Filter) string { return scanPrefix(categoryAllTimeStandings) },
		decode: decodeRow[standings.AllTime],
	},
	standings.KindAllTimePlayoffs: {
		category: categoryAllTimePlayoffs,
		sortKey: rowKey(func(r standings.AllTime) string {
			return joinKey(categoryAllTimePlayoffs, r.OwnerID)
		}),
		prefix: func(standings.Filter) string { return scanPrefix(categoryAllTimePlayoffs) },
		decode: decodeRow[standings.AllTime],
	},
	standings.KindHeadToHead: {
		category: categoryHeadToHead,
		sortKey: rowKey(func(r standings.HeadToHead) string {
			return joinKey(categoryHeadToHead, r.OwnerID, headToHeadOpponentSegment, r.OpponentOwnerID)
		}),
		prefix: func(f standings.Filter) string {
			if f.OwnerID != "" {
				return scanPrefix(categoryHeadToHead, f.OwnerID, headToHeadOpponentSegment)
			}
			return scanPrefix(categoryHeadToHead)
		},
		decode: decodeRow[standings.HeadToHead],
	},
}

func standingsCodecFor(kind standings.Kind) (standingsCodec, error) {
	codec, ok := standingsCodecs[kind]
	if !ok {
		return standingsCodec{}, fmt.Errorf("%w: %q", standings.ErrUnsupportedKind, kind)
	}
	return codec, nil
}

func rowKey[T standings.Row](fn func(T) string) func(standings.Row) (string, error) {
	return func(row standings.Row) (string, error) {
		typed, ok := row.(T)
		if !ok {
			return "", fmt.Errorf("%w: row type %T", standings.ErrUnsupportedKind, row)
		}
		return fn(typed), nil
	}
}

func decodeRow[T standings.Row](payload []byte) (standings.Row, error) {
	var out T
	if err := unmarshalPayload(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type hallOfFameCodec struct {
	sortKey func(halloffame.Entry) (string, error)
	decode  func([]byte) (halloffame.Entry, error)
}

var (
	rankedTeamScoreCodec = hallOfFameCodec{
		sortKey: entryKey(func(e halloffame.TeamScore) string {
			return joinKey(categoryHallOfFame, string(e.Category), pad2(e.Rank))
		}),
		decode: decodeEntry[halloffame.TeamScore],
	}
	rankedPlayerScoreCodec = hallOfFameCodec{
		sortKey: entryKey(func(e halloffame.PlayerScore) string {
			return joinKey(categoryHallOfFame, string(e.Category), pad2(e.Rank))
		}),
		decode: decodeEntry[halloffame.PlayerScore],
	}
	championshipCodec = hallOfFameCodec{
		sortKey: entryKey(func(e halloffame.ChampionshipCount) string {
			return joinKey(categoryHallOfFame, string(halloffame.CategoryChampionships), e.OwnerID)
		}),
		decode: decodeEntry[halloffame.ChampionshipCount],
	}
)

var hallOfFameCodecs = map[halloffame.Category]hallOfFameCodec{
	halloffame.CategoryTopTeamScores:    rankedTeamScoreCodec,
	halloffame.CategoryBottomTeamScores: rankedTeamScoreCodec,
	halloffame.CategoryTopQB:            rankedPlayerScoreCodec,
	halloffame.CategoryTopRB:            rankedPlayerScoreCodec,
	halloffame.CategoryTopWR:            rankedPlayerScoreCodec,
	halloffame.CategoryTopTE:            rankedPlayerScoreCodec,
	halloffame.CategoryTopDST:           rankedPlayerScoreCodec,
	halloffame.CategoryTopK:             rankedPlayerScoreCodec,
	halloffame.CategoryChampionships:    championshipCodec,
}

func hallOfFameCodecFor(category halloffame.Category) (hallOfFameCodec, error) {
	codec, ok := hallOfFameCodecs[category]
	if !ok {
		return hallOfFameCodec{}, fmt.Errorf("%w: %q", halloffame.ErrUnsupportedCategory, category)
	}
	return codec, nil
}

func hallOfFamePrefix(category halloffame.Category) string {
	return scanPrefix(categoryHallOfFame, string(category))
}

func entryKey[T halloffame.Entry](fn func(T) string) func(halloffame.Entry) (string, error) {
	return func(entry halloffame.Entry) (string, error) {
		typed, ok := entry.(T)
		if !ok {
			return "", fmt.Errorf("%w: entry type %T", halloffame.ErrUnsupportedCategory, entry)
		}
		return fn(typed), nil
	}
}

func decodeEntry[T halloffame.Entry](payload []byte) (halloffame.Entry, error) {
	var out T
	if err := unmarshalPayload(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

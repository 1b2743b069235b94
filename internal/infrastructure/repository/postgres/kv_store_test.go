package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-history/internal/domain/kv"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawdata"
)

func TestBuildUpsertItemsQuery(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := buildUpsertItemsQuery([]kv.Item{
		{PartitionKey: "LEAGUE#1#PLATFORM#ESPN", SortKey: "MEMBER#a", Category: "MEMBER", Payload: []byte(`{"owner_id":"a"}`), UpdatedAt: at},
		{PartitionKey: "LEAGUE#1#PLATFORM#ESPN", SortKey: "MEMBER#b", Category: "MEMBER", Payload: []byte(`{}`), UpdatedAt: at},
	})
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	want := "INSERT INTO league_items (pk, sk, category, payload, updated_at) VALUES ($1, $2, $3, $4, $5), ($6, $7, $8, $9, $10) ON CONFLICT (pk, sk) DO UPDATE SET category = EXCLUDED.category, payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 10 || args[3] != `{"owner_id":"a"}` {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestBuildQueryItemsQueryEscapesPrefix(t *testing.T) {
	query, args, err := buildQueryItemsQuery("LEAGUE#1#PLATFORM#ESPN", "SEASON_STANDINGS#2020#")
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if !strings.HasSuffix(query, "WHERE pk = $1 AND sk LIKE $2 ESCAPE '\\' ORDER BY sk") {
		t.Fatalf("unexpected query: %s", query)
	}
	if args[1] != `SEASON\_STANDINGS#2020#%` {
		t.Fatalf("unexpected prefix arg: %v", args[1])
	}
}

func TestLeagueItemRowRoundTrip(t *testing.T) {
	item := kv.Item{PartitionKey: "p", SortKey: "s", Category: "c", Payload: []byte(`{"x":1}`), UpdatedAt: time.Unix(10, 0).UTC()}
	got := toLeagueItemRow(item).item()
	if got.SortKey != "s" || string(got.Payload) != `{"x":1}` || !got.UpdatedAt.Equal(item.UpdatedAt) {
		t.Fatalf("unexpected item: %+v", got)
	}

	if toLeagueItemRow(kv.Item{}).UpdatedAt.IsZero() {
		t.Fatalf("expected zero timestamp to be filled")
	}
}

func TestRawPayloadModelHashesWhenMissing(t *testing.T) {
	model := toRawPayloadModel(rawdata.Payload{Platform: "ESPN", LeagueID: "1", Season: 2020, View: "mTeam", PayloadJSON: []byte(`{}`)})
	// sha256("{}")
	if model.PayloadHash != "44136fa355b3678a1146ad16f7e8649e94fb4fc21fe77e8310c060f61caaff8a" {
		t.Fatalf("unexpected hash %s", model.PayloadHash)
	}

	query, _, err := buildUpsertRawPayloadsQuery([]rawdata.Payload{{Platform: "ESPN", LeagueID: "1", Season: 2020, View: "mTeam"}})
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if !strings.Contains(query, "ON CONFLICT (platform, league_id, season, view) DO UPDATE SET payload = EXCLUDED.payload") {
		t.Fatalf("unexpected query: %s", query)
	}
}

package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	"github.com/riskibarqy/fantasy-history/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-history/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seasonBody = `{
  "id": 123,
  "seasonId": 2022,
  "members": [{"id": "{AAA}", "firstName": "Ann", "lastName": "Alpha"}],
  "teams": [{"id": 1, "name": "Alpha Squad", "abbrev": "ALP", "owners": ["{AAA}"]}],
  "schedule": [{"id": 1, "matchupPeriodId": 1, "playoffTierType": "NONE", "winner": "HOME",
    "home": {"teamId": 1, "totalPoints": 101.5}, "away": {"teamId": 2, "totalPoints": 99.25}}],
  "settings": {"name": "Dynasty", "rosterSettings": {"lineupSlotCounts": {"0": 1}}},
  "draftDetail": {"drafted": true, "picks": [{"overallPickNumber": 1, "playerId": 10, "teamId": 1}]}
}`

const playersBody = `{"players": [{"id": 10, "onTeamId": 1, "player": {"id": 10, "fullName": "Quinn Back", "defaultPositionId": 1}}]}`

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:        server.URL,
		MaxRetries:     retries,
		RetryDelay:     time.Millisecond,
		Credentials:    rawseason.Credentials{SWID: "{SWID}", ESPNS2: "s2"},
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestFetchSeasonModernEndpoint(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seasons/2022/segments/0/leagues/123" {
			http.Error(w, "unexpected path "+r.URL.Path, http.StatusBadRequest)
			return
		}
		if cookie := r.Header.Get("Cookie"); cookie != "SWID={SWID}; espn_s2=s2" {
			http.Error(w, "bad cookie "+cookie, http.StatusBadRequest)
			return
		}
		views := r.URL.Query()["view"]
		if len(views) == 1 && views[0] == playerInfoView {
			if !strings.Contains(r.Header.Get("x-fantasy-filter"), `"limit":2000`) {
				http.Error(w, "missing filter", http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(playersBody))
			return
		}
		if strings.Join(views, ",") != strings.Join(leagueViews, ",") {
			http.Error(w, "unexpected views", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(seasonBody))
	}, 0, resilience.CircuitBreakerConfig{})

	got, err := client.FetchSeason(context.Background(), "123", 2022, rawseason.Credentials{})
	require.NoError(t, err)

	assert.Equal(t, 2022, got.Season.SeasonID)
	require.Len(t, got.Season.Teams, 1)
	assert.Equal(t, rawseason.TeamRef("1"), got.Season.Teams[0].ID)
	require.Len(t, got.Season.Schedule, 1)
	assert.Equal(t, 101.5, got.Season.Schedule[0].Home.TotalPoints)
	require.Len(t, got.Season.Players, 1)
	assert.Equal(t, "Quinn Back", got.Season.Players[0].Player.FullName)
	assert.Equal(t, 1, got.Season.Settings.RosterSettings.LineupSlotCounts["0"])

	require.Len(t, got.Payloads, 2)
	assert.Equal(t, "mTeam,mRoster,mMatchupScore,mSettings,mDraftDetail", got.Payloads[0].View)
	assert.Equal(t, playerInfoView, got.Payloads[1].View)
	assert.Len(t, got.Payloads[0].PayloadHash, 64)
}

func TestFetchSeasonHistoricalEndpoint(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/leagueHistory/123" || r.URL.Query().Get("seasonId") != "2016" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("view") == playerInfoView {
			_, _ = w.Write([]byte("[" + playersBody + "]"))
			return
		}
		_, _ = w.Write([]byte("[" + strings.Replace(seasonBody, `"seasonId": 2022`, `"seasonId": 2016`, 1) + "]"))
	}, 0, resilience.CircuitBreakerConfig{})

	got, err := client.FetchSeason(context.Background(), "123", 2016, rawseason.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, 2016, got.Season.SeasonID)
	assert.Len(t, got.Season.Players, 1)
}

func TestFetchSeasonUnauthorizedIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}, 3, resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1})

	_, err := client.FetchSeason(context.Background(), "123", 2022, rawseason.Credentials{})
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one call, got %d", calls.Load())
	}
	if state := client.breaker.State(); state != resilience.CircuitStateClosed {
		t.Fatalf("auth failures must not trip the breaker, got %s", state)
	}
}

func TestFetchSeasonRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("view") == playerInfoView {
			_, _ = w.Write([]byte(playersBody))
			return
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(seasonBody))
	}, 2, resilience.CircuitBreakerConfig{})

	got, err := client.FetchSeason(context.Background(), "123", 2022, rawseason.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, got.Season.Members, 1)
}

func TestFetchSeasonToleratesMissingPlayerTotals(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("view") == playerInfoView {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(seasonBody))
	}, 0, resilience.CircuitBreakerConfig{})

	got, err := client.FetchSeason(context.Background(), "123", 2022, rawseason.Credentials{})
	require.NoError(t, err)
	assert.Empty(t, got.Season.Players)
	assert.Len(t, got.Payloads, 1)
}

func TestFetchSeasonOpenCircuitFailsFast(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, 0, resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Hour})

	_, err := client.FetchSeason(context.Background(), "123", 2022, rawseason.Credentials{})
	require.Error(t, err)

	_, err = client.FetchSeason(context.Background(), "123", 2022, rawseason.Credentials{})
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected open circuit to skip the request, got %d calls", calls.Load())
	}
}

func TestFetchSeasonValidatesInput(t *testing.T) {
	client := NewClient(ClientConfig{Logger: logging.NewNop()})
	if _, err := client.FetchSeason(context.Background(), " ", 2022, rawseason.Credentials{}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAbbreviateBody(t *testing.T) {
	long := strings.Repeat("x", 300)
	if got := abbreviateBody([]byte(long)); len(got) != 243 {
		t.Fatalf("expected truncated body, got %d chars", len(got))
	}
}

func TestFetchSeasonRejectsOversizedBody(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(seasonBody))
	}, 2, resilience.CircuitBreakerConfig{})
	client.maxBody = 64

	_, err := client.FetchSeason(context.Background(), "123", 2022, rawseason.Credentials{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errResponseTooLarge), "got %v", err)
	assert.Contains(t, err.Error(), "exceeds 64 bytes")
	assert.Equal(t, int32(1), calls.Load(), "oversized bodies are not retried")
}

func TestFetchSeasonAcceptsBodyAtLimit(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "kona_player_info") {
			_, _ = w.Write([]byte(`{"players":[]}`))
			return
		}
		_, _ = w.Write([]byte(seasonBody))
	}, 0, resilience.CircuitBreakerConfig{})
	client.maxBody = int64(len(seasonBody))

	fetched, err := client.FetchSeason(context.Background(), "123", 2022, rawseason.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, 2022, fetched.Season.SeasonID)
}

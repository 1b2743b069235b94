package espn

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-history/internal/domain/league"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawdata"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	"github.com/riskibarqy/fantasy-history/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-history/internal/usecase"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"
	// Seasons before this one are only served by the league history endpoint.
	historyCutoffSeason = 2018
	playerInfoLimit     = 2000
	maxResponseBytes    = 16 << 20
)

var leagueViews = []string{"mTeam", "mRoster", "mMatchupScore", "mSettings", "mDraftDetail"}

const playerInfoView = "kona_player_info"

var (
	errESPNTransient    = crerr.New("espn transient failure")
	errResponseTooLarge = crerr.New("espn response too large")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	Credentials    rawseason.Credentials
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	retryDelay  time.Duration
	credentials rawseason.Credentials
	logger      *logging.Logger
	breaker     *resilience.CircuitBreaker
	flight      singleflight.Group
	now         func() time.Time
	maxBody     int64
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("espn")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	breaker := cfg.CircuitBreaker.NewBreaker("espn",
		resilience.WithFailurePredicate(isCircuitFailure),
		resilience.WithStateChange(func(name string, from, to resilience.CircuitState) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
		}),
	)

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		maxRetries:  max(cfg.MaxRetries, 0),
		retryDelay:  retryDelay,
		credentials: cfg.Credentials,
		logger:      logger,
		breaker:     breaker,
		now:         time.Now,
		maxBody:     maxResponseBytes,
	}
}

// FetchSeason loads the league views and the player totals for one season.
func (c *Client) FetchSeason(ctx context.Context, leagueID string, season int, creds rawseason.Credentials) (usecase.FetchedSeason, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" || season <= 0 {
		return usecase.FetchedSeason{}, fmt.Errorf("%w: league id and season are required", usecase.ErrInvalidInput)
	}
	if creds.Empty() {
		creds = c.credentials
	}

	path, query := c.leagueRequest(leagueID, season, leagueViews...)
	raw, err := c.doJSON(ctx, path, query, nil, creds)
	if err != nil {
		return usecase.FetchedSeason{}, fmt.Errorf("fetch league season league_id=%s season=%d: %w", leagueID, season, err)
	}
	out, err := decodeSeason(raw, season)
	if err != nil {
		return usecase.FetchedSeason{}, crerr.Wrapf(err, "decode league season league_id=%s season=%d", leagueID, season)
	}

	fetchedAt := c.now().UTC()
	payloads := []rawdata.Payload{buildPayload(leagueID, season, strings.Join(leagueViews, ","), raw, fetchedAt)}

	players, playersRaw, err := c.fetchPlayers(ctx, leagueID, season, creds)
	switch {
	case err == nil:
		out.Players = players
		payloads = append(payloads, buildPayload(leagueID, season, playerInfoView, playersRaw, fetchedAt))
	case stderrors.Is(err, usecase.ErrUnauthorized) || ctx.Err() != nil:
		return usecase.FetchedSeason{}, fmt.Errorf("fetch player totals league_id=%s season=%d: %w", leagueID, season, err)
	default:
		// Player totals only feed the archive.
		c.logger.WarnContext(ctx, "skip player totals", "league_id", leagueID, "season", season, "error", err)
	}

	return usecase.FetchedSeason{Season: out, Payloads: payloads}, nil
}

func (c *Client) leagueRequest(leagueID string, season int, views ...string) (string, url.Values) {
	query := url.Values{}
	for _, view := range views {
		query.Add("view", view)
	}
	if season < historyCutoffSeason {
		query.Set("seasonId", strconv.Itoa(season))
		return "/leagueHistory/" + url.PathEscape(leagueID), query
	}
	return fmt.Sprintf("/seasons/%d/segments/0/leagues/%s", season, url.PathEscape(leagueID)), query
}

func (c *Client) fetchPlayers(ctx context.Context, leagueID string, season int, creds rawseason.Credentials) ([]rawseason.PlayerEntry, []byte, error) {
	filter, err := sonic.Marshal(map[string]any{
		"players": map[string]any{
			"limit": playerInfoLimit,
			"sortPercOwned": map[string]any{
				"sortPriority": 1,
				"sortAsc":      false,
			},
		},
	})
	if err != nil {
		return nil, nil, crerr.Wrap(err, "encode player filter")
	}

	path, query := c.leagueRequest(leagueID, season, playerInfoView)
	raw, err := c.doJSON(ctx, path, query, map[string]string{"x-fantasy-filter": string(filter)}, creds)
	if err != nil {
		return nil, nil, err
	}

	envelope, err := decodeLeagueBody[playerEnvelope](raw, season)
	if err != nil {
		return nil, nil, crerr.Wrap(err, "decode player totals")
	}
	return envelope.Players, raw, nil
}

type playerEnvelope struct {
	Players []rawseason.PlayerEntry `json:"players"`
}

func decodeSeason(raw []byte, season int) (rawseason.Season, error) {
	out, err := decodeLeagueBody[rawseason.Season](raw, season)
	if err != nil {
		return rawseason.Season{}, err
	}
	if out.SeasonID == 0 {
		out.SeasonID = season
	}
	return out, nil
}

// decodeLeagueBody unwraps the single element array the league history
// endpoint returns.
func decodeLeagueBody[T any](raw []byte, season int) (T, error) {
	var out T
	body := strings.TrimSpace(string(raw))
	if season >= historyCutoffSeason || !strings.HasPrefix(body, "[") {
		err := sonic.UnmarshalString(body, &out)
		return out, err
	}

	var items []T
	if err := sonic.UnmarshalString(body, &items); err != nil {
		return out, err
	}
	if len(items) == 0 {
		return out, crerr.Newf("league history returned no entry for season %d", season)
	}
	return items[0], nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, headers map[string]string, creds rawseason.Credentials) ([]byte, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", c.breaker.State())
		return nil, fmt.Errorf("%w: fantasy provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := fullURL + "|" + headers["x-fantasy-filter"] + "|" + creds.SWID
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL, headers, creds)
		c.breaker.Record(reqErr)
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string, headers map[string]string, creds rawseason.Credentials) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set("accept", "application/json")
		for name, value := range headers {
			req.Header.Set(name, value)
		}
		if !creds.Empty() {
			req.Header.Set("Cookie", fmt.Sprintf("SWID=%s; espn_s2=%s", creds.SWID, creds.ESPNS2))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Wrapf(errESPNTransient, "send request: %v", err)
		} else {
			// One byte past the cap tells a truncated body from one that fits exactly.
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errESPNTransient, "read response body: %v", readErr)
			case int64(len(raw)) > c.maxBody:
				return nil, crerr.Wrapf(errResponseTooLarge, "provider status=%d body exceeds %d bytes", resp.StatusCode, c.maxBody)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				return nil, fmt.Errorf("%w: provider status=%d, league is private or credentials are invalid", usecase.ErrUnauthorized, resp.StatusCode)
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: provider status=404 body=%s", usecase.ErrNotFound, abbreviateBody(raw))
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(errESPNTransient, "provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * c.retryDelay
		c.logger.DebugContext(ctx, "retry espn request", "attempt", attempt+1, "backoff", backoff, "error", lastErr)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("provider request failed")
	}
	c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errESPNTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func buildPayload(leagueID string, season int, view string, raw []byte, fetchedAt time.Time) rawdata.Payload {
	sum := sha256.Sum256(raw)
	return rawdata.Payload{
		Platform:    string(league.PlatformESPN),
		LeagueID:    leagueID,
		Season:      season,
		View:        view,
		PayloadJSON: raw,
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   fetchedAt,
	}
}

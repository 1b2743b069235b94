package scheduler

import (
	"context"
	"sync"
	"testing"

	"github.com/riskibarqy/fantasy-history/internal/config"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	"github.com/riskibarqy/fantasy-history/internal/usecase"
)

type stubRefresher struct {
	mu    sync.Mutex
	fail  map[string]error
	calls []usecase.RefreshSeasonInput
}

func (s *stubRefresher) RefreshSeason(_ context.Context, input usecase.RefreshSeasonInput) (usecase.RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, input)
	if err := s.fail[input.LeagueID]; err != nil {
		return usecase.RunResult{}, err
	}
	return usecase.RunResult{RunID: "run-" + input.LeagueID, LeagueID: input.LeagueID}, nil
}

func newTestScheduler(t *testing.T, refresher SeasonRefresher, targets ...config.RefreshTarget) *RefreshScheduler {
	t.Helper()

	rs, err := New(refresher, Options{Cron: "0 9 * * 2", Timezone: "UTC", Targets: targets}, logging.NewNop())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	t.Cleanup(func() { _ = rs.Stop() })
	return rs
}

func TestRunOnce_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{fail: map[string]error{"77": usecase.ErrNotFound}}
	rs := newTestScheduler(t, refresher,
		config.RefreshTarget{LeagueID: "77", Season: 2023},
		config.RefreshTarget{LeagueID: "4242", Season: 2024},
	)

	failed := rs.RunOnce(context.Background())
	if failed != 1 {
		t.Fatalf("expected one failure, got %d", failed)
	}
	if len(refresher.calls) != 2 {
		t.Fatalf("expected both targets refreshed, got %d calls", len(refresher.calls))
	}
	if refresher.calls[1] != (usecase.RefreshSeasonInput{LeagueID: "4242", Season: 2024}) {
		t.Fatalf("unexpected refresh input: %+v", refresher.calls[1])
	}
}

func TestRunOnce_StopsWhenContextDone(t *testing.T) {
	t.Parallel()

	refresher := &stubRefresher{}
	rs := newTestScheduler(t, refresher,
		config.RefreshTarget{LeagueID: "1", Season: 2023},
		config.RefreshTarget{LeagueID: "2", Season: 2023},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if failed := rs.RunOnce(ctx); failed != 2 {
		t.Fatalf("expected both targets counted as failed, got %d", failed)
	}
	if len(refresher.calls) != 0 {
		t.Fatalf("expected no refresh after cancellation, got %d", len(refresher.calls))
	}
}

func TestNew_RejectsInvalidSchedule(t *testing.T) {
	t.Parallel()

	if _, err := New(&stubRefresher{}, Options{Cron: "every tuesday"}, logging.NewNop()); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}

	if _, err := New(&stubRefresher{}, Options{Cron: "0 9 * * 2", Timezone: "Nowhere/Atlantis"}, logging.NewNop()); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/riskibarqy/fantasy-history/internal/config"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.uber.org/zap/zapcore"
)

type recordingLogger struct {
	embedded.Logger

	mu      sync.Mutex
	records []otellog.Record
}

func (l *recordingLogger) Emit(_ context.Context, record otellog.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record.Clone())
}

func (l *recordingLogger) Enabled(context.Context, otellog.EnabledParameters) bool {
	return true
}

func attributes(record otellog.Record) map[string]otellog.Value {
	out := make(map[string]otellog.Value)
	record.WalkAttributes(func(kv otellog.KeyValue) bool {
		out[kv.Key] = kv.Value
		return true
	})
	return out
}

func TestInitUptrace_Disabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: false,
		ServiceName:    "fantasy-history-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	base := logging.NewNop()
	logger, shutdown, err := InitUptrace(cfg, base)
	if err != nil {
		t.Fatalf("init uptrace: %v", err)
	}
	if logger != base {
		t.Fatalf("expected the base logger back when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown uptrace: %v", err)
	}
}

func TestOTelLogCore_EmitsRecords(t *testing.T) {
	recorder := &recordingLogger{}
	logger := teeLogger(logging.NewNop(), newOTelLogCore(recorder, zapcore.InfoLevel))

	logger.With("league_id", "4242").Named("pipeline").Warn("matchup dropped", "season", 2021, "week", 3)
	logger.Debug("below level")

	if len(recorder.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recorder.records))
	}
	record := recorder.records[0]
	if record.Body().AsString() != "matchup dropped" || record.Severity() != otellog.SeverityWarn {
		t.Fatalf("unexpected record: %q %v", record.Body().AsString(), record.Severity())
	}
	attrs := attributes(record)
	if attrs["league_id"].AsString() != "4242" {
		t.Fatalf("expected league_id attribute, got %+v", attrs)
	}
	if attrs["season"].AsInt64() != 2021 {
		t.Fatalf("expected season attribute, got %+v", attrs)
	}
	if attrs["logger"].AsString() != "pipeline" {
		t.Fatalf("expected logger name attribute, got %+v", attrs)
	}
}

func TestOTelLogCore_SkipsHealthChecks(t *testing.T) {
	recorder := &recordingLogger{}
	logger := teeLogger(logging.NewNop(), newOTelLogCore(recorder, zapcore.DebugLevel))

	logger.Info("http request", "path", "/healthz", "status", 200)
	logger.Info("http request", "path", "/v1/leagues/77", "status", 200)

	if len(recorder.records) != 1 {
		t.Fatalf("expected only the non-health request, got %d", len(recorder.records))
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"wins":   11,
		"champs": true,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	if len(v.AsMap()) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(v.AsMap()))
	}
}

func TestStartPprofServer_Disabled(t *testing.T) {
	if srv := StartPprofServer(config.Config{PprofEnabled: false}, logging.NewNop()); srv != nil {
		t.Fatalf("expected no pprof server when disabled")
	}
	if err := StopPprofServer(context.Background(), nil, nil); err != nil {
		t.Fatalf("stop nil server: %v", err)
	}
}

func TestPprofHandler_ServesNamedProfiles(t *testing.T) {
	handler := pprofHandler()

	for _, target := range []string{"/debug/pprof/heap", "/debug/pprof/goroutine?debug=1"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", target, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/debug/pprof/heap", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST heap: expected 405, got %d", rec.Code)
	}
}

package observability

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/fantasy-history/internal/config"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
)

func TestPyroscopeConfig_Tags(t *testing.T) {
	cfg := config.Config{
		AppEnv:           config.EnvProd,
		ServiceName:      "fantasy-history-api",
		ServiceVersion:   "1.4.0",
		StoreBackend:     config.StoreDynamoDB,
		PyroscopeAppName: "fantasy-history-api",
	}

	got := pyroscopeConfig(cfg)
	if got.Tags["store"] != config.StoreDynamoDB || got.Tags["version"] != "1.4.0" || got.Tags["env"] != config.EnvProd {
		t.Fatalf("unexpected tags: %+v", got.Tags)
	}

	var hasMutex bool
	for _, profile := range got.ProfileTypes {
		if profile == pyroscope.ProfileMutexDuration {
			hasMutex = true
		}
	}
	if !hasMutex {
		t.Fatalf("expected mutex profile to be collected")
	}
}

func TestPyroscopeConfig_NoVersionTagWhenUnset(t *testing.T) {
	got := pyroscopeConfig(config.Config{ServiceName: "svc"})
	if _, ok := got.Tags["version"]; ok {
		t.Fatalf("did not expect version tag: %+v", got.Tags)
	}
}

func TestInitPyroscope_Disabled(t *testing.T) {
	stop, err := InitPyroscope(config.Config{PyroscopeEnabled: false}, logging.NewNop())
	if err != nil {
		t.Fatalf("init pyroscope: %v", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
)

const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
)

// RefreshTarget is one league season the scheduler keeps current.
type RefreshTarget struct {
	LeagueID string
	Season   int
}

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level
	CORSAllowedOrigins []string
	InternalJobToken   string
	SwaggerEnabled     bool

	StoreBackend              string
	DynamoDBTable             string
	DynamoDBEndpoint          string
	AWSRegion                 string
	AWSStaticAccessKeyID      string
	AWSStaticSecretAccessKey  string
	DBURL                     string
	DBDisablePreparedBinary   bool
	StoreBatchMaxAttempts     int
	StoreBatchBaseDelay       time.Duration
	StoreBatchMaxDelay        time.Duration
	CacheEnabled              bool
	CacheTTL                  time.Duration
	ESPNBaseURL               string
	ESPNTimeout               time.Duration
	ESPNMaxRetries            int
	ESPNSWID                  string
	ESPNS2                    string
	ESPNCircuitEnabled        bool
	ESPNCircuitFailureCount   int
	ESPNCircuitOpenTimeout    time.Duration
	ESPNCircuitHalfOpenMaxReq int
	PipelineMaxWorkers        int

	RawArchiveEnabled  bool
	RawArchiveBucket   string
	RawArchivePrefix   string
	RawArchiveEndpoint string

	RefreshEnabled  bool
	RefreshCron     string
	RefreshTimezone string
	RefreshLeagues  []RefreshTarget

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("HTTP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("HTTP_WRITE_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse HTTP_WRITE_TIMEOUT: %w", err)
	}
	if readTimeout <= 0 || writeTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be > 0")
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "fantasy-history-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		SwaggerEnabled:     swaggerEnabled,
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if err := loadStore(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadESPN(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadPipeline(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadStore(cfg *Config) error {
	backend := strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", StoreMemory)))
	switch backend {
	case StoreMemory, StoreDynamoDB, StorePostgres:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q: valid values are %s, %s, %s", backend, StoreMemory, StoreDynamoDB, StorePostgres)
	}
	cfg.StoreBackend = backend

	cfg.DynamoDBTable = strings.TrimSpace(getEnv("DYNAMODB_TABLE", "fantasy-history"))
	cfg.DynamoDBEndpoint = strings.TrimSpace(getEnv("DYNAMODB_ENDPOINT", ""))
	cfg.AWSRegion = strings.TrimSpace(getEnv("AWS_REGION", "us-east-1"))
	cfg.AWSStaticAccessKeyID = strings.TrimSpace(getEnv("AWS_STATIC_ACCESS_KEY_ID", ""))
	cfg.AWSStaticSecretAccessKey = strings.TrimSpace(getEnv("AWS_STATIC_SECRET_ACCESS_KEY", ""))
	if backend == StoreDynamoDB && cfg.DynamoDBTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required when STORE_BACKEND=%s", StoreDynamoDB)
	}

	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	if backend == StorePostgres && cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required when STORE_BACKEND=%s", StorePostgres)
	}
	disablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = disablePreparedBinary

	maxAttempts, err := getEnvAsInt("STORE_BATCH_MAX_ATTEMPTS", 6)
	if err != nil {
		return fmt.Errorf("parse STORE_BATCH_MAX_ATTEMPTS: %w", err)
	}
	if maxAttempts < 1 {
		return fmt.Errorf("STORE_BATCH_MAX_ATTEMPTS must be >= 1")
	}
	baseDelay, err := time.ParseDuration(getEnv("STORE_BATCH_BASE_DELAY", "100ms"))
	if err != nil {
		return fmt.Errorf("parse STORE_BATCH_BASE_DELAY: %w", err)
	}
	maxDelay, err := time.ParseDuration(getEnv("STORE_BATCH_MAX_DELAY", "5s"))
	if err != nil {
		return fmt.Errorf("parse STORE_BATCH_MAX_DELAY: %w", err)
	}
	if baseDelay <= 0 {
		return fmt.Errorf("STORE_BATCH_BASE_DELAY must be > 0")
	}
	if maxDelay < baseDelay {
		return fmt.Errorf("STORE_BATCH_MAX_DELAY must be >= STORE_BATCH_BASE_DELAY")
	}
	cfg.StoreBatchMaxAttempts = maxAttempts
	cfg.StoreBatchBaseDelay = baseDelay
	cfg.StoreBatchMaxDelay = maxDelay

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	return nil
}

func loadESPN(cfg *Config) error {
	cfg.ESPNBaseURL = strings.TrimSpace(getEnv("ESPN_BASE_URL", "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"))
	cfg.ESPNSWID = strings.TrimSpace(getEnv("ESPN_SWID", ""))
	cfg.ESPNS2 = strings.TrimSpace(getEnv("ESPN_S2", ""))

	timeout, err := time.ParseDuration(getEnv("ESPN_TIMEOUT", "20s"))
	if err != nil {
		return fmt.Errorf("parse ESPN_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("ESPN_TIMEOUT must be > 0")
	}
	cfg.ESPNTimeout = timeout

	maxRetries, err := getEnvAsInt("ESPN_MAX_RETRIES", 2)
	if err != nil {
		return fmt.Errorf("parse ESPN_MAX_RETRIES: %w", err)
	}
	if maxRetries < 0 {
		return fmt.Errorf("ESPN_MAX_RETRIES must be >= 0")
	}
	cfg.ESPNMaxRetries = maxRetries

	circuitEnabled, err := strconv.ParseBool(getEnv("ESPN_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse ESPN_CIRCUIT_ENABLED: %w", err)
	}
	failureCount, err := getEnvAsInt("ESPN_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return fmt.Errorf("parse ESPN_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if failureCount < 1 {
		return fmt.Errorf("ESPN_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	openTimeout, err := time.ParseDuration(getEnv("ESPN_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return fmt.Errorf("parse ESPN_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if openTimeout <= 0 {
		return fmt.Errorf("ESPN_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	halfOpenMaxReq, err := getEnvAsInt("ESPN_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return fmt.Errorf("parse ESPN_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if halfOpenMaxReq < 1 {
		return fmt.Errorf("ESPN_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	cfg.ESPNCircuitEnabled = circuitEnabled
	cfg.ESPNCircuitFailureCount = failureCount
	cfg.ESPNCircuitOpenTimeout = openTimeout
	cfg.ESPNCircuitHalfOpenMaxReq = halfOpenMaxReq

	return nil
}

func loadPipeline(cfg *Config) error {
	workers, err := getEnvAsInt("PIPELINE_MAX_WORKERS", 4)
	if err != nil {
		return fmt.Errorf("parse PIPELINE_MAX_WORKERS: %w", err)
	}
	if workers < 1 {
		return fmt.Errorf("PIPELINE_MAX_WORKERS must be >= 1")
	}
	cfg.PipelineMaxWorkers = workers

	archiveEnabled, err := strconv.ParseBool(getEnv("RAW_ARCHIVE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse RAW_ARCHIVE_ENABLED: %w", err)
	}
	cfg.RawArchiveEnabled = archiveEnabled
	cfg.RawArchiveBucket = strings.TrimSpace(getEnv("RAW_ARCHIVE_BUCKET", ""))
	cfg.RawArchivePrefix = strings.TrimSpace(getEnv("RAW_ARCHIVE_PREFIX", "raw"))
	cfg.RawArchiveEndpoint = strings.TrimSpace(getEnv("RAW_ARCHIVE_ENDPOINT", ""))
	if archiveEnabled && cfg.RawArchiveBucket == "" {
		return fmt.Errorf("RAW_ARCHIVE_BUCKET is required when RAW_ARCHIVE_ENABLED=true")
	}

	refreshEnabled, err := strconv.ParseBool(getEnv("REFRESH_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse REFRESH_ENABLED: %w", err)
	}
	cfg.RefreshEnabled = refreshEnabled
	cfg.RefreshCron = strings.TrimSpace(getEnv("REFRESH_CRON", "0 9 * * 2"))
	cfg.RefreshTimezone = strings.TrimSpace(getEnv("REFRESH_TIMEZONE", "UTC"))
	if _, err := time.LoadLocation(cfg.RefreshTimezone); err != nil {
		return fmt.Errorf("parse REFRESH_TIMEZONE: %w", err)
	}
	targets, err := parseRefreshTargets(getEnv("REFRESH_LEAGUES", ""))
	if err != nil {
		return fmt.Errorf("parse REFRESH_LEAGUES: %w", err)
	}
	if refreshEnabled && len(targets) == 0 {
		return fmt.Errorf("REFRESH_LEAGUES is required when REFRESH_ENABLED=true")
	}
	cfg.RefreshLeagues = targets

	return nil
}

func loadObservability(cfg *Config) error {
	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}
	cfg.UptraceEnabled = uptraceEnabled
	cfg.UptraceDSN = uptraceDSN
	cfg.UptraceLogsEnabled = uptraceLogsEnabled

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}
	cfg.PyroscopeEnabled = pyroscopeEnabled
	cfg.PyroscopeServerAddress = pyroscopeServerAddress
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	cfg.PyroscopeUploadRate = pyroscopeUploadRate

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofEnabled = pprofEnabled
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseRefreshTargets reads "league:season" pairs. Duplicates collapse.
func parseRefreshTargets(raw string) ([]RefreshTarget, error) {
	seen := make(map[RefreshTarget]struct{})
	out := make([]RefreshTarget, 0)
	for _, item := range splitCSV(raw) {
		segments := strings.SplitN(item, ":", 2)
		if len(segments) != 2 {
			return nil, fmt.Errorf("invalid item %q, expected league_id:season", item)
		}

		leagueID := strings.TrimSpace(segments[0])
		if leagueID == "" {
			return nil, fmt.Errorf("empty league id in item %q", item)
		}
		season, err := strconv.Atoi(strings.TrimSpace(segments[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid season in item %q: %w", item, err)
		}
		if season <= 0 {
			return nil, fmt.Errorf("season must be > 0 in item %q", item)
		}

		target := RefreshTarget{LeagueID: leagueID, Season: season}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

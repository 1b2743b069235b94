package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/fantasy-history/external/archive"
	"github.com/riskibarqy/fantasy-history/external/espn"
	"github.com/riskibarqy/fantasy-history/internal/config"
	"github.com/riskibarqy/fantasy-history/internal/domain/kv"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawdata"
	"github.com/riskibarqy/fantasy-history/internal/domain/rawseason"
	"github.com/riskibarqy/fantasy-history/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-history/internal/infrastructure/repository/dynamodb"
	"github.com/riskibarqy/fantasy-history/internal/infrastructure/repository/kvstore"
	"github.com/riskibarqy/fantasy-history/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-history/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-history/internal/platform/awsclient"
	basecache "github.com/riskibarqy/fantasy-history/internal/platform/cache"
	"github.com/riskibarqy/fantasy-history/internal/platform/id"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	"github.com/riskibarqy/fantasy-history/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-history/internal/usecase"
)

// Container holds the wired services and whatever must be released on
// shutdown.
type Container struct {
	Pipeline *usecase.PipelineService
	History  *usecase.HistoryService

	closers []func() error
}

func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build wires the store selected by STORE_BACKEND, the ESPN fetcher and the
// raw archive into the pipeline and history services.
func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Container{}

	store, fallbackArchive, err := c.openStore(ctx, cfg, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	writer := kvstore.NewBatchWriter(store, kvstore.WriterConfig{
		MaxAttempts: cfg.StoreBatchMaxAttempts,
		BaseDelay:   cfg.StoreBatchBaseDelay,
		MaxDelay:    cfg.StoreBatchMaxDelay,
	}, logger.Named("kvstore"))
	repos, shared := newRepositories(store, writer, cfg)
	if shared != nil {
		cacheLogger := logger.Named("cache")
		c.closers = append(c.closers, func() error {
			logCacheStats(cacheLogger, shared)
			return nil
		})
	}

	rawArchive, err := newArchive(ctx, cfg, fallbackArchive, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	fetcher := espn.NewClient(espn.ClientConfig{
		BaseURL:    cfg.ESPNBaseURL,
		Timeout:    cfg.ESPNTimeout,
		MaxRetries: cfg.ESPNMaxRetries,
		Credentials: rawseason.Credentials{
			SWID:   cfg.ESPNSWID,
			ESPNS2: cfg.ESPNS2,
		},
		Logger: logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
	})

	c.Pipeline = usecase.NewPipelineService(
		fetcher,
		rawArchive,
		repos,
		id.NewUUIDGenerator(),
		usecase.PipelineConfig{MaxWorkers: cfg.PipelineMaxWorkers},
		logger,
	)
	c.History = usecase.NewHistoryService(repos)

	logger.Info("app wired",
		"store_backend", cfg.StoreBackend,
		"cache_enabled", cfg.CacheEnabled,
		"raw_archive_enabled", cfg.RawArchiveEnabled,
	)
	return c, nil
}

// openStore returns the KV engine and, for Postgres, a raw payload table the
// archive can fall back to when S3 archiving is off.
func (c *Container) openStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (kv.Store, rawdata.Repository, error) {
	switch cfg.StoreBackend {
	case config.StoreDynamoDB:
		client, err := dynamodb.NewClient(ctx, dynamodb.ClientOptions{
			Options:  awsOptions(cfg),
			Endpoint: cfg.DynamoDBEndpoint,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create dynamodb client: %w", err)
		}
		return dynamodb.NewStore(client, cfg.DynamoDBTable), nil, nil
	case config.StorePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		c.closers = append(c.closers, db.Close)
		logger.Info("postgres store connected", "db_name", dbNameFromURL(cfg.DBURL))
		return postgres.NewKVStore(db), postgres.NewRawPayloadRepository(db), nil
	default:
		logger.Warn("using in-memory store, history is lost on restart")
		return kvstore.NewMemoryStore(), nil, nil
	}
}

// newRepositories also returns the shared read cache, nil when caching is off.
func newRepositories(store kv.Store, writer *kvstore.BatchWriter, cfg config.Config) (usecase.HistoryRepositories, *basecache.Store) {
	repos := usecase.HistoryRepositories{
		League:     kvstore.NewLeagueRepository(store, writer),
		Matchups:   kvstore.NewMatchupRepository(store, writer),
		Members:    kvstore.NewMemberRepository(store, writer),
		Playoffs:   kvstore.NewPlayoffRepository(store, writer),
		Standings:  kvstore.NewStandingsRepository(store, writer),
		HallOfFame: kvstore.NewHallOfFameRepository(store, writer),
	}
	if !cfg.CacheEnabled {
		return repos, nil
	}

	shared := basecache.NewStore(cfg.CacheTTL)
	return usecase.HistoryRepositories{
		League:     cache.NewLeagueRepository(repos.League, shared),
		Matchups:   cache.NewMatchupRepository(repos.Matchups, shared),
		Members:    cache.NewMemberRepository(repos.Members, shared),
		Playoffs:   cache.NewPlayoffRepository(repos.Playoffs, shared),
		Standings:  cache.NewStandingsRepository(repos.Standings, shared),
		HallOfFame: cache.NewHallOfFameRepository(repos.HallOfFame, shared),
	}, shared
}

func logCacheStats(logger *logging.Logger, store *basecache.Store) {
	stats := store.Stats()
	logger.Info("cache stats",
		"hits", stats.Hits,
		"misses", stats.Misses,
		"loads", stats.Loads,
		"entries", store.Len(),
	)
}

func newArchive(ctx context.Context, cfg config.Config, fallback rawdata.Repository, logger *logging.Logger) (rawdata.Repository, error) {
	if cfg.RawArchiveEnabled {
		client, err := archive.NewClient(ctx, archive.ClientOptions{
			Options:  awsOptions(cfg),
			Endpoint: cfg.RawArchiveEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("create s3 client: %w", err)
		}
		return archive.NewS3Archive(client, archive.Config{
			Bucket: cfg.RawArchiveBucket,
			Prefix: cfg.RawArchivePrefix,
		}, logger.Named("archive")), nil
	}
	if fallback != nil {
		return fallback, nil
	}
	return archive.Nop{}, nil
}

func awsOptions(cfg config.Config) awsclient.Options {
	return awsclient.Options{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSStaticAccessKeyID,
		SecretAccessKey: cfg.AWSStaticSecretAccessKey,
	}
}

// NewHTTPServer builds the API server around already wired services.
func NewHTTPServer(cfg config.Config, c *Container, logger *logging.Logger) (*http.Server, error) {
	if c == nil || c.History == nil || c.Pipeline == nil {
		return nil, fmt.Errorf("http server needs wired services")
	}

	handler := httpapi.NewHandler(c.History, c.Pipeline, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

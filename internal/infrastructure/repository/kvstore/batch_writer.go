package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/riskibarqy/fantasy-history/internal/domain/kv"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
)

var ErrUnprocessedItems = errors.New("unprocessed items after retries")

// UnprocessedError carries the items still unwritten once the retry
// ceiling is reached.
type UnprocessedError struct {
	Items    []kv.Item
	Attempts int
	Cause    error
}

func (e *UnprocessedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d items unprocessed after %d attempts: %v", len(e.Items), e.Attempts, e.Cause)
	}
	return fmt.Sprintf("%d items unprocessed after %d attempts", len(e.Items), e.Attempts)
}

func (e *UnprocessedError) Unwrap() error {
	return e.Cause
}

func (e *UnprocessedError) Is(target error) bool {
	return target == ErrUnprocessedItems
}

type WriterConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		MaxAttempts: 6,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

func normalizeWriterConfig(cfg WriterConfig) WriterConfig {
	defaults := DefaultWriterConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaults.BaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	return cfg
}

// BatchWriter splits writes into store-sized batches and retries whatever a
// batch leaves unprocessed with exponential backoff.
type BatchWriter struct {
	store  kv.Store
	cfg    WriterConfig
	logger *logging.Logger
}

func NewBatchWriter(store kv.Store, cfg WriterConfig, logger *logging.Logger) *BatchWriter {
	if logger == nil {
		logger = logging.Default()
	}
	return &BatchWriter{store: store, cfg: normalizeWriterConfig(cfg), logger: logger}
}

func (w *BatchWriter) Write(ctx context.Context, items []kv.Item) error {
	for start := 0; start < len(items); start += kv.MaxBatchSize {
		end := start + kv.MaxBatchSize
		if end > len(items) {
			end = len(items)
		}
		if err := w.writeBatch(ctx, items[start:end]); err != nil {
			var unprocessed *UnprocessedError
			if errors.As(err, &unprocessed) {
				// Batches after this one were never attempted.
				unprocessed.Items = append(unprocessed.Items, items[end:]...)
			}
			return err
		}
	}
	return nil
}

var errPartialBatch = errors.New("batch partially processed")

func (w *BatchWriter) writeBatch(ctx context.Context, batch []kv.Item) error {
	pending := batch
	attempts := 0

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = w.cfg.BaseDelay
	policy.MaxInterval = w.cfg.MaxDelay

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		unprocessed, err := w.store.BatchPut(ctx, pending)
		if err != nil {
			if ctx.Err() != nil {
				return struct{}{}, backoff.Permanent(ctx.Err())
			}
			return struct{}{}, err
		}
		if len(unprocessed) == 0 {
			pending = nil
			return struct{}{}, nil
		}
		pending = unprocessed
		return struct{}{}, fmt.Errorf("%w: %d of %d items", errPartialBatch, len(unprocessed), len(batch))
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(w.cfg.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			w.logger.WarnContext(ctx, "retry kv batch write",
				"attempt", attempts,
				"pending", len(pending),
				"next_delay", next,
				"error", err,
			)
		}),
	)
	if err == nil {
		return nil
	}
	if len(pending) == 0 {
		return err
	}
	return &UnprocessedError{Items: append([]kv.Item(nil), pending...), Attempts: attempts, Cause: err}
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
	"github.com/couchcryptid/cell-telemetry-etl/internal/observability"
)

// BatchExtractor reads up to batchSize raw messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// Transformer normalizes a raw snapshot message into a cell report.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawMessage) (domain.CellReport, error)
}

// BatchLoader writes multiple cell reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.CellReport) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one
// report, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any reports yet")
	}
	return nil
}

// Run executes the batch ETL loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	retry := newBackoff(initialBackoff, maxBackoff)
	for ctx.Err() == nil {
		if !p.runOnce(ctx, retry) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// runOnce extracts one batch, normalizes it, and loads the resulting
// reports. Returns false if the pipeline should stop.
func (p *Pipeline) runOnce(ctx context.Context, retry *backoff) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return retry.wait(ctx)
	}
	retry.reset()
	if len(batch) == 0 {
		return true
	}

	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	reports, accepted := p.normalize(ctx, batch)
	if len(reports) == 0 {
		return true
	}

	if !p.load(ctx, reports, retry) {
		return false
	}
	for _, raw := range accepted {
		p.commit(ctx, raw)
	}

	p.metrics.MessagesProduced.Add(float64(len(reports)))
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return true
}

// normalize transforms every message in the batch. Messages that fail are
// committed immediately so a bad snapshot cannot block its partition; the
// rest are returned with their reports, in order, for commit after load.
func (p *Pipeline) normalize(ctx context.Context, batch []domain.RawMessage) ([]domain.CellReport, []domain.RawMessage) {
	reports := make([]domain.CellReport, 0, len(batch))
	accepted := make([]domain.RawMessage, 0, len(batch))

	for _, raw := range batch {
		report, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			code := domain.ErrorCode(err)
			p.logger.Warn("snapshot rejected, skipping message",
				"error", err,
				"code", code,
				"device_key", string(raw.Key),
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.WithLabelValues(code).Inc()
			p.commit(ctx, raw)
			continue
		}
		reports = append(reports, report)
		accepted = append(accepted, raw)
	}
	return reports, accepted
}

// load publishes reports, retrying the same batch with backoff until it
// succeeds. Later offsets are never committed past an unloaded report.
// Returns false only when ctx is cancelled.
func (p *Pipeline) load(ctx context.Context, reports []domain.CellReport, retry *backoff) bool {
	for attempt := 1; ; attempt++ {
		err := p.loader.LoadBatch(ctx, reports)
		if err == nil {
			retry.reset()
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("load batch failed, retrying",
			"error", err,
			"batch_size", len(reports),
			"attempt", attempt,
			"retry_in", retry.current,
		)
		if !retry.wait(ctx) {
			return false
		}
	}
}

// commit acknowledges the message if the source supports it.
func (p *Pipeline) commit(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// backoff is an exponential retry delay capped at max.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, maxDelay time.Duration) *backoff {
	return &backoff{initial: initial, max: maxDelay, current: initial}
}

func (b *backoff) reset() {
	b.current = b.initial
}

// wait sleeps for the current delay, then doubles it. Returns false if ctx
// is cancelled first.
func (b *backoff) wait(ctx context.Context) bool {
	timer := time.NewTimer(b.current)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	b.current = min(b.current*2, b.max)
	return true
}

package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agriclaim/review-api/internal/dto"
	"github.com/agriclaim/review-api/internal/live"
	"github.com/agriclaim/review-api/internal/models"
)

// Sink consumes published snapshot batches. Sinks are invoked in publish
// order on the controller's delivery path and must not block.
type Sink func(event dto.SnapshotEvent)

// ErrorSink receives live query failures (transport, snapshot query).
type ErrorSink func(err error)

// LiveMetricsRecorder counts snapshot pipeline events.
type LiveMetricsRecorder interface {
	SnapshotPublished()
	SnapshotSuperseded()
}

// LiveQueryController owns the active filter and exactly one store
// subscription, enriches every incoming snapshot, and publishes each fully
// enriched batch atomically. Batches are generation-stamped: a batch whose
// generation no longer matches the controller's is discarded, never
// published over newer data.
type LiveQueryController struct {
	source   live.Source
	enricher *Enricher
	logger   *zap.Logger
	metrics  LiveMetricsRecorder

	mu         sync.Mutex
	generation uint64
	epoch      uint64
	cancel     func()
	filter     models.ClaimFilter
	sinks      map[string]Sink
	errSinks   map[string]ErrorSink
	latest     *dto.SnapshotEvent
	closed     bool
}

// LiveControllerOption configures the controller.
type LiveControllerOption func(*LiveQueryController)

// WithLiveMetrics attaches a pipeline metrics recorder.
func WithLiveMetrics(rec LiveMetricsRecorder) LiveControllerOption {
	return func(c *LiveQueryController) {
		c.metrics = rec
	}
}

// NewLiveQueryController constructs a controller. No subscription is
// active until the first SetFilter call.
func NewLiveQueryController(source live.Source, enricher *Enricher, logger *zap.Logger, opts ...LiveControllerOption) *LiveQueryController {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &LiveQueryController{
		source:   source,
		enricher: enricher,
		logger:   logger,
		sinks:    make(map[string]Sink),
		errSinks: make(map[string]ErrorSink),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// SetFilter replaces the active filter: the previous subscription is torn
// down before the new one is established, and the generation is bumped so
// any batch still enriching for the old filter can never publish. Each
// call also stamps a subscription epoch; a subscription that comes back
// from the source after a newer SetFilter or Close is cancelled instead
// of stored, so at most one subscription is ever active.
func (c *LiveQueryController) SetFilter(ctx context.Context, filter models.ClaimFilter) error {
	filter = filter.Normalize()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	prevCancel := c.cancel
	c.cancel = nil
	c.filter = filter
	c.generation++
	c.epoch++
	epoch := c.epoch
	c.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
	}

	cancel, err := c.source.Subscribe(ctx, filter, c.onSnapshot)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed || epoch != c.epoch {
		c.mu.Unlock()
		cancel()
		return nil
	}
	c.cancel = cancel
	c.mu.Unlock()
	return nil
}

// Filter returns the active filter.
func (c *LiveQueryController) Filter() models.ClaimFilter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Subscribe registers a sink and replays the latest published batch to it.
// The returned id unregisters via Unsubscribe.
func (c *LiveQueryController) Subscribe(sink Sink) string {
	id := uuid.NewString()
	c.mu.Lock()
	c.sinks[id] = sink
	latest := c.latest
	c.mu.Unlock()
	if latest != nil {
		sink(*latest)
	}
	return id
}

// Unsubscribe removes a sink.
func (c *LiveQueryController) Unsubscribe(id string) {
	c.mu.Lock()
	delete(c.sinks, id)
	c.mu.Unlock()
}

// OnError registers a sink for subscription failures.
func (c *LiveQueryController) OnError(sink ErrorSink) string {
	id := uuid.NewString()
	c.mu.Lock()
	c.errSinks[id] = sink
	c.mu.Unlock()
	return id
}

// OffError removes an error sink.
func (c *LiveQueryController) OffError(id string) {
	c.mu.Lock()
	delete(c.errSinks, id)
	c.mu.Unlock()
}

// Close tears down the subscription. In-flight enrichment completes and
// warms the resolver caches but its batch is discarded.
func (c *LiveQueryController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.generation++
	cancel := c.cancel
	c.cancel = nil
	c.sinks = make(map[string]Sink)
	c.errSinks = make(map[string]ErrorSink)
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *LiveQueryController) onSnapshot(claims []models.Claim, err error) {
	if err != nil {
		c.mu.Lock()
		sinks := make([]ErrorSink, 0, len(c.errSinks))
		for _, s := range c.errSinks {
			sinks = append(sinks, s)
		}
		c.mu.Unlock()
		for _, s := range sinks {
			s(err)
		}
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	go c.enrichAndPublish(gen, claims)
}

// enrichAndPublish waits for the whole batch to settle, then publishes it
// only if no newer batch or filter change superseded it in the meantime.
func (c *LiveQueryController) enrichAndPublish(gen uint64, claims []models.Claim) {
	// Detached context: superseded batches stop being awaited, not the
	// fetches themselves, which still populate the resolver caches.
	views := c.enricher.EnrichBatch(context.Background(), claims)

	event := dto.SnapshotEvent{Generation: gen, Claims: views}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.generation {
		if c.metrics != nil {
			c.metrics.SnapshotSuperseded()
		}
		c.logger.Debug("discarding superseded snapshot", zap.Uint64("generation", gen))
		return
	}
	c.latest = &event
	if c.metrics != nil {
		c.metrics.SnapshotPublished()
	}
	// Delivery happens under the lock so publishes reach every sink in
	// generation order.
	for _, sink := range c.sinks {
		sink(event)
	}
}

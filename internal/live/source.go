// Package live turns the claim store into a push-based snapshot feed.
// Every relevant change re-queries the store and delivers a full batch of
// matching claims, mirroring the subscription contract of the upstream
// document store the mobile clients write to.
package live

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/agriclaim/review-api/internal/models"
	appErrors "github.com/agriclaim/review-api/pkg/errors"
)

// SnapshotFunc receives each full snapshot, or the subscription error that
// interrupted delivery. Exactly one of claims/err is meaningful per call.
type SnapshotFunc func(claims []models.Claim, err error)

// Source is the claim store's subscription surface. Production uses the
// Postgres LISTEN/NOTIFY source; tests substitute a fake.
type Source interface {
	Subscribe(ctx context.Context, filter models.ClaimFilter, fn SnapshotFunc) (func(), error)
}

type claimLister interface {
	List(ctx context.Context, filter models.ClaimFilter) ([]models.Claim, error)
}

// Config tunes the Postgres source.
type Config struct {
	DSN         string
	Channel     string
	Debounce    time.Duration
	MinInterval time.Duration
	MaxInterval time.Duration
}

// PGSource delivers snapshots by re-querying the claim store whenever the
// change channel fires. One pq.Listener is held per active subscription.
type PGSource struct {
	cfg    Config
	lister claimLister
	logger *zap.Logger
}

// NewPGSource constructs the source.
func NewPGSource(cfg Config, lister claimLister, logger *zap.Logger) *PGSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Channel == "" {
		cfg.Channel = "claims_events"
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 150 * time.Millisecond
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 2 * time.Second
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = time.Minute
	}
	return &PGSource{cfg: cfg, lister: lister, logger: logger}
}

// Subscribe delivers an initial snapshot immediately, then one snapshot per
// (debounced) change notification. The returned cancel stops delivery; fn is
// never called after cancel returns and the internal goroutine drains.
func (s *PGSource) Subscribe(ctx context.Context, filter models.ClaimFilter, fn SnapshotFunc) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	listenErrs := make(chan error, 1)
	listener := pq.NewListener(s.cfg.DSN, s.cfg.MinInterval, s.cfg.MaxInterval, func(ev pq.ListenerEventType, err error) {
		if err == nil {
			return
		}
		select {
		case listenErrs <- err:
		default:
		}
	})
	if err := listener.Listen(s.cfg.Channel); err != nil {
		cancel()
		_ = listener.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrSubscription.Code, appErrors.ErrSubscription.Status, "listen on claim channel")
	}

	done := make(chan struct{})
	go s.run(subCtx, listener, listenErrs, filter, fn, done)

	return func() {
		cancel()
		_ = listener.Close()
		<-done
	}, nil
}

func (s *PGSource) run(ctx context.Context, listener *pq.Listener, listenErrs <-chan error, filter models.ClaimFilter, fn SnapshotFunc, done chan<- struct{}) {
	defer close(done)

	s.deliver(ctx, filter, fn)

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-listenErrs:
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("claim listener error", zap.Error(err))
			fn(nil, appErrors.Wrap(err, appErrors.ErrSubscription.Code, appErrors.ErrSubscription.Status, "claim change listener failed"))
		case n, ok := <-listener.Notify:
			if !ok {
				return
			}
			// nil notifications signal a reconnect; requery either way
			// since changes may have been missed while disconnected.
			_ = n
			s.debounceNotifications(ctx, listener)
			if ctx.Err() != nil {
				return
			}
			s.deliver(ctx, filter, fn)
		}
	}
}

// debounceNotifications coalesces a burst of change events into one requery.
func (s *PGSource) debounceNotifications(ctx context.Context, listener *pq.Listener) {
	timer := time.NewTimer(s.cfg.Debounce)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			return
		case _, ok := <-listener.Notify:
			if !ok {
				return
			}
		}
	}
}

func (s *PGSource) deliver(ctx context.Context, filter models.ClaimFilter, fn SnapshotFunc) {
	claims, err := s.lister.List(ctx, filter)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.Warn("snapshot query failed", zap.Error(err))
		fn(nil, appErrors.Wrap(err, appErrors.ErrSubscription.Code, appErrors.ErrSubscription.Status, "snapshot query failed"))
		return
	}
	fn(claims, nil)
}

package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agriclaim/review-api/internal/models"
	"github.com/agriclaim/review-api/internal/repository"
	appErrors "github.com/agriclaim/review-api/pkg/errors"
)

// ResolveFunc fetches the human-usable value behind an opaque reference.
type ResolveFunc func(ctx context.Context, ref string) (string, error)

// CacheMetricsRecorder receives resolver cache hit/miss observations.
type CacheMetricsRecorder interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

type resolverEntry struct {
	done  chan struct{}
	value string
	err   error
}

// Resolver memoizes reference lookups for the lifetime of the process and
// shares at most one in-flight fetch per key: concurrent callers for the
// same reference join the pending fetch instead of issuing another one.
// Failed lookups are not cached; a later call fetches again. The resolver
// never substitutes defaults — the swallow policy belongs to the caller.
type Resolver struct {
	name    string
	fetch   ResolveFunc
	logger  *zap.Logger
	metrics CacheMetricsRecorder

	mu      sync.Mutex
	entries map[string]*resolverEntry
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverMetrics attaches a cache hit/miss recorder.
func WithResolverMetrics(rec CacheMetricsRecorder) ResolverOption {
	return func(r *Resolver) {
		r.metrics = rec
	}
}

// NewResolver constructs a memoizing resolver around the fetch function.
func NewResolver(name string, fetch ResolveFunc, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		name:    name,
		fetch:   fetch,
		logger:  logger,
		entries: make(map[string]*resolverEntry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve returns the value behind ref, from cache when available. The
// caller's context only bounds the wait: a fetch already started is never
// cancelled, so superseded batches still warm the cache for later reuse.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", appErrors.Clone(appErrors.ErrResolution, "empty reference")
	}

	start := time.Now()

	r.mu.Lock()
	entry, found := r.entries[ref]
	if !found {
		entry = &resolverEntry{done: make(chan struct{})}
		r.entries[ref] = entry
		r.mu.Unlock()
		go r.runFetch(ref, entry)
	} else {
		r.mu.Unlock()
	}

	select {
	case <-entry.done:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if r.metrics != nil {
		r.metrics.RecordCacheOperation(found, time.Since(start))
	}
	if entry.err != nil {
		return "", entry.err
	}
	return entry.value, nil
}

func (r *Resolver) runFetch(ref string, entry *resolverEntry) {
	// Detached from any caller context: the fetch outlives superseded
	// snapshot batches and its result stays reusable.
	value, err := r.fetch(context.Background(), ref)
	if err != nil {
		if !appErrors.HasCode(err, appErrors.ErrResolution) {
			err = appErrors.Wrap(err, appErrors.ErrResolution.Code, appErrors.ErrResolution.Status, r.name+" lookup failed")
		}
		entry.err = err
		r.mu.Lock()
		delete(r.entries, ref)
		r.mu.Unlock()
		r.logger.Debug("resolution failed", zap.String("resolver", r.name), zap.String("ref", ref), zap.Error(err))
	} else {
		entry.value = value
	}
	close(entry.done)
}

type assetURLProvider interface {
	DownloadURL(ctx context.Context, ref string) (string, error)
}

// NewAssetResolver resolves image and document references to download URLs.
func NewAssetResolver(store assetURLProvider, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	return NewResolver("asset", store.DownloadURL, logger, opts...)
}

type profileGetter interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// NewProfileResolver resolves user identifiers to farmer display names,
// reading through the shared Redis cache when one is configured. A cache
// outage silently falls back to the profile store.
func NewProfileResolver(repo profileGetter, cache *repository.CacheRepository, ttl time.Duration, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	fetch := func(ctx context.Context, id string) (string, error) {
		key := "profile:name:" + id
		if cache != nil {
			var name string
			if err := cache.Get(ctx, key, &name); err == nil && name != "" {
				return name, nil
			}
		}
		profile, err := repo.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if cache != nil && profile.Name != "" {
			_ = cache.Set(ctx, key, profile.Name, ttl)
		}
		return profile.Name, nil
	}
	return NewResolver("profile", fetch, logger, opts...)
}

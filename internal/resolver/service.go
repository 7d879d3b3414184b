package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"shuffle/internal/catalog"
	"shuffle/internal/logging"
	"shuffle/internal/services"
	"shuffle/internal/sourcecache"
)

// Resolver maps one catalog item to one source identifier.
type Resolver interface {
	Resolve(ctx context.Context, item catalog.Item) (string, error)
}

// Cache persists successful resolutions keyed by item identity.
type Cache interface {
	Lookup(ctx context.Context, itemID string) (sourcecache.Entry, bool, error)
	Put(ctx context.Context, itemID, sourceID string) error
}

// Service resolves items through a Lookup, consulting Cache first when set.
type Service struct {
	lookup  Lookup
	cache   Cache
	timeout time.Duration
	logger  *slog.Logger
}

var _ Resolver = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithCache enables cache-through resolution.
func WithCache(cache Cache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithTimeout bounds each lookup call. Zero disables the per-call deadline.
func WithTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = timeout }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService wraps lookup.
func NewService(lookup Lookup, opts ...ServiceOption) *Service {
	s := &Service{lookup: lookup}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "resolver")
	return s
}

// Resolve returns the source identifier for item. All failures are returned as
// *ResolutionError.
func (s *Service) Resolve(ctx context.Context, item catalog.Item) (string, error) {
	logger := logging.WithContext(ctx, s.logger)

	trackID, err := TrackID(item.ID)
	if err != nil {
		return "", &ResolutionError{ItemID: item.ID, Err: err}
	}

	if s.cache != nil {
		entry, ok, err := s.cache.Lookup(ctx, item.ID)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "resolution cache lookup failed", "cache_lookup_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "falling back to index lookup"))
		case ok:
			logger.Debug("resolution cache hit", logging.String("source_id", entry.SourceID))
			return entry.SourceID, nil
		}
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	sourceID, err := s.lookup.LookupSource(callCtx, trackID)
	if err != nil {
		if ctx.Err() != nil {
			return "", &ResolutionError{ItemID: item.ID, Err: ctx.Err()}
		}
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, services.ErrConnectivity) {
			err = services.Wrap(services.ErrConnectivity, "resolve", "lookup", "deadline exceeded", err)
		}
		return "", &ResolutionError{ItemID: item.ID, Err: err}
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, item.ID, sourceID); err != nil {
			logging.WarnWithContext(logger, "resolution cache write failed", "cache_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "item will be looked up again next batch"))
		}
	}
	logger.Debug("source resolved", logging.String("source_id", sourceID))
	return sourceID, nil
}

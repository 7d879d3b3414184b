package streams

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"shuffle/internal/logging"
	"shuffle/internal/services"
)

// Provider is the streaming collaborator.
type Provider interface {
	Descriptors(ctx context.Context, sourceID string) ([]Descriptor, error)
	Open(ctx context.Context, d Descriptor) (io.ReadCloser, int64, error)
}

// Fetcher returns the best descriptor for a source, or nil when the source
// has no usable audio-only encoding.
type Fetcher interface {
	Fetch(ctx context.Context, sourceID string) (*Descriptor, error)
}

// Service implements Fetcher on top of a Provider.
type Service struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

var _ Fetcher = (*Service)(nil)

// NewService creates a Service. timeout bounds each descriptor request; zero
// disables the deadline.
func NewService(provider Provider, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		timeout:  timeout,
		logger:   logging.NewComponentLogger(logger, "streams"),
	}
}

// Fetch returns the selected descriptor. Unplayable or restricted sources
// yield (nil, nil); transport faults yield a *FetchError.
func (s *Service) Fetch(ctx context.Context, sourceID string) (*Descriptor, error) {
	logger := logging.WithContext(ctx, s.logger)

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	descriptors, err := s.provider.Descriptors(callCtx, sourceID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &FetchError{SourceID: sourceID, Err: ctx.Err()}
		}
		if errors.Is(err, services.ErrUnplayable) || errors.Is(err, services.ErrNotFound) {
			logging.WarnWithContext(logger, "source has no playable stream", "stream_unplayable",
				logging.String("source_id", sourceID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "item will be reported as stream not found"),
				logging.String(logging.FieldErrorHint, "the source may be private, age restricted, or region locked"))
			return nil, nil
		}
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, services.ErrConnectivity) {
			err = services.Wrap(services.ErrConnectivity, "fetch", "descriptors", "deadline exceeded", err)
		}
		return nil, &FetchError{SourceID: sourceID, Err: err}
	}

	best, ok := SelectBest(descriptors)
	if !ok {
		logging.WarnWithContext(logger, "source has no audio-only encoding", "stream_missing",
			logging.String("source_id", sourceID),
			logging.Int("candidates", len(descriptors)),
			logging.String(logging.FieldImpact, "item will be reported as stream not found"))
		return nil, nil
	}
	logger.Debug("stream selected",
		logging.String("source_id", sourceID),
		logging.Int("itag", best.Itag),
		logging.String("mime_type", best.MediaType()),
		logging.Int("bitrate", best.Bitrate),
		logging.Int64("expected_bytes", best.ContentLength),
	)
	return &best, nil
}

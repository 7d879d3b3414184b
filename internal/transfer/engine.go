package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"shuffle/internal/logging"
	"shuffle/internal/services"
	"shuffle/internal/streams"
)

// DefaultChunkSize is the copy buffer size.
const DefaultChunkSize = 8192

// PartSuffix is appended to destination paths while bytes are in flight.
const PartSuffix = ".part"

// Opener opens the byte stream for a descriptor.
type Opener interface {
	Open(ctx context.Context, d streams.Descriptor) (io.ReadCloser, int64, error)
}

// Sink receives monotonically increasing progress for one transfer. total is
// zero when the length is unknown.
type Sink interface {
	SetTotal(total int64)
	Add(n int)
}

type discardSink struct{}

func (discardSink) SetTotal(int64) {}
func (discardSink) Add(int)        {}

// Options configures an Engine.
type Options struct {
	ChunkSize int
	// Overwrite replaces an existing destination file. When false an existing
	// file fails the transfer before any bytes are fetched.
	Overwrite bool
	Logger    *slog.Logger
}

// Engine performs chunked transfers. It is safe for concurrent use as long as
// each call targets a distinct destination.
type Engine struct {
	opener    Opener
	chunkSize int
	overwrite bool
	logger    *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(opener Opener, opts Options) *Engine {
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	return &Engine{
		opener:    opener,
		chunkSize: chunk,
		overwrite: opts.Overwrite,
		logger:    logging.NewComponentLogger(opts.Logger, "transfer"),
	}
}

// Transfer copies d to destination and returns the bytes written. A cancelled
// context yields an error matching ErrCancelled; every other failure is a
// *TransferError.
func (e *Engine) Transfer(ctx context.Context, d streams.Descriptor, destination string, sink Sink) (int64, error) {
	if sink == nil {
		sink = discardSink{}
	}
	logger := logging.WithContext(ctx, e.logger)
	fail := func(err error) (int64, error) {
		return 0, &TransferError{SourceID: d.SourceID, Destination: destination, Err: err}
	}

	if err := e.checkDestination(destination); err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return 0, cancelled(err)
	}

	stream, reported, err := e.opener.Open(ctx, d)
	if err != nil {
		if ctx.Err() != nil {
			return 0, cancelled(ctx.Err())
		}
		return fail(fmt.Errorf("open stream: %w", err))
	}
	defer stream.Close()

	total := d.ContentLength
	if total <= 0 && reported > 0 {
		total = reported
	}
	sink.SetTotal(total)

	partPath := destination + PartSuffix
	file, err := os.OpenFile(partPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fail(fmt.Errorf("create partial file: %w", err))
	}
	discard := func() {
		_ = file.Close()
		_ = os.Remove(partPath)
	}

	sampler := logging.NewProgressSampler(10)
	buf := make([]byte, e.chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			discard()
			logger.Info("transfer cancelled", logging.Int64("bytes_written", written))
			return written, cancelled(err)
		}
		n, readErr := stream.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				discard()
				return fail(fmt.Errorf("write: %w", err))
			}
			written += int64(n)
			sink.Add(n)
			if percent, ok := sampler.ShouldLogBytes(written, total); ok {
				logger.Debug("transfer progress",
					logging.Int64("bytes_written", written),
					logging.Int64("expected_bytes", total),
					logging.Float64("percent", percent))
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			discard()
			if ctx.Err() != nil {
				return written, cancelled(ctx.Err())
			}
			return fail(services.Wrap(services.ErrConnectivity, "transfer", "read", "", readErr))
		}
	}

	if total > 0 && written != total {
		discard()
		return fail(services.Wrap(services.ErrTransient, "transfer", "verify",
			fmt.Sprintf("short transfer: wrote %d of %d bytes", written, total), nil))
	}
	if err := file.Sync(); err != nil {
		discard()
		return fail(fmt.Errorf("sync: %w", err))
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(partPath)
		return fail(fmt.Errorf("close: %w", err))
	}
	if err := os.Rename(partPath, destination); err != nil {
		_ = os.Remove(partPath)
		return fail(fmt.Errorf("finalize: %w", err))
	}
	return written, nil
}

func (e *Engine) checkDestination(destination string) error {
	info, err := os.Stat(destination)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("stat destination: %w", err)
	case info.IsDir():
		return services.Wrap(services.ErrValidation, "transfer", "check destination", "destination is a directory", nil)
	case !e.overwrite:
		return services.Wrap(services.ErrValidation, "transfer", "check destination", "destination exists and overwrite is disabled", nil)
	}
	return nil
}

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}

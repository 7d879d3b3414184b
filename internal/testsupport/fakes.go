package testsupport

import (
	"bytes"
	"context"
	"io"
	"sync"

	"shuffle/internal/catalog"
	"shuffle/internal/notifications"
	"shuffle/internal/services"
	"shuffle/internal/streams"
)

type callCounter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *callCounter) next(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[key]++
	return c.calls[key]
}

func (c *callCounter) count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[key]
}

func (c *callCounter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

// Resolver is an in-memory resolver. Items missing from Sources fail with
// services.ErrNotFound.
type Resolver struct {
	Sources map[string]string
	// Fail, when set, may fail the call-th attempt for an item (1-based).
	Fail func(itemID string, call int) error
	// Before runs at the start of every call.
	Before func(ctx context.Context, itemID string)

	counter callCounter
}

// Resolve implements resolver.Resolver.
func (r *Resolver) Resolve(ctx context.Context, item catalog.Item) (string, error) {
	call := r.counter.next(item.ID)
	if r.Before != nil {
		r.Before(ctx, item.ID)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.Fail != nil {
		if err := r.Fail(item.ID, call); err != nil {
			return "", err
		}
	}
	source, ok := r.Sources[item.ID]
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "resolve", "lookup", "no source for "+item.ID, nil)
	}
	return source, nil
}

// Calls returns how often itemID was resolved.
func (r *Resolver) Calls(itemID string) int { return r.counter.count(itemID) }

// TotalCalls returns the number of Resolve calls.
func (r *Resolver) TotalCalls() int { return r.counter.total() }

// Fetcher is an in-memory descriptor fetcher. Sources missing from
// Descriptors have no audio stream.
type Fetcher struct {
	Descriptors map[string]streams.Descriptor
	Fail        func(sourceID string, call int) error

	counter callCounter
}

// Fetch implements streams.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, sourceID string) (*streams.Descriptor, error) {
	call := f.counter.next(sourceID)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Fail != nil {
		if err := f.Fail(sourceID, call); err != nil {
			return nil, err
		}
	}
	d, ok := f.Descriptors[sourceID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// Calls returns how often sourceID was fetched.
func (f *Fetcher) Calls(sourceID string) int { return f.counter.count(sourceID) }

// TotalCalls returns the number of Fetch calls.
func (f *Fetcher) TotalCalls() int { return f.counter.total() }

// Streams serves stream bytes from memory. With Formats set it is a complete
// streams.Provider.
type Streams struct {
	Formats  map[string][]streams.Descriptor
	Payloads map[string][]byte
	Errors   map[string]error
	// Gate, when set, runs before a stream is returned and may block or fail.
	Gate func(ctx context.Context, sourceID string) error
	// Wrap, when set, decorates the returned reader.
	Wrap func(ctx context.Context, sourceID string, r io.Reader) io.Reader

	counter callCounter
	mu      sync.Mutex
	active  int
	peak    int
}

// Descriptors implements streams.Provider. Unknown sources are unplayable.
func (s *Streams) Descriptors(ctx context.Context, sourceID string) ([]streams.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	formats, ok := s.Formats[sourceID]
	if !ok {
		return nil, services.Wrap(services.ErrUnplayable, "fetch", "descriptors", "unknown source "+sourceID, nil)
	}
	return formats, nil
}

// Open implements transfer.Opener.
func (s *Streams) Open(ctx context.Context, d streams.Descriptor) (io.ReadCloser, int64, error) {
	s.counter.next(d.SourceID)
	s.mu.Lock()
	s.active++
	s.peak = max(s.peak, s.active)
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}
	if s.Gate != nil {
		if err := s.Gate(ctx, d.SourceID); err != nil {
			release()
			return nil, 0, err
		}
	}
	if err := s.Errors[d.SourceID]; err != nil {
		release()
		return nil, 0, err
	}
	data := s.Payloads[d.SourceID]
	var r io.Reader = bytes.NewReader(data)
	if s.Wrap != nil {
		r = s.Wrap(ctx, d.SourceID, r)
	}
	return &trackedReader{Reader: r, release: release}, int64(len(data)), nil
}

// Opens returns how often sourceID was opened.
func (s *Streams) Opens(sourceID string) int { return s.counter.count(sourceID) }

// TotalOpens returns the number of Open calls.
func (s *Streams) TotalOpens() int { return s.counter.total() }

// Peak returns the highest number of simultaneously open streams.
func (s *Streams) Peak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

type trackedReader struct {
	io.Reader
	once    sync.Once
	release func()
}

func (t *trackedReader) Close() error {
	t.once.Do(t.release)
	return nil
}

// Confirmer answers questions from a scripted list and records them.
// Questions beyond the script are declined.
type Confirmer struct {
	Answers []bool

	mu        sync.Mutex
	questions []string
}

// Confirm implements prompt.Confirmer.
func (c *Confirmer) Confirm(ctx context.Context, question string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := len(c.questions)
	c.questions = append(c.questions, question)
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if idx < len(c.Answers) {
		return c.Answers[idx], nil
	}
	return false, nil
}

// Questions returns every question asked so far.
func (c *Confirmer) Questions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.questions...)
}

// Notifier records notifications.
type Notifier struct {
	mu        sync.Mutex
	Started   int
	Completed []notifications.Summary
	Errors    []string
}

var _ notifications.Service = (*Notifier)(nil)

func (n *Notifier) NotifyBatchStarted(context.Context, string, int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Started++
	return nil
}

func (n *Notifier) NotifyBatchCompleted(_ context.Context, summary notifications.Summary) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Completed = append(n.Completed, summary)
	return nil
}

func (n *Notifier) NotifyError(_ context.Context, err error, label string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Errors = append(n.Errors, label+": "+err.Error())
	return nil
}

func (n *Notifier) TestNotification(context.Context) error { return nil }

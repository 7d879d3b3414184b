package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Snapshot is a point-in-time view of one item's transfer.
type Snapshot struct {
	ItemID  string
	Label   string
	Written int64
	Total   int64
	Done    bool
	Failed  bool
}

type itemState struct {
	label   string
	written int64
	total   int64
	done    bool
	failed  bool
}

// Tracker collects progress for every item in a batch. It is safe for
// concurrent use.
type Tracker struct {
	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	items    map[string]*itemState
	order    []string
	max      int64
	count    int
	finished int
}

// NewTracker creates a tracker for count items. When w is nil no bar is
// drawn and the tracker only records counts.
func NewTracker(w io.Writer, count int) *Tracker {
	t := &Tracker{
		items: make(map[string]*itemState, count),
		count: count,
	}
	if w != nil {
		t.bar = progressbar.NewOptions64(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetDescription(t.describe()),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		)
	}
	return t
}

// Sink returns the progress sink for one item. Calling Sink twice for the
// same id returns sinks sharing the same state.
func (t *Tracker) Sink(itemID, label string) *Sink {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[itemID]; !ok {
		t.items[itemID] = &itemState{label: label}
		t.order = append(t.order, itemID)
	}
	return &Sink{tracker: t, id: itemID}
}

// Complete marks an item as settled.
func (t *Tracker) Complete(itemID string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, exists := t.items[itemID]
	if !exists || state.done {
		return
	}
	state.done = true
	state.failed = !ok
	t.finished++
	if t.bar != nil {
		t.bar.Describe(t.describe())
	}
}

// Finish closes the bar.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bar != nil {
		_ = t.bar.Finish()
	}
}

// Snapshots returns item states in the order sinks were created.
func (t *Tracker) Snapshots() []Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Snapshot, 0, len(t.order))
	for _, id := range t.order {
		s := t.items[id]
		out = append(out, Snapshot{
			ItemID:  id,
			Label:   s.label,
			Written: s.written,
			Total:   s.total,
			Done:    s.done,
			Failed:  s.failed,
		})
	}
	return out
}

// Written returns the bytes written across all items.
func (t *Tracker) Written() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sum int64
	for _, s := range t.items {
		sum += s.written
	}
	return sum
}

func (t *Tracker) describe() string {
	return fmt.Sprintf("downloading %d/%d", t.finished, t.count)
}

func (t *Tracker) setTotal(id string, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state := t.items[id]
	if state == nil || total <= 0 || state.total > 0 {
		return
	}
	state.total = total
	// Bytes of an item with unknown length were already counted toward max.
	t.grow(total - state.written)
}

func (t *Tracker) add(id string, n int) {
	if n <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	state := t.items[id]
	if state == nil {
		return
	}
	state.written += int64(n)
	switch {
	case state.total <= 0:
		t.grow(int64(n))
	case state.written > state.total:
		t.grow(min(state.written-state.total, int64(n)))
	}
	if t.bar != nil {
		_ = t.bar.Add(n)
	}
}

func (t *Tracker) grow(delta int64) {
	if delta <= 0 {
		return
	}
	t.max += delta
	if t.bar != nil {
		t.bar.ChangeMax64(t.max)
	}
}

// Sink reports progress for a single item.
type Sink struct {
	tracker *Tracker
	id      string
}

// SetTotal records the expected length. Zero leaves the length unknown.
func (s *Sink) SetTotal(total int64) { s.tracker.setTotal(s.id, total) }

// Add records n more bytes written.
func (s *Sink) Add(n int) { s.tracker.add(s.id, n) }

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shuffle/internal/catalog"
	"shuffle/internal/logging"
	"shuffle/internal/notifications"
	"shuffle/internal/prompt"
	"shuffle/internal/report"
	"shuffle/internal/resolver"
	"shuffle/internal/services"
	"shuffle/internal/streams"
	"shuffle/internal/transfer"
)

// ErrBusy is returned when Run is called while a batch is in progress.
var ErrBusy = errors.New("batch already running")

// Transferer copies one stream to a destination file.
type Transferer interface {
	Transfer(ctx context.Context, d streams.Descriptor, destination string, sink transfer.Sink) (int64, error)
}

// Options configures an Orchestrator.
type Options struct {
	Resolver    resolver.Resolver
	Fetcher     streams.Fetcher
	Transfer    Transferer
	Destination string
	// Source labels the batch in logs and notifications.
	Source string
	// MaxParallel bounds concurrent transfers; zero starts every item at once.
	MaxParallel      int
	MaxStageRetries  int
	MaxBatchRestarts int
	MinFreeBytes     uint64
	// Confirm answers retry and restart questions. Nil declines every offer.
	Confirm  prompt.Confirmer
	Notifier notifications.Service
	// ProgressWriter receives the aggregate transfer bar. Nil disables it.
	ProgressWriter io.Writer
	Logger         *slog.Logger
	Now            func() time.Time
}

// Orchestrator runs batches. One batch may run at a time.
type Orchestrator struct {
	resolver         resolver.Resolver
	fetcher          streams.Fetcher
	transfer         Transferer
	destination      string
	source           string
	maxParallel      int
	maxStageRetries  int
	maxBatchRestarts int
	minFreeBytes     uint64
	confirm          prompt.Confirmer
	notifier         notifications.Service
	progressOut      io.Writer
	logger           *slog.Logger
	now              func() time.Time

	mu              sync.Mutex
	running         bool
	cancel          context.CancelFunc
	cancelRequested bool
}

// New validates opts and builds an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Resolver == nil:
		return nil, errors.New("pipeline: resolver is required")
	case opts.Fetcher == nil:
		return nil, errors.New("pipeline: fetcher is required")
	case opts.Transfer == nil:
		return nil, errors.New("pipeline: transfer engine is required")
	}
	destination := strings.TrimSpace(opts.Destination)
	if destination == "" {
		return nil, errors.New("pipeline: destination is required")
	}
	o := &Orchestrator{
		resolver:         opts.Resolver,
		fetcher:          opts.Fetcher,
		transfer:         opts.Transfer,
		destination:      destination,
		source:           strings.TrimSpace(opts.Source),
		maxParallel:      max(opts.MaxParallel, 0),
		maxStageRetries:  max(opts.MaxStageRetries, 0),
		maxBatchRestarts: max(opts.MaxBatchRestarts, 0),
		minFreeBytes:     opts.MinFreeBytes,
		confirm:          opts.Confirm,
		notifier:         opts.Notifier,
		progressOut:      opts.ProgressWriter,
		logger:           logging.NewComponentLogger(opts.Logger, "pipeline"),
		now:              opts.Now,
	}
	if o.confirm == nil {
		o.confirm = prompt.Fixed(false)
	}
	if o.notifier == nil {
		o.notifier = notifications.NewService(nil)
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o, nil
}

// Cancel stops the running batch. It is safe to call more than once and from
// any goroutine; a Cancel issued before Run cancels that Run immediately.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelRequested = true
	if o.cancel != nil {
		o.cancel()
	}
}

// record is the orchestrator-owned state of one item. Only the goroutine
// running the batch reads or writes records.
type record struct {
	index       int
	item        catalog.Item
	state       State
	streamFound bool
	sourceID    string
	descriptor  *streams.Descriptor
	destination string
	bytes       int64
	err         error
}

func newRecords(items []catalog.Item) []*record {
	records := make([]*record, len(items))
	for i, item := range items {
		records[i] = &record{index: i, item: item, state: StatePending}
	}
	return records
}

// Run drives items through every stage and returns the reconciliation
// report. Cancellation is not an error: the report marks unsettled items
// Cancelled. Errors are returned only for invalid input or broken invariants.
func (o *Orchestrator) Run(ctx context.Context, items []catalog.Item) (*report.Report, error) {
	runCtx, err := o.begin(ctx)
	if err != nil {
		return nil, err
	}
	// end also drops a Cancel issued for a Run rejected below.
	defer o.end()

	if err := catalog.ValidateItems(items); err != nil {
		return nil, err
	}
	if err := checkDestinationDir(o.destination); err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	runCtx = services.WithBatchID(runCtx, batchID)
	logger := logging.WithContext(runCtx, o.logger)

	rep := &report.Report{
		BatchID:     batchID,
		Source:      o.source,
		Destination: o.destination,
		Started:     o.now(),
	}
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("items", len(items)),
		logging.String("destination", o.destination),
		logging.String("source", o.source))
	o.notify(runCtx, logger, func(ctx context.Context) error {
		return o.notifier.NotifyBatchStarted(ctx, o.source, len(items))
	})

	var records []*record
	for {
		records = newRecords(items)
		result, err := o.runAttempt(runCtx, logger, records)
		if err != nil {
			return nil, err
		}
		rep.Aborted = result.aborted
		rep.AbortStage = result.stage
		rep.AbortReason = result.reason
		if !result.restartable || runCtx.Err() != nil || rep.Restarts >= o.maxBatchRestarts {
			break
		}
		if !o.ask(runCtx, logger, "No streams were found. Restart the batch?") {
			break
		}
		rep.Restarts++
		logger.Info("batch restarting",
			logging.String(logging.FieldEventType, "batch_restart"),
			logging.Int("restart", rep.Restarts))
	}

	if err := settle(runCtx, records); err != nil {
		return nil, err
	}
	rep.Rows = buildRows(records)
	rep.Cancelled = anyCancelled(records)
	rep.Finished = o.now()
	o.finish(runCtx, logger, rep)
	return rep, nil
}

func (o *Orchestrator) begin(ctx context.Context) (context.Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return nil, ErrBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.running = true
	o.cancel = cancel
	if o.cancelRequested {
		cancel()
	}
	return runCtx, nil
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
	o.cancel = nil
	o.running = false
	o.cancelRequested = false
}

type attemptResult struct {
	aborted     bool
	stage       string
	reason      string
	restartable bool
}

func (o *Orchestrator) runAttempt(ctx context.Context, logger *slog.Logger, records []*record) (attemptResult, error) {
	if ctx.Err() != nil {
		return attemptResult{}, nil
	}
	verdict, err := o.resolveStage(ctx, records)
	if err != nil {
		return attemptResult{}, err
	}
	if verdict == stageFailedTerminal {
		return attemptResult{aborted: true, stage: stageResolve, reason: "lookup index unreachable"}, nil
	}

	if ctx.Err() != nil {
		return attemptResult{}, nil
	}
	verdict, err = o.fetchStage(ctx, records)
	if err != nil {
		return attemptResult{}, err
	}
	if verdict == stageFailedTerminal {
		return attemptResult{aborted: true, stage: stageFetch, reason: "streaming service unreachable"}, nil
	}

	if ctx.Err() != nil {
		return attemptResult{}, nil
	}
	found := recordsIn(records, StateStreamFound)
	if len(found) == 0 {
		logging.ErrorWithContext(logger, "no streams were found", "batch_no_streams",
			logging.Int("items", len(records)),
			logging.String(logging.FieldErrorHint, "check the item identities or try again later"),
			logging.String(logging.FieldImpact, "transfer stage skipped"))
		return attemptResult{aborted: true, stage: stageFetch, reason: "no streams found", restartable: true}, nil
	}

	o.checkSpace(logger, found)
	if err := o.transferStage(ctx, found); err != nil {
		return attemptResult{}, err
	}
	return attemptResult{}, nil
}

func (o *Orchestrator) ask(ctx context.Context, logger *slog.Logger, question string) bool {
	ok, err := o.confirm.Confirm(ctx, question)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("confirmation prompt failed", logging.Error(err))
		}
		return false
	}
	return ok
}

func (o *Orchestrator) notify(ctx context.Context, logger *slog.Logger, send func(context.Context) error) {
	if err := send(context.WithoutCancel(ctx)); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "batch result unaffected"))
	}
}

func (o *Orchestrator) finish(ctx context.Context, logger *slog.Logger, rep *report.Report) {
	counts := rep.Counts()
	logger.Info("batch completed",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.String("verdict", string(rep.Verdict())),
		logging.Int("successful", counts.Successful),
		logging.Int("failed", counts.Failed),
		logging.Int("not_found", counts.NotFound),
		logging.Int("cancelled", counts.Cancelled),
		logging.Int("restarts", rep.Restarts),
		logging.Duration("duration", rep.Duration()))

	if rep.Aborted && rep.AbortReason != "" && rep.AbortReason != "no streams found" {
		o.notify(ctx, logger, func(ctx context.Context) error {
			return o.notifier.NotifyError(ctx, errors.New(rep.AbortReason), rep.AbortStage)
		})
	}
	o.notify(ctx, logger, func(ctx context.Context) error {
		return o.notifier.NotifyBatchCompleted(ctx, notifications.Summary{
			Source:    rep.Source,
			Succeeded: counts.Successful,
			Failed:    counts.Failed,
			NotFound:  counts.NotFound,
			Cancelled: rep.Cancelled,
			Duration:  rep.Duration(),
		})
	})
}

func checkDestinationDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return services.Wrap(services.ErrValidation, "batch", "check destination", "", err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrValidation, "batch", "check destination", fmt.Sprintf("%s is not a directory", dir), nil)
	}
	return nil
}

// settle moves unsettled items to Cancelled once the run context is done.
// Without cancellation every item must already be terminal.
func settle(ctx context.Context, records []*record) error {
	for _, rec := range records {
		if rec.state.IsTerminal() {
			continue
		}
		if ctx.Err() == nil {
			return fmt.Errorf("%w: item %s left in %s", ErrInvalidTransition, rec.item.ID, rec.state)
		}
		if err := advance(rec, StateCancelled); err != nil {
			return err
		}
	}
	return nil
}

func anyCancelled(records []*record) bool {
	for _, rec := range records {
		if rec.state == StateCancelled {
			return true
		}
	}
	return false
}

func recordsIn(records []*record, state State) []*record {
	var out []*record
	for _, rec := range records {
		if rec.state == state {
			out = append(out, rec)
		}
	}
	return out
}

func buildRows(records []*record) []report.Row {
	rows := make([]report.Row, 0, len(records))
	for _, rec := range records {
		row := report.Row{
			Index:    rec.index + 1,
			ItemID:   rec.item.ID,
			Title:    rec.item.Label(),
			Status:   report.Reconcile(rec.streamFound, rec.state == StateDownloaded),
			Outcome:  rec.state.Outcome(),
			SourceID: rec.sourceID,
		}
		switch rec.state {
		case StateDownloaded:
			row.Path = rec.destination
			row.Bytes = rec.bytes
		case StateCancelled:
			row.Reason = "cancelled"
		case StateNoStreamAvailable:
			row.Reason = "no_audio_stream"
		default:
			row.Reason = services.Reason(rec.err)
		}
		rows = append(rows, row)
	}
	return rows
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"shuffle/internal/catalog"
	"shuffle/internal/logging"
	"shuffle/internal/preflight"
	"shuffle/internal/progress"
	"shuffle/internal/services"
	"shuffle/internal/streams"
	"shuffle/internal/textutil"
)

const (
	stageResolve  = "resolve"
	stageFetch    = "fetch"
	stageTransfer = "transfer"
)

type stageVerdict int

const (
	stageSucceeded stageVerdict = iota
	stageFailedRetryable
	stageFailedTerminal
)

// job is the immutable input handed to a worker.
type job struct {
	index       int
	item        catalog.Item
	sourceID    string
	descriptor  streams.Descriptor
	destination string
}

// outcome is what a worker sends back to the orchestrator.
type outcome struct {
	index      int
	sourceID   string
	descriptor *streams.Descriptor
	bytes      int64
	err        error
}

// fanOut runs work for every job and returns once all of them have reported.
// limit bounds concurrency; zero means unbounded. Jobs still waiting for a
// slot when ctx is cancelled report ctx.Err without running.
func (o *Orchestrator) fanOut(ctx context.Context, stage string, jobs []job, limit int, work func(context.Context, job) outcome) []outcome {
	results := make(chan outcome)
	var slots chan struct{}
	if limit > 0 {
		slots = make(chan struct{}, limit)
	}
	stageCtx := services.WithStage(ctx, stage)
	for _, j := range jobs {
		go func() {
			if slots != nil {
				select {
				case slots <- struct{}{}:
					defer func() { <-slots }()
				case <-ctx.Done():
					results <- outcome{index: j.index, err: ctx.Err()}
					return
				}
			}
			out := work(services.WithItemID(stageCtx, j.item.ID), j)
			out.index = j.index
			results <- out
		}()
	}
	collected := make([]outcome, 0, len(jobs))
	for range jobs {
		collected = append(collected, <-results)
	}
	return collected
}

// attemptStage runs a network stage and offers whole-stage retries while it
// fails systemically.
func (o *Orchestrator) attemptStage(ctx context.Context, stage string, jobs []job, work func(context.Context, job) outcome) ([]outcome, stageVerdict) {
	logger := logging.WithContext(services.WithStage(ctx, stage), o.logger)
	retries := 0
	for {
		logger.Info("stage started",
			logging.String(logging.FieldEventType, "stage_start"),
			logging.Int("items", len(jobs)),
			logging.Int("attempt", retries+1))
		started := o.now()
		outcomes := o.fanOut(ctx, stage, jobs, 0, work)
		verdict := classify(ctx, outcomes)
		logger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Int("items", len(jobs)),
			logging.Int("failed", countFailed(outcomes)),
			logging.Bool("systemic", verdict == stageFailedRetryable),
			logging.Duration("duration", o.now().Sub(started)))
		if verdict == stageSucceeded {
			return outcomes, verdict
		}

		logging.ErrorWithContext(logger, "stage could not reach its service", "stage_systemic_failure",
			logging.Error(firstError(outcomes)),
			logging.String(logging.FieldErrorHint, "check network connectivity and the service endpoint"),
			logging.String(logging.FieldImpact, "every item in the stage failed"))
		if retries >= o.maxStageRetries {
			return outcomes, stageFailedTerminal
		}
		if !o.ask(ctx, logger, fmt.Sprintf("The %s stage could not reach its service. Try again?", stage)) {
			return outcomes, stageFailedTerminal
		}
		retries++
	}
}

// classify reports a stage as retryable only when every attempted item failed
// with a connectivity-class error.
func classify(ctx context.Context, outcomes []outcome) stageVerdict {
	if ctx.Err() != nil || len(outcomes) == 0 {
		return stageSucceeded
	}
	for _, out := range outcomes {
		if out.err == nil || !services.IsSystemic(out.err) {
			return stageSucceeded
		}
	}
	return stageFailedRetryable
}

func countFailed(outcomes []outcome) int {
	n := 0
	for _, out := range outcomes {
		if out.err != nil {
			n++
		}
	}
	return n
}

func firstError(outcomes []outcome) error {
	for _, out := range outcomes {
		if out.err != nil {
			return out.err
		}
	}
	return nil
}

func isCancellation(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, ctx.Err())
}

func (o *Orchestrator) resolveStage(ctx context.Context, records []*record) (stageVerdict, error) {
	targets := recordsIn(records, StatePending)
	jobs := make([]job, 0, len(targets))
	for _, rec := range targets {
		if err := advance(rec, StateResolving); err != nil {
			return stageSucceeded, err
		}
		jobs = append(jobs, job{index: rec.index, item: rec.item})
	}

	outcomes, verdict := o.attemptStage(ctx, stageResolve, jobs, func(ctx context.Context, j job) outcome {
		sourceID, err := o.resolver.Resolve(ctx, j.item)
		return outcome{sourceID: sourceID, err: err}
	})

	for _, out := range outcomes {
		rec := records[out.index]
		rec.err = out.err
		var next State
		switch {
		case isCancellation(ctx, out.err):
			next = StateCancelled
		case out.err != nil:
			next = StateResolutionFailed
			o.itemWarning(ctx, stageResolve, rec, "item resolution failed", "resolution_failed", out.err)
		default:
			next = StateResolved
			rec.sourceID = out.sourceID
		}
		if err := advance(rec, next); err != nil {
			return verdict, err
		}
	}
	return verdict, nil
}

func (o *Orchestrator) fetchStage(ctx context.Context, records []*record) (stageVerdict, error) {
	targets := recordsIn(records, StateResolved)
	jobs := make([]job, 0, len(targets))
	for _, rec := range targets {
		if err := advance(rec, StateFetching); err != nil {
			return stageSucceeded, err
		}
		jobs = append(jobs, job{index: rec.index, item: rec.item, sourceID: rec.sourceID})
	}

	outcomes, verdict := o.attemptStage(ctx, stageFetch, jobs, func(ctx context.Context, j job) outcome {
		descriptor, err := o.fetcher.Fetch(ctx, j.sourceID)
		return outcome{descriptor: descriptor, err: err}
	})

	for _, out := range outcomes {
		rec := records[out.index]
		rec.err = out.err
		var next State
		switch {
		case isCancellation(ctx, out.err):
			next = StateCancelled
		case out.err != nil:
			next = StateFetchFailed
			o.itemWarning(ctx, stageFetch, rec, "stream lookup failed", "fetch_failed", out.err)
		case out.descriptor == nil:
			next = StateNoStreamAvailable
		default:
			next = StateStreamFound
			rec.descriptor = out.descriptor
		}
		if err := advance(rec, next); err != nil {
			return verdict, err
		}
	}
	return verdict, nil
}

func (o *Orchestrator) transferStage(ctx context.Context, found []*record) error {
	logger := logging.WithContext(services.WithStage(ctx, stageTransfer), o.logger)
	assignDestinations(o.destination, found)

	jobs := make([]job, 0, len(found))
	byIndex := make(map[int]*record, len(found))
	for _, rec := range found {
		byIndex[rec.index] = rec
		if err := advance(rec, StateDownloading); err != nil {
			return err
		}
		jobs = append(jobs, job{
			index:       rec.index,
			item:        rec.item,
			sourceID:    rec.sourceID,
			descriptor:  *rec.descriptor,
			destination: rec.destination,
		})
	}

	tracker := progress.NewTracker(o.progressOut, len(jobs))
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.Int("items", len(jobs)),
		logging.Int("max_parallel", o.maxParallel))
	started := o.now()
	outcomes := o.fanOut(ctx, stageTransfer, jobs, o.maxParallel, func(ctx context.Context, j job) outcome {
		itemLogger := logging.WithContext(ctx, o.logger)
		itemLogger.Debug("transfer started",
			logging.String("source_id", j.sourceID),
			logging.String("stream", j.descriptor.String()),
			logging.String("destination", j.destination))
		written, err := o.transfer.Transfer(ctx, j.descriptor, j.destination, tracker.Sink(j.item.ID, j.item.Label()))
		tracker.Complete(j.item.ID, err == nil)
		if err == nil {
			itemLogger.Info("download complete",
				logging.String(logging.FieldEventType, "item_downloaded"),
				logging.String("title", j.item.Label()),
				logging.Int64("bytes_written", written))
		}
		return outcome{bytes: written, err: err}
	})
	tracker.Finish()

	failed := 0
	for _, out := range outcomes {
		rec := byIndex[out.index]
		rec.err = out.err
		var next State
		switch {
		case isCancellation(ctx, out.err):
			next = StateCancelled
		case out.err != nil:
			next = StateDownloadFailed
			failed++
			o.itemWarning(ctx, stageTransfer, rec, "download failed", "download_failed", out.err)
		default:
			next = StateDownloaded
			rec.bytes = out.bytes
		}
		if err := advance(rec, next); err != nil {
			return err
		}
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Int("items", len(jobs)),
		logging.Int("failed", failed),
		logging.Int64("bytes_written", tracker.Written()),
		logging.Duration("duration", o.now().Sub(started)))
	return nil
}

func (o *Orchestrator) itemWarning(ctx context.Context, stage string, rec *record, msg, eventType string, err error) {
	itemCtx := services.WithItemID(services.WithStage(ctx, stage), rec.item.ID)
	logging.WarnWithContext(logging.WithContext(itemCtx, o.logger), msg, eventType,
		logging.String("title", rec.item.Label()),
		logging.String("reason", services.Reason(err)),
		logging.Error(err))
}

// assignDestinations gives every record a unique file name in dir. Titles
// that sanitise to the same name get " (2)", " (3)" suffixes in input order.
func assignDestinations(dir string, records []*record) {
	taken := make(map[string]struct{}, len(records))
	for _, rec := range records {
		base := textutil.SanitizeFileName(rec.item.Label())
		ext := rec.descriptor.Extension()
		name := base + ext
		for n := 2; ; n++ {
			if _, used := taken[strings.ToLower(name)]; !used {
				break
			}
			name = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		taken[strings.ToLower(name)] = struct{}{}
		rec.destination = filepath.Join(dir, name)
	}
}

func (o *Orchestrator) checkSpace(logger *slog.Logger, found []*record) {
	var needed uint64
	unknown := 0
	for _, rec := range found {
		if rec.descriptor.ContentLength > 0 {
			needed += uint64(rec.descriptor.ContentLength)
		} else {
			unknown++
		}
	}
	missing, err := preflight.Shortfall(o.destination, needed, o.minFreeBytes)
	if err != nil {
		logging.WarnWithContext(logger, "free space check failed", "disk_check_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "transfers start without a space estimate"))
		return
	}
	if missing > 0 {
		logging.WarnWithContext(logger, "destination may run out of space", "low_disk_space",
			logging.Int64("needed_bytes", int64(needed)),
			logging.Int64("missing_bytes", int64(missing)),
			logging.Int("unknown_lengths", unknown),
			logging.String(logging.FieldErrorHint, "free space on the destination or choose another directory"),
			logging.String(logging.FieldImpact, "some transfers may fail"))
	}
}

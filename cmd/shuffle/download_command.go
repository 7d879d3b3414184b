package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"shuffle/internal/catalog"
	"shuffle/internal/config"
	"shuffle/internal/dirlock"
	"shuffle/internal/logging"
	"shuffle/internal/notifications"
	"shuffle/internal/pipeline"
	"shuffle/internal/preflight"
	"shuffle/internal/prompt"
	"shuffle/internal/report"
	"shuffle/internal/resolver"
	"shuffle/internal/streams"
	"shuffle/internal/transfer"
)

var errBatchFailed = errors.New("no items were downloaded")

type downloadOptions struct {
	dest       string
	only       []string
	yes        bool
	jsonOut    bool
	noProgress bool
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var opts downloadOptions

	cmd := &cobra.Command{
		Use:   "download <manifest>",
		Short: "Download the items of a manifest",
		Long: `Resolve every item to a source, pick the best audio-only stream and
download it into the destination directory. Interrupting the command cancels
in-flight downloads; the report is still printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runDownload(cmd, ctx, cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dest, "dest", "d", "", "Destination directory (defaults to paths.download_dir)")
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "Limit to item ids or 1-based positions")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Answer yes to every prompt")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

func runDownload(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, manifestPath string, opts downloadOptions) error {
	manifest, err := catalog.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	items, err := catalog.Select(manifest.Items, opts.only)
	if err != nil {
		return err
	}

	dest := cfg.Paths.DownloadDir
	if strings.TrimSpace(opts.dest) != "" {
		if dest, err = config.ExpandPath(strings.TrimSpace(opts.dest)); err != nil {
			return fmt.Errorf("resolve destination: %w", err)
		}
	}
	if check := preflight.CheckDirectoryAccess("Destination directory", dest); !check.Passed {
		return fmt.Errorf("destination %s: %s", dest, check.Detail)
	}

	lock, err := dirlock.Acquire(dest)
	if err != nil {
		if errors.Is(err, dirlock.ErrLocked) {
			return fmt.Errorf("another batch is already downloading into %s", dest)
		}
		return err
	}
	defer lock.Release()

	logger, err := ctx.logger(cmd, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	if !opts.jsonOut {
		printManifestHeader(cmd, manifest, len(items))
		fmt.Fprintln(out, report.RenderItems(items))
	}

	var confirm prompt.Confirmer = prompt.Fixed(true)
	if !opts.yes {
		confirm = prompt.NewConsole(cmd.InOrStdin(), errOut)
		ok, err := confirm.Confirm(cmd.Context(), fmt.Sprintf("Download %d item(s) to %s?", len(items), dest))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(errOut, "Download not started (use --yes to skip confirmation)")
			return nil
		}
	}

	index, err := resolver.NewIndexClient(cfg.Index.BaseURL, cfg.Index.LookupPath, resolver.WithUserAgent(cfg.Index.UserAgent))
	if err != nil {
		return err
	}
	resolverOpts := []resolver.ServiceOption{
		resolver.WithTimeout(cfg.IndexTimeout()),
		resolver.WithLogger(logger),
	}
	if cfg.Cache.Enabled {
		store, err := ctx.openCache(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "resolution cache unavailable", "cache_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "every item is looked up on the index"),
				logging.String(logging.FieldErrorHint, "check paths.state_dir permissions"))
		} else {
			defer store.Close()
			resolverOpts = append(resolverOpts, resolver.WithCache(store))
		}
	}

	provider := ctx.streamProvider(cfg)
	orchestrator, err := pipeline.New(pipeline.Options{
		Resolver: resolver.NewService(index, resolverOpts...),
		Fetcher:  streams.NewService(provider, cfg.StreamingTimeout(), logger),
		Transfer: transfer.NewEngine(provider, transfer.Options{
			ChunkSize: cfg.Transfer.ChunkSize,
			Overwrite: cfg.Transfer.OverwriteExisting,
			Logger:    logger,
		}),
		Destination:      dest,
		Source:           manifest.Source,
		MaxParallel:      cfg.Transfer.MaxParallel,
		MaxStageRetries:  cfg.Workflow.MaxStageRetries,
		MaxBatchRestarts: cfg.Workflow.MaxBatchRestarts,
		MinFreeBytes:     cfg.MinFreeBytes(),
		Confirm:          confirm,
		Notifier:         notifications.NewService(cfg),
		ProgressWriter:   progressWriter(errOut, cfg, opts),
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := orchestrator.Run(runCtx, items)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		if err := report.WriteJSON(out, rep); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, report.RenderTable(rep, prompt.IsTerminal(out)))
		fmt.Fprintln(out, rep.Message())
	}
	if rep.Verdict() == report.VerdictFailed {
		return errBatchFailed
	}
	return nil
}

// progressWriter returns the terminal the aggregate bar draws on, or nil when
// the bar would corrupt redirected or machine-readable output.
func progressWriter(errOut io.Writer, cfg *config.Config, opts downloadOptions) io.Writer {
	if opts.jsonOut || opts.noProgress {
		return nil
	}
	if strings.EqualFold(cfg.Logging.Format, "json") {
		return nil
	}
	if errOut != io.Writer(os.Stderr) || !prompt.IsTerminal(os.Stderr) {
		return nil
	}
	return errOut
}

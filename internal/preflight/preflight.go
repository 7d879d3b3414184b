package preflight

import (
	"context"

	"shuffle/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes all applicable preflight checks for the given config and
// destination directory. An empty destination falls back to the configured
// download directory.
func RunAll(ctx context.Context, cfg *config.Config, destination string) []Result {
	if cfg == nil {
		return nil
	}
	if destination == "" {
		destination = cfg.Paths.DownloadDir
	}

	var results []Result

	// Destination directory (always checked)
	dest := CheckDirectoryAccess("Destination directory", destination)
	results = append(results, dest)
	if dest.Passed {
		results = append(results, CheckFreeSpace("Free space", destination, cfg.MinFreeBytes()))
	}

	// Resolution cache (when enabled)
	if cfg.Cache.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}

	results = append(results, CheckIndex(ctx, cfg.Index.BaseURL, cfg.Index.UserAgent))
	return results
}

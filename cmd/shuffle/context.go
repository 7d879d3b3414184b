package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"shuffle/internal/config"
	"shuffle/internal/logging"
	"shuffle/internal/sourcecache"
	"shuffle/internal/streams"
)

type commandContext struct {
	configFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	// streamProvider builds the streaming collaborator for a download.
	streamProvider func(cfg *config.Config) streams.Provider
}

func newCommandContext() *commandContext {
	return &commandContext{
		streamProvider: func(*config.Config) streams.Provider {
			return streams.NewYouTube(nil)
		},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the command logger. Output redirected away from the process
// stderr (tests, pipes set through cobra) skips the log file tee.
func (c *commandContext) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	errOut := cmd.ErrOrStderr()
	if errOut == io.Writer(os.Stderr) {
		return logging.NewFromConfig(cfg)
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: errOut,
	})
}

func (c *commandContext) openCache(cfg *config.Config) (*sourcecache.Store, error) {
	store, err := sourcecache.Open(cfg.CachePath())
	if err != nil {
		return nil, fmt.Errorf("open resolution cache: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIndex(); err != nil {
		return err
	}
	if err := c.validateTransfer(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DownloadDir == "" {
		return errors.New("paths.download_dir must be set")
	}
	if c.Cache.Enabled && c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set when cache.enabled is true")
	}
	return nil
}

func (c *Config) validateIndex() error {
	parsed, err := url.Parse(c.Index.BaseURL)
	if err != nil {
		return fmt.Errorf("index.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("index.base_url must use http or https, got %q", c.Index.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("index.base_url must include a host, got %q", c.Index.BaseURL)
	}
	if !strings.Contains(c.Index.LookupPath, indexLookupPlaceholder) {
		return fmt.Errorf("index.lookup_path must contain %s placeholder", indexLookupPlaceholder)
	}
	return nil
}

func (c *Config) validateTransfer() error {
	if c.Transfer.ChunkSize < minChunkSize || c.Transfer.ChunkSize > maxChunkSize {
		return fmt.Errorf("transfer.chunk_size must be between %d and %d bytes", minChunkSize, maxChunkSize)
	}
	if c.Transfer.MaxParallel < 0 {
		return errors.New("transfer.max_parallel must be zero (unbounded) or positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxStageRetries < 0 || c.Workflow.MaxStageRetries > maxWorkflowRetryConfiguration {
		return fmt.Errorf("workflow.max_stage_retries must be between 0 and %d", maxWorkflowRetryConfiguration)
	}
	if c.Workflow.MaxBatchRestarts < 0 || c.Workflow.MaxBatchRestarts > maxWorkflowRetryConfiguration {
		return fmt.Errorf("workflow.max_batch_restarts must be between 0 and %d", maxWorkflowRetryConfiguration)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIndex()
	c.normalizeStreaming()
	c.normalizeTransfer()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIndex() {
	if value, ok := os.LookupEnv("SHUFFLE_INDEX_URL"); ok && strings.TrimSpace(value) != "" {
		c.Index.BaseURL = value
	}
	c.Index.BaseURL = strings.TrimRight(strings.TrimSpace(c.Index.BaseURL), "/")
	if c.Index.BaseURL == "" {
		c.Index.BaseURL = defaultIndexBaseURL
	}
	c.Index.LookupPath = strings.TrimSpace(c.Index.LookupPath)
	if c.Index.LookupPath == "" {
		c.Index.LookupPath = defaultIndexLookupPath
	}
	if !strings.HasPrefix(c.Index.LookupPath, "/") {
		c.Index.LookupPath = "/" + c.Index.LookupPath
	}
	c.Index.UserAgent = strings.TrimSpace(c.Index.UserAgent)
	if c.Index.UserAgent == "" {
		c.Index.UserAgent = defaultIndexUserAgent
	}
	if c.Index.TimeoutSeconds <= 0 {
		c.Index.TimeoutSeconds = defaultIndexTimeoutSeconds
	}
}

func (c *Config) normalizeStreaming() {
	if c.Streaming.TimeoutSeconds <= 0 {
		c.Streaming.TimeoutSeconds = defaultStreamingTimeout
	}
}

func (c *Config) normalizeTransfer() {
	if c.Transfer.ChunkSize == 0 {
		c.Transfer.ChunkSize = defaultChunkSize
	}
	if c.Transfer.MinFreeMiB < 0 {
		c.Transfer.MinFreeMiB = 0
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("SHUFFLE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	if level == "warning" {
		level = "warn"
	}
	c.Logging.Level = level
}

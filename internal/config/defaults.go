package config

const (
	defaultConfigPath             = "~/.config/shuffle/config.toml"
	defaultDownloadDir            = "~/Music"
	defaultLogDir                 = "~/.local/share/shuffle/logs"
	defaultIndexBaseURL           = "https://api.spotifydown.com"
	defaultIndexLookupPath        = "/getId/{id}"
	defaultIndexUserAgent         = "Shuffle/dev"
	defaultIndexTimeoutSeconds    = 15
	defaultStreamingTimeout       = 30
	defaultChunkSize              = 8192
	defaultMaxStageRetries        = 1
	defaultMaxBatchRestarts       = 1
	defaultNotifyRequestTimeout   = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultMinFreeMiB             = 256
	indexLookupPlaceholder        = "{id}"
	maxChunkSize                  = 4 << 20
	minChunkSize                  = 512
	maxWorkflowRetryConfiguration = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
			StateDir:    defaultStateDir(),
		},
		Index: Index{
			BaseURL:        defaultIndexBaseURL,
			LookupPath:     defaultIndexLookupPath,
			UserAgent:      defaultIndexUserAgent,
			TimeoutSeconds: defaultIndexTimeoutSeconds,
		},
		Streaming: Streaming{
			TimeoutSeconds: defaultStreamingTimeout,
		},
		Transfer: Transfer{
			ChunkSize:         defaultChunkSize,
			OverwriteExisting: true,
			MinFreeMiB:        defaultMinFreeMiB,
		},
		Workflow: Workflow{
			MaxStageRetries:  defaultMaxStageRetries,
			MaxBatchRestarts: defaultMaxBatchRestarts,
		},
		Cache: Cache{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

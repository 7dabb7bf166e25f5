package config

const (
	defaultDataDir            = "~/.local/share/noticeboard"
	defaultLogDir             = "~/.local/share/noticeboard/logs"
	defaultAPIBind            = "127.0.0.1:7342"
	defaultMinCaptionLength   = 20
	defaultMaxAgeDays         = 730
	defaultStartHour          = 10
	defaultDedupWindowSeconds = 300
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Ingest: Ingest{
			MinCaptionLength:   defaultMinCaptionLength,
			MaxAgeDays:         defaultMaxAgeDays,
			DefaultStartHour:   defaultStartHour,
			DedupWindowSeconds: defaultDedupWindowSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Discoveries:    true,
			IngestSummary:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

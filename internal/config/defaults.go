package config

const (
	defaultLogDir        = "~/.local/share/stagehand/logs"
	defaultDataDir       = "~/.local/share/stagehand"
	defaultAPIBind       = "127.0.0.1:7493"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultReconnect     = 30
	defaultClassifierURL = "https://api.deepseek.com"
	defaultModel         = "deepseek-chat"
	defaultTimeout       = 10
	defaultDefaultScene  = "Main"
	defaultPlayback      = 30

	defaultConfidenceThreshold = 0.6
	defaultCacheTTLSeconds     = 300
	defaultRateWindowSeconds   = 60
	defaultRateMax             = 2
	defaultQueueBound          = 10

	// OverflowDropNewest rejects the incoming request when the pending queue
	// is full; OverflowDropOldest evicts the front to make room.
	OverflowDropNewest = "drop-newest"
	OverflowDropOldest = "drop-oldest"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			DataDir: defaultDataDir,
			APIBind: defaultAPIBind,
		},
		Chat: Chat{
			ReconnectDelay: defaultReconnect,
			ScriptInterval: 1000,
		},
		Classifier: Classifier{
			BaseURL:        defaultClassifierURL,
			Model:          defaultModel,
			TimeoutSeconds: defaultTimeout,
			Prefilter:      true,
		},
		Display: Display{
			DefaultScene:    defaultDefaultScene,
			PlaybackSeconds: defaultPlayback,
		},
		Engine: Engine{
			ConfidenceThreshold:    defaultConfidenceThreshold,
			CacheTTLSeconds:        defaultCacheTTLSeconds,
			RateLimitWindowSeconds: defaultRateWindowSeconds,
			RateLimitMax:           defaultRateMax,
			QueueBound:             defaultQueueBound,
			QueueOverflowPolicy:    OverflowDropNewest,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Errors:         true,
			Lifecycle:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

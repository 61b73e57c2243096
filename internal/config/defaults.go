package config

const (
	defaultDataDir         = "~/.local/share/clipkeep"
	defaultLogDir          = "~/.local/share/clipkeep/logs"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultSessionTTLHours = 72
	// 50 MiB: round policy number, not a derived invariant.
	defaultMediaFullPayloadMaxBytes = 50 * 1024 * 1024
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Retention: Retention{
			SessionTTLHours: defaultSessionTTLHours,
		},
		Tiering: Tiering{
			MediaFullPayloadMaxBytes: defaultMediaFullPayloadMaxBytes,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

package config

const (
	defaultConfigPath      = "~/.config/discchapters/config.toml"
	defaultProjectConfig   = "discchapters.toml"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultOutputFormat    = OutputAuto
	defaultSweepMinSeconds = 3.0
	defaultSweepRatio      = 0.02
	defaultCachePath       = "~/.cache/discchapters/chapters.db"
	defaultScanWorkers     = 4
	maxScanWorkers         = 64
)

// Output formats accepted by [output] format and the --format flag.
const (
	OutputAuto  = "auto"
	OutputTable = "table"
	OutputTSV   = "tsv"
	OutputJSON  = "json"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
		Bluray: Bluray{
			SweepMinSeconds: defaultSweepMinSeconds,
			SweepRatio:      defaultSweepRatio,
		},
		Cache: Cache{
			Enabled: false,
			Path:    defaultCachePath,
		},
		Scan: Scan{
			Workers: defaultScanWorkers,
		},
	}
}

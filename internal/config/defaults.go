package config

const (
	defaultOutputTemplate    = "<year> - <album>/<no>. <title>.<ext>"
	defaultOverwrite         = "prompt"
	defaultEncoderBinary     = "ffmpeg"
	defaultJobTimeoutSeconds = 600
	defaultLogDir            = "~/.local/share/hermes/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultJournalPath       = "~/.local/share/hermes/journal.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Output: Output{
			Directory: ".",
			Template:  defaultOutputTemplate,
			Overwrite: defaultOverwrite,
		},
		// Preset stays empty: recognized source containers are stream
		// copied and everything else falls back to the flac preset.
		Encoder: Encoder{
			FFmpeg: defaultEncoderBinary,
		},
		Split: Split{
			Jobs:              0,
			JobTimeoutSeconds: defaultJobTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
		Journal: Journal{
			Enabled: true,
			Path:    defaultJournalPath,
		},
	}
}

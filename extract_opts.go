package gob

import "log/slog"

// defaultExtractWorkers is the write concurrency used when no option
// overrides it.
const defaultExtractWorkers = 4

// extractConfig holds configuration for archive extraction.
type extractConfig struct {
	overwrite bool
	workers   int
	logger    *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (cfg *extractConfig) log() *slog.Logger {
	if cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.logger
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

// ExtractWithOverwrite allows overwriting existing files.
// By default an existing file fails the extraction with fs.ErrExist.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.overwrite = overwrite
	}
}

// ExtractWithWorkers sets the number of concurrent file writes.
// Values below 2 write serially. The default is 4.
func ExtractWithWorkers(n int) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.workers = n
	}
}

// ExtractWithLogger sets the logger for extraction.
// If not set, logging is disabled.
func ExtractWithLogger(logger *slog.Logger) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.logger = logger
	}
}

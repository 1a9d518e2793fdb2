package gob

import "log/slog"

// importConfig holds configuration for directory import.
type importConfig struct {
	maxFiles int
	workers  int
	logger   *slog.Logger
}

// ImportOption configures ImportDir.
type ImportOption func(*importConfig)

// ImportWithMaxFiles caps the number of files an import may collect.
// Zero or negative means no limit, which is the default.
func ImportWithMaxFiles(n int) ImportOption {
	return func(cfg *importConfig) {
		cfg.maxFiles = n
	}
}

// ImportWithWorkers sets the number of concurrent file content reads.
// Values below 2 read serially, which is the default. Concurrency does
// not change the resulting record order.
func ImportWithWorkers(n int) ImportOption {
	return func(cfg *importConfig) {
		cfg.workers = n
	}
}

// ImportWithLogger sets the logger for import operations.
// If not set, logging is disabled.
func ImportWithLogger(logger *slog.Logger) ImportOption {
	return func(cfg *importConfig) {
		cfg.logger = logger
	}
}

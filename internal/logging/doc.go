// Package logging builds slog loggers with consistent formats and provides
// standardized attribute helpers used across clipkeep components.
package logging

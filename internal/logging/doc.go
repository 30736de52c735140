// Package logging constructs slog loggers with console or JSON output and
// provides attribute helpers with standardized field names.
package logging

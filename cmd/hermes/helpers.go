package main

import (
	"context"
	"log/slog"

	"hermes/internal/config"
	"hermes/internal/journal"
	"hermes/internal/logging"
	"hermes/internal/split"
)

// recordRun persists a run to the journal. Journaling never fails a split;
// errors are logged and dropped.
func recordRun(ctx context.Context, logger *slog.Logger, cfg *config.Config, run journal.Run, outcomes []split.Outcome) {
	if !cfg.Journal.Enabled {
		return
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		logger.Warn("journal unavailable", logging.Error(err))
		return
	}
	defer store.Close()
	// Cancelled runs are still worth recording.
	if err := store.RecordRun(context.WithoutCancel(ctx), run, outcomes); err != nil {
		logger.Warn("journal write failed", logging.Error(err))
	}
}

func presetLabel(enc split.Encoder) string {
	if len(enc.RawArgs) > 0 {
		return "(raw)"
	}
	if enc.Preset != "" {
		return enc.Preset
	}
	return "(copy or flac)"
}

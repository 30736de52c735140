package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"hermes/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent split runs from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return fmt.Errorf("journaling is disabled; enable [journal] in the config to record runs")
			}
			store, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				return renderRunTracks(cmd, store, runID)
			}
			return renderRecentRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-track outcomes for one run")
	return cmd
}

func renderRecentRuns(cmd *cobra.Command, store *journal.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.StartedAt.Local().Format(time.DateTime),
			run.Cuesheet,
			run.Preset,
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
			run.ID,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]column{
			textCol("Started"), textCol("Cuesheet"), textCol("Preset"),
			numCol("OK"), numCol("Skipped"), numCol("Failed"), textCol("Run"),
		},
		rows,
	))
	return nil
}

func renderRunTracks(cmd *cobra.Command, store *journal.Store, runID string) error {
	tracks, err := store.TracksForRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no tracks recorded for run %s", runID)
	}
	rows := make([][]string, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, []string{
			strconv.Itoa(track.TrackNumber),
			track.Title,
			track.Outcome,
			track.OutputPath,
			track.Error,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]column{numCol("Track"), textCol("Title"), textCol("Outcome"), textCol("Output"), textCol("Error")},
		rows,
	))
	return nil
}

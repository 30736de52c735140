package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hermes/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that required external tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status := deps.FFmpeg(cfg.Encoder.FFmpeg)

			rows := [][]string{{
				status.Name,
				availability(status.Available),
				firstOf(status.Detail, status.Command),
			}}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{textCol("Dependency"), textCol("Status"), textCol("Detail")},
				rows,
			))
			if !status.Available {
				return fmt.Errorf("missing required dependency: %s", status.Name)
			}
			return nil
		},
	}
}

func availability(ok bool) string {
	if ok {
		return "found"
	}
	return "missing"
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

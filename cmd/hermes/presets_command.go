package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"hermes/internal/presets"
)

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "presets",
		Short:       "List the available encoding presets",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, p := range presets.All() {
				name := p.Name
				if name == presets.DefaultName {
					name += " (default)"
				}
				rows = append(rows, []string{name, "." + p.Ext, strings.Join(p.Args, " ")})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]column{textCol("Preset"), textCol("Extension"), textCol("FFmpeg arguments")},
				rows,
			))
			fmt.Fprintln(out, "Sources whose codec already matches the preset container are stream")
			fmt.Fprintln(out, "copied instead of re-encoded; pass --no-copy to force re-encoding.")
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hermes/internal/nametemplate"
)

func newTemplateHelpCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "template-help",
		Short:       "Explain the naming template placeholders",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := [][]string{
				{"<artist>", "Track performer, falling back to the album performer"},
				{"<album>", "Album title from the cuesheet"},
				{"<title>", "Track title"},
				{"<year>", "Year extracted from the cuesheet's REM DATE"},
				{"<genre>", "Genre from the cuesheet's REM GENRE"},
				{"<no>", "Track number, zero padded to the width of the last track"},
				{"<ext>", "Output extension chosen by the preset or --ext"},
				{"<dir-name>", "Name of the directory containing the cuesheet"},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Templates render one relative path per track under the output")
			fmt.Fprintln(out, "directory; use / to create subdirectories. Placeholders are")
			fmt.Fprintln(out, "case-insensitive, and a placeholder with no value renders empty.")
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]column{textCol("Placeholder"), textCol("Value")},
				rows,
			))
			fmt.Fprintf(out, "\nDefault template:\n  %s\n", nametemplate.Default)
			fmt.Fprintln(out, "\nExample:")
			fmt.Fprintln(out, `  hermes split album.cue -t "<artist>/<year> - <album>/<no>. <title>.<ext>"`)
			return nil
		},
	}
}

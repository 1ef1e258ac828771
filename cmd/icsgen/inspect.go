package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"icsgen/internal/ics"
)

func newInspectCmd(root *rootFlags) *cobra.Command {
	var occurrences int

	cmd := &cobra.Command{
		Use:   "inspect <file.ics>",
		Short: "Decode an ICS file and print its first event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, loc, err := loadConfig(*root)
			if err != nil {
				return err
			}

			ev, err := decodeFile(args[0], loc)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Title:       %s\n", ev.Summary)
			fmt.Fprintf(w, "Description: %s\n", strings.ReplaceAll(ev.Description, "\n", "\n             "))
			if ev.AllDay {
				fmt.Fprintf(w, "Start:       %s (all day)\n", ev.Start.Format("2006-01-02"))
			} else {
				fmt.Fprintf(w, "Start:       %s %s\n", ev.Start.Format("2006-01-02 15:04"), ev.Start.Location())
			}
			fmt.Fprintf(w, "Duration:    %s\n", ics.FormatDuration(ev.Duration))
			if ev.Location != "" {
				fmt.Fprintf(w, "Location:    %s\n", ev.Location)
			}
			if len(ev.Recurrence) > 0 {
				fmt.Fprintf(w, "Recurrence:  %s\n", ics.FormatRecurrence(ev.Recurrence))
			}
			return printPreview(w, ev, occurrences)
		},
	}

	cmd.Flags().IntVarP(&occurrences, "occurrences", "n", 5, "Number of upcoming occurrences to list")
	return cmd
}

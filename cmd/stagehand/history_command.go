package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stagehand/internal/events"
	"stagehand/internal/journal"
)

var errJournalDisabled = errors.New("journal is disabled (set journal.enabled = true)")

type runDetail struct {
	journal.Run `yaml:",inline"`
	Events      []events.Event `json:"events" yaml:"events"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var output string
	var limit int
	var kindFilter string

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded passes, or the events of one pass",
		Long: "Without arguments, list the most recent passes from the journal. With a run id\n" +
			"(or a unique prefix of one), list that pass's events in emission order.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			kind, err := parseEventKind(kindFilter)
			if err != nil {
				return err
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store == nil {
				return errJournalDisabled
			}
			defer store.Close()

			if len(args) == 1 {
				return showRun(cmd, store, args[0], kind, format)
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if format != outputTable {
				if runs == nil {
					runs = []journal.Run{}
				}
				return writeStructured(cmd, format, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No passes recorded")
				return nil
			}
			fmt.Fprintln(out, renderRunTable(cmd, runs))
			return nil
		},
	}
	addOutputFlag(cmd, &output)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of passes to list")
	cmd.Flags().StringVar(&kindFilter, "kind", "", "Only show events of this kind")
	return cmd
}

func showRun(cmd *cobra.Command, store *journal.Store, id string, kind events.Kind, format outputFormat) error {
	run, err := store.GetRun(cmd.Context(), strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no pass with id %q", id)
	}
	evts, err := store.RunEvents(cmd.Context(), run.ID, kind)
	if err != nil {
		return err
	}
	if format != outputTable {
		if evts == nil {
			evts = []events.Event{}
		}
		return writeStructured(cmd, format, runDetail{Run: *run, Events: evts})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s over %s\n", run.ID, run.Root)
	fmt.Fprintf(out, "Started: %s  Duration: %s  Status: %s\n", formatTimestamp(run.StartedAt), formatDuration(run.Duration()), run.Status)
	if run.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", run.Error)
	}
	if len(evts) == 0 {
		fmt.Fprintln(out, "No events")
		return nil
	}
	fmt.Fprintln(out, renderEventTable(out, evts))
	return nil
}

func renderRunTable(cmd *cobra.Command, runs []journal.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := string(run.Status)
		if run.DryRun {
			status += " (dry run)"
		}
		warnings := run.Counts[events.MatchNotFound] + run.Counts[events.MergeIncomplete] + run.Counts[events.Failed]
		rows = append(rows, []string{
			shortID(run.ID),
			formatTimestamp(run.StartedAt),
			formatDuration(run.Duration()),
			status,
			strings.Join(run.Phases, ","),
			strconv.Itoa(run.Counts[events.Moved]),
			strconv.Itoa(run.Counts[events.Renamed]),
			strconv.Itoa(run.Counts[events.Deleted]),
			strconv.Itoa(warnings),
		})
	}
	return renderTable(cmd.OutOrStdout(),
		[]string{"Run", "Started", "Duration", "Status", "Phases", "Moved", "Renamed", "Deleted", "Warnings"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func parseEventKind(value string) (events.Kind, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", nil
	}
	for _, kind := range events.Kinds {
		if string(kind) == value {
			return kind, nil
		}
	}
	names := make([]string, 0, len(events.Kinds))
	for _, kind := range events.Kinds {
		names = append(names, string(kind))
	}
	return "", fmt.Errorf("unknown event kind %q (want one of %s)", value, strings.Join(names, ", "))
}

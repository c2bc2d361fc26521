package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stagehand/internal/events"
	"stagehand/internal/telemetry"
	"stagehand/internal/workflow"
)

type runReport struct {
	workflow.Summary `yaml:",inline"`
	Error            string         `json:"error,omitempty" yaml:"error,omitempty"`
	Events           []events.Event `json:"events,omitempty" yaml:"events,omitempty"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var phases []string
	var dryRun bool
	var showEvents bool
	var output string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Normalize, reconcile and garbage collect the artifact tree",
		Long: "Run one pass over the artifact tree. Phases run in order normalize, reconcile, gc.\n" +
			"--dry-run reports reconcile and gc changes without making them and skips normalize.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			selected, err := workflow.ParsePhases(phases)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			index, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			collector := &events.Collector{}
			runner, err := workflow.NewRunner(cfg, index, logger,
				workflow.WithJournal(store),
				workflow.WithMetrics(telemetry.New()),
				workflow.WithSink(collector),
			)
			if err != nil {
				return err
			}

			summary, runErr := runner.Run(cmd.Context(), workflow.RunOptions{Phases: selected, DryRun: dryRun})
			report := runReport{Summary: summary}
			if runErr != nil {
				report.Error = runErr.Error()
			}
			if showEvents || format != outputTable {
				report.Events = collector.Events()
			}
			if runErr != nil && summary.FinishedAt.IsZero() {
				// lock or preflight refused the pass
				return runErr
			}

			if format != outputTable {
				if err := writeStructured(cmd, format, report); err != nil {
					return err
				}
				return runErr
			}
			printRunReport(cmd, report, showEvents)
			return runErr
		},
	}

	cmd.Flags().StringSliceVarP(&phases, "phase", "p", nil, "Phases to run (normalize, reconcile, gc); repeatable or comma separated")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report reconcile and gc changes without making them")
	cmd.Flags().BoolVar(&showEvents, "events", false, "List every event of the pass")
	addOutputFlag(cmd, &output)
	return cmd
}

func printRunReport(cmd *cobra.Command, report runReport, showEvents bool) {
	out := cmd.OutOrStdout()
	mode := ""
	if report.DryRun {
		mode = " (dry run)"
	}
	phaseNames := make([]string, 0, len(report.Phases))
	for _, phase := range report.Phases {
		phaseNames = append(phaseNames, string(phase))
	}
	fmt.Fprintf(out, "Run %s over %s%s\n", shortID(report.RunID), report.Root, mode)
	fmt.Fprintf(out, "Phases: %s  Duration: %s\n", strings.Join(phaseNames, ", "), formatDuration(report.Duration()))

	rows := make([][]string, 0, len(events.Kinds))
	for _, kind := range events.Kinds {
		rows = append(rows, []string{string(kind), strconv.Itoa(report.Counts[kind])})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Event", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	if showEvents && len(report.Events) > 0 {
		fmt.Fprintln(out, renderEventTable(out, report.Events))
	}
	if report.Error != "" {
		fmt.Fprintf(out, "Pass aborted: %s\n", report.Error)
	}
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stagehand/internal/gate"
	"stagehand/internal/preflight"
)

var errRefused = errors.New("one or more titles refused")

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var output string
	var failRefused bool

	cmd := &cobra.Command{
		Use:   "check [title...]",
		Short: "Ask the processing gate whether titles still need processing",
		Long: "With titles, report whether each one may be processed: it must not be denylisted and no\n" +
			"stage artifact under the root may already cover it. Without titles, run the preflight checks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return runPreflightCheck(cmd, ctx, format)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			g := gate.New(cfg.Paths.Root, cfg.Suffixes(), cfg.Gate.Denylist, logger)
			decisions, err := g.Filter(cmd.Context(), args)
			if err != nil {
				return err
			}

			if format != outputTable {
				if err := writeStructured(cmd, format, decisions); err != nil {
					return err
				}
			} else {
				printDecisions(cmd, decisions)
			}

			if failRefused {
				for _, d := range decisions {
					if !d.Allowed {
						return errRefused
					}
				}
			}
			return nil
		},
	}
	addOutputFlag(cmd, &output)
	cmd.Flags().BoolVar(&failRefused, "fail-refused", false, "Exit non-zero when any title is refused")
	return cmd
}

func printDecisions(cmd *cobra.Command, decisions []gate.Decision) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(decisions))
	allowed := 0
	for _, d := range decisions {
		if d.Allowed {
			allowed++
		}
		rows = append(rows, []string{d.Title, yesNo(d.Allowed), string(d.Reason), dashIfEmpty(d.Match)})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Title", "Process", "Reason", "Match"}, rows, nil))
	fmt.Fprintf(out, "%s allowed, %d refused\n", pluralize(allowed, "title", "titles"), len(decisions)-allowed)
}

func runPreflightCheck(cmd *cobra.Command, ctx *commandContext, format outputFormat) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	results := preflight.RunAll(cmd.Context(), cfg)

	if format != outputTable {
		if err := writeStructured(cmd, format, results); err != nil {
			return err
		}
		return preflight.Err(results)
	}

	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{r.Name, status, strings.TrimSpace(r.Detail)})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Check", "Status", "Detail"}, rows, nil))
	return preflight.Err(results)
}

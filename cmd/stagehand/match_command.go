package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stagehand/internal/artifact"
	"stagehand/internal/catalog"
	"stagehand/internal/matcher"
	"stagehand/internal/textutil"
)

type matchReport struct {
	Candidate string          `json:"candidate" yaml:"candidate"`
	Matched   bool            `json:"matched" yaml:"matched"`
	Exact     bool            `json:"exact" yaml:"exact"`
	Record    *catalog.Record `json:"record,omitempty" yaml:"record,omitempty"`
	Directory string          `json:"directory,omitempty" yaml:"directory,omitempty"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var output string
	var scorerName string

	cmd := &cobra.Command{
		Use:   "match <title>",
		Short: "Show which catalog title a filesystem title resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if scorerName == "" {
				scorerName = cfg.Matching.Scorer
			}
			scorer, err := matcher.ParseScorer(scorerName)
			if err != nil {
				return err
			}
			index, err := ctx.loadCatalog()
			if err != nil {
				return err
			}

			report := matchReport{Candidate: textutil.NormalizeTitle(args[0])}
			if rec, ok := matcher.New(index, matcher.WithScorer(scorer)).BestMatchRecord(args[0]); ok {
				report.Matched = true
				report.Exact = rec.Title == report.Candidate
				report.Record = &rec
				report.Directory = artifact.DirName(rec.PublishedDate, rec.Title)
			}

			if format != outputTable {
				return writeStructured(cmd, format, report)
			}
			out := cmd.OutOrStdout()
			if !report.Matched {
				fmt.Fprintf(out, "No catalog title matches %q\n", report.Candidate)
				return nil
			}
			rows := [][]string{
				{"Candidate", report.Candidate},
				{"Title", report.Record.Title},
				{"Exact", yesNo(report.Exact)},
				{"Published", report.Record.PublishedDate},
				{"ID", dashIfEmpty(report.Record.ID)},
				{"Directory", report.Directory},
			}
			fmt.Fprintln(out, renderTable(out, []string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
	addOutputFlag(cmd, &output)
	cmd.Flags().StringVar(&scorerName, "scorer", "", "Override matching.scorer (aligned or tokens)")
	return cmd
}

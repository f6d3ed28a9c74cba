package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"salesmart/internal/config"
	"salesmart/internal/metrics"
	"salesmart/internal/metrics/datadog"
	"salesmart/internal/pipeline"

	// Link every mart backend so storage.kind resolves.
	_ "salesmart/internal/storage/all"
)

func newRunCmd() *cobra.Command {
	var (
		configPath  string
		input       string
		outDir      string
		granularity string
		count       int
		seed        int64
		storageKind string
		storageDSN  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and export artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Flags override file values when set.
			if cmd.Flags().Changed("input") {
				cfg.Source.Path = input
			}
			if cmd.Flags().Changed("out") {
				cfg.Export.Dir = outDir
			}
			if cmd.Flags().Changed("granularity") {
				cfg.Analysis.Granularity = granularity
			}
			if cmd.Flags().Changed("count") {
				cfg.Generator.Count = count
			}
			if cmd.Flags().Changed("seed") {
				cfg.Generator.Seed = seed
			}
			if cmd.Flags().Changed("storage-kind") {
				cfg.Storage.Kind = storageKind
			}
			if cmd.Flags().Changed("storage-dsn") {
				cfg.Storage.DSN = storageDSN
			}

			issues := config.Validate(cfg)
			fatal := false
			for _, is := range issues {
				fmt.Fprintln(cmd.ErrOrStderr(), "config:", is)
				if is.Severity == config.SeverityError {
					fatal = true
				}
			}
			if fatal {
				return fmt.Errorf("invalid configuration (%d issue(s))", len(issues))
			}

			if cfg.Metrics.Backend == "datadog" {
				b, err := datadog.NewBackend(cmd.Context(), datadog.Options{
					JobName:    "salesmart",
					Tags:       datadog.ParseTagsCSV(cfg.Metrics.Tags),
					FlushEvery: time.Duration(cfg.Metrics.FlushSeconds) * time.Second,
				})
				if err != nil {
					return fmt.Errorf("metrics init: %w", err)
				}
				metrics.SetBackend(b)
				defer func() {
					metrics.SetBackend(nil)
					_ = b.Close()
				}()
			}

			res, err := pipeline.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			printSummary(cmd, cfg, res)
			if err := res.Dataset.Err(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; exports are empty\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (YAML)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "input CSV file (default: synthetic generator)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "export", "artifact output directory")
	cmd.Flags().StringVarP(&granularity, "granularity", "g", "month", "period grain: day|week|month|quarter|year")
	cmd.Flags().IntVar(&count, "count", 1000, "generated record count (generator source only)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "generator random seed")
	cmd.Flags().StringVar(&storageKind, "storage-kind", "", "optional mart backend: sqlite|postgres|mssql")
	cmd.Flags().StringVar(&storageDSN, "storage-dsn", "", "mart backend DSN")
	return cmd
}

func printSummary(cmd *cobra.Command, cfg config.Pipeline, res *pipeline.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Run Summary", ""})
	t.AppendRows([]table.Row{
		{"records accepted", len(res.Dataset.Records)},
		{"rows rejected", len(res.Dataset.Rejected)},
		{"analysis tables", len(res.Tables)},
		{"fact rows", len(res.Model.Fact)},
		{"calendar days", len(res.Model.Dates)},
		{"measures", len(res.Measures)},
		{"binding failures", len(res.Failures)},
		{"artifacts", len(res.Manifest.Artifacts)},
		{"export dir", cfg.Export.Dir},
		{"duration", res.Duration.Round(time.Millisecond)},
	})
	if res.StorageRows > 0 {
		t.AppendRow(table.Row{"mart rows loaded", res.StorageRows})
	}
	t.Render()

	for _, f := range res.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "binding failure: template %q: missing %s\n", f.Template, f.Reference)
	}
}

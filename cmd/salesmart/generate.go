package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"salesmart/internal/export"
	"salesmart/internal/generator"
)

func newGenerateCmd() *cobra.Command {
	var (
		count int
		seed  int64
		start string
		end   string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic transaction CSV",
		Long: `Generate writes a synthetic e-commerce sales file in the same layout
the run command ingests. The same seed always produces the same file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := generator.Config{Count: count, Seed: seed}
			if start != "" {
				t, err := time.Parse("2006-01-02", start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				cfg.Start = t
			}
			if end != "" {
				t, err := time.Parse("2006-01-02", end)
				if err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
				cfg.End = t
			}

			records, err := generator.Generate(cfg)
			if err != nil {
				return err
			}
			if err := export.WriteRawCSV(out, records); err != nil {
				return err
			}
			cmd.Printf("wrote %d records to %s\n", len(records), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 1000, "number of records")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&start, "start", "", "window start (YYYY-MM-DD, default: 365 days ago)")
	cmd.Flags().StringVar(&end, "end", "", "window end (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVarP(&out, "out", "o", "sales_synthetic.csv", "output file")
	return cmd
}

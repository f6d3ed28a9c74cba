package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "salesmart",
		Short: "E-commerce sales analytics and Power BI model export",
		Long: `salesmart ingests e-commerce transactions (from a file or the built-in
generator), cleans them, computes analysis tables, derives a star schema
and exports Power-BI-ready artifacts: CSVs, an Excel workbook, DAX
measures, a theme and a run manifest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("salesmart", version)
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/wqlegmed/death-time-calculator/cli/internal/render"
	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
)

func newTablesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the correction factors and phenomenon lookup tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := render.ParseMode(output)
			if err != nil {
				return err
			}
			return render.LookupTables(cmd.OutOrStdout(), mode, estimate.LookupTables())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table|markdown|json")
	return cmd
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/utcban/pkg/report"
)

func rulesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the banned APIs and their rule codes",
		Long: `List the banned datetime APIs, their rule codes and the recommended replacements.

Examples:
  utcban rules              # Table
  utcban rules -f yaml      # YAML, suitable for documentation`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return report.WriteRules(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", report.FormatTable, "output format (table, json, yaml)")

	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/utcban/pkg/syntax"
	"github.com/Sumatoshi-tech/utcban/pkg/syntax/python"
)

func treeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <file.py | ->",
		Short: "Print the syntax tree of a Python file as JSON",
		Long: `Parse a Python file and print the syntax tree the checker walks, as JSON.

The output can be fed back with "utcban check --tree".

Examples:
  utcban tree app/models.py
  cat app/models.py | utcban tree -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, label, err := readInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			root, err := python.NewParser().Parse(cmd.Context(), content)
			if err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}

			return syntax.EncodeJSON(cmd.OutOrStdout(), root)
		},
	}

	return cmd
}

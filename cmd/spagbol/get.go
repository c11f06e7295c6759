package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/spagbol-team/spagbol"
)

func newGetCmd(a *app) *cobra.Command {
	var column string
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print the stored vector of a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseColumn(column)
			if err != nil {
				return err
			}
			return a.withExplorer(func(e *spagbol.Explorer) error {
				vec, ok, err := e.Get(c, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %q in %s", spagbol.ErrNotFound, args[0], c)
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(vec)
			})
		},
	}
	cmd.Flags().StringVar(&column, "column", string(spagbol.ColumnInput), "column to read")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spagbol-team/spagbol"
	"github.com/spagbol-team/spagbol/similarity"
)

func newSimilarCmd(a *app) *cobra.Command {
	var (
		column  string
		k       int
		measure string
	)
	cmd := &cobra.Command{
		Use:   "similar <id>",
		Short: "List the rows most similar to a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseColumn(column)
			if err != nil {
				return err
			}
			m, err := similarity.ByName(measure)
			if err != nil {
				return err
			}
			return a.withExplorer(func(e *spagbol.Explorer) error {
				matches, err := e.Similar(cmd.Context(), c, args[0], k, m)
				if err != nil {
					return err
				}
				for _, match := range matches {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g\n", match.ID, match.Score)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&column, "column", string(spagbol.ColumnInput), "column to search")
	cmd.Flags().IntVarP(&k, "top", "k", 10, "number of results")
	cmd.Flags().StringVar(&measure, "measure", "cosine", "similarity measure: cosine or manhattan")
	return cmd
}

package main

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spagbol-team/spagbol"
)

func newProjectCmd(a *app) *cobra.Command {
	var (
		column string
		all    bool
		out    string
	)
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Reduce columns to 2-D coordinates",
		Long: `Fits a two-component reduction on a column and writes one CSV line per row:
column,id,x,y. With --all both non-empty columns are projected concurrently.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all && cmd.Flags().Changed("column") {
				return errors.New("--all and --column are mutually exclusive")
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			return a.withExplorer(func(e *spagbol.Explorer) error {
				results := make(map[spagbol.Column][]spagbol.Projection)
				if all {
					r, err := e.ProjectAll(cmd.Context())
					if err != nil {
						return err
					}
					results = r
				} else {
					c, err := parseColumn(column)
					if err != nil {
						return err
					}
					p, err := e.Project(cmd.Context(), c)
					if err != nil {
						return err
					}
					results[c] = p
				}
				return writeProjections(w, results)
			})
		},
	}
	cmd.Flags().StringVar(&column, "column", string(spagbol.ColumnInput), "column to project")
	cmd.Flags().BoolVar(&all, "all", false, "project every non-empty column")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write CSV to this file instead of stdout")
	return cmd
}

func writeProjections(w io.Writer, results map[spagbol.Column][]spagbol.Projection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"column", "id", "x", "y"}); err != nil {
		return err
	}
	for _, c := range spagbol.Columns {
		for _, p := range results[c] {
			rec := []string{
				string(c),
				p.ID,
				strconv.FormatFloat(p.X, 'g', -1, 64),
				strconv.FormatFloat(p.Y, 'g', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/spagbol-team/spagbol"
	"github.com/spagbol-team/spagbol/partition"
)

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show partitions and entry counts per column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withExplorer(func(e *spagbol.Explorer) error {
				all := make(map[spagbol.Column]partition.Stats, len(spagbol.Columns))
				for _, c := range spagbol.Columns {
					s, err := e.Store(c)
					if err != nil {
						return err
					}
					all[c] = s.Stats()
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(all)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "COLUMN\tPARTITION\tENTRIES")
				for _, c := range spagbol.Columns {
					st := all[c]
					for _, p := range st.Partitions {
						fmt.Fprintf(w, "%s\t%s\t%d\n", c, p.ID, p.Entries)
					}
					fmt.Fprintf(w, "%s\t(total, dim %d, %s)\t%d\n", c, st.Dimension, st.Codec, st.Entries)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print stats as JSON")
	return cmd
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/spagbol-team/spagbol"
	"github.com/spagbol-team/spagbol/partition"
)

// ingestRow is one JSON line of ingest input.
type ingestRow struct {
	ID     string           `json:"id"`
	Input  partition.Vector `json:"input"`
	Output partition.Vector `json:"output"`
}

func newIngestCmd(a *app) *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Append JSON-lines rows to the data directory",
		Long: `Reads rows of the form {"id": "...", "input": [...], "output": [...]} one per
line from file, or from stdin when file is omitted or "-". Either vector may be
omitted. Rows are appended in batches and the data directory is flushed at the
end.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("embedding-batch-size") {
				batch = a.cfg.EmbeddingBatchSize
			}
			if batch <= 0 {
				return fmt.Errorf("embedding-batch-size must be positive, got %d", batch)
			}

			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			return a.withExplorer(func(e *spagbol.Explorer) error {
				n, err := ingest(cmd, e, bufio.NewReader(r), batch)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ingested %d rows\n", n)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&batch, "embedding-batch-size", 0, "rows per ingest batch (overrides embedding_batch_size)")
	return cmd
}

func ingest(cmd *cobra.Command, e *spagbol.Explorer, r io.Reader, batch int) (int, error) {
	ctx := cmd.Context()
	dec := json.NewDecoder(r)
	rows := make([]spagbol.Row, 0, batch)
	total := 0

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if err := e.Ingest(ctx, rows); err != nil {
			return err
		}
		total += len(rows)
		rows = rows[:0]
		return nil
	}

	for line := 1; ; line++ {
		var in ingestRow
		err := dec.Decode(&in)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, fmt.Errorf("row %d: %w", line, err)
		}
		rows = append(rows, spagbol.Row{ID: in.ID, Input: in.Input, Output: in.Output})
		if len(rows) == batch {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

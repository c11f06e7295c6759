package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spagbol-team/spagbol"
	"github.com/spagbol-team/spagbol/config"
	"github.com/spagbol-team/spagbol/internal/lock"
	"github.com/spagbol-team/spagbol/partition"
)

// app holds the resolved configuration shared by every subcommand.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *spagbol.Logger
	metrics    *partition.BasicMetricsCollector

	// Flag overrides. Applied over the config file in resolve.
	dataDir       string
	partitionSize int
	batchSize     int
	codec         string
	method        string
	logLevel      string
	logFormat     string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "spagbol",
		Short: "Explore embedding datasets on disk",
		Long: `spagbol stores the input and output embeddings of a dataset in fixed-size
partition files and reduces each column to two dimensions for plotting.

Examples:
  spagbol ingest rows.jsonl              # Append JSON-lines rows
  spagbol stats                          # Show partitions per column
  spagbol project --all --out coords.csv # Project both columns
  spagbol similar --column input row-17  # Nearest rows to row-17`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolve(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	f.StringVar(&a.dataDir, "data-dir", "", "data directory (overrides data_dir)")
	f.IntVar(&a.partitionSize, "partition-size", 0, "entries per partition file (overrides partition_size)")
	f.IntVar(&a.batchSize, "batch-size", 0, "vectors per reduction batch (overrides batch_size)")
	f.StringVar(&a.codec, "codec", "", "partition file codec (overrides codec)")
	f.StringVar(&a.method, "method", "", "reduction method: incremental or pca (overrides method)")
	f.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides log_level)")
	f.StringVar(&a.logFormat, "log-format", "", "text or json (overrides log_format)")

	root.AddCommand(
		newIngestCmd(a),
		newGetCmd(a),
		newStatsCmd(a),
		newProjectCmd(a),
		newSimilarCmd(a),
	)
	return root
}

func (a *app) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if flags.Changed("partition-size") {
		cfg.PartitionSize = a.partitionSize
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = a.batchSize
	}
	if flags.Changed("codec") {
		cfg.Codec = a.codec
	}
	if flags.Changed("method") {
		cfg.Method = a.method
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger, err = newLogger(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return err
	}
	a.metrics = &partition.BasicMetricsCollector{}
	return nil
}

// withExplorer locks the data directory, opens an Explorer on it and runs fn.
// Partition state is flushed when fn succeeds.
func (a *app) withExplorer(fn func(*spagbol.Explorer) error) (err error) {
	l, err := lock.Acquire(a.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("%s: %w", a.cfg.DataDir, err)
	}
	defer func() {
		if rerr := l.Release(); err == nil {
			err = rerr
		}
	}()

	e, err := spagbol.Open(a.cfg.DataDir,
		spagbol.WithPartitionSize(a.cfg.PartitionSize),
		spagbol.WithBatchSize(a.cfg.BatchSize),
		spagbol.WithCodec(a.cfg.PartitionCodec()),
		spagbol.WithMethod(spagbol.Method(a.cfg.Method)),
		spagbol.WithLogger(a.logger),
		spagbol.WithMetricsCollector(a.metrics),
	)
	if err != nil {
		return err
	}
	if err := fn(e); err != nil {
		return err
	}
	if err := e.Flush(); err != nil {
		return err
	}
	snap := a.metrics.Snapshot()
	a.logger.Debug("store activity",
		"flushes", snap.Flushes,
		"loads", snap.Loads,
		"page_swaps", snap.PageSwaps,
		"rollovers", snap.Rollovers,
		"bytes_written", snap.BytesWritten,
	)
	return nil
}

func parseColumn(s string) (spagbol.Column, error) {
	for _, c := range spagbol.Columns {
		if string(c) == s {
			return c, nil
		}
	}
	return "", &spagbol.ErrUnknownColumn{Column: spagbol.Column(s)}
}

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/spagbol-team/spagbol"
	"github.com/spagbol-team/spagbol/config"
)

// newLogger builds the CLI logger. Text output goes through tint and is
// colored only when w is a terminal.
func newLogger(w io.Writer, cfg *config.Config) (*spagbol.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if cfg.LogFormat == "json" {
		return spagbol.NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	}

	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
		if !noColor {
			w = colorable.NewColorable(f)
		}
	}
	return spagbol.NewLogger(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	})), nil
}

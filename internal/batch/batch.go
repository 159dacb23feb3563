package batch

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/config"
)

// Run executes a whole batch: unpack the archive, read the table, render
// every row and clean up the temporary directory.
func Run(ctx context.Context, cfg config.Config, renderer Renderer, log zerolog.Logger, onDone func(s Status, done, total int)) (Summary, error) {
	rows, err := ReadRowsFile(cfg.CSVPath)
	if err != nil {
		return Summary{}, err
	}
	log.Info().Int("rows", len(rows)).Str("csv", cfg.CSVPath).Msg("rows loaded")

	work, err := os.MkdirTemp(cfg.WorkDir, "promoreel_")
	if err != nil {
		return Summary{}, err
	}
	defer os.RemoveAll(work)

	if err := ExtractZip(cfg.ZipPath, work); err != nil {
		return Summary{}, fmt.Errorf("extract videos: %w", err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return Summary{}, err
	}

	jobs := Plan(rows, work, NewNamer(cfg.OutputDir))
	runner := &Runner{Renderer: renderer, Workers: cfg.Workers, Log: log, OnDone: onDone}
	return runner.Run(ctx, jobs, cfg.Style, cfg.FontPath)
}

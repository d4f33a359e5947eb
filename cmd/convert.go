package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/squash/internal/formatter"
	"github.com/desertthunder/squash/internal/shared"
	"github.com/desertthunder/squash/internal/tasks"
)

// Convert converts the given files and directories, then saves each result (or one archive) to the output directory.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one file or directory", shared.ErrMissingArgument)
	}

	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	var reportFormat formatter.ReportFormat
	if s := cmd.String("report"); s != "" {
		if reportFormat, err = formatter.ParseReportFormat(s); err != nil {
			return err
		}
	}

	inputs, err := tasks.LoadInputs(paths)
	if err != nil {
		return err
	}

	archive := cmd.Bool("archive")
	open := cmd.Bool("open") || config.Export.OpenAfterSave

	sess, err := r.newSession(ctx, config, open && archive)
	if err != nil {
		return err
	}
	defer sess.Close()

	r.logger.Info("starting conversion", "files", len(inputs), "workers", config.Convert.Workers, "out", config.Convert.OutputDir)
	r.writePlain("Converting %d files...\n\n", len(inputs))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FilterInputs:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.ConvertFiles:
				r.writePlain("   %s\n", update.Message)
			case tasks.AppendResults:
				r.writePlain("\n📦 %s\n", update.Message)
			}
		}
	}()

	result, err := sess.converter.ProcessFiles(ctx, inputs, progressCh)
	close(progressCh)
	<-printed

	if err != nil {
		return err
	}

	if len(result.Converted) > 0 {
		if archive {
			if err := sess.gateway.ExportArchive(ctx); err != nil {
				return err
			}
			r.writePlain("\n✓ Saved %s\n", sess.trigger.PathFor(sess.gateway.ArchiveFilename()))
		} else {
			saved := 0
			for _, c := range result.Converted {
				if err := sess.gateway.ExportResult(ctx, c); err != nil {
					r.logger.Error("failed to save result", "name", c.OutputName(), "error", err)
					r.writePlain("✗ %s: %v\n", c.OutputName(), err)
					continue
				}
				saved++
			}
			r.writePlain("\n✓ Saved %d of %d files to %s\n", saved, len(result.Converted), config.Convert.OutputDir)
		}
	}

	if reportFormat != "" {
		snapshot, err := sess.store.Snapshot(ctx)
		if err != nil {
			return err
		}
		path, err := formatter.WriteReport(snapshot, reportFormat, config.Convert.OutputDir)
		if err != nil {
			return err
		}
		r.writePlain("✓ Report written to %s\n", path)
	}

	r.printSummary(ctx, result, sess)

	if open && !archive && len(result.Converted) > 0 {
		if err := shared.OpenPath(config.Convert.OutputDir); err != nil {
			r.logger.Warn("failed to open output directory", "error", err)
		}
	}
	return nil
}

func (r *Runner) printSummary(ctx context.Context, result *tasks.BatchResult, sess *session) {
	saved, err := sess.store.TotalSavedBytes(ctx)
	if err != nil {
		r.logger.Warn("failed to total savings", "error", err)
		saved = result.SavedBytes()
	}

	r.writePlain("\n")
	r.writePlainHeader("Conversion Complete!")
	r.writePlain("Converted: %d/%d\n", len(result.Converted), result.Submitted)
	r.writePlain("Saved: %s\n", shared.FormatSavedBytes(saved))
	r.writePlain("Duration: %s\n", result.Duration.Round(time.Millisecond))

	if len(result.Rejected) > 0 {
		r.writePlain("\nUnsupported files (%d):\n", len(result.Rejected))
		for _, name := range result.Rejected {
			r.writePlain("  - %s\n", name)
		}
	}
	if len(result.Skipped) > 0 {
		r.writePlain("\nFailed to convert %d files:\n", len(result.Skipped))
		for _, s := range result.Skipped {
			r.writePlain("  - %s: %v\n", s.Name, s.Err)
		}
	}
}

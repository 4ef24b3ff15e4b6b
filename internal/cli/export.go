package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/boothsync/internal/transport"
)

// ExportOptions holds flags for the export subcommands.
type ExportOptions struct {
	*RootOptions
	Output string
}

// ExportResult describes a written export file.
type ExportResult struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
	Records int    `json:"records"`
}

// NewExportCommand creates the export command group.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export responses to a file (admin)",
		Long: `Export every response on this device.

  snapshot  JSON snapshot for importing on another device; marks the
            exported responses as synced
  report    CSV report for spreadsheets; cannot be imported`,
	}
	cmd.AddCommand(newExportSnapshotCommand(rootOpts))
	cmd.AddCommand(newExportReportCommand(rootOpts))
	return cmd
}

func newExportSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write a JSON snapshot for another device",
		Long: `Write a JSON snapshot of every response, then mark them synced.

Without --out the file is named respuestas_<stand>_<date>.json in the
current directory. Use --out - to write to stdout.

Example:
  boothsync export snapshot --pin 1234 --out /media/usb/tablet-3.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRun(rootOpts, func(ctx context.Context, app *App) error {
				return runExport(ctx, opts, app, cmd, "snapshot")
			})(cmdContext(cmd.Context()))
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "output file (- for stdout)")
	return cmd
}

func newExportReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a CSV report",
		Long: `Write a CSV report with one row per response.

Without --out the file is named reporte_<stand>_<date>.csv in the current
directory. Use --out - to write to stdout.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRun(rootOpts, func(ctx context.Context, app *App) error {
				return runExport(ctx, opts, app, cmd, "report")
			})(cmdContext(cmd.Context()))
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "output file (- for stdout)")
	return cmd
}

func runExport(ctx context.Context, opts *ExportOptions, app *App, cmd *cobra.Command, kind string) error {
	cfg, err := app.Settings.GetConfig(ctx)
	if err != nil {
		return commandError("failed to read config", err)
	}

	path := opts.Output
	if path == "" {
		if kind == "snapshot" {
			path = transport.SnapshotFilename(cfg.StandID, exportNow())
		} else {
			path = transport.ReportFilename(cfg.StandID, exportNow())
		}
	}

	sink := transport.WriterSink(cmd.OutOrStdout())
	if path != "-" {
		sink = func(data []byte) error { return writeFileAtomic(path, data) }
	}

	var exp transport.Export
	if kind == "snapshot" {
		exp, err = app.Transport.ExportSnapshot(ctx, sink)
	} else {
		exp, err = app.Transport.ExportReport(ctx, sink)
	}
	if err != nil {
		return commandError("failed to export "+kind, err)
	}
	if path == "-" {
		return nil
	}

	result := ExportResult{Kind: kind, Path: path, Bytes: exp.Bytes, Records: exp.Records}
	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d responses to %s\n", result.Records, result.Path)
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so path either holds the complete export or is untouched.
func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// exportNow dates default export file names.
var exportNow = time.Now

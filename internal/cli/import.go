package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/boothsync/internal/merge"
)

// ImportResult reports the outcome of merging one snapshot file.
type ImportResult struct {
	File       string `json:"file"`
	Added      int    `json:"added"`
	Duplicates int    `json:"duplicates"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <snapshot.json>...",
		Short: "Merge snapshots exported on other devices (admin)",
		Long: `Merge one or more JSON snapshots into this device's store.

Records whose id is already present are skipped, so importing the same file
twice is harmless. Each file is merged atomically: a malformed file changes
nothing and stops the import. Use - to read a snapshot from stdin.

Example:
  boothsync import --pin 1234 tablet-2.json tablet-3.json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRun(rootOpts, func(ctx context.Context, app *App) error {
				return runImport(ctx, rootOpts, app, cmd, args)
			})(cmdContext(cmd.Context()))
		},
	}
	return cmd
}

func runImport(ctx context.Context, opts *RootOptions, app *App, cmd *cobra.Command, files []string) error {
	results := make([]ImportResult, 0, len(files))
	var total merge.Result

	for _, file := range files {
		data, err := readInput(cmd, file)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read "+file, err)
		}
		res, err := app.Transport.Import(ctx, data)
		if err != nil {
			return commandError("failed to import "+file, err)
		}
		results = append(results, ImportResult{File: file, Added: res.Added, Duplicates: res.Duplicates})
		total.Added += res.Added
		total.Duplicates += res.Duplicates
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(results)
	}
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%s: %d added, %d duplicates\n", r.File, r.Added, r.Duplicates)
	}
	if len(results) > 1 {
		fmt.Fprintf(out, "total: %d added, %d duplicates\n", total.Added, total.Duplicates)
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

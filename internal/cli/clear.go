package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Yes bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every response on this device (admin)",
		Long: `Delete every response on this device. There is no undo: export a
snapshot first. Configuration and the device id are kept.

Requires --yes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRun(rootOpts, func(ctx context.Context, app *App) error {
				return runClear(ctx, opts, app, cmd)
			})(cmdContext(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm irreversible deletion")

	return cmd
}

func runClear(ctx context.Context, opts *ClearOptions, app *App, cmd *cobra.Command) error {
	if !opts.Yes {
		return &ExitError{
			Code:      ExitFailure,
			Message:   "refusing to delete responses without --yes",
			ErrorCode: CodeUnconfirmed,
		}
	}

	pending, err := app.Responses.PendingCount(ctx)
	if err != nil {
		return commandError("failed to count pending responses", err)
	}
	if pending > 0 {
		opts.Logger().Warn("clearing responses that were never exported", "pending", pending)
	}

	if err := app.Responses.ClearAll(ctx); err != nil {
		return commandError("failed to clear responses", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(map[string]int{"discarded_pending": pending})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "All responses deleted.")
	return nil
}

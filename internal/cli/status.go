package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusResult is the pending-sync indicator.
type StatusResult struct {
	DeviceID        string `json:"device_id"`
	DevicePersisted bool   `json:"device_persisted"`
	StandID         string `json:"stand_id"`
	SectorName      string `json:"sector_name"`
	Total           int    `json:"total"`
	Pending         int    `json:"pending"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how many responses are waiting to be exported",
		Long: `Show this device's identity and the number of responses not yet included
in an exported snapshot. Does not require the admin PIN.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, func(ctx context.Context, app *App) error {
				return runStatus(ctx, rootOpts, app, cmd)
			})(cmdContext(cmd.Context()))
		},
	}
	return cmd
}

func runStatus(ctx context.Context, opts *RootOptions, app *App, cmd *cobra.Command) error {
	cfg, err := app.Settings.GetConfig(ctx)
	if err != nil {
		return commandError("failed to read config", err)
	}
	rs, err := app.Responses.Responses(ctx)
	if err != nil {
		return commandError("failed to read responses", err)
	}
	pending, err := app.Responses.PendingCount(ctx)
	if err != nil {
		return commandError("failed to count pending responses", err)
	}
	dev := app.Device.Info(ctx)

	result := StatusResult{
		DeviceID:        dev.ID,
		DevicePersisted: dev.Persisted,
		StandID:         cfg.StandID,
		SectorName:      cfg.SectorName,
		Total:           len(rs),
		Pending:         pending,
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(result)
	}

	out := cmd.OutOrStdout()
	sector := result.SectorName
	if sector == "" {
		sector = "-"
	}
	fmt.Fprintf(out, "Device:  %s", result.DeviceID)
	if !result.DevicePersisted {
		fmt.Fprint(out, " (session only)")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Stand:   %s\n", result.StandID)
	fmt.Fprintf(out, "Sector:  %s\n", sector)
	fmt.Fprintf(out, "Total:   %d\n", result.Total)
	fmt.Fprintf(out, "Pending: %d\n", result.Pending)
	return nil
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/boothsync/internal/survey"
)

// ResponsesOptions holds flags for the responses command.
type ResponsesOptions struct {
	*RootOptions
	PendingOnly bool
}

// NewResponsesCommand creates the responses command.
func NewResponsesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResponsesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "responses",
		Short: "List stored responses (admin)",
		Long: `List every response on this device in the order it was stored, local
submissions and merged imports alike.

Examples:
  boothsync responses --pin 1234
  boothsync responses --pin 1234 --pending --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRun(rootOpts, func(ctx context.Context, app *App) error {
				return runResponses(ctx, opts, app, cmd)
			})(cmdContext(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&opts.PendingOnly, "pending", false, "only responses not yet exported")

	return cmd
}

func runResponses(ctx context.Context, opts *ResponsesOptions, app *App, cmd *cobra.Command) error {
	rs, err := app.Responses.Responses(ctx)
	if err != nil {
		return commandError("failed to read responses", err)
	}
	if opts.PendingOnly {
		pending := make([]survey.Response, 0, len(rs))
		for _, r := range rs {
			if !r.IsSynced() {
				pending = append(pending, r)
			}
		}
		rs = pending
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(rs)
	}

	out := cmd.OutOrStdout()
	if len(rs) == 0 {
		fmt.Fprintln(out, "No responses stored.")
		return nil
	}
	for _, r := range rs {
		mark := " "
		if !r.IsSynced() {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s  %s  %-2d  %s %s <%s>  %s", mark, r.ID, r.Timestamp, r.NPS,
			r.FirstName, r.LastName, r.Email, r.Role)
		if r.InterestedInInfo && len(r.SelectedProducts) > 0 {
			fmt.Fprintf(out, "  [%s]", strings.Join(r.SelectedProducts, ", "))
		}
		fmt.Fprintln(out)
	}
	if opts.Verbose {
		fmt.Fprintln(out, "(* pending export)")
	}
	return nil
}

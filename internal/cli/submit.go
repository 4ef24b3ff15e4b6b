package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/boothsync/internal/kiosk"
	"github.com/roach88/boothsync/internal/survey"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	FirstName  string
	LastName   string
	Email      string
	Role       string
	NPS        int
	Interested bool
	Products   []string
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Record one visitor's survey response",
		Long: `Record a survey response on this device, walking the same two-step form
the kiosk shows: identity first, then score, interest and products.

The response is stamped with a fresh id, this device's id and the configured
sector, and stays pending until the next snapshot export.

Example:
  boothsync submit --first Ana --last Gómez --email ana@example.com \
    --role Productor --nps 9 --interested --product "Pulverizadoras"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts.RootOptions, func(ctx context.Context, app *App) error {
				return runSubmit(ctx, opts, app, cmd)
			})(cmdContext(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&opts.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&opts.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Role, "role", "", fmt.Sprintf("respondent role %v", survey.Roles))
	cmd.Flags().IntVar(&opts.NPS, "nps", survey.NPSUnanswered, "recommendation score 0-10")
	cmd.Flags().BoolVar(&opts.Interested, "interested", false, "visitor wants product information")
	cmd.Flags().StringArrayVar(&opts.Products, "product", nil, "product of interest (repeatable)")

	return cmd
}

func runSubmit(ctx context.Context, opts *SubmitOptions, app *App, cmd *cobra.Command) error {
	form := kiosk.NewForm()

	if err := form.SetIdentity(opts.FirstName, opts.LastName, opts.Email, survey.Role(opts.Role)); err != nil {
		return commandError("invalid response", err)
	}
	if err := form.Next(); err != nil {
		return commandError("invalid response", err)
	}
	if opts.NPS != survey.NPSUnanswered {
		if err := form.SetNPS(opts.NPS); err != nil {
			return commandError("invalid response", err)
		}
	}
	if err := form.SetInterest(opts.Interested); err != nil {
		return commandError("invalid response", err)
	}
	if opts.Interested {
		for _, p := range opts.Products {
			if err := form.ToggleProduct(p); err != nil {
				return commandError("invalid response", err)
			}
		}
	}

	r, err := form.Submit(ctx, app.Responses)
	if err != nil {
		return commandError("failed to save response", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(r)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "¡Muchas gracias! Response %s saved.\n", r.ID)
	return nil
}

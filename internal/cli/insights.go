package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/boothsync/internal/insights"
)

// InsightsOptions holds flags for the insights command.
type InsightsOptions struct {
	*RootOptions
	APIKey  string
	Model   string
	BaseURL string
}

// NewInsightsCommand creates the insights command.
func NewInsightsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsightsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Ask the AI model for an executive summary (admin)",
		Long: `Send role, score and products of every response (no names or emails) to
the Gemini API and print a three-point executive summary in Spanish.

When the model cannot be reached a fixed fallback message is printed; the
command never fails because of the model.

The API key is read from --api-key or ` + EnvAPIKey + `.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			envFallback(cmd.Flags(), "api-key", EnvAPIKey, &opts.APIKey)
			envFallback(cmd.Flags(), "model", EnvModel, &opts.Model)
			envFallback(cmd.Flags(), "base-url", EnvAIBaseURL, &opts.BaseURL)
			return adminRun(rootOpts, func(ctx context.Context, app *App) error {
				return runInsights(ctx, opts, app, cmd)
			})(cmdContext(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "Gemini API key (env "+EnvAPIKey+")")
	cmd.Flags().StringVar(&opts.Model, "model", insights.DefaultModel, "model name (env "+EnvModel+")")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", insights.DefaultBaseURL, "API endpoint root (env "+EnvAIBaseURL+")")
	_ = cmd.Flags().MarkHidden("base-url")

	return cmd
}

func runInsights(ctx context.Context, opts *InsightsOptions, app *App, cmd *cobra.Command) error {
	rs, err := app.Responses.Responses(ctx)
	if err != nil {
		return commandError("failed to read responses", err)
	}

	client := insights.NewClient(opts.APIKey, opts.Model, insights.WithBaseURL(opts.BaseURL))
	summary := insights.NewSummarizer(client, opts.Logger()).Summarize(ctx, rs)

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(map[string]interface{}{"responses": len(rs), "summary": summary})
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}

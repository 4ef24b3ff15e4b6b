package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/boothsync/internal/settings"
	"github.com/roach88/boothsync/internal/survey"
)

// ConfigView is the configuration as shown to the admin, PIN masked.
type ConfigView struct {
	AdminPIN          string   `json:"adminPin"`
	StandID           string   `json:"standId"`
	SectorName        string   `json:"sectorName"`
	AvailableProducts []string `json:"availableProducts"`
}

func viewOf(cfg survey.AppConfig) ConfigView {
	products := cfg.AvailableProducts
	if products == nil {
		products = []string{}
	}
	return ConfigView{
		AdminPIN:          strings.Repeat("*", len([]rune(cfg.AdminPIN))),
		StandID:           cfg.StandID,
		SectorName:        cfg.SectorName,
		AvailableProducts: products,
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change this device's configuration (admin)",
	}

	cmd.AddCommand(newConfigShowCommand(rootOpts))
	cmd.AddCommand(newConfigSetCommand(rootOpts, "set-pin", "Change the admin PIN",
		func(cfg *survey.AppConfig, v string) { cfg.AdminPIN = v }))
	cmd.AddCommand(newConfigSetCommand(rootOpts, "set-stand", "Change the stand id used in export file names",
		func(cfg *survey.AppConfig, v string) { cfg.StandID = v }))
	cmd.AddCommand(newConfigSetCommand(rootOpts, "set-sector", "Change the sector stamped on new responses",
		func(cfg *survey.AppConfig, v string) { cfg.SectorName = settings.SectorLabel(v) }))
	cmd.AddCommand(newConfigProductsCommand(rootOpts))
	cmd.AddCommand(newConfigLoadProfileCommand(rootOpts))

	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the configuration",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRun(rootOpts, func(ctx context.Context, app *App) error {
				cfg, err := app.Settings.GetConfig(ctx)
				if err != nil {
					return commandError("failed to read config", err)
				}
				return outputConfig(cmd, rootOpts, cfg)
			})(cmdContext(cmd.Context()))
		},
	}
}

func newConfigSetCommand(rootOpts *RootOptions, use, short string, set func(*survey.AppConfig, string)) *cobra.Command {
	return &cobra.Command{
		Use:           use + " <value>",
		Short:         short,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			value := strings.TrimSpace(args[0])
			if use == "set-pin" && value == "" {
				return NewExitError(ExitFailure, "admin PIN must not be empty")
			}
			return adminRun(rootOpts, func(ctx context.Context, app *App) error {
				cfg, err := app.Settings.Update(ctx, func(cfg *survey.AppConfig) { set(cfg, value) })
				if err != nil {
					return commandError("failed to save config", err)
				}
				return outputConfig(cmd, rootOpts, cfg)
			})(cmdContext(cmd.Context()))
		},
	}
}

func newConfigProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalog offered on the form",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "add <name>",
		Short:         "Add a product to the catalog",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return NewExitError(ExitFailure, "product name must not be empty")
			}
			return updateCatalog(cmd, rootOpts, func(cfg *survey.AppConfig) bool {
				return settings.AddProduct(cfg, name)
			}, fmt.Sprintf("product %q already in catalog", name))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "remove <name>",
		Short:         "Remove a product from the catalog",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return updateCatalog(cmd, rootOpts, func(cfg *survey.AppConfig) bool {
				return settings.RemoveProduct(cfg, name)
			}, fmt.Sprintf("product %q not in catalog", name))
		},
	})

	return cmd
}

// updateCatalog applies change and saves the result. A change that reports
// false leaves the stored configuration untouched and fails with msg.
func updateCatalog(cmd *cobra.Command, opts *RootOptions, change func(*survey.AppConfig) bool, msg string) error {
	return adminRun(opts, func(ctx context.Context, app *App) error {
		cfg, err := app.Settings.GetConfig(ctx)
		if err != nil {
			return commandError("failed to read config", err)
		}
		if !change(&cfg) {
			return NewExitError(ExitFailure, msg)
		}
		if err := app.Settings.SaveConfig(ctx, cfg); err != nil {
			return commandError("failed to save config", err)
		}
		return outputConfig(cmd, opts, cfg)
	})(cmdContext(cmd.Context()))
}

func newConfigLoadProfileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load-profile <file>",
		Short: "Apply a booth profile (.cue, .json, .yaml)",
		Long: `Apply a booth profile prepared ahead of the event. Fields the profile
leaves out keep their current values.

Example profile (YAML):
  standId: expoagro-2025
  sectorName: Pabellón Verde
  availableProducts:
    - Tractores Serie 8
    - Pulverizadoras`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := settings.LoadProfile(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "invalid profile", err)
			}
			return adminRun(rootOpts, func(ctx context.Context, app *App) error {
				cfg, err := app.Settings.Update(ctx, func(cfg *survey.AppConfig) { *cfg = profile.Apply(*cfg) })
				if err != nil {
					return commandError("failed to save config", err)
				}
				return outputConfig(cmd, rootOpts, cfg)
			})(cmdContext(cmd.Context()))
		},
	}
}

func outputConfig(cmd *cobra.Command, opts *RootOptions, cfg survey.AppConfig) error {
	view := viewOf(cfg)
	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(view)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Admin PIN: %s\n", view.AdminPIN)
	fmt.Fprintf(out, "Stand:     %s\n", view.StandID)
	fmt.Fprintf(out, "Sector:    %s\n", view.SectorName)
	fmt.Fprintln(out, "Products:")
	for _, p := range view.AvailableProducts {
		fmt.Fprintf(out, "  - %s\n", p)
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvDatabase  = "BOOTHSYNC_DB"
	EnvAPIKey    = "GEMINI_API_KEY"
	EnvModel     = "BOOTHSYNC_AI_MODEL"
	EnvAIBaseURL = "BOOTHSYNC_AI_BASE_URL"
)

// DefaultDatabase is the database path used when neither --db nor
// BOOTHSYNC_DB is set.
const DefaultDatabase = "boothsync.db"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	PIN      string
	EnvFile  string

	logger *slog.Logger
}

// Logger returns the command logger, or slog.Default before the root
// command has configured one.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the boothsync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "boothsync",
		Short: "Booth survey store with offline multi-device sync",
		Long: `Collect trade-show booth survey responses on each device and reconcile
them across devices by exchanging snapshot files. No server is involved:
export a snapshot on one tablet, import it on another, and duplicates are
suppressed by response id.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if err := loadEnvFile(opts.EnvFile); err != nil {
				return WrapExitError(ExitCommandError, "failed to load env file", err)
			}
			envFallback(cmd.Flags(), "db", EnvDatabase, &opts.Database)
			configureLogging(opts, cmd.ErrOrStderr())
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", DefaultDatabase, "path to SQLite database (env "+EnvDatabase+", \":memory:\" for a throwaway store)")
	cmd.PersistentFlags().StringVar(&opts.PIN, "pin", "", "admin PIN")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file loaded when present")

	// Add subcommands
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewResponsesCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewInsightsCommand(opts))

	return cmd
}

// Execute runs the root command with args and renders any error in the
// selected output format. It returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	format, _ := cmd.PersistentFlags().GetString("format")
	if !isValidFormat(format) {
		format = "text"
	}
	f := &OutputFormatter{Format: format, Writer: stderr}
	if format == "json" {
		f.Writer = stdout
	}
	_ = f.Error(errorCode(err), err.Error(), nil)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Flag parsing and argument errors come straight from cobra.
		return ExitCommandError
	}
	return exitErr.Code
}

// loadEnvFile loads path into the process environment when it exists.
// Variables already set are left alone.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// envFallback copies env into *dst when the named flag was not set.
func envFallback(flags *pflag.FlagSet, name, env string, dst *string) {
	if f := flags.Lookup(name); f != nil && f.Changed {
		return
	}
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

// configureLogging installs a text handler on w, at Debug with --verbose.
func configureLogging(opts *RootOptions, w io.Writer) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	opts.logger = slog.New(handler)
	slog.SetDefault(opts.logger)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

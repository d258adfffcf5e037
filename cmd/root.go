package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/libbycheck/internal/config"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "libbycheck",
		Short: "Check a reading list against a library's Libby catalog",
		Long: `Libbycheck looks up every book on a reading list in a library's
OverDrive (Libby) catalog and reports whether the ebook and audiobook
editions can be borrowed now, have a waitlist, or are not offered.

Settings come from an optional YAML file (--config), LIBBY_* environment
variables (a .env file is read if present) and flags, in that order.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			logLevel := slog.LevelInfo
			if verbose {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("library", "", "Library id as used in Libby URLs (e.g. sapln-adelaide)")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newProbeCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// loadConfig builds the configuration for a command: file, then
// environment, then any flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("library") {
		cfg.LibraryID, _ = flags.GetString("library")
	}
	if f := flags.Lookup("delay"); f != nil && f.Changed {
		cfg.Delay, _ = flags.GetDuration("delay")
	}
	if f := flags.Lookup("shelf"); f != nil && f.Changed {
		cfg.Shelf, _ = flags.GetString("shelf")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

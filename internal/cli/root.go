package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	CatalogDir string
	StorePath  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the factoryledger CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "factoryledger",
		Short:   "factoryledger - production graph ledger",
		Long:    "Edit, balance and audit factory production graphs: nested groups of buildings with their power and item rates.",
		Version: accounting.AppVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./factoryledger.yaml)")
	cmd.PersistentFlags().StringVar(&opts.CatalogDir, "catalog", "", "catalog .cue file or directory (overrides catalog.dir)")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "", "SQLite store path (overrides store.path)")

	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewBalanceCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the output formatter for cmd. Verbose logs go to stderr
// so they never corrupt JSON output.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig loads the config file and environment, then applies the
// --catalog and --store overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.CatalogDir != "" {
		cfg.Catalog.Dir = o.CatalogDir
	}
	if o.StorePath != "" {
		cfg.Store.Path = o.StorePath
	}
	return cfg, nil
}

// logger builds the slog logger for cmd. --verbose lowers the level to
// debug whatever the config says.
func (o *RootOptions) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	lc := cfg.Logging
	if o.Verbose {
		lc.Level = "debug"
	}
	return lc.NewLogger(cmd.ErrOrStderr())
}

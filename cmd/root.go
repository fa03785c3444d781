// =============================================================================
// Finance Sheet Normalizer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (normalizer)
//   ├── ingestCmd    (normalizer ingest)
//   ├── reconcileCmd (normalizer reconcile)
//   ├── inspectCmd   (normalizer inspect)
//   └── versionCmd   (normalizer version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the main configuration and the source profiles
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging regardless of log_level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "normalizer",
	Short: "Finance Sheet Normalizer - Turn recurring finance reports into relational tables",
	Long: `Finance Sheet Normalizer reads the recurring finance spreadsheets (BFKO
loan installments, SPPD travel expenses, CC credit-card settlements and
Service Fee merchant reports), finds their tables without a fixed layout,
and stores one normalized record per installment, trip, settlement line
and booking.

Key Features:
  - Header, section and month-column detection per report template
  - Locale-aware amount and date parsing (Indonesian month names, serial dates)
  - Hotel and flight description decomposition
  - Row-level error isolation with a per-run error log
  - Reconciliation of CC sheets against their printed grand totals

Example Usage:
  normalizer ingest                         # Ingest every document in the input directory
  normalizer ingest --file "SPPD Juli.xlsx" # Ingest one document
  normalizer reconcile --file "CC Juli.xlsx" --expect 1548732172
  normalizer inspect --file "BFKO 2024.xlsx"`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the command tree. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file; built-in defaults apply when it does not exist",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// environment is what every command needs before it starts.
type environment struct {
	config   *config.MainConfig
	profiles config.Profiles
	log      zerolog.Logger
	ctx      context.Context
}

// loadEnvironment loads the configuration and profiles and builds the logger.
func loadEnvironment() (*environment, error) {
	mainConfig, err := config.LoadMainConfig(cfgFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		mainConfig = config.DefaultMainConfig()
	case err != nil:
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := mainConfig.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(level)

	profiles, err := config.LoadSourceProfiles(mainConfig.ProfilesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load source profiles: %w", err)
	}

	log.Debug().
		Str("config", cfgFile).
		Int("profiles", len(profiles)).
		Str("database", mainConfig.DatabasePath).
		Msg("Configuration loaded")

	return &environment{
		config:   mainConfig,
		profiles: profiles,
		log:      log,
		ctx:      logger.WithContext(context.Background(), log),
	}, nil
}

// parseSource validates a --source flag value.
func parseSource(value string) (config.SourceKind, error) {
	if value == "" {
		return "", nil
	}
	for _, kind := range config.Kinds {
		if string(kind) == value {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown source %q (expected one of %v)", value, config.Kinds)
}

// =============================================================================
// Finance Sheet Normalizer - Configuration Module
// =============================================================================
//
// This module loads the application configuration and the per-source-type
// extraction profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, database, logging, policies
//   2. Source Profiles (profiles/*.yaml): overrides for the built-in BFKO,
//      SPPD, CC and Service Fee profiles (profiles.go)
//
// A missing profiles directory is fine: the built-in profiles describe the
// report templates the organization currently receives.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for .xlsx and .csv documents.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives logs and CSV exports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives documents after a successful run.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ProfilesDir holds optional source profile overrides.
	// Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir"`

	// =========================================================================
	// STORAGE SETTINGS
	// =========================================================================

	// DatabasePath is the SQLite file normalized records are upserted into.
	// Default: "./output/normalizer.db"
	DatabasePath string `yaml:"database_path"`

	// UpdateExisting overwrites records whose natural key already exists.
	// When false such records are counted as skipped.
	// Default: true
	UpdateExisting *bool `yaml:"update_existing"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat names exported CSV files.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {source}    - Source profile name
	//   {table}     - Canonical table name
	// Default: "{table}_{timestamp}.csv"
	OutputNameFormat string `yaml:"output_name_format"`

	// ExportCSV writes normalized tables next to the database.
	// Default: false
	ExportCSV bool `yaml:"export_csv"`

	// ArchiveProcessed moves documents to InputArchiveDir after a run
	// without fatal errors.
	// Default: false
	ArchiveProcessed bool `yaml:"archive_processed"`

	// CSV controls how .csv documents are read.
	CSV CSVSettings `yaml:"csv"`
}

// CSVSettings describes the dialect of CSV exports.
type CSVSettings struct {
	// Delimiter is the field separator: ",", ";", "tab" or "|".
	Delimiter string `yaml:"delimiter"`

	// Encoding is "UTF-8", "Windows-1252" or "ISO-8859-1".
	Encoding string `yaml:"encoding"`
}

// ShouldUpdateExisting resolves the UpdateExisting default.
func (c *MainConfig) ShouldUpdateExisting() bool {
	return c.UpdateExisting == nil || *c.UpdateExisting
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct with defaults applied.
//   - An error if the file cannot be read or parsed.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultMainConfig returns the configuration used when no file exists.
func DefaultMainConfig() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.DatabasePath == "" {
		config.DatabasePath = "./output/normalizer.db"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{table}_{timestamp}.csv"
	}
	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ","
	}
	if config.CSV.Encoding == "" {
		config.CSV.Encoding = "UTF-8"
	}
}

// validateMainConfig checks values and creates the working directories.
func validateMainConfig(config *MainConfig) error {
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	dirs := []string{
		config.InputDir,
		config.OutputDir,
	}
	if config.ArchiveProcessed {
		dirs = append(dirs, config.InputArchiveDir)
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

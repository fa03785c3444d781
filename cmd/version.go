// =============================================================================
// Finance Sheet Normalizer - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   normalizer version
//
// OUTPUT:
//   Finance Sheet Normalizer
//   Version:    1.2.0
//   Build Date: 2025-08-01
//   Go Version: go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/finance-sheet-normalizer/cmd.Version=1.2.0'"

// Version is the application version.
// Set at build time using ldflags.
var Version = "1.2.0"

// BuildDate is the date the application was built.
// Set at build time using ldflags.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and source kinds.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Finance Sheet Normalizer")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		fmt.Print("Profiles:  ")
		for _, kind := range config.Kinds {
			fmt.Printf(" %s", kind)
		}
		fmt.Println()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}

// =============================================================================
// Finance Sheet Normalizer - Inspect Command
// =============================================================================
//
// This file defines the 'inspect' command. It prints what the structural
// scanner finds in each sheet of a document: the profile, the section and
// header rows, the mapped columns and the BFKO month blocks. Use it to see
// why a sheet was ignored or a column was missed.
//
// COMMAND USAGE:
//   normalizer inspect --file "BFKO 2024.xlsx" [--source bfko]
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/ingest"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/store"
)

var (
	inspectFile   string
	inspectSource string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the structure detected in a document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect()
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectFile, "file", "", "Document to inspect")
	inspectCmd.Flags().StringVar(&inspectSource, "source", "", "Force a source profile: bfko, sppd, cc or service_fee")
	inspectCmd.MarkFlagRequired("file")
}

func runInspect() error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	source, err := parseSource(inspectSource)
	if err != nil {
		return err
	}

	wb, err := ingest.LoadDocument(inspectFile, env.config.CSV)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	in, err := ingest.New(store.NewMemory(), env.profiles, env.config, env.log)
	if err != nil {
		return err
	}
	sheets, err := in.Inspect(wb, filepath.Base(inspectFile), source)
	if err != nil {
		return err
	}

	fmt.Printf("=== %s ===\n", filepath.Base(inspectFile))
	for _, s := range sheets {
		fmt.Printf("\nSheet %q (%d rows)\n", s.Name, s.Rows)
		if s.Profile == "" {
			fmt.Println("  Profile:   none, sheet ignored")
			continue
		}
		fmt.Printf("  Profile:   %s\n", s.Profile)
		if s.SectionStart > 0 {
			fmt.Printf("  Section:   rows %d-%d\n", s.SectionStart, s.SectionEnd)
		}
		if s.HeaderRow == 0 {
			fmt.Println("  Header:    not found")
			fmt.Printf("  Problems:  %d\n", s.Problems)
			continue
		}
		fmt.Printf("  Header:    row %d\n", s.HeaderRow)
		fmt.Printf("  Data:      rows %d-%d\n", s.DataStart, s.DataEnd)

		roles := make([]string, 0, len(s.Columns))
		for role := range s.Columns {
			roles = append(roles, role)
		}
		sort.Slice(roles, func(i, j int) bool { return s.Columns[roles[i]] < s.Columns[roles[j]] })
		for _, role := range roles {
			fmt.Printf("    col %-3d %s\n", s.Columns[role], role)
		}
		if len(s.MissingColumns) > 0 {
			fmt.Printf("  Missing:   %s\n", strings.Join(s.MissingColumns, ", "))
		}

		if len(s.Blocks) > 0 {
			layout := "detected"
			if s.LegacyLayout {
				layout = "2024 template (no month header found)"
			}
			fmt.Printf("  Months:    %s\n", layout)
			for _, b := range s.Blocks {
				fmt.Printf("    %-10s amount col %d, paid date col %d\n", b.Label, b.ValueColumn+1, b.AuxColumn+1)
			}
		}
		fmt.Printf("  Records:   %d\n", s.Records)
		fmt.Printf("  Problems:  %d\n", s.Problems)
	}
	return nil
}

// =============================================================================
// Finance Sheet Normalizer - Main Entry Point
// =============================================================================
//
// This is the main entry point for the normalizer CLI. It hands control to
// the Cobra command tree in the cmd package.
//
// USAGE:
//   normalizer ingest      - Normalize every workbook in the input directory
//   normalizer reconcile   - Cross-check CC sheets against printed grand totals
//   normalizer inspect     - Show the structure detected in a workbook
//   normalizer version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : normalization pipeline, storage, configuration
//   - pkg/           : file management utilities (logs, archive, naming)
//   - profiles/      : optional per-source-type YAML overrides
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/finance-sheet-normalizer/cmd"
)

func main() {
	cmd.Execute()
}

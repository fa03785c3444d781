// =============================================================================
// Finance Sheet Normalizer - Reconcile Command
// =============================================================================
//
// This file defines the 'reconcile' command. It aggregates the summary block
// of every CC sheet in a document and compares the pipeline's own figure
// (gross - refund + fees) with the grand total printed in the sheet and,
// optionally, with an externally known document total.
//
// COMMAND USAGE:
//   normalizer reconcile --file "CC Juli 2025.xlsx" [--expect 1548732172]
//
// Nothing is written to the database.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/finance-sheet-normalizer/internal/config"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/ingest"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/reconcile"
	"github.com/ginjaninja78/finance-sheet-normalizer/internal/store"
)

var (
	reconcileFile   string
	reconcileExpect int64
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Cross-check CC sheets against their printed grand totals",
	Long: `The reconcile command reads every sheet of a CC document as a credit-card
settlement sheet, folds its summary rows into gross, refund and fee buckets,
and prints the computed figure next to the printed grand total.

With --expect the sum over all sheets is also compared with the given
document total.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile()
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileFile, "file", "", "CC document to reconcile")
	reconcileCmd.Flags().Int64Var(&reconcileExpect, "expect", 0, "Expected document total")
	reconcileCmd.MarkFlagRequired("file")
}

func runReconcile() error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	in, err := ingest.New(store.NewMemory(), env.profiles, env.config, env.log)
	if err != nil {
		return err
	}

	result := in.Run(env.ctx, reconcileFile, ingest.Options{Source: config.KindCC, DryRun: true})
	if !result.Success {
		return result.Error
	}
	if len(result.Summaries) == 0 {
		fmt.Println("No CC summary rows found.")
		return nil
	}

	report := reconcile.Check(result.Summaries, reconcileExpect)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Sheet\tGross\tRefund\tTransfer\tAnnual\tAdmin\tComputed\tPrinted\tDiff\t")
	for _, s := range report.Sheets {
		printed := "-"
		if s.HasGrandTotal {
			printed = fmt.Sprintf("%d", s.DocumentGrandTotal)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\t%d\t\n",
			s.SourceSheet, s.GrossPaymentTotal, s.RefundTotal, s.TransferFee,
			s.AnnualFee, s.AdminInterestFee, s.Computed(), printed, s.Difference())
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("Computed total:  %d\n", report.Total)
	fmt.Printf("Printed total:   %d\n", report.DocumentTotal)
	if report.Expected != 0 {
		fmt.Printf("Expected total:  %d\n", report.Expected)
	}

	for _, s := range report.Mismatches() {
		fmt.Printf("  ! %s: printed grand total missing or different\n", s.SourceSheet)
	}
	for _, s := range report.RefundDrift() {
		fmt.Printf("  ! %s: refund listing adds up to %d, refund total is %d\n",
			s.SourceSheet, s.RefundItemsTotal(), s.RefundTotal)
	}

	if !report.Match {
		fmt.Println("\n=== Reconciliation FAILED ===")
		return fmt.Errorf("document total does not reconcile")
	}
	fmt.Println("\n=== Reconciliation OK ===")
	return nil
}

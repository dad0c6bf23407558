package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tghelper/quizbank/internal/domain/questionbank"
	"github.com/tghelper/quizbank/internal/extractor"
	"github.com/tghelper/quizbank/internal/store"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract questions from captured exam pages into one bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := flagOr(cmd, "dir", cfg.HTMLDir)
		out := flagOr(cmd, "out", filepath.Join(cfg.BankDir, cfg.DefaultBank))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		qs, err := extractor.New(logger).ExtractDir(ctx, dir, cfg.ExtractWorkers)
		if err != nil {
			return fmt.Errorf("extract %s: %w", dir, err)
		}
		if err := store.WriteBank(out, qs); err != nil {
			return err
		}

		printStats(cmd, questionbank.New(qs))
		fmt.Fprintf(cmd.OutOrStdout(), "saved to %s\n", out)
		return nil
	},
}

func init() {
	extractCmd.Flags().String("dir", "", "Directory of captured .html pages (default HTML_DIR)")
	extractCmd.Flags().String("out", "", "Bank file to write (default BANK_DIR/DEFAULT_BANK)")
}

// printStats writes the total and the per-type counts of bank.
func printStats(cmd *cobra.Command, bank *questionbank.Bank) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d questions\n", bank.Total())
	for _, t := range bank.Types() {
		fmt.Fprintf(w, "  %-6s %5d\n", t, bank.Count(t))
	}
}

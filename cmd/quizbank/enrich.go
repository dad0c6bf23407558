package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tghelper/quizbank/internal/domain/question"
	"github.com/tghelper/quizbank/internal/enrich"
	"github.com/tghelper/quizbank/internal/store"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill in missing analyses with a chat model",
	Long:  "enrich asks the configured model to explain every question without an analysis. The bank is saved periodically; Ctrl-C stops after saving what has been done.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagOr(cmd, "file", filepath.Join(cfg.BankDir, cfg.DefaultBank))

		qs, err := store.ReadQuestions(path)
		if err != nil {
			return err
		}

		annotator, err := enrich.NewOpenAIAnnotator(cfg.LLMURL, cfg.LLMModel, cfg.LLMAPIKey)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		w := &enrich.Worker{
			Annotator:       annotator,
			Save:            func(qs []question.Question) error { return store.WriteBank(path, qs) },
			CheckpointEvery: cfg.CheckpointEvery,
			Logger:          logger,
			OnProgress: func(e enrich.Event) {
				if e.Status != enrich.StatusSkipped {
					fmt.Fprintf(out, "[%d/%d] %s\n", e.Index+1, e.Total, e.Status)
				}
			},
		}

		report, err := w.Run(ctx, qs)
		fmt.Fprintf(out, "explained %d, failed %d, skipped %d of %d\n",
			report.Explained, report.Failed, report.Skipped, report.Total)
		return err
	},
}

func init() {
	enrichCmd.Flags().String("file", "", "Bank file to update in place (default BANK_DIR/DEFAULT_BANK)")
}

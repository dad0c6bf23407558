package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tghelper/quizbank/internal/domain/questionbank"
	"github.com/tghelper/quizbank/internal/extractor"
	"github.com/tghelper/quizbank/internal/store"
)

var convertCmd = &cobra.Command{
	Use:   "convert-cafuc <paper.json>",
	Short: "Convert an exported CAFUC paper into a bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		qs, err := extractor.New(logger).ConvertCAFUC(f)
		if err != nil {
			return fmt.Errorf("convert %s: %w", args[0], err)
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
	convertCmd.Flags().String("out", "cafuc_questions.json", "Bank file to write")
}

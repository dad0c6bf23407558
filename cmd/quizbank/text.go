package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tghelper/quizbank/internal/export"
	"github.com/tghelper/quizbank/internal/store"
)

var textCmd = &cobra.Command{
	Use:   "text <bank.json>",
	Short: "Render a bank as plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		qs, err := store.ReadQuestions(args[0])
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		bw := bufio.NewWriter(f)
		if err := export.WriteText(bw, qs); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d questions written to %s\n", len(qs), out)
		return f.Close()
	},
}

func init() {
	textCmd.Flags().String("out", "questions.txt", "Text file to write")
}

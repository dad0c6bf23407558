package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tghelper/quizbank/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check <bank.json>",
	Short: "Load a bank and report invariant violations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := store.LoadPath(args[0])
		if err != nil {
			return err
		}
		printStats(cmd, bank)

		w := cmd.OutOrStdout()
		bad := 0
		for _, q := range bank.Questions() {
			if err := q.Validate(); err != nil {
				fmt.Fprintln(w, err)
				bad++
			}
		}
		if bad > 0 {
			return fmt.Errorf("%d of %d questions violate the format", bad, bank.Total())
		}
		fmt.Fprintln(w, "ok")
		return nil
	},
}

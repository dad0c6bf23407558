package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tghelper/quizbank/internal/infrastructure/config"
	"github.com/tghelper/quizbank/internal/infrastructure/logging"
)

var (
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:          "quizbank",
	Short:        "Question bank normalizer and exam server",
	Long:         "quizbank extracts questions from captured exam pages into one JSON format, serves exam sessions over HTTP and keeps wrong-question books.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		var err error
		logger, logCloser, err = logging.New(logging.Options{
			Dir:        cfg.LogDir,
			Level:      cfg.LogLevel,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
		})
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(checkCmd)
}

// flagOr returns the string flag name, or fallback when it was left empty.
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tghelper/quizbank/internal/api"
	"github.com/tghelper/quizbank/internal/service"
	"github.com/tghelper/quizbank/internal/store"

	_ "github.com/tghelper/quizbank/docs" // generated swagger docs
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the exam HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	// ── Dependencies ────────────────────────────────────────────────
	exams := service.NewExamService(
		store.BankFiles{Dir: cfg.BankDir, Default: cfg.DefaultBank},
		store.WrongBooks{Dir: cfg.WrongBookDir, Logger: logger},
		nil,
		logger,
	)
	if cfg.DefaultBank != "" {
		if _, err := exams.LoadBank(""); err != nil {
			logger.Warn("default bank not loaded", "file", cfg.DefaultBank, "error", err)
		}
	}
	handler := api.NewHandler(exams, logger)

	// ── Routes ──────────────────────────────────────────────────────
	mux := http.NewServeMux()
	api.RegisterRoutes(mux, handler)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	if fi, err := os.Stat(cfg.WebDir); err == nil && fi.IsDir() {
		mux.Handle("GET /", http.FileServer(http.Dir(filepath.Clean(cfg.WebDir))))
	}

	// ── Middleware chain: Logging → CORS → mux ──────────────────────
	logged := api.Logging(logger)(api.CORS(cfg.CORSOrigins)(mux))

	// ── Server ──────────────────────────────────────────────────────
	server := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           logged,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "address", cfg.ServerAddress)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed to start", "error", err)
		return err
	}
	<-done
	return nil
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration

	// Documents
	BankDir      string // containment base for bank documents
	DefaultBank  string // loaded when a request names no bank
	WrongBookDir string
	HTMLDir      string // captured pages for batch extraction
	WebDir       string // optional static front-end

	// Logging
	LogDir        string
	LogLevel      string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	CORSOrigins []string

	// Analysis enrichment
	LLMURL          string // OpenAI-compatible endpoint, e.g. "https://api.deepseek.com/v1"
	LLMModel        string
	LLMAPIKey       string
	CheckpointEvery int

	ExtractWorkers int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:   getenvDefault("SERVER_ADDRESS", ":5000"),
		ShutdownTimeout: getDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		BankDir:         getenvDefault("BANK_DIR", "."),
		DefaultBank:     getenvDefault("DEFAULT_BANK", "questions.json"),
		WrongBookDir:    getenvDefault("WRONG_BOOK_DIR", "wrong_questions"),
		HTMLDir:         getenvDefault("HTML_DIR", "html"),
		WebDir:          getenvDefault("WEB_DIR", "web"),
		LogDir:          getenvDefault("LOG_DIR", "logs"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		LogMaxSizeMB:    getIntDefault("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups:   getIntDefault("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays:   getIntDefault("LOG_MAX_AGE_DAYS", 30),
		CORSOrigins:     splitList(getenvDefault("CORS_ORIGINS", "*")),
		LLMURL:          getenvDefault("LLM_URL", "https://api.deepseek.com/v1"),
		LLMModel:        getenvDefault("LLM_MODEL", "deepseek-chat"),
		LLMAPIKey:       os.Getenv("LLM_API_KEY"),
		CheckpointEvery: getIntDefault("CHECKPOINT_EVERY", 5),
		ExtractWorkers:  getIntDefault("EXTRACT_WORKERS", 4),
	}
}

func getDurationDefault(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getIntDefault(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Fatalf("config: %s=%q is not a valid non-negative integer", k, v)
	}
	return n
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

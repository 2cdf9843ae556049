// Package main is the entry point for the restaurant directory server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars, flags, or config files)
// 2. Create dependencies (logger, database connections, etc.)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
// This separation makes the app testable and its components reusable.
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// A project might have multiple executables (e.g., cmd/server, cmd/migrate, cmd/cli).
// Each gets its own directory with its own main.go.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/restaurant-directory/internal/server"
)

// envInt reads an optional integer environment variable.
// Absent → fallback. Present but unparseable → false (the caller fails fast —
// a typo in config should stop the boot, not silently run with a default).
func envInt(name string, fallback int) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func main() {
	// === 1. LOAD .env (BEST EFFORT) ===
	// godotenv reads KEY=VALUE pairs from a .env file into the process
	// environment. Local development keeps secrets out of shell history;
	// in production there is no .env file and real env vars are used —
	// which is why a missing file is NOT an error.
	_ = godotenv.Load()

	// === 2. SET UP LOGGING ===
	// slog.New creates a structured logger. slog.NewTextHandler outputs
	// human-readable logs to the terminal.
	//
	// Log levels (from least to most severe): Debug → Info → Warn → Error
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// === 3. READ CONFIGURATION ===
	port, ok := envInt("PORT", 8080)
	if !ok {
		logger.Error("invalid PORT value", slog.String("value", os.Getenv("PORT")))
		os.Exit(1)
	}

	bcryptCost, ok := envInt("BCRYPT_COST", 0) // 0 → auth.DefaultBcryptCost
	if !ok {
		logger.Error("invalid BCRYPT_COST value", slog.String("value", os.Getenv("BCRYPT_COST")))
		os.Exit(1)
	}

	ttlHours, ok := envInt("TOKEN_TTL_HOURS", 0) // 0 → auth.DefaultTokenTTL
	if !ok {
		logger.Error("invalid TOKEN_TTL_HOURS value", slog.String("value", os.Getenv("TOKEN_TTL_HOURS")))
		os.Exit(1)
	}

	// JWT_SECRET is the one setting with no sane default: a guessable key
	// lets anyone forge session cookies. Refuse to boot without it.
	// Generate one with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is not set — refusing to start without a signing key")
		os.Exit(1)
	}

	// === 4. DATABASE PATH ===
	// Default to "data/directory.db" in the project root.
	// DB_PATH env var allows overriding for production deployments.
	// Example: DB_PATH=/var/lib/restaurant-directory/prod.db
	dbPath := "data/directory.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 5. CREATE AND START THE SERVER ===
	cfg := server.Config{
		Port:       port,
		DBPath:     dbPath,
		JWTSecret:  jwtSecret,
		BcryptCost: bcryptCost,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

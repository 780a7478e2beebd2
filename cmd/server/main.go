/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the mortgage bonus calculator server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env, then the YAML config, then MORTGAGE_* variables, then flags
  2. Initialize SQLite scenario store
  3. Pick the view cache (Redis when configured, memory otherwise)
  4. Start the session manager and its idle reaper
  5. Configure HTTP router and start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config file (optional)
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: ./data/scenarios.db)
           Use ":memory:" for in-memory database
  -redis   Redis address for the view cache (default: none)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close every session (cancels pending undo timers)
  4. Close cache and database connections

EXAMPLES:
  ./server -config=./config.yaml
  ./server -db=":memory:" -port=3000
  MORTGAGE_REDIS_ADDR=localhost:6379 ./server

SEE ALSO:
  - config/config.go: Configuration precedence
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/mortgage-bonus/api"
	"github.com/warp/mortgage-bonus/cache"
	"github.com/warp/mortgage-bonus/config"
	"github.com/warp/mortgage-bonus/session"
	"github.com/warp/mortgage-bonus/store/sqlite"
)

func main() {
	// Flags
	cfgPath := flag.String("config", "", "YAML config file (optional)")
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "./data/scenarios.db", "SQLite database path")
	redisAddr := flag.String("redis", "", "Redis address for the view cache")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables as set")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}
	// Flags win only when given explicitly
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "port":
			cfg.Server.Port = *port
		case "db":
			cfg.Server.DB = *dbPath
		case "redis":
			cfg.Server.RedisAddr = *redisAddr
		}
	})

	// Initialize store
	if cfg.Server.DB != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Server.DB), 0o755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
	}
	store, err := sqlite.New(cfg.Server.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize view cache
	var views cache.Cache = cache.NewMemory()
	if cfg.Server.RedisAddr != "" {
		rc := cache.NewRedis(cfg.Server.RedisAddr, cfg.Server.CacheTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Printf("[Cache] Redis at %s unreachable, using memory cache: %v", cfg.Server.RedisAddr, err)
			rc.Close()
		} else {
			log.Printf("[Cache] Using Redis at %s", cfg.Server.RedisAddr)
			views = rc
			defer rc.Close()
		}
		cancel()
	}

	// Sessions
	sessions := session.NewManager(cfg.ToDefaults(), cfg.SessionOptions())
	sessions.Start()

	handler := api.NewHandler(sessions, store, views)
	router := api.NewRouter(handler, cfg.Server.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Server.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	sessions.Stop()

	log.Println("Server stopped")
}

/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the AMC billing reconciliation server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Configure logging
  3. Open the SQLite contract catalog
  4. Wire engine, tracker, processor and aggregator
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080, env PORT)
  -db         SQLite contract catalog path (default: contracts.db, env DB_PATH)
              Use ":memory:" for an in-memory database
  -base-year  First year of the quarter calendar (default: 2024, env BASE_YEAR)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/contracts.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Contract catalog
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/meridian/amc-billing/api"
	"github.com/meridian/amc-billing/billing"
	memstore "github.com/meridian/amc-billing/billing/store"
	"github.com/meridian/amc-billing/registry"
	"github.com/meridian/amc-billing/report"
	"github.com/meridian/amc-billing/store/sqlite"
)

func main() {
	// A missing .env is fine; flags and defaults cover everything.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "contracts.db"), "SQLite contract catalog path")
	baseYear := flag.Int("base-year", envInt("BASE_YEAR", billing.DefaultBaseYear), "first year of the quarter calendar")
	logLevel := flag.String("log-level", envStr("LOG_LEVEL", "info"), "logging level")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	}

	catalog, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open contract catalog")
	}
	defer catalog.Close()

	calendar := billing.NewCalendar(*baseYear)
	engine := billing.NewEngine(calendar)
	tracker := billing.NewTracker(engine, memstore.NewMemory())
	results := memstore.NewResults()
	directory := registry.NewDirectory()

	processor := billing.NewProcessor(catalog, tracker, results, directory, log)
	aggregator := report.NewAggregator(results, tracker, directory)

	handler := api.NewHandler(processor, aggregator, catalog, results, calendar, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

package main

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"time"

	"github.com/evalphobia/logrus_sentry"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	trp "github.com/tx3-lang/trp-go"
	"github.com/tx3-lang/trp-go/db"
)

func main() {
	// Retrieve environment variables.
	options := trp.DefaultOptions()
	if port := os.Getenv("PORT"); port != "" {
		options = options.WithPort(port)
	}
	if upstream := os.Getenv("UPSTREAM_URL"); upstream != "" {
		options = options.WithUpstreamURL(upstream)
	}
	if apiKey := os.Getenv("UPSTREAM_API_KEY"); apiKey != "" {
		options = options.WithUpstreamHeaders(map[string]string{
			"dmtr-api-key": apiKey,
		})
	}
	if cap, err := strconv.Atoi(os.Getenv("CAP")); err == nil {
		options = options.WithCap(cap)
	}
	if maxBatchSize, err := strconv.Atoi(os.Getenv("MAX_BATCH_SIZE")); err == nil {
		options = options.WithMaxBatchSize(maxBatchSize)
	}
	// Specified in seconds.
	if timeout, err := strconv.Atoi(os.Getenv("TIMEOUT")); err == nil {
		options = options.WithClientTimeout(time.Duration(timeout) * time.Second)
	}
	// Specified in seconds.
	if ttl, err := strconv.Atoi(os.Getenv("TTL")); err == nil {
		options = options.WithTTL(time.Duration(ttl) * time.Second)
	}

	// Setup logger and attach Sentry hook when configured.
	logger := logrus.New()
	if sentryURL := os.Getenv("SENTRY_URL"); sentryURL != "" {
		hook, err := logrus_sentry.NewSentryHook(sentryURL, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
			logrus.WarnLevel,
		})
		if err != nil {
			logger.Fatalf("cannot create a sentry hook: %v", err)
		}
		hook.Timeout = 500 * time.Millisecond
		logger.AddHook(hook)
	}

	if options.UpstreamURL == "" {
		logger.Fatal("UPSTREAM_URL is not set")
	}

	// Open the submission history database.
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "trpnode.db"
	}
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer sqlDB.Close()
	database := db.New(sqlDB)
	if err := database.Init(); err != nil {
		logger.Fatalf("failed to initialise database: %v", err)
	}

	// Start running the proxy.
	ctx := context.Background()
	proxy := trp.New(ctx, logger, options, database)
	proxy.Run(ctx)
}

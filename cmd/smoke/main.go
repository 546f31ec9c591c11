package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/shopapi/internal/smoke"
	"github.com/okian/shopapi/pkg/logger"
)

// Default configuration constants.
const (
	defaultProducts    = 200
	defaultUsers       = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		products = flag.Int("products", defaultProducts, "Number of products to create, read, update and delete")
		users    = flag.Int("users", defaultUsers, "Number of users to create, read, update and delete")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Log every failed check")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Create context with timeout, cancelled early on SIGINT/SIGTERM
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := &smoke.Config{
		BaseURL:  *baseURL,
		Products: *products,
		Users:    *users,
		Workers:  *workers,
		Timeout:  *timeout,
		Verbose:  *verbose,
	}

	if _, err := smoke.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "smoke test failed", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

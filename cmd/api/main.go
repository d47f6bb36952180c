package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kart-pay/internal/backend"
	"kart-pay/internal/cart"
	"kart-pay/internal/checkout"
	"kart-pay/internal/config"
	"kart-pay/internal/database"
	"kart-pay/internal/discount"
	"kart-pay/internal/handler"
	"kart-pay/internal/metric"
	"kart-pay/internal/payload"
	"kart-pay/internal/provider"
	"kart-pay/internal/repository"
	"kart-pay/internal/router"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting kart-pay API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Completed order persistence
	orderRepo := repository.NewCompletedOrderRepository(pool, logger)

	// Discount code registry, loaded from S3 with local fallback
	discounts, err := buildDiscountRegistry(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize discount registry: %w", err)
	}
	if discounts != nil {
		defer discounts.Close()
	}

	// Prometheus registry and purchase tracking
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	tracker := metric.NewPurchaseTracker(promRegistry, logger)

	// Provider client and adapter
	if !cfg.Provider.Configured() {
		logger.Warn().Msg("payment provider credentials not configured, payment endpoints will answer 503")
	}
	providerClient := provider.NewHTTPClient(cfg.Provider.BaseURL, cfg.Provider.ClientID, cfg.Provider.Secret, logger)
	adapter := provider.NewAdapter(providerClient, logger)

	// Backend charge client
	submitter := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.APIKey, logger)

	// Checkout collaborators
	stateCache := checkout.NewStateCache()
	cartStore := cart.NewStore(logger)
	builder := payload.NewBuilder(cfg.Store.ID, logger)

	checkoutService := checkout.NewService(
		stateCache,
		builder,
		adapter,
		submitter,
		cartStore,
		tracker,
		orderRepo,
		discountValidator(discounts),
		logger,
	)

	// HTTP handlers
	paymentHandler := handler.NewPaymentHandler(
		adapter,
		checkoutService,
		stateCache,
		validator.New(),
		cfg.Provider.Configured(),
		logger,
	)
	orderHandler := handler.NewOrderHandler(orderRepo, logger)

	// Router
	mux := router.New(paymentHandler, orderHandler, promRegistry, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// buildDiscountRegistry assembles the code registry, preferring S3 with a
// local file fallback. Returns nil when discount gating is disabled.
func buildDiscountRegistry(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (discount.Registry, error) {
	if !cfg.Discount.Enabled {
		logger.Info().Msg("discount code gating disabled")
		return nil, nil
	}

	fileLoader := discount.NewFileLoader(logger)
	loader := fileLoader

	if cfg.S3.Enabled {
		s3Loader, err := discount.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = discount.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	}

	registryConfig := &discount.RegistryConfig{FilePaths: cfg.Discount.FilePaths}
	return discount.NewRegistry(ctx, registryConfig, loader, logger)
}

// discountValidator adapts an optional registry to the checkout service's
// collaborator. A nil registry means every code passes through ungated.
func discountValidator(reg discount.Registry) checkout.DiscountValidator {
	if reg == nil {
		return nil
	}
	return reg
}

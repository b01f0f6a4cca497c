package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrops-br/product-catalog-api/internal/app/service"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/repository/memory"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/repository/mongodb"
	"github.com/mrops-br/product-catalog-api/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize OpenTelemetry
	var telem *telemetry.Telemetry
	if cfg.OTLP.Enabled {
		telem, err = telemetry.NewTelemetry(&cfg.OTLP)
	} else {
		telem, err = telemetry.NewNoOpTelemetry(&cfg.OTLP)
	}
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	os.Exit(run(cfg, telem))
}

func run(cfg *config.Config, telem *telemetry.Telemetry) int {
	logger := telem.Logger

	// Flush telemetry last so shutdown logs and spans are exported
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := telem.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := telem.TracerProvider.Tracer("products-api")
	meter := telem.MeterProvider.Meter("products-api")

	logger.Info("Starting Products API",
		slog.String("store_driver", cfg.Store.Driver),
	)

	repo, closeRepo, err := newRepository(cfg, tracer, logger)
	if err != nil {
		logger.Error("Failed to initialize repository", slog.String("error", err.Error()))
		return 1
	}
	defer closeRepo()

	productService := service.NewProductService(repo, tracer, meter, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	server := http.NewServer(&cfg.Server, productHandler, telem)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("Server stopped")
	return exitCode
}

// newRepository builds the configured store. The returned func releases its resources.
func newRepository(cfg *config.Config, tracer trace.Tracer, logger *slog.Logger) (domain.ProductRepository, func(), error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		return memory.NewProductRepository(tracer, logger), func() {}, nil
	}

	client, err := mongodb.Connect(context.Background(), &cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}

	coll := client.Database(cfg.Store.Database).Collection(cfg.Store.Collection)
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("Failed to disconnect from MongoDB", slog.String("error", err.Error()))
		}
	}

	return mongodb.NewProductRepository(coll, tracer, logger), closeFn, nil
}

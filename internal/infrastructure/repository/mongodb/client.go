package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens a client and verifies the deployment is reachable within cfg.ConnectTimeout.
func Connect(ctx context.Context, cfg *config.StoreConfig, logger *slog.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.InfoContext(ctx, "Connected to MongoDB",
		slog.String("database", cfg.Database),
		slog.String("collection", cfg.Collection),
	)

	return client, nil
}

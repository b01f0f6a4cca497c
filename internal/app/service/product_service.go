package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrops-br/product-catalog-api/internal/app/dto"
	"github.com/mrops-br/product-catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// Operation results recorded on the products.operations counter.
const (
	resultSuccess  = "success"
	resultFailure  = "failure"
	resultNotFound = "not_found"
)

// ProductService handles product use cases
type ProductService struct {
	repo                  domain.ProductRepository
	tracer                trace.Tracer
	logger                *slog.Logger
	productCreatedCounter metric.Int64Counter
	productOperations     metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:                  repo,
		tracer:                tracer,
		logger:                logger,
		productCreatedCounter: newCounter(meter, logger, "products.created.total", "Total number of products created"),
		productOperations:     newCounter(meter, logger, "products.operations", "Total number of product operations"),
	}
}

// newCounter falls back to a no-op counter when the instrument cannot be
// created, so a metrics failure never blocks product operations.
func newCounter(meter metric.Meter, logger *slog.Logger, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Warn("Failed to create counter, recording disabled",
			slog.String("metric", name),
			slog.String("error", err.Error()),
		)
		return noop.Int64Counter{}
	}
	return counter
}

// GetProducts retrieves all products. Order is whatever the store returns.
func (s *ProductService) GetProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProducts")
	defer span.End()

	s.logger.InfoContext(ctx, "Listing all products")

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		s.fail(ctx, span, "list", "Failed to list products", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.recordOperation(ctx, "list", resultSuccess)

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// GetProductByID retrieves a product by ID. A missing record yields
// domain.ErrProductNotFound and nothing else.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	s.logger.InfoContext(ctx, "Getting product by ID",
		slog.String("product_id", id),
	)

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.notFound(ctx, span, "read", id)
			return nil, domain.ErrProductNotFound
		}
		s.fail(ctx, span, "read", "Failed to get product", err)
		return nil, err
	}

	s.recordOperation(ctx, "read", resultSuccess)

	s.logger.InfoContext(ctx, "Product retrieved successfully",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}

// SaveProduct persists a new product as-is. Nothing is validated and no
// uniqueness of Code is checked.
func (s *ProductService) SaveProduct(ctx context.Context, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.SaveProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.name", req.Name),
		attribute.String("product.code", req.Code),
		attribute.Float64("product.price", req.Price),
	)

	s.logger.InfoContext(ctx, "Creating product",
		slog.String("name", req.Name),
		slog.String("code", req.Code),
		slog.Float64("price", req.Price),
	)

	saved, err := s.repo.Save(ctx, req.ToDomain())
	if err != nil {
		s.fail(ctx, span, "create", "Failed to store product", err)
		return nil, err
	}

	span.SetAttributes(attribute.String("product.id", saved.ID))

	s.productCreatedCounter.Add(ctx, 1)
	s.recordOperation(ctx, "create", resultSuccess)

	s.logger.InfoContext(ctx, "Product created successfully",
		slog.String("product_id", saved.ID),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return dto.ToProductResponse(saved), nil
}

// UpdateProduct overwrites all four mutable fields of the stored product with
// the values from req, zero values included, and saves it. The fetch and the
// save are separate store calls; concurrent updates of one id may lose writes.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	return s.modify(ctx, "ProductService.UpdateProduct", "update", id, func(p *domain.Product) {
		p.Overwrite(req.ToDomain())
	})
}

// PatchProduct applies only the fields present in req.
func (s *ProductService) PatchProduct(ctx context.Context, id string, req *dto.PatchProductRequest) (*dto.ProductResponse, error) {
	return s.modify(ctx, "ProductService.PatchProduct", "patch", id, req.Apply)
}

// DeleteProduct removes a product. Deleting a missing id succeeds.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	s.logger.InfoContext(ctx, "Deleting product",
		slog.String("product_id", id),
	)

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		s.fail(ctx, span, "delete", "Failed to delete product", err)
		return err
	}

	s.recordOperation(ctx, "delete", resultSuccess)

	s.logger.InfoContext(ctx, "Product deleted successfully",
		slog.String("product_id", id),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}

// modify runs the fetch, mutate, save sequence shared by update and patch.
// A missing id performs no write.
func (s *ProductService) modify(
	ctx context.Context,
	spanName, operation, id string,
	mutate func(*domain.Product),
) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, spanName)
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	s.logger.InfoContext(ctx, "Modifying product",
		slog.String("product_id", id),
		slog.String("operation", operation),
	)

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.notFound(ctx, span, operation, id)
			return nil, domain.ErrProductNotFound
		}
		s.fail(ctx, span, operation, "Failed to load product", err)
		return nil, err
	}

	mutate(existing)

	saved, err := s.repo.Save(ctx, existing)
	if err != nil {
		s.fail(ctx, span, operation, "Failed to store product", err)
		return nil, err
	}

	s.recordOperation(ctx, operation, resultSuccess)

	s.logger.InfoContext(ctx, "Product modified successfully",
		slog.String("product_id", id),
		slog.String("operation", operation),
	)

	span.SetStatus(codes.Ok, "Product modified successfully")
	return dto.ToProductResponse(saved), nil
}

func (s *ProductService) notFound(ctx context.Context, span trace.Span, operation, id string) {
	span.SetStatus(codes.Error, "Product not found")
	s.logger.WarnContext(ctx, "Product not found",
		slog.String("product_id", id),
		slog.String("operation", operation),
	)
	s.recordOperation(ctx, operation, resultNotFound)
}

func (s *ProductService) fail(ctx context.Context, span trace.Span, operation, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.ErrorContext(ctx, msg,
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	s.recordOperation(ctx, operation, resultFailure)
}

func (s *ProductService) recordOperation(ctx context.Context, operation, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/product-catalog-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// productDocument is the stored record layout, one document per product.
type productDocument struct {
	ID          string  `bson:"_id"`
	Name        string  `bson:"name"`
	Code        string  `bson:"code"`
	Description string  `bson:"description"`
	Price       float64 `bson:"price"`
}

func toDocument(p *domain.Product) productDocument {
	return productDocument{
		ID:          p.ID,
		Name:        p.Name,
		Code:        p.Code,
		Description: p.Description,
		Price:       p.Price,
	}
}

func (d productDocument) toDomain() *domain.Product {
	return &domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		Description: d.Description,
		Price:       d.Price,
	}
}

// ProductRepository is a MongoDB implementation of domain.ProductRepository
type ProductRepository struct {
	coll   *mongo.Collection
	tracer trace.Tracer
	logger *slog.Logger
}

// NewProductRepository creates a repository over the given collection
func NewProductRepository(coll *mongo.Collection, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		coll:   coll,
		tracer: tracer,
		logger: logger,
	}
}

// FindAll retrieves all products
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.startSpan(ctx, "ProductRepository.FindAll", "find")
	defer span.End()

	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, r.fail(ctx, span, "find products", err)
	}

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, r.fail(ctx, span, "decode products", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.toDomain())
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))

	r.logger.InfoContext(ctx, "Products retrieved from repository",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.startSpan(ctx, "ProductRepository.FindByID", "find")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	var doc productDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		span.SetStatus(codes.Error, "Product not found")
		r.logger.DebugContext(ctx, "Product not found in repository",
			slog.String("product_id", id),
		)
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, r.fail(ctx, span, "find product", err)
	}

	r.logger.DebugContext(ctx, "Product found in repository",
		slog.String("product_id", id),
		slog.String("product_name", doc.Name),
	)

	span.SetStatus(codes.Ok, "Product found")
	return doc.toDomain(), nil
}

// Save inserts a product under a fresh ObjectID hex when it has no ID,
// otherwise it replaces (or upserts) the document with that _id.
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, span := r.startSpan(ctx, "ProductRepository.Save", "save")
	defer span.End()

	doc := toDocument(product)

	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
		span.SetAttributes(attribute.String("product.id", doc.ID))

		if _, err := r.coll.InsertOne(ctx, doc); err != nil {
			return nil, r.fail(ctx, span, "insert product", err)
		}

		r.logger.InfoContext(ctx, "Product inserted in repository",
			slog.String("product_id", doc.ID),
			slog.String("product_name", doc.Name),
		)

		span.SetStatus(codes.Ok, "Product inserted")
		return doc.toDomain(), nil
	}

	span.SetAttributes(attribute.String("product.id", doc.ID))

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, r.fail(ctx, span, "replace product", err)
	}

	r.logger.InfoContext(ctx, "Product replaced in repository",
		slog.String("product_id", doc.ID),
		slog.String("product_name", doc.Name),
	)

	span.SetStatus(codes.Ok, "Product replaced")
	return doc.toDomain(), nil
}

// DeleteByID removes a product; deleting nothing is not an error
func (r *ProductRepository) DeleteByID(ctx context.Context, id string) error {
	ctx, span := r.startSpan(ctx, "ProductRepository.DeleteByID", "delete")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return r.fail(ctx, span, "delete product", err)
	}

	r.logger.InfoContext(ctx, "Product deleted from repository",
		slog.String("product_id", id),
		slog.Int64("deleted", res.DeletedCount),
	)

	span.SetStatus(codes.Ok, "Product deleted")
	return nil
}

func (r *ProductRepository) startSpan(ctx context.Context, name, operation string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "mongodb"),
			attribute.String("db.operation", operation),
			attribute.String("db.mongodb.collection", r.coll.Name()),
		),
	)
}

func (r *ProductRepository) fail(ctx context.Context, span trace.Span, action string, err error) error {
	wrapped := fmt.Errorf("failed to %s: %w", action, err)
	span.RecordError(wrapped)
	span.SetStatus(codes.Error, wrapped.Error())
	r.logger.ErrorContext(ctx, "MongoDB operation failed",
		slog.String("action", action),
		slog.String("error", err.Error()),
	)
	return wrapped
}

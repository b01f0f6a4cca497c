package domain

import (
	"context"
	"errors"
)

var (
	// ErrProductNotFound signals an absent record. It is a lookup result, not a store failure.
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the contract for product storage
type ProductRepository interface {
	// FindAll returns every stored product in store order.
	FindAll(ctx context.Context) ([]*Product, error)
	// FindByID returns ErrProductNotFound when no record has the given id.
	FindByID(ctx context.Context, id string) (*Product, error)
	// Save assigns an ID when product.ID is empty, otherwise it overwrites
	// the record at that ID. The stored state is returned.
	Save(ctx context.Context, product *Product) (*Product, error)
	// DeleteByID removes the record; a missing id is not an error.
	DeleteByID(ctx context.Context, id string) error
}

// Package repository defines the resource store interfaces and their SQLite implementation.
package repository

import (
	"context"

	"github.com/okian/shopapi/internal/domain/model"
)

// ProductStore provides row-level access to the product table.
type ProductStore interface {
	// CreateProduct inserts p and returns the stored row with its assigned id.
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	// ListProducts returns every product ordered by id.
	ListProducts(ctx context.Context) ([]model.Product, error)
	// GetProduct returns ErrNotFound if no row has id.
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	// UpdateProduct overwrites every column of row id with p.
	UpdateProduct(ctx context.Context, id int64, p model.Product) (model.Product, error)
	// DeleteProduct removes row id and returns it as it was before deletion.
	DeleteProduct(ctx context.Context, id int64) (model.Product, error)
}

// UserStore provides row-level access to the user table.
type UserStore interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	UpdateUser(ctx context.Context, id int64, u model.User) (model.User, error)
	DeleteUser(ctx context.Context, id int64) (model.User, error)
}

// Store bundles both resources with lifecycle and bookkeeping operations.
type Store interface {
	ProductStore
	UserStore

	// Count returns the number of rows stored for resource.
	Count(ctx context.Context, resource string) (int, error)
	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying database handle.
	Close() error
}

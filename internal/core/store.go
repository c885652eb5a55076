package core

import "context"

// CategoryStore persists categories. Imports never update or delete them.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]Category, error)
	AddCategory(ctx context.Context, c Category) (Category, error)
}

// ProductStore persists products.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]Product, error)
	AddProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, p Product) error
}

// CustomerStore persists customers.
type CustomerStore interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	AddCustomer(ctx context.Context, c Customer) (Customer, error)
	UpdateCustomer(ctx context.Context, c Customer) error
}

// SaleStore persists sales. Imports only ever add sales.
type SaleStore interface {
	AddSale(ctx context.Context, s Sale) (Sale, error)
}

// Store is everything an import run reads from and writes to.
// Add methods return the entity with its store-assigned ID.
type Store interface {
	CategoryStore
	ProductStore
	CustomerStore
	SaleStore
}

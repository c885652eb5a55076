package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listCategories = `-- name: ListCategories :many
SELECT id, name, description, created_at
FROM categories
ORDER BY id
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.Description, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertCategory = `-- name: InsertCategory :one
INSERT INTO categories (name, description)
VALUES ($1, $2)
RETURNING id, name, description, created_at
`

type InsertCategoryParams struct {
	Name        string
	Description string
}

func (q *Queries) InsertCategory(ctx context.Context, arg InsertCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, insertCategory, arg.Name, arg.Description)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.CreatedAt)
	return i, err
}

const listProducts = `-- name: ListProducts :many
SELECT id, code, name, description, price, stock, category_id, created_at, updated_at
FROM products
ORDER BY id
`

func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.Stock,
			&i.CategoryID,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertProduct = `-- name: InsertProduct :one
INSERT INTO products (code, name, description, price, stock, category_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, code, name, description, price, stock, category_id, created_at, updated_at
`

type InsertProductParams struct {
	Code        string
	Name        string
	Description string
	Price       pgtype.Numeric
	Stock       int32
	CategoryID  pgtype.Int8
}

func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, insertProduct,
		arg.Code,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.Stock,
		arg.CategoryID,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.Stock,
		&i.CategoryID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateProduct = `-- name: UpdateProduct :execrows
UPDATE products
SET code = $2, description = $3, price = $4, stock = $5, category_id = $6, updated_at = now()
WHERE id = $1
`

type UpdateProductParams struct {
	ID          int64
	Code        string
	Description string
	Price       pgtype.Numeric
	Stock       int32
	CategoryID  pgtype.Int8
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateProduct,
		arg.ID,
		arg.Code,
		arg.Description,
		arg.Price,
		arg.Stock,
		arg.CategoryID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listCustomers = `-- name: ListCustomers :many
SELECT id, code, name, surname, email, phone, address, document_id, active, registered_at
FROM customers
ORDER BY id
`

func (q *Queries) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := q.db.Query(ctx, listCustomers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Customer
	for rows.Next() {
		var i Customer
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.Name,
			&i.Surname,
			&i.Email,
			&i.Phone,
			&i.Address,
			&i.DocumentID,
			&i.Active,
			&i.RegisteredAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertCustomer = `-- name: InsertCustomer :one
INSERT INTO customers (code, name, surname, email, phone, address, document_id, active, registered_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()))
RETURNING id, code, name, surname, email, phone, address, document_id, active, registered_at
`

type InsertCustomerParams struct {
	Code         string
	Name         string
	Surname      string
	Email        string
	Phone        string
	Address      string
	DocumentID   string
	Active       bool
	RegisteredAt pgtype.Timestamptz
}

func (q *Queries) InsertCustomer(ctx context.Context, arg InsertCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, insertCustomer,
		arg.Code,
		arg.Name,
		arg.Surname,
		arg.Email,
		arg.Phone,
		arg.Address,
		arg.DocumentID,
		arg.Active,
		arg.RegisteredAt,
	)
	var i Customer
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Name,
		&i.Surname,
		&i.Email,
		&i.Phone,
		&i.Address,
		&i.DocumentID,
		&i.Active,
		&i.RegisteredAt,
	)
	return i, err
}

const updateCustomer = `-- name: UpdateCustomer :execrows
UPDATE customers
SET code = $2, name = $3, surname = $4, phone = $5, address = $6, document_id = $7
WHERE id = $1
`

type UpdateCustomerParams struct {
	ID         int64
	Code       string
	Name       string
	Surname    string
	Phone      string
	Address    string
	DocumentID string
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateCustomer,
		arg.ID,
		arg.Code,
		arg.Name,
		arg.Surname,
		arg.Phone,
		arg.Address,
		arg.DocumentID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const insertSale = `-- name: InsertSale :one
INSERT INTO sales (invoice_number, sale_date, customer_id, subtotal, tax, total, payment_method, status, salesperson)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id
`

type InsertSaleParams struct {
	InvoiceNumber string
	SaleDate      pgtype.Timestamptz
	CustomerID    int64
	Subtotal      pgtype.Numeric
	Tax           pgtype.Numeric
	Total         pgtype.Numeric
	PaymentMethod string
	Status        string
	Salesperson   string
}

func (q *Queries) InsertSale(ctx context.Context, arg InsertSaleParams) (int64, error) {
	row := q.db.QueryRow(ctx, insertSale,
		arg.InvoiceNumber,
		arg.SaleDate,
		arg.CustomerID,
		arg.Subtotal,
		arg.Tax,
		arg.Total,
		arg.PaymentMethod,
		arg.Status,
		arg.Salesperson,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const insertSaleItem = `-- name: InsertSaleItem :exec
INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5)
`

type InsertSaleItemParams struct {
	SaleID    int64
	ProductID int64
	Quantity  int32
	UnitPrice pgtype.Numeric
	Subtotal  pgtype.Numeric
}

func (q *Queries) InsertSaleItem(ctx context.Context, arg InsertSaleItemParams) error {
	_, err := q.db.Exec(ctx, insertSaleItem,
		arg.SaleID,
		arg.ProductID,
		arg.Quantity,
		arg.UnitPrice,
		arg.Subtotal,
	)
	return err
}

const resetSaleItems = `-- name: ResetSaleItems :exec
DELETE FROM sale_items
`

func (q *Queries) ResetSaleItems(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetSaleItems)
	return err
}

const resetSales = `-- name: ResetSales :exec
DELETE FROM sales
`

func (q *Queries) ResetSales(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetSales)
	return err
}

const resetCustomers = `-- name: ResetCustomers :exec
DELETE FROM customers
`

func (q *Queries) ResetCustomers(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetCustomers)
	return err
}

const resetProducts = `-- name: ResetProducts :exec
DELETE FROM products
`

func (q *Queries) ResetProducts(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetProducts)
	return err
}

const resetCategories = `-- name: ResetCategories :exec
DELETE FROM categories WHERE id <> $1
`

// ResetCategories removes every category except keep, normally the
// fallback category new products are assigned to.
func (q *Queries) ResetCategories(ctx context.Context, keep int64) error {
	_, err := q.db.Exec(ctx, resetCategories, keep)
	return err
}

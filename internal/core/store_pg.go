package core

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	db "github.com/JonMunkholm/salesimport/internal/database"
)

// PostgresStore is a Store backed by the tables in database/schema.sql.
type PostgresStore struct {
	pool    *pgxpool.Pool
	queries *db.Queries
}

// NewPostgresStore wraps an open pool. The schema must already exist;
// see database.Migrate.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, queries: db.New(pool)}
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, Category{ID: r.ID, Name: r.Name, Description: r.Description})
	}
	return out, nil
}

func (s *PostgresStore) AddCategory(ctx context.Context, c Category) (Category, error) {
	row, err := s.queries.InsertCategory(ctx, db.InsertCategoryParams{
		Name:        c.Name,
		Description: c.Description,
	})
	if err != nil {
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	c.ID = row.ID
	return c, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.queries.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, productFromRow(r))
	}
	return out, nil
}

func (s *PostgresStore) AddProduct(ctx context.Context, p Product) (Product, error) {
	price, err := toPgNumeric(p.Price)
	if err != nil {
		return Product{}, err
	}
	row, err := s.queries.InsertProduct(ctx, db.InsertProductParams{
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Stock:       int32(p.Stock),
		CategoryID:  toPgInt8(p.CategoryID),
	})
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return productFromRow(row), nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p Product) error {
	price, err := toPgNumeric(p.Price)
	if err != nil {
		return err
	}
	n, err := s.queries.UpdateProduct(ctx, db.UpdateProductParams{
		ID:          p.ID,
		Code:        p.Code,
		Description: p.Description,
		Price:       price,
		Stock:       int32(p.Stock),
		CategoryID:  toPgInt8(p.CategoryID),
	})
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("product %d not found", p.ID)
	}
	return nil
}

func (s *PostgresStore) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := s.queries.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Customer, 0, len(rows))
	for _, r := range rows {
		out = append(out, customerFromRow(r))
	}
	return out, nil
}

func (s *PostgresStore) AddCustomer(ctx context.Context, c Customer) (Customer, error) {
	row, err := s.queries.InsertCustomer(ctx, db.InsertCustomerParams{
		Code:         c.Code,
		Name:         c.Name,
		Surname:      c.Surname,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		DocumentID:   c.DocumentID,
		Active:       c.Active,
		RegisteredAt: toPgTimestamptz(c.RegisteredAt),
	})
	if err != nil {
		return Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return customerFromRow(row), nil
}

func (s *PostgresStore) UpdateCustomer(ctx context.Context, c Customer) error {
	n, err := s.queries.UpdateCustomer(ctx, db.UpdateCustomerParams{
		ID:         c.ID,
		Code:       c.Code,
		Name:       c.Name,
		Surname:    c.Surname,
		Phone:      c.Phone,
		Address:    c.Address,
		DocumentID: c.DocumentID,
	})
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("customer %d not found", c.ID)
	}
	return nil
}

// AddSale writes the header and every line in one transaction.
func (s *PostgresStore) AddSale(ctx context.Context, sale Sale) (Sale, error) {
	subtotal, err := toPgNumeric(sale.Subtotal)
	if err != nil {
		return Sale{}, err
	}
	tax, err := toPgNumeric(sale.Tax)
	if err != nil {
		return Sale{}, err
	}
	total, err := toPgNumeric(sale.Total)
	if err != nil {
		return Sale{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Sale{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	q := s.queries.WithTx(tx)

	id, err := q.InsertSale(ctx, db.InsertSaleParams{
		InvoiceNumber: sale.InvoiceNumber,
		SaleDate:      toPgTimestamptz(sale.Date),
		CustomerID:    sale.CustomerID,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		Salesperson:   sale.Salesperson,
	})
	if err != nil {
		return Sale{}, fmt.Errorf("insert sale: %w", err)
	}

	for i, item := range sale.Items {
		unit, err := toPgNumeric(item.UnitPrice)
		if err != nil {
			return Sale{}, err
		}
		line, err := toPgNumeric(item.Subtotal)
		if err != nil {
			return Sale{}, err
		}
		if err := q.InsertSaleItem(ctx, db.InsertSaleItemParams{
			SaleID:    id,
			ProductID: item.ProductID,
			Quantity:  int32(item.Quantity),
			UnitPrice: unit,
			Subtotal:  line,
		}); err != nil {
			return Sale{}, fmt.Errorf("insert sale item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Sale{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	sale.ID = id
	return sale, nil
}

/* ----------------------------------------
	Pgx Helpers
---------------------------------------- */

func productFromRow(r db.Product) Product {
	p := Product{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Price:       fromPgNumeric(r.Price),
		Stock:       int(r.Stock),
	}
	if r.CategoryID.Valid {
		p.CategoryID = r.CategoryID.Int64
	}
	return p
}

func customerFromRow(r db.Customer) Customer {
	c := Customer{
		ID:         r.ID,
		Code:       r.Code,
		Name:       r.Name,
		Surname:    r.Surname,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		DocumentID: r.DocumentID,
		Active:     r.Active,
	}
	if r.RegisteredAt.Valid {
		c.RegisteredAt = r.RegisteredAt.Time
	}
	return c
}

func toPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("convert %s to numeric: %w", d, err)
	}
	return n, nil
}

// fromPgNumeric maps NULL and NaN to zero.
func fromPgNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).Set(n.Int), n.Exp)
}

func toPgInt8(id int64) pgtype.Int8 {
	if id == 0 {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: id, Valid: true}
}

func toPgTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   pgtype.Timestamptz
}

type Product struct {
	ID          int64
	Code        string
	Name        string
	Description string
	Price       pgtype.Numeric
	Stock       int32
	CategoryID  pgtype.Int8
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type Customer struct {
	ID           int64
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

type Sale struct {
	ID            int64
	InvoiceNumber string
	SaleDate      pgtype.Timestamptz
	CustomerID    int64
	Subtotal      pgtype.Numeric
	Tax           pgtype.Numeric
	Total         pgtype.Numeric
	PaymentMethod string
	Status        string
	Salesperson   string
	CreatedAt     pgtype.Timestamptz
}

type SaleItem struct {
	ID        int64
	SaleID    int64
	ProductID int64
	Quantity  int32
	UnitPrice pgtype.Numeric
	Subtotal  pgtype.Numeric
}

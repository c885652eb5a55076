// Package core provides the business logic for bulk sales imports.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ImportKind restricts which columns of a worksheet are considered.
type ImportKind string

const (
	KindAuto      ImportKind = "auto"
	KindProducts  ImportKind = "products"
	KindCustomers ImportKind = "customers"
	KindSales     ImportKind = "sales"
)

// ErrUnknownImportKind is returned by ParseImportKind.
var ErrUnknownImportKind = errors.New("unknown import kind")

// ParseImportKind accepts the kind names used by the HTTP API and the CLI.
// An empty value and "full" both mean auto detection.
func ParseImportKind(s string) (ImportKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "full", "completo":
		return KindAuto, nil
	case "products", "productos":
		return KindProducts, nil
	case "customers", "clientes":
		return KindCustomers, nil
	case "sales", "ventas":
		return KindSales, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownImportKind, s)
	}
}

// Category groups products. Categories are created lazily during imports
// and never updated by them.
type Category struct {
	ID          int64
	Name        string
	Description string
}

// Product is keyed by its name (case-insensitive) for import purposes.
type Product struct {
	ID          int64
	Code        string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int // may go negative after sales are recorded
	CategoryID  int64
}

// Customer is keyed by its email (case-insensitive) for import purposes.
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
	RegisteredAt time.Time
}

// SaleItem is a single invoice line.
type SaleItem struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Sale is an invoice header with its lines.
type Sale struct {
	ID            int64
	InvoiceNumber string
	Date          time.Time
	CustomerID    int64
	Items         []SaleItem
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	Status        string
	Salesperson   string
}

// DenormalizedRow is one worksheet row after column mapping and parsing.
// Optional numeric and date fields are nil when the cell was blank or
// could not be parsed.
type DenormalizedRow struct {
	RowNumber int

	ProductCode        string
	ProductName        string
	ProductDescription string
	Price              *decimal.Decimal
	Stock              *int
	CategoryName       string

	CustomerCode     string
	CustomerName     string
	CustomerSurname  string
	CustomerEmail    string
	CustomerPhone    string
	CustomerAddress  string
	CustomerDocument string

	InvoiceNumber string
	SaleDate      *time.Time
	Quantity      *int
	UnitPrice     *decimal.Decimal
	PaymentMethod string
	SaleStatus    string

	HasProduct  bool
	HasCustomer bool
	HasSale     bool

	// Raw holds the trimmed cell text of every non-blank mapped column,
	// including cells whose value failed to parse.
	Raw map[Field]string
}

// Empty reports whether no domain field was recognised in the row.
func (r *DenormalizedRow) Empty() bool {
	return !r.HasProduct && !r.HasCustomer && !r.HasSale
}

// Defaults applied to values the worksheet does not provide.
const (
	DefaultPaymentMethod        = "Efectivo"
	DefaultSaleStatus           = "Completada"
	ImportSalesperson           = "importacion"
	AutoCategoryDescription     = "Categoría creada automáticamente durante la importación"
	PlaceholderEmailDomain      = "importacion.local"
	SyntheticInvoicePrefix      = "IMP-"
	DefaultFallbackCategoryID   = int64(1)
	FallbackCategoryName        = "General"
	FallbackCategoryDescription = "Categoría por defecto"
	DefaultImportTaxRateString  = "0.16"
)

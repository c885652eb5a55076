package core

// reconcile.go applies extracted rows to the store.
//
// Rows are processed strictly in worksheet order, one at a time. Each row
// runs the category, product, customer and sale steps against the run's
// entity cache. A row that fails is recorded and the batch moves on; there
// is no rollback of the writes earlier steps of that row already made.
//
// Step failure rules:
//   - product validation failure abandons the rest of the row
//   - customer validation failure is recorded and the sale step still runs
//   - sale failures only affect the sale step
//   - any system error abandons the rest of the row

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// errAbandonRow stops the remaining steps of a row after its error was recorded.
var errAbandonRow = errors.New("row abandoned")

// EngineOptions tunes how rows are turned into entities.
type EngineOptions struct {
	// TaxRate is applied to the subtotal of every imported sale.
	TaxRate decimal.Decimal
	// FallbackCategoryID is assigned to new products with no resolvable category.
	FallbackCategoryID int64
	// Now supplies timestamps for defaults. Defaults to time.Now.
	Now func() time.Time
	// NewID supplies unique tokens for synthesized emails and invoice numbers.
	NewID func() string
}

func (o EngineOptions) withDefaults() EngineOptions {
	if o.TaxRate.IsZero() {
		o.TaxRate = decimal.RequireFromString(DefaultImportTaxRateString)
	}
	if o.FallbackCategoryID == 0 {
		o.FallbackCategoryID = DefaultFallbackCategoryID
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = func() string { return uuid.New().String() }
	}
	return o
}

// importRun is the state shared by every step of one import.
type importRun struct {
	ctx    context.Context
	store  Store
	cache  *entityCache
	result *ImportResult
	opts   EngineOptions
	logger *slog.Logger
}

// rowState carries what earlier steps of a row resolved for later ones.
type rowState struct {
	row         *DenormalizedRow
	categoryID  int64
	productKey  string
	customerKey string
	errors      int
}

// reconcile runs every row and fills the counters of result.
func (run *importRun) reconcile(rows []DenormalizedRow) {
	run.result.TotalRows = len(rows)
	for i := range rows {
		if run.processRow(&rows[i]) {
			run.result.ErrorRows++
		} else {
			run.result.SuccessfulRows++
		}
	}
}

// processRow is the row-scoped failure boundary. It reports whether the
// row produced at least one error.
func (run *importRun) processRow(row *DenormalizedRow) (failed bool) {
	st := &rowState{row: row}

	defer func() {
		if p := recover(); p != nil {
			run.logger.Error("panic while importing row", "row", row.RowNumber, "panic", p)
			run.record(st, systemError("unexpected error", fmt.Errorf("panic: %v", p)))
			failed = true
		}
	}()

	steps := []func(*rowState) error{
		run.reconcileCategory,
		run.reconcileProduct,
		run.reconcileCustomer,
		run.reconcileSale,
	}
	for _, step := range steps {
		if err := step(st); err != nil {
			if !errors.Is(err, errAbandonRow) {
				run.record(st, systemError("unexpected error", err))
			}
			break
		}
	}

	return st.errors > 0
}

// record appends an error for the current row. System errors also abandon
// the row, which callers signal by returning errAbandonRow.
func (run *importRun) record(st *rowState, err *RowError) {
	st.errors++
	rec := recordFromError(st.row.RowNumber, err)
	run.result.addError(rec)
	run.logger.Debug("row error",
		"row", rec.Row,
		"entity", rec.Entity,
		"class", rec.Class,
		"field", rec.Field,
		"message", rec.Message,
	)
}

func (run *importRun) abandon(st *rowState, err *RowError) error {
	run.record(st, err)
	return errAbandonRow
}

func (run *importRun) reconcileCategory(st *rowState) error {
	row := st.row
	if !row.HasProduct || row.CategoryName == "" {
		return nil
	}

	if cat, ok := run.cache.category(row.CategoryName); ok {
		st.categoryID = cat.ID
		return nil
	}

	created, err := run.store.AddCategory(run.ctx, Category{
		Name:        row.CategoryName,
		Description: AutoCategoryDescription,
	})
	if err != nil {
		return run.abandon(st, systemError("create category "+row.CategoryName, err))
	}
	run.cache.putCategory(created)
	run.result.CategoriesCreated++
	st.categoryID = created.ID
	return nil
}

func (run *importRun) reconcileProduct(st *rowState) error {
	row := st.row
	if !row.HasProduct {
		return nil
	}

	if row.ProductName == "" {
		// Without a name the row can still point at an existing product by code.
		if row.ProductCode != "" {
			if key, ok := run.cache.productKeyByCode(row.ProductCode); ok {
				st.productKey = key
			}
		}
		return nil
	}

	if existing, ok := run.cache.product(row.ProductName); ok {
		updated := existing
		mergeProduct(&updated, row, st.categoryID)
		if err := run.store.UpdateProduct(run.ctx, updated); err != nil {
			return run.abandon(st, systemError("update product "+existing.Name, err))
		}
		run.cache.putProduct(updated)
		run.result.ProductsUpdated++
		st.productKey = normalizeKey(updated.Name)
		return nil
	}

	if row.Price == nil || !row.Price.IsPositive() {
		return run.abandon(st, validationError(EntityProduct, FieldPrice.String(), row.Raw[FieldPrice],
			"price must be greater than zero to create product "+row.ProductName))
	}

	p := Product{
		Code:        row.ProductCode,
		Name:        row.ProductName,
		Description: row.ProductDescription,
		Price:       *row.Price,
		CategoryID:  st.categoryID,
	}
	if row.Stock != nil {
		p.Stock = *row.Stock
	}
	if p.CategoryID == 0 {
		p.CategoryID = run.opts.FallbackCategoryID
	}

	created, err := run.store.AddProduct(run.ctx, p)
	if err != nil {
		return run.abandon(st, systemError("create product "+row.ProductName, err))
	}
	run.cache.putProduct(created)
	run.result.ProductsCreated++
	st.productKey = normalizeKey(created.Name)
	return nil
}

// mergeProduct overwrites only the values the row actually provides.
func mergeProduct(p *Product, row *DenormalizedRow, categoryID int64) {
	if row.ProductDescription != "" {
		p.Description = row.ProductDescription
	}
	if row.Price != nil && row.Price.IsPositive() {
		p.Price = *row.Price
	}
	if row.Stock != nil && *row.Stock > 0 {
		p.Stock = *row.Stock
	}
	if categoryID != 0 {
		p.CategoryID = categoryID
	}
	if row.ProductCode != "" {
		p.Code = row.ProductCode
	}
}

func (run *importRun) reconcileCustomer(st *rowState) error {
	row := st.row
	if !row.HasCustomer {
		return nil
	}

	if row.CustomerName == "" && row.CustomerEmail == "" {
		run.record(st, validationError(EntityCustomer, FieldCustomerName.String(), "",
			"customer name or email is required"))
		return nil
	}

	if row.CustomerEmail != "" {
		if existing, ok := run.cache.customer(row.CustomerEmail); ok {
			updated := existing
			mergeCustomer(&updated, row)
			if err := run.store.UpdateCustomer(run.ctx, updated); err != nil {
				return run.abandon(st, systemError("update customer "+existing.Email, err))
			}
			run.cache.putCustomer(updated)
			run.result.CustomersUpdated++
			st.customerKey = normalizeKey(updated.Email)
			return nil
		}
	}

	email := row.CustomerEmail
	if email == "" {
		email = fmt.Sprintf("sin-email-%s@%s", run.opts.NewID(), PlaceholderEmailDomain)
	}

	created, err := run.store.AddCustomer(run.ctx, Customer{
		Code:         row.CustomerCode,
		Name:         row.CustomerName,
		Surname:      row.CustomerSurname,
		Email:        email,
		Phone:        row.CustomerPhone,
		Address:      row.CustomerAddress,
		DocumentID:   row.CustomerDocument,
		Active:       true,
		RegisteredAt: run.opts.Now(),
	})
	if err != nil {
		return run.abandon(st, systemError("create customer "+email, err))
	}
	run.cache.putCustomer(created)
	run.result.CustomersCreated++
	st.customerKey = normalizeKey(created.Email)
	return nil
}

// mergeCustomer overwrites only non-blank values. Email is the key and
// never changes; registration date and active flag are left alone.
func mergeCustomer(c *Customer, row *DenormalizedRow) {
	if row.CustomerCode != "" {
		c.Code = row.CustomerCode
	}
	if row.CustomerName != "" {
		c.Name = row.CustomerName
	}
	if row.CustomerSurname != "" {
		c.Surname = row.CustomerSurname
	}
	if row.CustomerPhone != "" {
		c.Phone = row.CustomerPhone
	}
	if row.CustomerAddress != "" {
		c.Address = row.CustomerAddress
	}
	if row.CustomerDocument != "" {
		c.DocumentID = row.CustomerDocument
	}
}

func (run *importRun) reconcileSale(st *rowState) error {
	row := st.row
	if !row.HasProduct || !row.HasCustomer || !row.HasSale {
		return nil
	}

	if row.Quantity == nil || *row.Quantity <= 0 {
		run.record(st, validationError(EntitySale, FieldQuantity.String(), row.Raw[FieldQuantity],
			"quantity must be greater than zero"))
		return nil
	}
	qty := *row.Quantity

	product, ok := run.cache.product(st.productKey)
	if st.productKey == "" || !ok {
		run.record(st, referenceError(EntitySale, FieldProductName.String(), productReference(row),
			"product for sale not found"))
		return nil
	}

	customerKey := st.customerKey
	if customerKey == "" {
		customerKey = normalizeKey(row.CustomerEmail)
	}
	customer, ok := run.cache.customer(customerKey)
	if customerKey == "" || !ok {
		run.record(st, referenceError(EntitySale, FieldCustomerEmail.String(), customerReference(row),
			"customer for sale not found"))
		return nil
	}

	unitPrice := product.Price
	if row.UnitPrice != nil && row.UnitPrice.IsPositive() {
		unitPrice = *row.UnitPrice
	}
	item := SaleItem{
		ProductID: product.ID,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}

	subtotal := item.Subtotal
	tax := subtotal.Mul(run.opts.TaxRate)

	sale := Sale{
		InvoiceNumber: row.InvoiceNumber,
		Date:          run.opts.Now(),
		CustomerID:    customer.ID,
		Items:         []SaleItem{item},
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
		PaymentMethod: row.PaymentMethod,
		Status:        row.SaleStatus,
		Salesperson:   ImportSalesperson,
	}
	if sale.InvoiceNumber == "" {
		sale.InvoiceNumber = SyntheticInvoicePrefix + strings.ToUpper(run.opts.NewID())
	}
	if row.SaleDate != nil {
		sale.Date = *row.SaleDate
	}
	if sale.PaymentMethod == "" {
		sale.PaymentMethod = DefaultPaymentMethod
	}
	if sale.Status == "" {
		sale.Status = DefaultSaleStatus
	}

	if _, err := run.store.AddSale(run.ctx, sale); err != nil {
		return run.abandon(st, systemError("create sale "+sale.InvoiceNumber, err))
	}
	run.result.SalesCreated++

	updated := product
	updated.Stock -= qty
	if err := run.store.UpdateProduct(run.ctx, updated); err != nil {
		return run.abandon(st, systemError("decrement stock of "+product.Name, err))
	}
	run.cache.putProduct(updated)
	if updated.Stock < 0 {
		run.logger.Debug("stock went negative", "product", updated.Name, "stock", updated.Stock, "row", row.RowNumber)
	}
	return nil
}

func productReference(row *DenormalizedRow) string {
	if row.ProductName != "" {
		return row.ProductName
	}
	return row.ProductCode
}

func customerReference(row *DenormalizedRow) string {
	if row.CustomerEmail != "" {
		return row.CustomerEmail
	}
	return strings.TrimSpace(row.CustomerName + " " + row.CustomerSurname)
}

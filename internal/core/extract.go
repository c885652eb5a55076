package core

// extract.go converts worksheet rows into DenormalizedRows.
//
// Extraction never fails: a cell that cannot be parsed as its field's type
// simply leaves the field unset. Its raw text is kept in Row.Raw so later
// validation messages can quote it.

import (
	"strings"
)

// ExtractRows converts the data rows that follow a header row.
// lines[i] is the 1-based worksheet line of rows[i].
// Rows with no non-blank mapped cell are omitted.
func ExtractRows(rows [][]string, lines []int, cols ColumnMap) []DenormalizedRow {
	out := make([]DenormalizedRow, 0, len(rows))
	for i, cells := range rows {
		row, ok := ExtractRow(cells, cols)
		if !ok {
			continue
		}
		row.RowNumber = lines[i]
		out = append(out, row)
	}
	return out
}

// ExtractRow parses a single row. ok is false when none of the mapped cells
// held a usable value.
func ExtractRow(cells []string, cols ColumnMap) (DenormalizedRow, bool) {
	var row DenormalizedRow

	for idx, field := range cols {
		if idx >= len(cells) {
			continue
		}
		value := strings.TrimSpace(cells[idx])
		if value == "" {
			continue
		}
		if row.Raw == nil {
			row.Raw = make(map[Field]string, len(cols))
		}
		row.Raw[field] = value

		if row.set(field, value) {
			switch field.Spec().Domain {
			case DomainProduct:
				row.HasProduct = true
			case DomainCustomer:
				row.HasCustomer = true
			case DomainSale:
				row.HasSale = true
			}
		}
	}

	if row.Empty() {
		return DenormalizedRow{}, false
	}
	return row, true
}

// set stores a parsed value and reports whether parsing succeeded.
func (r *DenormalizedRow) set(field Field, value string) bool {
	switch field.Spec().kind {
	case valueDecimal:
		d, ok := ParseDecimal(value)
		if !ok {
			return false
		}
		switch field {
		case FieldPrice:
			r.Price = &d
		case FieldUnitPrice:
			r.UnitPrice = &d
		}
		return true

	case valueInt:
		n, ok := ParseInt(value)
		if !ok {
			return false
		}
		switch field {
		case FieldStock:
			r.Stock = &n
		case FieldQuantity:
			r.Quantity = &n
		}
		return true

	case valueDate:
		t, ok := ParseDate(value)
		if !ok {
			return false
		}
		r.SaleDate = &t
		return true
	}

	value = CleanCell(value)
	if value == "" {
		return false
	}

	switch field {
	case FieldProductCode:
		r.ProductCode = value
	case FieldProductName:
		r.ProductName = value
	case FieldProductDescription:
		r.ProductDescription = value
	case FieldCategory:
		r.CategoryName = value
	case FieldCustomerCode:
		r.CustomerCode = value
	case FieldCustomerName:
		r.CustomerName = value
	case FieldCustomerSurname:
		r.CustomerSurname = value
	case FieldCustomerEmail:
		r.CustomerEmail = value
	case FieldCustomerPhone:
		r.CustomerPhone = value
	case FieldCustomerAddress:
		r.CustomerAddress = value
	case FieldCustomerDocument:
		r.CustomerDocument = value
	case FieldInvoiceNumber:
		r.InvoiceNumber = value
	case FieldPaymentMethod:
		r.PaymentMethod = value
	case FieldSaleStatus:
		r.SaleStatus = value
	default:
		return false
	}
	return true
}

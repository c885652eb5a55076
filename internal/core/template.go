package core

// template.go produces example worksheets users fill in before importing.
//
// Each mode lists the canonical headers for its fields plus one realistic
// example row. The example rows are consistent across modes: importing the
// products, customers and sales templates in that order, or the full
// template alone, creates one linked category, product, customer and sale.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TemplateMode selects which columns a template carries.
type TemplateMode string

const (
	TemplateProducts  TemplateMode = "products"
	TemplateCustomers TemplateMode = "customers"
	TemplateSales     TemplateMode = "sales"
	TemplateFull      TemplateMode = "full"
)

// TemplateFormat is the output encoding of a template.
type TemplateFormat string

const (
	FormatXLSX TemplateFormat = "xlsx"
	FormatCSV  TemplateFormat = "csv"
)

// ErrUnknownTemplateMode is returned for modes outside the four supported ones.
var ErrUnknownTemplateMode = errors.New("unknown template mode")

// ErrUnknownTemplateFormat is returned for formats other than xlsx and csv.
var ErrUnknownTemplateFormat = errors.New("unknown template format")

const (
	templateDataSheet         = "Datos"
	templateInstructionsSheet = "Instrucciones"
)

// exampleValues is the single example row shared by every template.
var exampleValues = map[Field]string{
	FieldProductCode:        "LAP-001",
	FieldProductName:        "Laptop Dell",
	FieldProductDescription: "Laptop Dell Inspiron 15 16GB RAM",
	FieldPrice:              "899.99",
	FieldStock:              "10",
	FieldCategory:           "Tecnología",

	FieldCustomerCode:     "CLI-001",
	FieldCustomerName:     "Juan",
	FieldCustomerSurname:  "Pérez",
	FieldCustomerEmail:    "juan.perez@example.com",
	FieldCustomerPhone:    "+57 300 123 4567",
	FieldCustomerAddress:  "Calle 123 #45-67, Bogotá",
	FieldCustomerDocument: "1234567890",

	FieldInvoiceNumber: "FAC-0001",
	FieldSaleDate:      "2024-01-15",
	FieldQuantity:      "2",
	FieldUnitPrice:     "899.99",
	FieldPaymentMethod: DefaultPaymentMethod,
	FieldSaleStatus:    DefaultSaleStatus,
}

var templateFields = map[TemplateMode][]Field{
	TemplateProducts: {
		FieldProductCode, FieldProductName, FieldProductDescription,
		FieldPrice, FieldStock, FieldCategory,
	},
	TemplateCustomers: {
		FieldCustomerCode, FieldCustomerName, FieldCustomerSurname, FieldCustomerEmail,
		FieldCustomerPhone, FieldCustomerAddress, FieldCustomerDocument,
	},
	TemplateSales: {
		FieldInvoiceNumber, FieldSaleDate,
		FieldProductCode, FieldProductName,
		FieldCustomerEmail, FieldCustomerName, FieldCustomerSurname,
		FieldQuantity, FieldUnitPrice, FieldPaymentMethod, FieldSaleStatus,
	},
	TemplateFull: {
		FieldProductCode, FieldProductName, FieldProductDescription,
		FieldPrice, FieldStock, FieldCategory,
		FieldCustomerCode, FieldCustomerName, FieldCustomerSurname, FieldCustomerEmail,
		FieldCustomerPhone, FieldCustomerAddress, FieldCustomerDocument,
		FieldInvoiceNumber, FieldSaleDate, FieldQuantity, FieldUnitPrice,
		FieldPaymentMethod, FieldSaleStatus,
	},
}

// ParseTemplateMode accepts English and Spanish mode names.
func ParseTemplateMode(s string) (TemplateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "products", "productos":
		return TemplateProducts, nil
	case "customers", "clientes":
		return TemplateCustomers, nil
	case "sales", "ventas":
		return TemplateSales, nil
	case "full", "completo", "":
		return TemplateFull, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplateMode, s)
	}
}

// ParseTemplateFormat defaults to xlsx.
func ParseTemplateFormat(s string) (TemplateFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplateFormat, s)
	}
}

// FileName is the suggested download name for a template.
func (m TemplateMode) FileName(format TemplateFormat) string {
	return fmt.Sprintf("plantilla_importacion_%s.%s", m, format)
}

// TemplateFields returns the columns of a template mode in order.
func TemplateFields(mode TemplateMode) ([]Field, error) {
	fields, ok := templateFields[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplateMode, mode)
	}
	return fields, nil
}

// TemplateRows returns the header row and example row of a template mode.
func TemplateRows(mode TemplateMode) (header, example []string, err error) {
	fields, err := TemplateFields(mode)
	if err != nil {
		return nil, nil, err
	}
	header = make([]string, len(fields))
	example = make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Spec().Header
		example[i] = exampleValues[f]
	}
	return header, example, nil
}

// GenerateTemplate renders a template in the requested format.
func GenerateTemplate(mode TemplateMode, format TemplateFormat) ([]byte, error) {
	switch format {
	case FormatCSV:
		return generateCSVTemplate(mode)
	case FormatXLSX:
		return generateXLSXTemplate(mode)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplateFormat, format)
	}
}

func generateCSVTemplate(mode TemplateMode) ([]byte, error) {
	header, example, err := TemplateRows(mode)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := w.Write(example); err != nil {
		return nil, fmt.Errorf("write example: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func generateXLSXTemplate(mode TemplateMode) ([]byte, error) {
	fields, err := TemplateFields(mode)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateDataSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, field := range fields {
		headerCell, _ := excelize.CoordinatesToCellName(i+1, 1)
		exampleCell, _ := excelize.CoordinatesToCellName(i+1, 2)

		if err := f.SetCellStr(templateDataSheet, headerCell, field.Spec().Header); err != nil {
			return nil, fmt.Errorf("write header %s: %w", headerCell, err)
		}
		if err := f.SetCellStr(templateDataSheet, exampleCell, exampleValues[field]); err != nil {
			return nil, fmt.Errorf("write example %s: %w", exampleCell, err)
		}
		_ = f.SetCellStyle(templateDataSheet, headerCell, headerCell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(templateDataSheet, colName, colName, 22)
	}

	if err := writeInstructions(f, mode, fields); err != nil {
		return nil, err
	}

	idx, err := f.GetSheetIndex(templateDataSheet)
	if err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeInstructions(f *excelize.File, mode TemplateMode, fields []Field) error {
	sheet := templateInstructionsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create instructions sheet: %w", err)
	}

	lines := []string{
		"Instrucciones de importación (" + string(mode) + ")",
		"",
		"- Complete una fila por producto, cliente o venta. Una fila puede combinar los tres.",
		"- Los productos se identifican por nombre y los clientes por email (sin distinguir mayúsculas).",
		"- Las filas existentes se actualizan solo con los valores informados.",
		"- Cada venta descuenta la cantidad vendida del stock del producto.",
		"- Los encabezados admiten variantes: se ignoran mayúsculas, tildes, espacios y guiones.",
	}
	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellStr(sheet, cell, line); err != nil {
			return fmt.Errorf("write instructions: %w", err)
		}
	}

	start := len(lines) + 2
	for col, title := range []string{"Columna", "Descripción", "Variantes aceptadas", "Ejemplo"} {
		cell, _ := excelize.CoordinatesToCellName(col+1, start)
		_ = f.SetCellStr(sheet, cell, title)
	}
	for i, field := range fields {
		spec := field.Spec()
		values := []string{spec.Header, spec.Description, strings.Join(spec.Aliases, ", "), exampleValues[field]}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, start+i+1)
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return fmt.Errorf("write instructions: %w", err)
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 70)
	_ = f.SetColWidth(sheet, "C", "C", 45)
	_ = f.SetColWidth(sheet, "D", "D", 30)
	return nil
}

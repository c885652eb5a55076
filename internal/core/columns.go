package core

// columns.go maps worksheet headers onto the fields the engine understands.
//
// Headers are compared after normalization (case, accents, spaces and
// punctuation are ignored) against a fixed alias table, so "Código Producto",
// "codigo_producto" and "CODIGOPRODUCTO" all resolve to the same field.

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field identifies a column the engine can consume.
type Field int

const (
	FieldProductCode Field = iota + 1
	FieldProductName
	FieldProductDescription
	FieldPrice
	FieldStock
	FieldCategory

	FieldCustomerCode
	FieldCustomerName
	FieldCustomerSurname
	FieldCustomerEmail
	FieldCustomerPhone
	FieldCustomerAddress
	FieldCustomerDocument

	FieldInvoiceNumber
	FieldSaleDate
	FieldQuantity
	FieldUnitPrice
	FieldPaymentMethod
	FieldSaleStatus
)

// Domain groups fields by the entity they describe.
type Domain int

const (
	DomainProduct Domain = iota + 1
	DomainCustomer
	DomainSale
)

type valueKind int

const (
	valueText valueKind = iota
	valueDecimal
	valueInt
	valueDate
)

// FieldSpec describes one importable column.
type FieldSpec struct {
	Field       Field
	Header      string // canonical header written to templates
	Domain      Domain
	Aliases     []string
	Description string
	kind        valueKind
}

// fieldSpecs is ordered the way templates lay out their columns.
var fieldSpecs = []FieldSpec{
	{Field: FieldProductCode, Header: "CodigoProducto", Domain: DomainProduct,
		Aliases:     []string{"codigo", "codigoproducto", "sku", "referencia", "codproducto"},
		Description: "Código o SKU del producto (opcional)"},
	{Field: FieldProductName, Header: "Producto", Domain: DomainProduct,
		Aliases:     []string{"producto", "nombreproducto", "articulo"},
		Description: "Nombre del producto. Identifica el producto en importaciones posteriores"},
	{Field: FieldProductDescription, Header: "Descripcion", Domain: DomainProduct,
		Aliases:     []string{"descripcion", "descripcionproducto", "detalle"},
		Description: "Descripción del producto"},
	{Field: FieldPrice, Header: "Precio", Domain: DomainProduct, kind: valueDecimal,
		Aliases:     []string{"precio", "precioproducto", "price", "preciolista"},
		Description: "Precio unitario del producto. Obligatorio y mayor que cero para productos nuevos"},
	{Field: FieldStock, Header: "Stock", Domain: DomainProduct, kind: valueInt,
		Aliases:     []string{"stock", "existencias", "inventario"},
		Description: "Unidades disponibles (número entero)"},
	{Field: FieldCategory, Header: "Categoria", Domain: DomainProduct,
		Aliases:     []string{"categoria", "nombrecategoria", "category"},
		Description: "Nombre de la categoría. Se crea si no existe"},

	{Field: FieldCustomerCode, Header: "CodigoCliente", Domain: DomainCustomer,
		Aliases:     []string{"codigocliente", "codcliente"},
		Description: "Código del cliente (opcional)"},
	{Field: FieldCustomerName, Header: "Nombre", Domain: DomainCustomer,
		Aliases:     []string{"nombre", "cliente", "nombrecliente"},
		Description: "Nombre del cliente. Obligatorio si no se indica email"},
	{Field: FieldCustomerSurname, Header: "Apellido", Domain: DomainCustomer,
		Aliases:     []string{"apellido", "apellidos", "apellidocliente"},
		Description: "Apellido del cliente"},
	{Field: FieldCustomerEmail, Header: "Email", Domain: DomainCustomer,
		Aliases:     []string{"email", "correo", "correoelectronico", "emailcliente", "mail"},
		Description: "Email del cliente. Identifica al cliente en importaciones posteriores"},
	{Field: FieldCustomerPhone, Header: "Telefono", Domain: DomainCustomer,
		Aliases:     []string{"telefono", "celular", "movil", "telefonocliente"},
		Description: "Teléfono de contacto"},
	{Field: FieldCustomerAddress, Header: "Direccion", Domain: DomainCustomer,
		Aliases:     []string{"direccion", "domicilio", "direccioncliente"},
		Description: "Dirección del cliente"},
	{Field: FieldCustomerDocument, Header: "Documento", Domain: DomainCustomer,
		Aliases:     []string{"documento", "cedula", "nit", "dni", "documentoidentidad", "identificacion"},
		Description: "Documento de identidad"},

	{Field: FieldInvoiceNumber, Header: "NumeroFactura", Domain: DomainSale,
		Aliases:     []string{"factura", "numerofactura", "nrofactura", "nofactura"},
		Description: "Número de factura. Se genera automáticamente si se deja vacío"},
	{Field: FieldSaleDate, Header: "Fecha", Domain: DomainSale, kind: valueDate,
		Aliases:     []string{"fecha", "fechaventa", "fechafactura"},
		Description: "Fecha de la venta (AAAA-MM-DD). Por defecto la fecha de importación"},
	{Field: FieldQuantity, Header: "Cantidad", Domain: DomainSale, kind: valueInt,
		Aliases:     []string{"cantidad", "cantidadvendida", "unidades"},
		Description: "Unidades vendidas. Obligatorio y mayor que cero"},
	{Field: FieldUnitPrice, Header: "PrecioUnitario", Domain: DomainSale, kind: valueDecimal,
		Aliases:     []string{"preciounitario", "precioventa"},
		Description: "Precio de venta por unidad. Por defecto el precio del producto"},
	{Field: FieldPaymentMethod, Header: "MetodoPago", Domain: DomainSale,
		Aliases:     []string{"metodopago", "formapago", "mediopago"},
		Description: "Método de pago. Por defecto " + DefaultPaymentMethod},
	{Field: FieldSaleStatus, Header: "Estado", Domain: DomainSale,
		Aliases:     []string{"estado", "estadoventa"},
		Description: "Estado de la venta. Por defecto " + DefaultSaleStatus},
}

var (
	specByField = make(map[Field]FieldSpec, len(fieldSpecs))
	aliasIndex  = make(map[string]Field)
)

func init() {
	for _, spec := range fieldSpecs {
		specByField[spec.Field] = spec
		for _, alias := range spec.Aliases {
			aliasIndex[alias] = spec.Field
		}
	}
}

// Spec returns the column description for a field.
func (f Field) Spec() FieldSpec {
	return specByField[f]
}

func (f Field) String() string {
	if spec, ok := specByField[f]; ok {
		return spec.Header
	}
	return "desconocido"
}

// salesReferenceFields are the product and customer columns a sales-only
// import still needs to locate the entities a sale points at.
var salesReferenceFields = map[Field]bool{
	FieldProductCode:     true,
	FieldProductName:     true,
	FieldCustomerName:    true,
	FieldCustomerSurname: true,
	FieldCustomerEmail:   true,
}

// Accepts reports whether a forced import kind consumes the field.
func (k ImportKind) Accepts(f Field) bool {
	spec, ok := specByField[f]
	if !ok {
		return false
	}
	switch k {
	case KindProducts:
		return spec.Domain == DomainProduct
	case KindCustomers:
		return spec.Domain == DomainCustomer
	case KindSales:
		return spec.Domain == DomainSale || salesReferenceFields[f]
	default:
		return true
	}
}

// ColumnMap maps worksheet column index to field.
type ColumnMap map[int]Field

// Fields returns the mapped fields ordered by column index.
func (m ColumnMap) Fields() []Field {
	maxCol := -1
	for col := range m {
		if col > maxCol {
			maxCol = col
		}
	}
	fields := make([]Field, 0, len(m))
	for col := 0; col <= maxCol; col++ {
		if f, ok := m[col]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// MapColumns resolves a header row. Headers that match no alias, or whose
// field the import kind does not accept, are returned as unmapped.
// When two headers resolve to the same field the later column wins.
func MapColumns(header []string, kind ImportKind) (ColumnMap, []string) {
	cols := make(ColumnMap, len(header))
	byField := make(map[Field]int, len(header))
	var unmapped []string

	for i, h := range header {
		key := NormalizeHeader(h)
		if key == "" {
			continue
		}
		field, ok := aliasIndex[key]
		if !ok || !kind.Accepts(field) {
			unmapped = append(unmapped, strings.TrimSpace(h))
			continue
		}
		if prev, dup := byField[field]; dup {
			delete(cols, prev)
		}
		byField[field] = i
		cols[i] = field
	}

	return cols, unmapped
}

// NormalizeHeader folds a header into its alias-table form.
func NormalizeHeader(h string) string {
	h = strings.ToLower(CleanCell(h))

	folded, _, err := transform.String(accentFolder(), h)
	if err == nil {
		h = folded
	}

	var b strings.Builder
	b.Grow(len(h))
	for _, r := range h {
		switch r {
		case ' ', '_', '-', '.', '\t', '#', '°', 'º':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// accentFolder strips combining marks so "código" matches "codigo".
// transform.Chain keeps state, so a fresh chain is built per call.
func accentFolder() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Código Producto", want: "codigoproducto"},
		{input: "codigo_producto", want: "codigoproducto"},
		{input: "  PRECIO  ", want: "precio"},
		{input: "Teléfono", want: "telefono"},
		{input: "Dirección-Cliente", want: "direccioncliente"},
		{input: "No. Factura", want: "nofactura"},
		{input: `="Email"`, want: "email"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.input))
		})
	}
}

func TestMapColumns_Aliases(t *testing.T) {
	header := []string{"SKU", "Nombre Producto", "Precio", "Existencias", "Categoría", "Cliente", "Correo Electrónico", "Cédula", "Fecha Venta", "Cantidad Vendida", "Forma Pago"}

	cols, unmapped := MapColumns(header, KindAuto)

	assert.Empty(t, unmapped)
	assert.Equal(t, ColumnMap{
		0:  FieldProductCode,
		1:  FieldProductName,
		2:  FieldPrice,
		3:  FieldStock,
		4:  FieldCategory,
		5:  FieldCustomerName,
		6:  FieldCustomerEmail,
		7:  FieldCustomerDocument,
		8:  FieldSaleDate,
		9:  FieldQuantity,
		10: FieldPaymentMethod,
	}, cols)
}

func TestMapColumns_UnknownHeadersAreReported(t *testing.T) {
	cols, unmapped := MapColumns([]string{"Producto", "Color", "", "Observaciones"}, KindAuto)

	assert.Equal(t, ColumnMap{0: FieldProductName}, cols)
	assert.Equal(t, []string{"Color", "Observaciones"}, unmapped)
}

func TestMapColumns_LastDuplicateWins(t *testing.T) {
	cols, _ := MapColumns([]string{"Precio", "Producto", "price"}, KindAuto)

	assert.Equal(t, ColumnMap{1: FieldProductName, 2: FieldPrice}, cols)
}

func TestMapColumns_KindFilter(t *testing.T) {
	header := []string{"Producto", "Precio", "Email", "Nombre", "Cantidad", "Telefono"}

	tests := []struct {
		kind ImportKind
		want []Field
	}{
		{kind: KindAuto, want: []Field{FieldProductName, FieldPrice, FieldCustomerEmail, FieldCustomerName, FieldQuantity, FieldCustomerPhone}},
		{kind: KindProducts, want: []Field{FieldProductName, FieldPrice}},
		{kind: KindCustomers, want: []Field{FieldCustomerEmail, FieldCustomerName, FieldCustomerPhone}},
		{kind: KindSales, want: []Field{FieldProductName, FieldCustomerEmail, FieldCustomerName, FieldQuantity}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			cols, _ := MapColumns(header, tt.kind)
			assert.Equal(t, tt.want, cols.Fields())
		})
	}
}

func TestAliasTableHasNoConflicts(t *testing.T) {
	seen := make(map[string]Field)
	for _, spec := range fieldSpecs {
		require.NotEmpty(t, spec.Aliases, "field %s has no aliases", spec.Header)
		assert.Contains(t, spec.Aliases, NormalizeHeader(spec.Header), "canonical header of %s must be an alias", spec.Header)
		for _, alias := range spec.Aliases {
			if prev, ok := seen[alias]; ok {
				t.Errorf("alias %q used by both %s and %s", alias, prev, spec.Field)
			}
			seen[alias] = spec.Field
		}
	}
}

func TestParseImportKind(t *testing.T) {
	tests := []struct {
		input   string
		want    ImportKind
		wantErr bool
	}{
		{input: "", want: KindAuto},
		{input: "full", want: KindAuto},
		{input: "Products", want: KindProducts},
		{input: "clientes", want: KindCustomers},
		{input: "ventas", want: KindSales},
		{input: "invoices", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseImportKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

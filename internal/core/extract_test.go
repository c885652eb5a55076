package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRow_TypedFields(t *testing.T) {
	cols, _ := MapColumns([]string{"Producto", "Precio", "Stock", "Email", "Fecha", "Cantidad", "PrecioUnitario"}, KindAuto)

	row, ok := ExtractRow([]string{" Laptop Dell ", "$1,299.50", "10", "ana@example.com", "2024-01-15", "3", "1200"}, cols)
	require.True(t, ok)

	assert.Equal(t, "Laptop Dell", row.ProductName)
	require.NotNil(t, row.Price)
	assert.Equal(t, "1299.5", row.Price.String())
	require.NotNil(t, row.Stock)
	assert.Equal(t, 10, *row.Stock)
	assert.Equal(t, "ana@example.com", row.CustomerEmail)
	require.NotNil(t, row.SaleDate)
	assert.Equal(t, "2024-01-15", row.SaleDate.Format("2006-01-02"))
	require.NotNil(t, row.Quantity)
	assert.Equal(t, 3, *row.Quantity)
	require.NotNil(t, row.UnitPrice)
	assert.Equal(t, "1200", row.UnitPrice.String())

	assert.True(t, row.HasProduct)
	assert.True(t, row.HasCustomer)
	assert.True(t, row.HasSale)
}

func TestExtractRow_ParseFailureLeavesFieldUnset(t *testing.T) {
	cols, _ := MapColumns([]string{"Producto", "Precio", "Cantidad"}, KindAuto)

	row, ok := ExtractRow([]string{"Mouse", "gratis", "dos"}, cols)
	require.True(t, ok)

	assert.Nil(t, row.Price)
	assert.Nil(t, row.Quantity)
	assert.Equal(t, "gratis", row.Raw[FieldPrice])
	assert.Equal(t, "dos", row.Raw[FieldQuantity])
	assert.True(t, row.HasProduct)
	assert.False(t, row.HasSale, "a sale flag needs at least one parsed sale field")
}

func TestExtractRow_DomainFlags(t *testing.T) {
	cols, _ := MapColumns([]string{"Producto", "Nombre", "NumeroFactura"}, KindAuto)

	tests := []struct {
		name         string
		cells        []string
		wantOK       bool
		wantProduct  bool
		wantCustomer bool
		wantSale     bool
	}{
		{name: "product only", cells: []string{"Mouse", "", ""}, wantOK: true, wantProduct: true},
		{name: "customer only", cells: []string{"", "Ana", ""}, wantOK: true, wantCustomer: true},
		{name: "sale only", cells: []string{"", "", "F-1"}, wantOK: true, wantSale: true},
		{name: "short row", cells: []string{"Mouse"}, wantOK: true, wantProduct: true},
		{name: "blank row", cells: []string{" ", "", "\t"}, wantOK: false},
		{name: "no cells", cells: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := ExtractRow(tt.cells, cols)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantProduct, row.HasProduct)
			assert.Equal(t, tt.wantCustomer, row.HasCustomer)
			assert.Equal(t, tt.wantSale, row.HasSale)
		})
	}
}

func TestExtractRows_NumbersAndSkipsBlankRows(t *testing.T) {
	cols, _ := MapColumns([]string{"Producto", "Color"}, KindAuto)

	rows := ExtractRows([][]string{
		{"Mouse", "rojo"},
		{"", "azul"}, // only an unmapped column
		{},
		{"Teclado", ""},
	}, []int{2, 3, 4, 5}, cols)

	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].RowNumber)
	assert.Equal(t, "Mouse", rows[0].ProductName)
	assert.Equal(t, 5, rows[1].RowNumber)
	assert.Equal(t, "Teclado", rows[1].ProductName)
}

func TestExtractRows_UsesGivenLineNumbers(t *testing.T) {
	cols, _ := MapColumns([]string{"Producto"}, KindAuto)

	rows := ExtractRows([][]string{{"Mouse"}, {"Teclado"}}, []int{2, 7}, cols)

	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].RowNumber)
	assert.Equal(t, 7, rows[1].RowNumber)
}

package core

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	db "github.com/JonMunkholm/salesimport/internal/database"
)

func TestPgNumericConversion(t *testing.T) {
	for _, s := range []string{"899.99", "0.16", "-12.5", "1000000", "143.9984"} {
		d := decimal.RequireFromString(s)
		n, err := toPgNumeric(d)
		require.NoError(t, err, s)
		assert.True(t, fromPgNumeric(n).Equal(d), "value %s", s)
	}

	assert.True(t, fromPgNumeric(pgtype.Numeric{}).IsZero())
	assert.True(t, fromPgNumeric(pgtype.Numeric{NaN: true, Valid: true}).IsZero())
}

func TestProductFromRow(t *testing.T) {
	price, err := toPgNumeric(decimal.RequireFromString("19.90"))
	require.NoError(t, err)

	p := productFromRow(db.Product{ID: 7, Name: "Mouse", Price: price, Stock: -2})
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, -2, p.Stock)
	assert.Equal(t, int64(0), p.CategoryID)
	assert.Equal(t, "19.9", p.Price.String())

	p = productFromRow(db.Product{ID: 8, Price: price, CategoryID: toPgInt8(3)})
	assert.Equal(t, int64(3), p.CategoryID)
}

func TestPgNullHelpers(t *testing.T) {
	assert.False(t, toPgInt8(0).Valid)
	assert.False(t, toPgTimestamptz(time.Time{}).Valid)

	ts := toPgTimestamptz(fixedNow)
	assert.True(t, ts.Valid)
	assert.True(t, ts.Time.Equal(fixedNow))
}

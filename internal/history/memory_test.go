package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/salesimport/internal/core"
)

func sampleResult(id string) *core.ImportResult {
	return &core.ImportResult{
		ImportID:     id,
		FileName:     "ventas.xlsx",
		Kind:         core.KindAuto,
		TotalRows:    3,
		ErrorRows:    1,
		SalesCreated: 2,
		Success:      true,
		Message:      "Import completed: 2 succeeded, 1 with errors.",
		Errors: []core.ErrorRecord{
			{Row: 4, Field: "Cantidad", Value: "0", Message: "quantity must be greater than zero", Entity: core.EntitySale, Class: core.ClassValidation},
		},
	}
}

func TestMemoryStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	require.NoError(t, s.Save(ctx, sampleResult("a")))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "ventas.xlsx", got.FileName)
	assert.Equal(t, 2, got.SalesCreated)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, 4, got.Errors[0].Row)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)
	res := sampleResult("a")
	require.NoError(t, s.Save(ctx, res))

	res.Errors[0].Message = "changed after save"
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "quantity must be greater than zero", got.Errors[0].Message)

	got.Errors[0].Message = "changed after get"
	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "quantity must be greater than zero", again.Errors[0].Message)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, sampleResult("old")))

	now = now.Add(59 * time.Minute)
	_, err := s.Get(ctx, "old")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrResultNotFound)

	// Saves sweep whatever has expired.
	require.NoError(t, s.Save(ctx, sampleResult("b")))
	now = now.Add(2 * time.Hour)
	require.NoError(t, s.Save(ctx, sampleResult("c")))
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_RejectsMissingID(t *testing.T) {
	s := NewMemoryStore(0)
	assert.Error(t, s.Save(context.Background(), &core.ImportResult{}))
	assert.Error(t, s.Save(context.Background(), nil))
	assert.Equal(t, DefaultTTL, s.ttl)
}

func TestResultNotFoundMapsToUserMessage(t *testing.T) {
	assert.Equal(t, "IMP002", core.MapError(ErrResultNotFound).Code)
}

package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/application/inventory"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

func inventoryEvaluator(f *fixture) *inventory.LowStockEvaluator {
	return inventory.NewLowStockEvaluator(f.store.Items(), nil)
}

func TestHistory_MasRecientePrimero(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 10, 0)
	_, err := f.adjust(item.ID, -2)
	require.NoError(t, err)
	_, err = f.adjust(item.ID, 5)
	require.NoError(t, err)

	list, total, err := f.query.History(context.Background(), item.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 3)
	assert.Equal(t, int64(13), list[0].NewQuantity)
	assert.Equal(t, int64(10), list[2].NewQuantity)

	_, _, err = f.query.History(context.Background(), "x", 10, 0)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerify_DetectaDesajuste(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 10, 0)

	// cambio directo sin asiento: rompe la consistencia
	require.NoError(t, f.store.Items().UpdateQuantity(context.Background(), item.ID, 12))

	v, err := f.query.Verify(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, v.Consistent)
	assert.NotEmpty(t, v.Problems)
}

func TestLedgerWriter_RechazaEntradasMalFormadas(t *testing.T) {
	f := newFixture(t)
	w := inventory.NewLedgerWriter()
	bad := []*entity.LedgerEntry{
		{UserID: "u", QuantityChange: 1, NewQuantity: 1},
		{ItemID: "i", QuantityChange: 1, NewQuantity: 1},
		{ItemID: "i", UserID: "u", QuantityChange: 0},
		{ItemID: "i", UserID: "u", QuantityChange: 2, PreviousQuantity: 1, NewQuantity: 4},
		{ItemID: "i", UserID: "u", QuantityChange: -3, PreviousQuantity: 1, NewQuantity: -2},
		{ItemID: "i", UserID: "u", ChangeType: entity.ChangeTypeSale, QuantityChange: 2, NewQuantity: 2},
	}
	for _, e := range bad {
		_, err := w.Record(context.Background(), f.store.Ledger(), e)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	}
	assert.Empty(t, f.store.Entries())

	id, err := w.Record(context.Background(), f.store.Ledger(), &entity.LedgerEntry{ItemID: "i", UserID: "u", QuantityChange: 2, NewQuantity: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, entity.ChangeTypeAdjustment, f.store.Entries()[0].ChangeType)
}

package inventory_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/domain"
)

func TestLowStock_NotificaSoloAlCruzarElUmbral(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 15, 10)
	require.Equal(t, 0, f.queue.Count(notification.TaskLowStockAlert))

	_, err := f.adjust(item.ID, -3) // 12
	require.NoError(t, err)
	assert.Equal(t, 0, f.queue.Count(notification.TaskLowStockAlert))

	_, err = f.adjust(item.ID, -2) // 10: cruza
	require.NoError(t, err)
	assert.Equal(t, 1, f.queue.Count(notification.TaskLowStockAlert))

	for _, d := range []int64{-1, -4, +2, -1} { // sigue en o bajo 10
		_, err = f.adjust(item.ID, d)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.queue.Count(notification.TaskLowStockAlert), "no debe re-notificar mientras siga bajo")

	tasks := f.queue.Tasks()
	var alert notification.LowStockAlert
	require.NoError(t, json.Unmarshal(tasks[0].Payload, &alert))
	assert.Equal(t, item.ID, alert.ItemID)
	assert.Equal(t, int64(10), alert.Quantity)
	assert.Equal(t, int64(10), alert.ReorderPoint)

	_, err = f.adjust(item.ID, +20) // sale de la zona baja
	require.NoError(t, err)
	_, err = f.adjust(item.ID, -20) // vuelve a cruzar
	require.NoError(t, err)
	assert.Equal(t, 2, f.queue.Count(notification.TaskLowStockAlert))
}

func TestLowStock_ColaCaidaNoFallaElAjuste(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 11, 10)
	f.queue.Err = errors.New("redis: connection refused")

	mut, err := f.adjust(item.ID, -5)
	require.NoError(t, err)
	assert.True(t, mut.CrossedIntoLow())
	assert.Equal(t, int64(6), f.quantity(t, item.ID))
}

func TestEvaluate(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 4, 5)

	ev, err := inventoryEvaluator(f).Evaluate(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, ev.IsLow)
	assert.Equal(t, int64(4), ev.Quantity)

	_, err = inventoryEvaluator(f).Evaluate(context.Background(), "x")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

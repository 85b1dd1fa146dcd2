package inventory_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/application/inventory"
	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/memory"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

var actor = entity.Actor{UserID: "u-staff", Role: entity.RoleStaff}

type fixture struct {
	store   *memory.Store
	queue   *memory.Queue
	mutator *inventory.StockMutator
	query   *inventory.LedgerQuery
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	queue := memory.NewQueue()
	dispatcher := notification.NewDispatcher(queue, 100*time.Millisecond, logger.Nop())
	evaluator := inventory.NewLowStockEvaluator(store.Items(), dispatcher)
	return &fixture{
		store:   store,
		queue:   queue,
		mutator: inventory.NewStockMutator(memory.NewTxRunner(store), inventory.NewLedgerWriter(), evaluator),
		query:   inventory.NewLedgerQuery(store.Items(), store.Ledger()),
	}
}

// seedItem crea un artículo con cantidad 0 y lo lleva a qty mediante un asiento inicial.
func (f *fixture) seedItem(t *testing.T, qty, reorder int64) *entity.InventoryItem {
	t.Helper()
	item := &entity.InventoryItem{
		ID:           uuid.New().String(),
		SKU:          "SKU-" + uuid.New().String()[:8],
		Name:         "Tornillo",
		Category:     entity.CategoryTools,
		Status:       entity.ItemStatusActive,
		IsTracked:    true,
		ReorderPoint: reorder,
		UnitPrice:    decimal.NewFromInt(10),
	}
	require.NoError(t, f.store.Items().Create(context.Background(), item))
	if qty > 0 {
		_, err := f.mutator.Adjust(context.Background(), inventory.AdjustInput{
			ItemID: item.ID, Delta: qty, ChangeType: entity.ChangeTypeIn, Reason: "stock inicial", Actor: actor,
		})
		require.NoError(t, err)
	}
	return item
}

func (f *fixture) quantity(t *testing.T, id string) int64 {
	t.Helper()
	it, err := f.store.Items().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, it)
	return it.QuantityInStock
}

func (f *fixture) adjust(id string, delta int64) (*inventory.Mutation, error) {
	return f.mutator.Adjust(context.Background(), inventory.AdjustInput{ItemID: id, Delta: delta, Reason: "conteo", Actor: actor})
}

func TestAdjust_ActualizaCantidadYUnAsiento(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 20, 5)
	before := len(f.store.Entries())

	mut, err := f.adjust(item.ID, -7)
	require.NoError(t, err)
	assert.Equal(t, int64(20), mut.PreviousQuantity)
	assert.Equal(t, int64(13), mut.NewQuantity)
	assert.Equal(t, int64(13), f.quantity(t, item.ID))

	entries := f.store.Entries()
	require.Len(t, entries, before+1)
	last := entries[len(entries)-1]
	assert.Equal(t, item.ID, last.ItemID)
	assert.Equal(t, int64(-7), last.QuantityChange)
	assert.Equal(t, int64(13), last.NewQuantity)
	assert.Equal(t, actor.UserID, last.UserID)
	assert.Equal(t, entity.ChangeTypeAdjustment, last.ChangeType)
	assert.Equal(t, mut.EntryID, last.ID)
}

func TestAdjust_MasAllaDelStockFallaSinCambios(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 8, 2)
	before := len(f.store.Entries())

	_, err := f.adjust(item.ID, -9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, int64(8), ise.Available)
	assert.Equal(t, int64(9), ise.Requested)

	assert.Equal(t, int64(8), f.quantity(t, item.ID))
	assert.Len(t, f.store.Entries(), before)
}

func TestAdjust_ArticuloInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.adjust("no-existe", 3)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAdjust_ValidaEntrada(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 5, 1)

	cases := map[string]inventory.AdjustInput{
		"delta cero":       {ItemID: item.ID, Delta: 0, Reason: "x", Actor: actor},
		"sin motivo":       {ItemID: item.ID, Delta: 1, Actor: actor},
		"sin actor":        {ItemID: item.ID, Delta: 1, Reason: "x"},
		"tipo raro":        {ItemID: item.ID, Delta: 1, Reason: "x", Actor: actor, ChangeType: "teleport"},
		"sin artículo":     {Delta: 1, Reason: "x", Actor: actor},
		"venta positiva":   {ItemID: item.ID, Delta: 50, Reason: "x", Actor: actor, ChangeType: entity.ChangeTypeSale},
		"entrada negativa": {ItemID: item.ID, Delta: -3, Reason: "x", Actor: actor, ChangeType: entity.ChangeTypeIn},
		"salida positiva":  {ItemID: item.ID, Delta: 1, Reason: "x", Actor: actor, ChangeType: entity.ChangeTypeOut},
		"compra negativa":  {ItemID: item.ID, Delta: -1, Reason: "x", Actor: actor, ChangeType: entity.ChangeTypePurchase},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.mutator.Adjust(context.Background(), in)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "err = %v", err)
		})
	}
	assert.Equal(t, int64(5), f.quantity(t, item.ID))
}

func TestAdjust_ArticuloSinControlDeStock(t *testing.T) {
	f := newFixture(t)
	item := &entity.InventoryItem{ID: uuid.New().String(), SKU: "SERV-1", Name: "Instalación", IsTracked: false, Status: entity.ItemStatusActive}
	require.NoError(t, f.store.Items().Create(context.Background(), item))

	_, err := f.adjust(item.ID, 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Empty(t, f.store.Entries())
}

func TestAdjust_FalloDeLedgerRevierteCantidad(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 10, 0)
	before := len(f.store.Entries())

	f.store.FailNext("ledger.Create", &domain.TransientError{Op: "insert ledger", Err: errors.New("lock timeout")})
	_, err := f.adjust(item.ID, -4)
	assert.True(t, errors.Is(err, domain.ErrTransient))
	assert.Equal(t, int64(10), f.quantity(t, item.ID))
	assert.Len(t, f.store.Entries(), before)
}

func TestAdjust_CostoPromedioEnEntrada(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 0, 0)
	cost := decimal.NewFromInt(100)
	_, err := f.mutator.Adjust(context.Background(), inventory.AdjustInput{
		ItemID: item.ID, Delta: 10, ChangeType: entity.ChangeTypePurchase, Reason: "compra", UnitCost: &cost, Actor: actor,
	})
	require.NoError(t, err)

	cost2 := decimal.NewFromInt(200)
	_, err = f.mutator.Adjust(context.Background(), inventory.AdjustInput{
		ItemID: item.ID, Delta: 30, ChangeType: entity.ChangeTypePurchase, Reason: "compra", UnitCost: &cost2, Actor: actor,
	})
	require.NoError(t, err)

	it, _ := f.store.Items().GetByID(context.Background(), item.ID)
	assert.True(t, it.CostPrice.Equal(decimal.NewFromInt(175)), "costo = %s", it.CostPrice)
}

func TestAdjust_SecuenciaAleatoriaNuncaNegativaYLedgerCoincide(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 15, 3)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		delta := int64(rng.Intn(21) - 10)
		if delta == 0 {
			continue
		}
		before := f.quantity(t, item.ID)
		entriesBefore := len(f.store.Entries())
		mut, err := f.adjust(item.ID, delta)
		after := f.quantity(t, item.ID)
		require.GreaterOrEqual(t, after, int64(0))

		if err != nil {
			require.True(t, errors.Is(err, domain.ErrInsufficientStock))
			assert.Equal(t, before, after)
			assert.Len(t, f.store.Entries(), entriesBefore)
			continue
		}
		entries := f.store.Entries()
		require.Len(t, entries, entriesBefore+1)
		assert.Equal(t, after, entries[len(entries)-1].NewQuantity)
		assert.Equal(t, after, mut.NewQuantity)
	}

	v, err := f.query.Verify(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, v.Consistent, "problemas: %v", v.Problems)
}

func TestAdjust_ConcurrenteNoPierdeActualizaciones(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 30, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, insufficient := 0, 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.adjust(item.ID, -1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				insufficient++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 30, ok)
	assert.Equal(t, 20, insufficient)
	assert.Equal(t, int64(0), f.quantity(t, item.ID))
	v, err := f.query.Verify(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.Equal(t, 31, v.Entries)
}

func TestAdjust_DeltaFueraDeRangoEsValidacion(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 5, 1)

	for _, delta := range []int64{math.MaxInt64, math.MinInt64, 1_000_000_001, -1_000_000_001} {
		_, err := f.adjust(item.ID, delta)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "delta %d: %v", delta, err)
		var ise *domain.InsufficientStockError
		assert.False(t, errors.As(err, &ise), "delta %d", delta)
	}
	assert.Equal(t, int64(5), f.quantity(t, item.ID))
	assert.Len(t, f.store.Entries(), 1)
}

func TestAdjust_SignoSegunTipoDeCambio(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, 5, 0)

	out, err := f.mutator.Adjust(context.Background(), inventory.AdjustInput{
		ItemID: item.ID, Delta: -2, ChangeType: entity.ChangeTypeOut, Reason: "merma", Actor: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.NewQuantity)

	back, err := f.mutator.Adjust(context.Background(), inventory.AdjustInput{
		ItemID: item.ID, Delta: 1, ChangeType: entity.ChangeTypeReturn, Reason: "devolución", Actor: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), back.NewQuantity)

	// ajuste acepta ambos signos
	_, err = f.mutator.Adjust(context.Background(), inventory.AdjustInput{
		ItemID: item.ID, Delta: -4, ChangeType: entity.ChangeTypeAdjustment, Reason: "conteo", Actor: actor,
	})
	require.NoError(t, err)
}

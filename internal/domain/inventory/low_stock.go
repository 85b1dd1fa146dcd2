package inventory

import "math"

// MaxQuantityChange límite absoluto de un solo movimiento de stock.
const MaxQuantityChange int64 = 1_000_000_000

// IsLow nivel bajo: cantidad en o por debajo del umbral de reorden.
func IsLow(quantity, reorderPoint int64) bool {
	return quantity <= reorderPoint
}

// CrossedIntoLow detecta el flanco: antes estaba por encima del umbral y ahora en o por debajo.
// Se calcula con las cantidades previa y resultante de la misma transacción; no se persiste ninguna bandera.
func CrossedIntoLow(previous, current, reorderPoint int64) bool {
	return !IsLow(previous, reorderPoint) && IsLow(current, reorderPoint)
}

// ApplyDelta devuelve la cantidad resultante y si es válida (no negativa).
// El llamador descarta antes con AddOverflows las sumas fuera de rango.
func ApplyDelta(current, delta int64) (int64, bool) {
	next := current + delta
	return next, next >= 0
}

// AddOverflows indica si current + delta desborda int64.
func AddOverflows(current, delta int64) bool {
	if delta > 0 {
		return current > math.MaxInt64-delta
	}
	return current < math.MinInt64-delta
}

// DeltaInRange indica si |delta| no supera MaxQuantityChange.
func DeltaInRange(delta int64) bool {
	return delta >= -MaxQuantityChange && delta <= MaxQuantityChange
}

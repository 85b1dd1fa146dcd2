package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de artículo.
const (
	CategoryElectronics = "electronics"
	CategoryClothing    = "clothing"
	CategoryFood        = "food"
	CategoryBooks       = "books"
	CategoryTools       = "tools"
	CategoryFurniture   = "furniture"
	CategoryOther       = "other"
)

// Estados de artículo.
const (
	ItemStatusActive       = "active"
	ItemStatusInactive     = "inactive"
	ItemStatusDiscontinued = "discontinued"
)

// ValidCategory indica si c es una categoría conocida.
func ValidCategory(c string) bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryFood, CategoryBooks,
		CategoryTools, CategoryFurniture, CategoryOther:
		return true
	}
	return false
}

// ValidItemStatus indica si s es un estado de artículo conocido.
func ValidItemStatus(s string) bool {
	return s == ItemStatusActive || s == ItemStatusInactive || s == ItemStatusDiscontinued
}

// InventoryItem representa un artículo del inventario.
// QuantityInStock solo cambia vía StockMutator (cada cambio deja un asiento en el ledger).
type InventoryItem struct {
	ID                string
	SKU               string // único
	Barcode           string // único si no está vacío
	Name              string
	Description       string
	Category          string
	Brand             string
	Model             string
	UnitPrice         decimal.Decimal // precio de venta
	CostPrice         decimal.Decimal // costo promedio ponderado
	QuantityInStock   int64
	MinimumStockLevel int64
	MaximumStockLevel *int64
	ReorderPoint      int64 // umbral de reorden: bajo stock si QuantityInStock <= ReorderPoint
	UnitOfMeasure     string
	Status            string
	IsTracked         bool // false = no se controla stock (servicios, kits)
	Notes             string
	SupplierID        string // vacío si no tiene proveedor
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock true si la cantidad está en o por debajo del punto de reorden.
func (i *InventoryItem) IsLowStock() bool {
	return i.QuantityInStock <= i.ReorderPoint
}

// IsOutOfStock true si no queda stock.
func (i *InventoryItem) IsOutOfStock() bool {
	return i.QuantityInStock <= 0
}

// StockValue valor del stock al costo (o al precio si no hay costo).
func (i *InventoryItem) StockValue() decimal.Decimal {
	unit := i.CostPrice
	if unit.IsZero() {
		unit = i.UnitPrice
	}
	return unit.Mul(decimal.NewFromInt(i.QuantityInStock))
}

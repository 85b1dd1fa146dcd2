package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un artículo. InitialQuantity se registra como asiento de entrada.
type CreateItemRequest struct {
	SKU               string          `json:"sku" validate:"required,min=1,max=100"`
	Barcode           string          `json:"barcode"`
	Name              string          `json:"name" validate:"required,min=1,max=200"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Brand             string          `json:"brand"`
	Model             string          `json:"model"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	InitialQuantity   int64           `json:"quantity_in_stock"`
	MinimumStockLevel int64           `json:"minimum_stock_level"`
	MaximumStockLevel *int64          `json:"maximum_stock_level,omitempty"`
	ReorderPoint      int64           `json:"reorder_point"`
	UnitOfMeasure     string          `json:"unit_of_measure"`
	Status            string          `json:"status"`
	IsTracked         *bool           `json:"is_tracked,omitempty"`
	Notes             string          `json:"notes"`
	SupplierID        string          `json:"supplier_id,omitempty"`
}

// UpdateItemRequest entrada para actualizar un artículo (sin cantidad ni costo).
type UpdateItemRequest struct {
	SKU               *string          `json:"sku"`
	Barcode           *string          `json:"barcode"`
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Category          *string          `json:"category"`
	Brand             *string          `json:"brand"`
	Model             *string          `json:"model"`
	UnitPrice         *decimal.Decimal `json:"unit_price"`
	MinimumStockLevel *int64           `json:"minimum_stock_level"`
	MaximumStockLevel *int64           `json:"maximum_stock_level"`
	ReorderPoint      *int64           `json:"reorder_point"`
	UnitOfMeasure     *string          `json:"unit_of_measure"`
	Status            *string          `json:"status"`
	IsTracked         *bool            `json:"is_tracked"`
	Notes             *string          `json:"notes"`
	SupplierID        *string          `json:"supplier_id"`
}

// ItemResponse salida de un artículo.
type ItemResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Barcode           string          `json:"barcode,omitempty"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Brand             string          `json:"brand,omitempty"`
	Model             string          `json:"model,omitempty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	QuantityInStock   int64           `json:"quantity_in_stock"`
	MinimumStockLevel int64           `json:"minimum_stock_level"`
	MaximumStockLevel *int64          `json:"maximum_stock_level,omitempty"`
	ReorderPoint      int64           `json:"reorder_point"`
	UnitOfMeasure     string          `json:"unit_of_measure"`
	Status            string          `json:"status"`
	IsTracked         bool            `json:"is_tracked"`
	IsLowStock        bool            `json:"is_low_stock"`
	StockValue        decimal.Decimal `json:"stock_value"`
	Notes             string          `json:"notes,omitempty"`
	SupplierID        string          `json:"supplier_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// ItemListQuery filtros de GET /api/items.
type ItemListQuery struct {
	PageRequest
	Search       string `query:"search"`
	Category     string `query:"category"`
	Status       string `query:"status"`
	SupplierID   string `query:"supplier_id"`
	LowStockOnly bool   `query:"low_stock_only"`
}

// AdjustStockRequest body para POST /api/items/{id}/adjust-stock.
type AdjustStockRequest struct {
	QuantityChange  int64            `json:"quantity_change"`
	ChangeType      string           `json:"change_type,omitempty"`
	Reason          string           `json:"reason"`
	ReferenceNumber string           `json:"reference_number,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
}

// AdjustStockResponse resultado del ajuste.
type AdjustStockResponse struct {
	Message          string `json:"message"`
	ItemID           string `json:"item_id"`
	PreviousQuantity int64  `json:"previous_quantity"`
	NewQuantity      int64  `json:"new_quantity"`
	EntryID          string `json:"entry_id"`
	IsLowStock       bool   `json:"is_low_stock"`
}

// LedgerEntryResponse asiento del historial de stock.
type LedgerEntryResponse struct {
	ID               string    `json:"id"`
	ItemID           string    `json:"item_id"`
	UserID           string    `json:"user_id"`
	ChangeType       string    `json:"change_type"`
	QuantityChange   int64     `json:"quantity_change"`
	PreviousQuantity int64     `json:"previous_quantity"`
	NewQuantity      int64     `json:"new_quantity"`
	Reason           string    `json:"reason"`
	ReferenceNumber  string    `json:"reference_number,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// LedgerListResponse historial paginado.
type LedgerListResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Page    PageResponse          `json:"page"`
}

// LowStockItemResponse artículo en o por debajo del punto de reorden.
type LowStockItemResponse struct {
	ID                string `json:"id"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	QuantityInStock   int64  `json:"quantity_in_stock"`
	ReorderPoint      int64  `json:"reorder_point"`
	MinimumStockLevel int64  `json:"minimum_stock_level"`
	SuggestedOrderQty int64  `json:"suggested_order_qty"`
	SupplierID        string `json:"supplier_id,omitempty"`
}

// InventorySummaryResponse agregados calculados al vuelo.
type InventorySummaryResponse struct {
	TotalItems      int64           `json:"total_items"`
	ActiveItems     int64           `json:"active_items"`
	LowStockItems   int64           `json:"low_stock_items"`
	OutOfStockItems int64           `json:"out_of_stock_items"`
	TotalUnits      int64           `json:"total_units"`
	TotalValue      decimal.Decimal `json:"total_value"`
}

// Package reports arma los datos de los reportes PDF de inventario y delega el render.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// LowStockRow fila del reporte de stock bajo.
type LowStockRow struct {
	SKU          string
	Name         string
	Quantity     int64
	ReorderPoint int64
	SuggestedQty int64
}

// LowStockReport artículos en o por debajo del punto de reorden.
type LowStockReport struct {
	GeneratedAt time.Time
	Rows        []LowStockRow
}

// ValueRow fila del reporte de valorización.
type ValueRow struct {
	SKU      string
	Name     string
	Category string
	Quantity int64
	UnitCost decimal.Decimal
	Value    decimal.Decimal
}

// InventoryValueReport valorización del stock al costo.
type InventoryValueReport struct {
	GeneratedAt time.Time
	Rows        []ValueRow
	TotalUnits  int64
	TotalValue  decimal.Decimal
}

// Renderer genera los PDF (implementado con maroto en infrastructure/pdf).
type Renderer interface {
	LowStockPDF(ctx context.Context, r *LowStockReport) ([]byte, error)
	InventoryValuePDF(ctx context.Context, r *InventoryValueReport) ([]byte, error)
	MovementsPDF(ctx context.Context, r *MovementReport) ([]byte, error)
	SalesPDF(ctx context.Context, r *SalesReport) ([]byte, error)
}

const pageSize = 200

// ReportUseCase reportes calculados al vuelo desde artículos, ledger y pedidos.
type ReportUseCase struct {
	items    repository.ItemRepository
	ledger   repository.LedgerRepository
	orders   repository.OrderRepository
	renderer Renderer
	now      func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(items repository.ItemRepository, ledger repository.LedgerRepository, orders repository.OrderRepository, renderer Renderer) *ReportUseCase {
	return &ReportUseCase{items: items, ledger: ledger, orders: orders, renderer: renderer, now: time.Now}
}

// Now hora de referencia de los reportes.
func (uc *ReportUseCase) Now() time.Time { return uc.now() }

// LowStock datos del reporte de stock bajo.
func (uc *ReportUseCase) LowStock(ctx context.Context) (*LowStockReport, error) {
	list, err := uc.items.ListLowStock(ctx, 1000)
	if err != nil {
		return nil, err
	}
	rep := &LowStockReport{GeneratedAt: uc.now(), Rows: make([]LowStockRow, 0, len(list))}
	for _, it := range list {
		rep.Rows = append(rep.Rows, LowStockRow{
			SKU:          it.SKU,
			Name:         it.Name,
			Quantity:     it.QuantityInStock,
			ReorderPoint: it.ReorderPoint,
			SuggestedQty: usecase.SuggestedOrderQty(it),
		})
	}
	return rep, nil
}

// InventoryValue datos del reporte de valorización (solo artículos con control de stock).
func (uc *ReportUseCase) InventoryValue(ctx context.Context) (*InventoryValueReport, error) {
	rep := &InventoryValueReport{GeneratedAt: uc.now(), TotalValue: decimal.Zero}
	for offset := 0; ; offset += pageSize {
		list, total, err := uc.items.List(ctx, repository.ItemFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, it := range list {
			if !it.IsTracked {
				continue
			}
			unit := it.CostPrice
			if unit.IsZero() {
				unit = it.UnitPrice
			}
			value := it.StockValue()
			rep.Rows = append(rep.Rows, ValueRow{
				SKU:      it.SKU,
				Name:     it.Name,
				Category: it.Category,
				Quantity: it.QuantityInStock,
				UnitCost: unit,
				Value:    value,
			})
			rep.TotalUnits += it.QuantityInStock
			rep.TotalValue = rep.TotalValue.Add(value)
		}
		if len(list) == 0 || int64(offset+len(list)) >= total {
			break
		}
	}
	return rep, nil
}

// LowStockPDF reporte de stock bajo en PDF.
func (uc *ReportUseCase) LowStockPDF(ctx context.Context) ([]byte, error) {
	rep, err := uc.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := uc.renderer.LowStockPDF(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("reporte stock bajo: %w", err)
	}
	return doc, nil
}

// InventoryValuePDF reporte de valorización en PDF.
func (uc *ReportUseCase) InventoryValuePDF(ctx context.Context) ([]byte, error) {
	rep, err := uc.InventoryValue(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := uc.renderer.InventoryValuePDF(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("reporte valorización: %w", err)
	}
	return doc, nil
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/guard"
	"github.com/jhoicas/inventory-manager/internal/application/inventory"
	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// ItemUseCase casos de uso de artículos. La cantidad solo cambia vía StockMutator.
type ItemUseCase struct {
	tx      ports.TxRunner
	repo    repository.ItemRepository
	mutator *inventory.StockMutator
	ledger  *inventory.LedgerQuery
	guard   *guard.DependencyGuard
	now     func() time.Time
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	tx ports.TxRunner,
	repo repository.ItemRepository,
	mutator *inventory.StockMutator,
	ledger *inventory.LedgerQuery,
	g *guard.DependencyGuard,
) *ItemUseCase {
	return &ItemUseCase{tx: tx, repo: repo, mutator: mutator, ledger: ledger, guard: g, now: time.Now}
}

// Create crea el artículo con cantidad 0 y, si trae cantidad inicial, la registra como asiento de entrada.
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest, actor entity.Actor) (*dto.ItemResponse, error) {
	var created *entity.InventoryItem
	err := uc.tx.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		item, err := uc.createInTx(ctx, repos, in, actor, uc.now())
		if err != nil {
			return err
		}
		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToItemResponse(created), nil
}

// ImportItems crea todos los artículos en una sola transacción; cualquier fila inválida revierte la importación.
func (uc *ItemUseCase) ImportItems(ctx context.Context, rows []dto.CreateItemRequest, actor entity.Actor) (int, error) {
	now := uc.now()
	err := uc.tx.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		for i, row := range rows {
			if _, err := uc.createInTx(ctx, repos, row, actor, now); err != nil {
				return fmt.Errorf("fila %d (%s): %w", i+1, row.SKU, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (uc *ItemUseCase) createInTx(ctx context.Context, repos ports.TxRepos, in dto.CreateItemRequest, actor entity.Actor, now time.Time) (*entity.InventoryItem, error) {
	item := &entity.InventoryItem{
		ID:                uuid.New().String(),
		SKU:               strings.TrimSpace(in.SKU),
		Barcode:           strings.TrimSpace(in.Barcode),
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Category:          in.Category,
		Brand:             in.Brand,
		Model:             in.Model,
		UnitPrice:         in.UnitPrice,
		CostPrice:         in.CostPrice,
		MinimumStockLevel: in.MinimumStockLevel,
		MaximumStockLevel: in.MaximumStockLevel,
		ReorderPoint:      in.ReorderPoint,
		UnitOfMeasure:     in.UnitOfMeasure,
		Status:            in.Status,
		IsTracked:         true,
		Notes:             in.Notes,
		SupplierID:        strings.TrimSpace(in.SupplierID),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if in.IsTracked != nil {
		item.IsTracked = *in.IsTracked
	}
	if item.Category == "" {
		item.Category = entity.CategoryOther
	}
	if item.Status == "" {
		item.Status = entity.ItemStatusActive
	}
	if item.UnitOfMeasure == "" {
		item.UnitOfMeasure = "unit"
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	if in.InitialQuantity < 0 {
		return nil, domain.Invalid("quantity_in_stock", "no puede ser negativa")
	}
	if in.InitialQuantity > 0 && !item.IsTracked {
		return nil, domain.Invalid("quantity_in_stock", "un artículo sin control de stock no lleva cantidad")
	}
	if err := checkUnique(ctx, repos.Items, item); err != nil {
		return nil, err
	}
	if err := checkItemSupplier(ctx, repos.Suppliers, item.SupplierID); err != nil {
		return nil, err
	}
	if err := repos.Items.Create(ctx, item); err != nil {
		return nil, err
	}
	if in.InitialQuantity > 0 {
		m, err := uc.mutator.ApplyInTx(ctx, repos, inventory.AdjustInput{
			ItemID:     item.ID,
			Delta:      in.InitialQuantity,
			ChangeType: entity.ChangeTypeIn,
			Reason:     "Stock inicial",
			Actor:      actor,
		}, now)
		if err != nil {
			return nil, err
		}
		item.QuantityInStock = m.NewQuantity
	}
	return item, nil
}

// GetByID obtiene un artículo.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return ToItemResponse(item), nil
}

// List artículos filtrados y paginados.
func (uc *ItemUseCase) List(ctx context.Context, q dto.ItemListQuery) (*dto.ItemListResponse, error) {
	q.DefaultPage()
	if q.Category != "" && !entity.ValidCategory(q.Category) {
		return nil, domain.Invalid("category", "categoría desconocida")
	}
	if q.Status != "" && !entity.ValidItemStatus(q.Status) {
		return nil, domain.Invalid("status", "estado desconocido")
	}
	list, total, err := uc.repo.List(ctx, repository.ItemFilter{
		Search:     strings.TrimSpace(q.Search),
		Category:   q.Category,
		Status:     q.Status,
		SupplierID: q.SupplierID,
		LowStock:   q.LowStockOnly,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, *ToItemResponse(it))
	}
	return &dto.ItemListResponse{Items: out, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total}}, nil
}

// Update actualiza datos descriptivos. No permite modificar cantidad ni costo.
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	var updated *entity.InventoryItem
	err := uc.tx.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		item, err := repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		applyItemUpdate(item, in)
		if err := validateItem(item); err != nil {
			return err
		}
		if item.QuantityInStock > 0 && !item.IsTracked {
			return domain.Invalid("is_tracked", "el artículo tiene stock; ajústelo a 0 antes de dejar de controlarlo")
		}
		if err := checkUnique(ctx, repos.Items, item); err != nil {
			return err
		}
		if in.SupplierID != nil {
			if err := checkItemSupplier(ctx, repos.Suppliers, item.SupplierID); err != nil {
				return err
			}
		}
		item.UpdatedAt = uc.now()
		if err := repos.Items.Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToItemResponse(updated), nil
}

// Delete elimina el artículo si no tiene líneas de pedido ni asientos.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	return uc.guard.Delete(ctx, guard.EntityRef{Kind: guard.KindItem, ID: id})
}

// AdjustStock ajuste directo de stock (POST /items/{id}/adjust-stock).
func (uc *ItemUseCase) AdjustStock(ctx context.Context, id string, in dto.AdjustStockRequest, actor entity.Actor) (*dto.AdjustStockResponse, error) {
	m, err := uc.mutator.Adjust(ctx, inventory.AdjustInput{
		ItemID:          id,
		Delta:           in.QuantityChange,
		ChangeType:      in.ChangeType,
		Reason:          in.Reason,
		ReferenceNumber: in.ReferenceNumber,
		Notes:           in.Notes,
		UnitCost:        in.UnitCost,
		Actor:           actor,
	})
	if err != nil {
		return nil, err
	}
	return &dto.AdjustStockResponse{
		Message:          "Stock ajustado correctamente",
		ItemID:           m.ItemID,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		EntryID:          m.EntryID,
		IsLowStock:       m.NewQuantity <= m.ReorderPoint,
	}, nil
}

// LowStock artículos activos en o por debajo del punto de reorden, con cantidad sugerida de reposición.
func (uc *ItemUseCase) LowStock(ctx context.Context, limit int) ([]dto.LowStockItemResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	list, err := uc.repo.ListLowStock(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockItemResponse, 0, len(list))
	for _, it := range list {
		out = append(out, dto.LowStockItemResponse{
			ID:                it.ID,
			SKU:               it.SKU,
			Name:              it.Name,
			QuantityInStock:   it.QuantityInStock,
			ReorderPoint:      it.ReorderPoint,
			MinimumStockLevel: it.MinimumStockLevel,
			SuggestedOrderQty: SuggestedOrderQty(it),
			SupplierID:        it.SupplierID,
		})
	}
	return out, nil
}

// SuggestedOrderQty cantidad para volver al máximo o, sin máximo, a 1.5 veces el punto de reorden.
func SuggestedOrderQty(it *entity.InventoryItem) int64 {
	target := it.ReorderPoint + it.ReorderPoint/2
	if it.MaximumStockLevel != nil {
		target = *it.MaximumStockLevel
	}
	if target <= it.ReorderPoint {
		target = it.ReorderPoint + 1
	}
	if q := target - it.QuantityInStock; q > 0 {
		return q
	}
	return 0
}

// History historial de stock paginado (solo desde el ledger).
func (uc *ItemUseCase) History(ctx context.Context, id string, page dto.PageRequest) (*dto.LedgerListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.ledger.History(ctx, id, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.LedgerEntryResponse{
			ID:               e.ID,
			ItemID:           e.ItemID,
			UserID:           e.UserID,
			ChangeType:       e.ChangeType,
			QuantityChange:   e.QuantityChange,
			PreviousQuantity: e.PreviousQuantity,
			NewQuantity:      e.NewQuantity,
			Reason:           e.Reason,
			ReferenceNumber:  e.ReferenceNumber,
			Notes:            e.Notes,
			CreatedAt:        e.CreatedAt,
		})
	}
	return &dto.LedgerListResponse{Entries: out, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total}}, nil
}

// Verify comprueba la consistencia ledger/cantidad de un artículo.
func (uc *ItemUseCase) Verify(ctx context.Context, id string) (*inventory.Verification, error) {
	return uc.ledger.Verify(ctx, id)
}

// Summary agregados del inventario calculados al vuelo.
func (uc *ItemUseCase) Summary(ctx context.Context) (*dto.InventorySummaryResponse, error) {
	s, err := uc.repo.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.InventorySummaryResponse{
		TotalItems:      s.TotalItems,
		ActiveItems:     s.ActiveItems,
		LowStockItems:   s.LowStockItems,
		OutOfStockItems: s.OutOfStockItems,
		TotalUnits:      s.TotalUnits,
		TotalValue:      s.TotalValue,
	}, nil
}

func validateItem(it *entity.InventoryItem) error {
	switch {
	case it.SKU == "" || len(it.SKU) > 100:
		return domain.Invalid("sku", "requerido (máximo 100 caracteres)")
	case it.Name == "" || len(it.Name) > 200:
		return domain.Invalid("name", "requerido (máximo 200 caracteres)")
	case !entity.ValidCategory(it.Category):
		return domain.Invalid("category", "categoría desconocida")
	case !entity.ValidItemStatus(it.Status):
		return domain.Invalid("status", "estado desconocido")
	case it.UnitPrice.IsNegative():
		return domain.Invalid("unit_price", "no puede ser negativo")
	case it.CostPrice.IsNegative():
		return domain.Invalid("cost_price", "no puede ser negativo")
	case it.ReorderPoint < 0:
		return domain.Invalid("reorder_point", "no puede ser negativo")
	case it.MinimumStockLevel < 0:
		return domain.Invalid("minimum_stock_level", "no puede ser negativo")
	case it.MaximumStockLevel != nil && *it.MaximumStockLevel < it.MinimumStockLevel:
		return domain.Invalid("maximum_stock_level", "debe ser mayor o igual al mínimo")
	}
	return nil
}

func checkUnique(ctx context.Context, repo repository.ItemRepository, it *entity.InventoryItem) error {
	existing, err := repo.GetBySKU(ctx, it.SKU)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != it.ID {
		return fmt.Errorf("sku %s: %w", it.SKU, domain.ErrDuplicate)
	}
	if it.Barcode == "" {
		return nil
	}
	existing, err = repo.GetByBarcode(ctx, it.Barcode)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != it.ID {
		return fmt.Errorf("código de barras %s: %w", it.Barcode, domain.ErrDuplicate)
	}
	return nil
}

func checkItemSupplier(ctx context.Context, repo repository.SupplierRepository, supplierID string) error {
	if supplierID == "" {
		return nil
	}
	sp, err := repo.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if sp == nil {
		return domain.Invalid("supplier_id", "el proveedor no existe")
	}
	return nil
}

func applyItemUpdate(it *entity.InventoryItem, in dto.UpdateItemRequest) {
	str := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	str(&it.SKU, in.SKU)
	str(&it.Barcode, in.Barcode)
	str(&it.Name, in.Name)
	str(&it.Category, in.Category)
	str(&it.Brand, in.Brand)
	str(&it.Model, in.Model)
	str(&it.UnitOfMeasure, in.UnitOfMeasure)
	str(&it.Status, in.Status)
	str(&it.SupplierID, in.SupplierID)
	if in.Description != nil {
		it.Description = *in.Description
	}
	if in.Notes != nil {
		it.Notes = *in.Notes
	}
	if in.UnitPrice != nil {
		it.UnitPrice = *in.UnitPrice
	}
	if in.MinimumStockLevel != nil {
		it.MinimumStockLevel = *in.MinimumStockLevel
	}
	if in.MaximumStockLevel != nil {
		v := *in.MaximumStockLevel
		it.MaximumStockLevel = &v
	}
	if in.ReorderPoint != nil {
		it.ReorderPoint = *in.ReorderPoint
	}
	if in.IsTracked != nil {
		it.IsTracked = *in.IsTracked
	}
}

// ToItemResponse mapea la entidad a DTO.
func ToItemResponse(it *entity.InventoryItem) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	value := decimal.Zero
	if it.IsTracked {
		value = it.StockValue()
	}
	return &dto.ItemResponse{
		ID:                it.ID,
		SKU:               it.SKU,
		Barcode:           it.Barcode,
		Name:              it.Name,
		Description:       it.Description,
		Category:          it.Category,
		Brand:             it.Brand,
		Model:             it.Model,
		UnitPrice:         it.UnitPrice,
		CostPrice:         it.CostPrice,
		QuantityInStock:   it.QuantityInStock,
		MinimumStockLevel: it.MinimumStockLevel,
		MaximumStockLevel: it.MaximumStockLevel,
		ReorderPoint:      it.ReorderPoint,
		UnitOfMeasure:     it.UnitOfMeasure,
		Status:            it.Status,
		IsTracked:         it.IsTracked,
		IsLowStock:        it.IsTracked && it.IsLowStock(),
		StockValue:        value,
		Notes:             it.Notes,
		SupplierID:        it.SupplierID,
		CreatedAt:         it.CreatedAt,
		UpdatedAt:         it.UpdatedAt,
	}
}

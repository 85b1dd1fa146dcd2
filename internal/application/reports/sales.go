package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

const topItemsLimit = 10

// TopItemRow artículo más vendido del período.
type TopItemRow struct {
	SKU      string
	Name     string
	Quantity int64
	Revenue  decimal.Decimal
}

// SalesReport pedidos de venta no cancelados creados en el período.
type SalesReport struct {
	GeneratedAt   time.Time
	Period        Period
	OrderCount    int64
	ByStatus      map[string]int64
	Revenue       decimal.Decimal // suma de TotalAmount
	UnitsSold     int64
	AverageTicket decimal.Decimal
	TopItems      []TopItemRow
}

// Sales agrega los pedidos de venta del período. Los cancelados no cuentan.
func (uc *ReportUseCase) Sales(ctx context.Context, p Period) (*SalesReport, error) {
	rep := &SalesReport{GeneratedAt: uc.now(), Period: p, ByStatus: map[string]int64{}, Revenue: decimal.Zero, AverageTicket: decimal.Zero}
	from, to := p.From, p.To
	byItem := map[string]*TopItemRow{}
	for offset := 0; ; offset += pageSize {
		list, total, err := uc.orders.List(ctx, repository.OrderFilter{
			OrderType: entity.OrderTypeSales, From: &from, To: &to, Limit: pageSize, Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		for _, head := range list {
			if head.Status == entity.OrderStatusCancelled {
				continue
			}
			o, err := uc.orders.GetByID(ctx, head.ID)
			if err != nil {
				return nil, err
			}
			if o == nil {
				continue
			}
			rep.OrderCount++
			rep.ByStatus[o.Status]++
			rep.Revenue = rep.Revenue.Add(o.TotalAmount)
			for _, line := range o.Items {
				row, ok := byItem[line.ItemID]
				if !ok {
					row = &TopItemRow{SKU: line.ItemID, Revenue: decimal.Zero}
					byItem[line.ItemID] = row
				}
				row.Quantity += line.Quantity
				row.Revenue = row.Revenue.Add(line.TotalPrice)
				rep.UnitsSold += line.Quantity
			}
		}
		if len(list) == 0 || int64(offset+len(list)) >= total {
			break
		}
	}
	if rep.OrderCount > 0 {
		rep.AverageTicket = rep.Revenue.Div(decimal.NewFromInt(rep.OrderCount)).Round(2)
	}

	ids := make([]string, 0, len(byItem))
	for id := range byItem {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := byItem[ids[i]], byItem[ids[j]]
		if c := a.Revenue.Cmp(b.Revenue); c != 0 {
			return c > 0
		}
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return ids[i] < ids[j]
	})
	if len(ids) > topItemsLimit {
		ids = ids[:topItemsLimit]
	}
	for _, id := range ids {
		row := byItem[id]
		it, err := uc.items.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if it != nil {
			row.SKU, row.Name = it.SKU, it.Name
		}
		rep.TopItems = append(rep.TopItems, *row)
	}
	return rep, nil
}

// SalesPDF reporte de ventas en PDF.
func (uc *ReportUseCase) SalesPDF(ctx context.Context, p Period) ([]byte, error) {
	rep, err := uc.Sales(ctx, p)
	if err != nil {
		return nil, err
	}
	doc, err := uc.renderer.SalesPDF(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("reporte ventas: %w", err)
	}
	return doc, nil
}

package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// MovementRow un asiento del ledger con los datos del artículo.
type MovementRow struct {
	At               time.Time
	SKU              string
	Name             string
	ChangeType       string
	QuantityChange   int64
	PreviousQuantity int64
	NewQuantity      int64
	Reason           string
	ReferenceNumber  string
}

// MovementReport movimientos de stock de un período, tal como quedaron en el ledger.
type MovementReport struct {
	GeneratedAt  time.Time
	Period       Period
	Rows         []MovementRow
	UnitsIn      int64
	UnitsOut     int64
	ByChangeType map[string]int64 // asientos por tipo de cambio
	Truncated    bool             // se alcanzó el máximo de filas
}

// ChangeTypes tipos presentes en el reporte, ordenados.
func (r *MovementReport) ChangeTypes() []string {
	out := make([]string, 0, len(r.ByChangeType))
	for k := range r.ByChangeType {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Movements datos del reporte de movimientos leídos del ledger.
func (uc *ReportUseCase) Movements(ctx context.Context, p Period) (*MovementReport, error) {
	entries, err := uc.ledger.ListByPeriod(ctx, p.From, p.To, maxPeriodLines+1)
	if err != nil {
		return nil, err
	}
	rep := &MovementReport{GeneratedAt: uc.now(), Period: p, ByChangeType: map[string]int64{}}
	if len(entries) > maxPeriodLines {
		entries, rep.Truncated = entries[:maxPeriodLines], true
	}
	cache := map[string]*entity.InventoryItem{}
	for _, e := range entries {
		it, ok := cache[e.ItemID]
		if !ok {
			if it, err = uc.items.GetByID(ctx, e.ItemID); err != nil {
				return nil, err
			}
			cache[e.ItemID] = it
		}
		r := MovementRow{
			At:               e.CreatedAt,
			SKU:              e.ItemID,
			ChangeType:       e.ChangeType,
			QuantityChange:   e.QuantityChange,
			PreviousQuantity: e.PreviousQuantity,
			NewQuantity:      e.NewQuantity,
			Reason:           e.Reason,
			ReferenceNumber:  e.ReferenceNumber,
		}
		if it != nil {
			r.SKU, r.Name = it.SKU, it.Name
		}
		rep.Rows = append(rep.Rows, r)
		rep.ByChangeType[e.ChangeType]++
		if e.QuantityChange > 0 {
			rep.UnitsIn += e.QuantityChange
		} else {
			rep.UnitsOut += -e.QuantityChange
		}
	}
	return rep, nil
}

// MovementsPDF reporte de movimientos en PDF.
func (uc *ReportUseCase) MovementsPDF(ctx context.Context, p Period) ([]byte, error) {
	rep, err := uc.Movements(ctx, p)
	if err != nil {
		return nil, err
	}
	doc, err := uc.renderer.MovementsPDF(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("reporte movimientos: %w", err)
	}
	return doc, nil
}

package reports

import (
	"time"

	"github.com/jhoicas/inventory-manager/internal/domain"
)

const (
	dateLayout     = "2006-01-02"
	defaultDays    = 30
	maxPeriodDays  = 366
	maxPeriodLines = 5000
)

// Period rango de fechas de un reporte. To es exclusivo (día siguiente al último incluido).
type Period struct {
	From time.Time
	To   time.Time
}

// LastDay último día incluido en el rango.
func (p Period) LastDay() time.Time { return p.To.AddDate(0, 0, -1) }

// ParsePeriod interpreta from/to (YYYY-MM-DD, ambos incluidos). Sin to usa hoy; sin from, los 30 días previos a to.
func ParsePeriod(from, to string, now time.Time) (Period, error) {
	loc := now.Location()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, loc)
		if err != nil {
			return Period{}, domain.Invalid("to", "formato YYYY-MM-DD")
		}
		end = t
	}
	start := end.AddDate(0, 0, -(defaultDays - 1))
	if from != "" {
		f, err := time.ParseInLocation(dateLayout, from, loc)
		if err != nil {
			return Period{}, domain.Invalid("from", "formato YYYY-MM-DD")
		}
		start = f
	}
	if start.After(end) {
		return Period{}, domain.Invalid("from", "no puede ser posterior a to")
	}
	if end.Sub(start) >= maxPeriodDays*24*time.Hour {
		return Period{}, domain.Invalid("to", "el rango no puede superar 366 días")
	}
	return Period{From: start, To: end.AddDate(0, 0, 1)}, nil
}

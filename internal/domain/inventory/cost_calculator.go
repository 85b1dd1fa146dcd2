package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost costo unitario después de una entrada de stock:
// (stock * costo + entrada * costoEntrada) / (stock + entrada), redondeado a 2 decimales.
// Si el stock previo es negativo o nulo se toma el costo de la entrada.
func WeightedAverageCost(stock int64, cost decimal.Decimal, incoming int64, incomingCost decimal.Decimal) decimal.Decimal {
	if incoming <= 0 {
		return cost
	}
	if stock <= 0 {
		return incomingCost.Round(2)
	}
	qty := decimal.NewFromInt(stock)
	in := decimal.NewFromInt(incoming)
	total := qty.Mul(cost).Add(in.Mul(incomingCost))
	return total.Div(qty.Add(in)).Round(2)
}

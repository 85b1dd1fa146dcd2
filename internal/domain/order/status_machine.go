// Package order contiene la máquina de estados de pedidos (sin dependencias de infraestructura).
//
//	draft -> pending -> {confirmed, cancelled}
//	draft -> cancelled
//	confirmed -> {shipped (ventas) | received (compras), cancelled}
//	shipped | received -> closed
//
// cancelled y closed son terminales.
package order

import (
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// NextStatuses devuelve los estados alcanzables desde from para el tipo de pedido.
func NextStatuses(orderType, from string) []string {
	switch from {
	case entity.OrderStatusDraft:
		return []string{entity.OrderStatusPending, entity.OrderStatusCancelled}
	case entity.OrderStatusPending:
		return []string{entity.OrderStatusConfirmed, entity.OrderStatusCancelled}
	case entity.OrderStatusConfirmed:
		switch orderType {
		case entity.OrderTypePurchase:
			return []string{entity.OrderStatusReceived, entity.OrderStatusCancelled}
		case entity.OrderTypeSales:
			return []string{entity.OrderStatusShipped, entity.OrderStatusCancelled}
		}
		return []string{entity.OrderStatusCancelled}
	case entity.OrderStatusShipped:
		if orderType == entity.OrderTypeSales {
			return []string{entity.OrderStatusClosed}
		}
	case entity.OrderStatusReceived:
		if orderType == entity.OrderTypePurchase {
			return []string{entity.OrderStatusClosed}
		}
	}
	return nil
}

// CanTransition indica si from -> to es una arista válida.
func CanTransition(orderType, from, to string) bool {
	for _, s := range NextStatuses(orderType, from) {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition devuelve *domain.TransitionError si la arista no existe.
func ValidateTransition(orderType, from, to string) error {
	if !CanTransition(orderType, from, to) {
		return &domain.TransitionError{OrderType: orderType, From: from, To: to}
	}
	return nil
}

// StockSign signo del movimiento de stock que dispara entrar en target:
// +1 compra recibida, -1 venta despachada, 0 ninguno.
func StockSign(orderType, target string) int64 {
	switch {
	case orderType == entity.OrderTypePurchase && target == entity.OrderStatusReceived:
		return 1
	case orderType == entity.OrderTypeSales && target == entity.OrderStatusShipped:
		return -1
	}
	return 0
}

// ValidStatus indica si s es un estado conocido.
func ValidStatus(s string) bool {
	switch s {
	case entity.OrderStatusDraft, entity.OrderStatusPending, entity.OrderStatusConfirmed,
		entity.OrderStatusShipped, entity.OrderStatusReceived, entity.OrderStatusClosed, entity.OrderStatusCancelled:
		return true
	}
	return false
}

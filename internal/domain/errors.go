package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrFulfillmentFailed  = errors.New("no se pudo aplicar el stock del pedido")
	ErrTransient          = errors.New("error transitorio, reintente la operación")
)

// ValidationError entrada mal formada; errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError el delta dejaría la cantidad en negativo.
type InsufficientStockError struct {
	ItemID    string
	SKU       string
	Available int64
	Requested int64 // cantidad a descontar (valor absoluto del delta)
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", e.SKU, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// TransitionError transición de estado no permitida para el tipo de pedido.
type TransitionError struct {
	OrderType string
	From      string
	To        string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transición inválida para pedido %s: %s -> %s", e.OrderType, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// FulfillmentError una línea del pedido no pudo aplicarse; toda la transición se revierte.
// Err conserva la causa (normalmente *InsufficientStockError).
type FulfillmentError struct {
	OrderNumber string
	ItemID      string
	SKU         string
	Err         error
}

func (e *FulfillmentError) Error() string {
	return fmt.Sprintf("pedido %s: artículo %s (%s): %v", e.OrderNumber, e.SKU, e.ItemID, e.Err)
}

func (e *FulfillmentError) Is(target error) bool { return target == ErrFulfillmentFailed }

func (e *FulfillmentError) Unwrap() error { return e.Err }

// ConflictError el recurso tiene referencias que impiden la operación.
// References: nombre de la entidad referenciante -> cantidad.
type ConflictError struct {
	Resource   string
	ID         string
	References map[string]int64
	Message    string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	keys := make([]string, 0, len(e.References))
	for k := range e.References {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if e.References[k] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", e.References[k], k))
		}
	}
	return fmt.Sprintf("no se puede eliminar %s %s: referenciado por %s", e.Resource, e.ID, strings.Join(parts, ", "))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// TransientError fallo de concurrencia en la BD (lock timeout, deadlock, serialización).
// La transacción ya fue revertida; el llamador puede reintentar.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Is(target error) bool { return target == ErrTransient }

func (e *TransientError) Unwrap() error { return e.Err }

package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/domain"
)

// writeError traduce los errores del dominio a respuestas HTTP con código estable.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	var details map[string]any

	var (
		verr  *domain.ValidationError
		serr  *domain.InsufficientStockError
		ferr  *domain.FulfillmentError
		cerr  *domain.ConflictError
		trerr *domain.TransitionError
	)
	// FulfillmentError envuelve la causa; debe evaluarse antes que las demás.
	switch {
	case errors.As(err, &ferr):
		status, code = fiber.StatusConflict, "FULFILLMENT_FAILED"
		details = map[string]any{"order_number": ferr.OrderNumber, "item_id": ferr.ItemID, "sku": ferr.SKU}
		if errors.As(err, &serr) {
			details["available"] = serr.Available
			details["requested"] = serr.Requested
		}
	case errors.As(err, &verr):
		status, code = fiber.StatusBadRequest, "VALIDATION"
		if verr.Field != "" {
			details = map[string]any{"field": verr.Field}
		}
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.As(err, &serr):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
		details = map[string]any{"item_id": serr.ItemID, "sku": serr.SKU, "available": serr.Available, "requested": serr.Requested}
	case errors.As(err, &trerr):
		status, code = fiber.StatusConflict, "INVALID_TRANSITION"
		details = map[string]any{"order_type": trerr.OrderType, "from": trerr.From, "to": trerr.To}
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code = fiber.StatusConflict, "INVALID_TRANSITION"
	case errors.As(err, &cerr):
		status, code = fiber.StatusConflict, "CONFLICT"
		if len(cerr.References) > 0 {
			refs := make(map[string]any, len(cerr.References))
			for k, v := range cerr.References {
				refs[k] = v
			}
			details = map[string]any{"references": refs}
		}
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		status, code = fiber.StatusConflict, "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrTransient), errors.Is(err, context.DeadlineExceeded):
		status, code = fiber.StatusServiceUnavailable, "TRANSIENT"
		c.Set(fiber.HeaderRetryAfter, "1")
	}

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, Details: details})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func badQuery(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de consulta inválidos"})
}

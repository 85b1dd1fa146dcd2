package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/orders"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
)

// StatsResponse tablero: resumen de inventario y de pedidos.
type StatsResponse struct {
	Inventory *dto.InventorySummaryResponse `json:"inventory"`
	Orders    *dto.OrderSummaryResponse     `json:"orders"`
}

// StatsHandler estadísticas calculadas al vuelo.
type StatsHandler struct {
	items  *usecase.ItemUseCase
	orders *orders.OrderUseCase
}

// NewStatsHandler construye el handler de estadísticas.
func NewStatsHandler(items *usecase.ItemUseCase, orders *orders.OrderUseCase) *StatsHandler {
	return &StatsHandler{items: items, orders: orders}
}

// Get godoc
// @Summary      Estadísticas generales
// @Tags         stats
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  http.StatsResponse
// @Router       /api/stats [get]
func (h *StatsHandler) Get(c *fiber.Ctx) error {
	inv, err := h.items.Summary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	ord, err := h.orders.Summary(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(StatsResponse{Inventory: inv, Orders: ord})
}

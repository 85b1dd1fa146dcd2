package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-manager/internal/application/reports"
)

// ReportHandler descarga de reportes PDF.
type ReportHandler struct {
	uc *reports.ReportUseCase
}

// NewReportHandler construye el handler de reportes.
func NewReportHandler(uc *reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// LowStock godoc
// @Summary      Reporte PDF de stock bajo
// @Tags         reports
// @Produce      application/pdf
// @Security     Bearer
// @Success      200  {file}  binary
// @Router       /api/reports/low-stock.pdf [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	pdf, err := h.uc.LowStockPDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, "stock-bajo", pdf)
}

// InventoryValue godoc
// @Summary      Reporte PDF de valorización del inventario
// @Tags         reports
// @Produce      application/pdf
// @Security     Bearer
// @Success      200  {file}  binary
// @Router       /api/reports/inventory-value.pdf [get]
func (h *ReportHandler) InventoryValue(c *fiber.Ctx) error {
	pdf, err := h.uc.InventoryValuePDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, "valor-inventario", pdf)
}

// Movements godoc
// @Summary      Reporte PDF de movimientos de stock
// @Description  Asientos del ledger entre from y to (YYYY-MM-DD, ambos incluidos). Por defecto los últimos 30 días.
// @Tags         reports
// @Produce      application/pdf
// @Security     Bearer
// @Param        from  query  string  false  "fecha inicial"
// @Param        to    query  string  false  "fecha final"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/movements.pdf [get]
func (h *ReportHandler) Movements(c *fiber.Ctx) error {
	p, err := reports.ParsePeriod(c.Query("from"), c.Query("to"), h.uc.Now())
	if err != nil {
		return writeError(c, err)
	}
	pdf, err := h.uc.MovementsPDF(c.UserContext(), p)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, "movimientos", pdf)
}

// Sales godoc
// @Summary      Reporte PDF de ventas
// @Description  Pedidos de venta no cancelados creados entre from y to: cantidad, ingresos y artículos más vendidos.
// @Tags         reports
// @Produce      application/pdf
// @Security     Bearer
// @Param        from  query  string  false  "fecha inicial"
// @Param        to    query  string  false  "fecha final"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales.pdf [get]
func (h *ReportHandler) Sales(c *fiber.Ctx) error {
	p, err := reports.ParsePeriod(c.Query("from"), c.Query("to"), h.uc.Now())
	if err != nil {
		return writeError(c, err)
	}
	pdf, err := h.uc.SalesPDF(c.UserContext(), p)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, "ventas", pdf)
}

func sendPDF(c *fiber.Ctx, name string, pdf []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s-%s.pdf"`, name, time.Now().Format("20060102")))
	return c.Send(pdf)
}

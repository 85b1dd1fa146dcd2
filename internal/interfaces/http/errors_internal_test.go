package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/domain"
)

func respondWith(t *testing.T, err error) (int, dto.ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return writeError(c, err) })
	resp, rerr := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, rerr)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestWriteError_FulfillmentPrevaleceSobreLaCausa(t *testing.T) {
	causes := map[string]error{
		"no encontrado": domain.ErrNotFound,
		"validación":    domain.Invalid("item_id", "el artículo no controla stock"),
		"stock":         &domain.InsufficientStockError{ItemID: "i-1", SKU: "A", Available: 1, Requested: 3},
	}
	for name, cause := range causes {
		t.Run(name, func(t *testing.T) {
			status, body := respondWith(t, &domain.FulfillmentError{OrderNumber: "SO-1", ItemID: "i-1", SKU: "A", Err: cause})
			assert.Equal(t, fiber.StatusConflict, status)
			assert.Equal(t, "FULFILLMENT_FAILED", body.Code)
			assert.Equal(t, "SO-1", body.Details["order_number"])
		})
	}
}

func TestWriteError_ConflictoDeUsuario(t *testing.T) {
	status, body := respondWith(t, &domain.ConflictError{Resource: "usuario", ID: "u", References: map[string]int64{"pedidos": 2}})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body.Code)
	refs, _ := body.Details["references"].(map[string]any)
	assert.Equal(t, float64(2), refs["pedidos"])
}

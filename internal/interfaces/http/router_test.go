package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventory-manager/internal/application/auth"
	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/guard"
	"github.com/jhoicas/inventory-manager/internal/application/inventory"
	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/application/orders"
	"github.com/jhoicas/inventory-manager/internal/application/reports"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventory-manager/internal/interfaces/http"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

type fakeRenderer struct{}

func (fakeRenderer) LowStockPDF(context.Context, *reports.LowStockReport) ([]byte, error) {
	return []byte("%PDF-low"), nil
}

func (fakeRenderer) InventoryValuePDF(context.Context, *reports.InventoryValueReport) ([]byte, error) {
	return []byte("%PDF-value"), nil
}

func (fakeRenderer) MovementsPDF(_ context.Context, r *reports.MovementReport) ([]byte, error) {
	return []byte(fmt.Sprintf("%%PDF-movements:%d", len(r.Rows))), nil
}

func (fakeRenderer) SalesPDF(_ context.Context, r *reports.SalesReport) ([]byte, error) {
	return []byte(fmt.Sprintf("%%PDF-sales:%d", r.OrderCount)), nil
}

type server struct {
	app   *fiber.App
	store *memory.Store
	queue *memory.Queue
	users *usecase.UserUseCase
}

func newServer(t *testing.T) *server {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	queue := memory.NewQueue()
	dispatcher := notification.NewDispatcher(queue, 50*time.Millisecond, logger.Nop())
	evaluator := inventory.NewLowStockEvaluator(store.Items(), dispatcher)
	mutator := inventory.NewStockMutator(tx, inventory.NewLedgerWriter(), evaluator)
	g := guard.NewDependencyGuard(tx, store.Repos())
	users := usecase.NewUserUseCase(store.Users()).WithBcryptCost(bcrypt.MinCost)
	items := usecase.NewItemUseCase(tx, store.Items(), mutator, inventory.NewLedgerQuery(store.Items(), store.Ledger()), g)
	machine := orders.NewStatusMachine(tx, mutator, evaluator, dispatcher)

	app := fiber.New()
	app.Use(apphttp.RequestLogger(logger.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, RefreshExpMinutes: testExpMin, Issuer: testIssuer}),
		UserUC:     users,
		ItemUC:     items,
		SupplierUC: usecase.NewSupplierUseCase(store.Suppliers(), g),
		OrderUC:    orders.NewOrderUseCase(tx, store.Orders(), machine, dispatcher),
		ReportUC:   reports.NewReportUseCase(store.Items(), store.Ledger(), store.Orders(), fakeRenderer{}),
		JWTSecret:  testJWTSecret,
	})
	return &server{app: app, store: store, queue: queue, users: users}
}

// call envía body como JSON y decodifica la respuesta en un mapa (si es JSON).
func (s *server) call(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func (s *server) createItem(t *testing.T, sku string, qty, reorder int64) string {
	t.Helper()
	resp, body := s.call(t, http.MethodPost, "/api/items", tokenForRole(t, "manager"), map[string]any{
		"sku": sku, "name": "Artículo " + sku, "quantity_in_stock": qty, "reorder_point": reorder,
		"unit_price": "10", "cost_price": "6",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["id"].(string)
}

func TestLogin_YMe(t *testing.T) {
	s := newServer(t)
	_, err := s.users.Create(context.Background(), dto.CreateUserRequest{
		Email: "ana@example.com", Username: "ana", Password: "secreto123", Role: "manager",
	})
	require.NoError(t, err)

	resp, body := s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ana", "password": "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, body["refresh_token"])

	resp, body = s.call(t, http.MethodGet, "/api/auth/me", "Bearer "+token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ana@example.com", body["email"])
	assert.Equal(t, "manager", body["role"])

	resp, body = s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ana", "password": "otra-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestUsers_CambioDeContrasena(t *testing.T) {
	s := newServer(t)
	ana, err := s.users.Create(context.Background(), dto.CreateUserRequest{
		Email: "ana@example.com", Username: "ana", Password: "secreto123",
	})
	require.NoError(t, err)
	_, body := s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ana", "password": "secreto123"})
	token := "Bearer " + body["access_token"].(string)

	path := "/api/users/" + ana.ID + "/change-password"
	resp, body := s.call(t, http.MethodPatch, path, token, map[string]string{"current_password": "mala", "new_password": "nuevaclave1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, _ = s.call(t, http.MethodPatch, path, token, map[string]string{"current_password": "secreto123", "new_password": "nuevaclave1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ana", "password": "nuevaclave1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUsers_EliminarConHistorialEsConflicto(t *testing.T) {
	s := newServer(t)
	op, err := s.users.Create(context.Background(), dto.CreateUserRequest{
		Email: "op@example.com", Username: "operario", Password: "secreto123",
	})
	require.NoError(t, err)
	_, body := s.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "operario", "password": "secreto123"})
	opToken := "Bearer " + body["access_token"].(string)

	id := s.createItem(t, "USR-01", 5, 0)
	resp, _ := s.call(t, http.MethodPost, "/api/items/"+id+"/adjust-stock", opToken, map[string]any{"quantity_change": -1, "reason": "merma"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.call(t, http.MethodDelete, "/api/users/"+op.ID, tokenForRole(t, "admin"), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", body["code"])
	details, _ := body["details"].(map[string]any)
	refs, _ := details["references"].(map[string]any)
	assert.Equal(t, float64(1), refs["asientos de stock"])
}

func TestRoutes_RequierenToken(t *testing.T) {
	s := newServer(t)
	resp, body := s.call(t, http.MethodGet, "/api/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestItems_PermisosPorRol(t *testing.T) {
	s := newServer(t)
	resp, body := s.call(t, http.MethodPost, "/api/items", tokenForRole(t, "staff"), map[string]any{"sku": "X", "name": "X"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["code"])

	resp, _ = s.call(t, http.MethodGet, "/api/users", tokenForRole(t, "manager"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdjustStock_MapeoDeErrores(t *testing.T) {
	s := newServer(t)
	id := s.createItem(t, "TOR-01", 12, 3)
	staff := tokenForRole(t, "staff")

	resp, body := s.call(t, http.MethodPost, "/api/items/"+id+"/adjust-stock", staff, map[string]any{"quantity_change": -20, "reason": "venta mostrador"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	details, _ := body["details"].(map[string]any)
	assert.EqualValues(t, 12, details["available"])
	assert.EqualValues(t, 20, details["requested"])

	resp, body = s.call(t, http.MethodPost, "/api/items/"+id+"/adjust-stock", staff, map[string]any{"quantity_change": -10})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, body = s.call(t, http.MethodPost, "/api/items/"+id+"/adjust-stock", staff, map[string]any{"quantity_change": -10, "reason": "venta mostrador"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.EqualValues(t, 12, body["previous_quantity"])
	assert.EqualValues(t, 2, body["new_quantity"])
	assert.Equal(t, true, body["is_low_stock"])
	assert.Equal(t, 1, s.queue.Count(notification.TaskLowStockAlert))

	resp, body = s.call(t, http.MethodGet, "/api/items/"+id+"/verify", staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["consistent"])
	assert.EqualValues(t, 2, body["entries"])
}

func TestAdjustStock_TransitorioRetorna503(t *testing.T) {
	s := newServer(t)
	id := s.createItem(t, "TOR-02", 5, 0)
	s.store.FailNext("items.GetForUpdate", &domain.TransientError{Op: "items.GetForUpdate", Err: errors.New("lock timeout")})

	resp, body := s.call(t, http.MethodPost, "/api/items/"+id+"/adjust-stock", tokenForRole(t, "staff"), map[string]any{"quantity_change": 1, "reason": "conteo"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "TRANSIENT", body["code"])
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
}

func TestItems_NoEncontradoYCuerpoInvalido(t *testing.T) {
	s := newServer(t)
	resp, body := s.call(t, http.MethodGet, "/api/items/no-existe", tokenForRole(t, "staff"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])

	req := httptest.NewRequest(http.MethodPost, "/api/items", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "manager"))
	raw, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestOrders_RecepcionDeCompraSumaStock(t *testing.T) {
	s := newServer(t)
	manager := tokenForRole(t, "manager")
	staff := tokenForRole(t, "staff")
	itemID := s.createItem(t, "CLV-01", 4, 2)

	resp, sp := s.call(t, http.MethodPost, "/api/suppliers", manager, map[string]any{"name": "Ferretería Central"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, sp)

	resp, order := s.call(t, http.MethodPost, "/api/orders", staff, map[string]any{
		"order_type": "purchase", "status": "pending", "supplier_id": sp["id"],
		"items": []map[string]any{{"item_id": itemID, "quantity": 5}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, order)
	orderID := order["id"].(string)
	path := "/api/orders/" + orderID + "/status"

	resp, _ = s.call(t, http.MethodPatch, path, staff, map[string]string{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "staff no cambia estados")

	resp, _ = s.call(t, http.MethodPatch, path, manager, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := s.call(t, http.MethodPatch, path, manager, map[string]string{"status": "received"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "received", body["status"])

	_, item := s.call(t, http.MethodGet, "/api/items/"+itemID, staff, nil)
	assert.EqualValues(t, 9, item["quantity_in_stock"])

	resp, body = s.call(t, http.MethodPatch, path, manager, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", body["code"])

	resp, body = s.call(t, http.MethodDelete, "/api/suppliers/"+sp["id"].(string), manager, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", body["code"])
}

func TestOrders_EnvioSinStockSeRevierte(t *testing.T) {
	s := newServer(t)
	manager := tokenForRole(t, "manager")
	itemID := s.createItem(t, "CLV-02", 2, 0)

	resp, order := s.call(t, http.MethodPost, "/api/orders", tokenForRole(t, "staff"), map[string]any{
		"order_type": "sales", "status": "pending", "customer_name": "Juan Pérez",
		"items": []map[string]any{{"item_id": itemID, "quantity": 5}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, order)
	path := "/api/orders/" + order["id"].(string) + "/status"

	resp, _ = s.call(t, http.MethodPatch, path, manager, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := s.call(t, http.MethodPatch, path, manager, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "FULFILLMENT_FAILED", body["code"])
	details, _ := body["details"].(map[string]any)
	assert.Equal(t, itemID, details["item_id"])

	_, got := s.call(t, http.MethodGet, "/api/orders/"+order["id"].(string), manager, nil)
	assert.Equal(t, "confirmed", got["status"])
	_, item := s.call(t, http.MethodGet, "/api/items/"+itemID, manager, nil)
	assert.EqualValues(t, 2, item["quantity_in_stock"])
}

func TestReports_DescargaPDF(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/reports/low-stock.pdf", nil)
	req.Header.Set("Authorization", tokenForRole(t, "staff"))
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "stock-bajo-")
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-low", string(raw))
}

func TestReports_MovimientosYVentasPorPeriodo(t *testing.T) {
	s := newServer(t)
	s.createItem(t, "MOV-1", 4, 0)
	staff := tokenForRole(t, "staff")

	get := func(path string) (*http.Response, string) {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", staff)
		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return resp, string(raw)
	}

	resp, body := get("/api/reports/movements.pdf")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "%PDF-movements:1", body)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "movimientos-")

	resp, body = get("/api/reports/movements.pdf?from=2000-01-01&to=2000-01-31")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "%PDF-movements:0", body)

	resp, body = get("/api/reports/sales.pdf")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "%PDF-sales:0", body)

	resp, body = get("/api/reports/sales.pdf?from=2024-13-01")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "VALIDATION")
}

func TestStats_CombinaResumenes(t *testing.T) {
	s := newServer(t)
	s.createItem(t, "A-1", 1, 5)
	resp, body := s.call(t, http.MethodGet, "/api/stats", tokenForRole(t, "staff"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	inv, _ := body["inventory"].(map[string]any)
	assert.EqualValues(t, 1, inv["total_items"])
	assert.EqualValues(t, 1, inv["low_stock_items"])
	assert.NotNil(t, body["orders"])
}

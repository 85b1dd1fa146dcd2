package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-manager/internal/application/auth"
	"github.com/jhoicas/inventory-manager/internal/application/orders"
	"github.com/jhoicas/inventory-manager/internal/application/reports"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	UserUC     *usecase.UserUseCase
	ItemUC     *usecase.ItemUseCase
	SupplierUC *usecase.SupplierUseCase
	OrderUC    *orders.OrderUseCase
	ReportUC   *reports.ReportUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	staff := RequireMinRole(entity.RoleStaff)
	manager := RequireMinRole(entity.RoleManager)
	admin := RequireMinRole(entity.RoleAdmin)

	// Auth (público salvo me/logout)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.Refresh)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), staff)
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/logout", authHandler.Logout)

	// Users
	userHandler := NewUserHandler(deps.UserUC)
	users := protected.Group("/users")
	users.Get("/", admin, userHandler.List)
	users.Post("/", admin, userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", admin, userHandler.Update)
	users.Delete("/:id", admin, userHandler.Delete)
	users.Patch("/:id/toggle-status", admin, userHandler.ToggleStatus)
	users.Patch("/:id/change-password", userHandler.ChangePassword)

	// Items (las rutas fijas antes de /:id)
	itemHandler := NewItemHandler(deps.ItemUC)
	items := protected.Group("/items")
	items.Get("/", itemHandler.List)
	items.Get("/low-stock", itemHandler.LowStock)
	items.Get("/summary", itemHandler.Summary)
	items.Post("/", manager, itemHandler.Create)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", manager, itemHandler.Update)
	items.Delete("/:id", manager, itemHandler.Delete)
	items.Post("/:id/adjust-stock", itemHandler.AdjustStock)
	items.Get("/:id/history", itemHandler.History)
	items.Get("/:id/verify", itemHandler.Verify)

	// Suppliers
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", manager, supplierHandler.Create)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", manager, supplierHandler.Update)
	suppliers.Delete("/:id", manager, supplierHandler.Delete)
	suppliers.Patch("/:id/toggle-status", manager, supplierHandler.ToggleStatus)
	suppliers.Get("/:id/dependencies", supplierHandler.Dependencies)

	// Orders
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup := protected.Group("/orders")
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/summary", orderHandler.Summary)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Put("/:id", orderHandler.Update)
	ordersGroup.Delete("/:id", manager, orderHandler.Delete)
	ordersGroup.Patch("/:id/status", manager, orderHandler.UpdateStatus)

	// Stats
	protected.Get("/stats", NewStatsHandler(deps.ItemUC, deps.OrderUC).Get)

	// Reports
	reportHandler := NewReportHandler(deps.ReportUC)
	reportsGroup := protected.Group("/reports")
	reportsGroup.Get("/low-stock.pdf", reportHandler.LowStock)
	reportsGroup.Get("/inventory-value.pdf", reportHandler.InventoryValue)
	reportsGroup.Get("/movements.pdf", reportHandler.Movements)
	reportsGroup.Get("/sales.pdf", reportHandler.Sales)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"

	"github.com/jhoicas/inventory-manager/docs"
	"github.com/jhoicas/inventory-manager/internal/application/auth"
	"github.com/jhoicas/inventory-manager/internal/application/guard"
	"github.com/jhoicas/inventory-manager/internal/application/inventory"
	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/application/orders"
	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/internal/application/reports"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	infrapdf "github.com/jhoicas/inventory-manager/internal/infrastructure/pdf"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/queue"
	httpRouter "github.com/jhoicas/inventory-manager/internal/interfaces/http"
	"github.com/jhoicas/inventory-manager/pkg/config"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Cola de tareas: si Redis no responde la API sigue funcionando sin notificaciones.
	var taskQueue ports.TaskQueue
	if cfg.Redis.URL != "" {
		client, err := queue.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, las notificaciones quedan deshabilitadas")
		} else {
			defer client.Close()
			taskQueue = queue.NewRedisQueue(client, cfg.Queue.Name, cfg.Queue.MaxAttempts, log)
		}
	}

	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout())
	repos := postgres.ReposFor(pool)
	userRepo := postgres.NewUserRepository(pool)

	dispatcher := notification.NewDispatcher(taskQueue, cfg.Queue.EnqueueTimeout(), log)
	evaluator := inventory.NewLowStockEvaluator(repos.Items, dispatcher)
	mutator := inventory.NewStockMutator(txRunner, inventory.NewLedgerWriter(), evaluator)
	ledgerQuery := inventory.NewLedgerQuery(repos.Items, repos.Ledger)
	dependencyGuard := guard.NewDependencyGuard(txRunner, repos)
	machine := orders.NewStatusMachine(txRunner, mutator, evaluator, dispatcher)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:            cfg.JWT.Secret,
		ExpMinutes:        cfg.JWT.Expiration,
		RefreshExpMinutes: cfg.JWT.RefreshExpiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(userRepo)
	itemUC := usecase.NewItemUseCase(txRunner, repos.Items, mutator, ledgerQuery, dependencyGuard)
	supplierUC := usecase.NewSupplierUseCase(repos.Suppliers, dependencyGuard)
	orderUC := orders.NewOrderUseCase(txRunner, repos.Orders, machine, dispatcher)
	reportUC := reports.NewReportUseCase(repos.Items, repos.Ledger, repos.Orders, infrapdf.NewMarotoReportGenerator(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventory Manager API",
	}))
	app.Get("/docs/doc.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return err
		}
		c.Type("json")
		return c.SendString(doc)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "queue": taskQueue != nil})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		UserUC:     userUC,
		ItemUC:     itemUC,
		SupplierUC: supplierUC,
		OrderUC:    orderUC,
		ReportUC:   reportUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// Importa un catálogo de artículos desde CSV en una sola transacción.
//
// Uso:
//
//	go run ./cmd/import_items -file catalogo.csv -actor admin@empresa.com [-encoding auto|utf8|latin1] [-delim ';']
//
// La primera fila es el encabezado. Columnas reconocidas (en cualquier orden):
// sku, name, barcode, description, category, brand, model, unit_price, cost_price, quantity,
// minimum_stock_level, reorder_point, unit_of_measure, supplier_id, notes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/inventory-manager/internal/application/guard"
	"github.com/jhoicas/inventory-manager/internal/application/inventory"
	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-manager/pkg/config"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

func main() {
	file := flag.String("file", "", "ruta del CSV")
	actorEmail := flag.String("actor", "", "email del usuario que registra la importación")
	encoding := flag.String("encoding", "auto", "auto, utf8 o latin1")
	delim := flag.String("delim", ",", "separador de columnas")
	flag.Parse()

	if *file == "" || *actorEmail == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "import"})

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("leer archivo")
	}
	sep := []rune(*delim)
	if len(sep) != 1 {
		log.Fatal().Str("delim", *delim).Msg("el separador debe ser un solo carácter")
	}
	rows, err := ParseCatalog(raw, *encoding, sep[0])
	if err != nil {
		log.Fatal().Err(err).Msg("CSV inválido")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	user, err := postgres.NewUserRepository(pool).GetByEmail(ctx, strings.ToLower(*actorEmail))
	if err != nil {
		log.Fatal().Err(err).Msg("buscar usuario")
	}
	if user == nil || !user.IsActive {
		log.Fatal().Str("actor", *actorEmail).Msg("el usuario no existe o está inactivo")
	}

	// Sin cola: la importación no dispara alertas de stock bajo.
	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout())
	repos := postgres.ReposFor(pool)
	evaluator := inventory.NewLowStockEvaluator(repos.Items, notification.NewDispatcher(nil, time.Second, log))
	mutator := inventory.NewStockMutator(txRunner, inventory.NewLedgerWriter(), evaluator)
	itemUC := usecase.NewItemUseCase(txRunner, repos.Items, mutator,
		inventory.NewLedgerQuery(repos.Items, repos.Ledger), guard.NewDependencyGuard(txRunner, repos))

	n, err := itemUC.ImportItems(ctx, rows, entity.Actor{UserID: user.ID, Role: user.Role})
	if err != nil {
		log.Error().Err(err).Msg("importación revertida")
		os.Exit(1)
	}
	fmt.Printf("%d artículos importados\n", n)
}

// Worker de tareas en segundo plano: alertas de stock bajo y avisos de pedidos por correo.
//
// Uso:
//
//	go run ./cmd/worker                    # consume la cola hasta SIGINT/SIGTERM
//	go run ./cmd/worker -sweep             # encola un barrido de stock bajo y termina
//	go run ./cmd/worker -sweep-every 1h    # consume y además encola un barrido cada hora
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/email"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/queue"
	"github.com/jhoicas/inventory-manager/pkg/config"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

func main() {
	sweep := flag.Bool("sweep", false, "encolar un barrido de stock bajo y salir")
	sweepEvery := flag.Duration("sweep-every", 0, "intervalo del barrido periódico (0 = deshabilitado)")
	sweepLimit := flag.Int("sweep-limit", 500, "máximo de artículos por barrido")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "worker"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := queue.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer client.Close()
	tasks := queue.NewRedisQueue(client, cfg.Queue.Name, cfg.Queue.MaxAttempts, log)

	if *sweep {
		if err := tasks.Enqueue(ctx, notification.TaskCheckLowStock, notification.CheckLowStock{Limit: *sweepLimit}); err != nil {
			log.Error().Err(err).Msg("no se pudo encolar el barrido")
			os.Exit(1)
		}
		log.Info().Msg("barrido de stock bajo encolado")
		return
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var mailer ports.Mailer
	if m := email.NewSMTPMailer(cfg.SMTP); m != nil {
		mailer = m
	} else {
		log.Warn().Msg("SMTP sin configurar: los avisos solo se registran en el log")
	}
	handlers := notification.NewHandlers(postgres.NewItemRepository(pool), tasks, mailer, cfg.SMTP.AlertRecipient, log)

	if *sweepEvery > 0 {
		go func() {
			ticker := time.NewTicker(*sweepEvery)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := tasks.Enqueue(ctx, notification.TaskCheckLowStock, notification.CheckLowStock{Limit: *sweepLimit}); err != nil {
						log.Warn().Err(err).Msg("barrido periódico no encolado")
					}
				}
			}
		}()
	}

	if err := tasks.Consume(ctx, handlers.Routes()); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
		os.Exit(1)
	}
	log.Info().Msg("worker detenido")
}

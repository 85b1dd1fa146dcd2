// Crea el primer usuario administrador. No hace nada si el email ya existe.
//
// Uso:
//
//	go run ./cmd/seed_admin -email admin@empresa.com -username admin -password '********'
//
// También acepta SEED_ADMIN_EMAIL, SEED_ADMIN_USERNAME y SEED_ADMIN_PASSWORD.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/jhoicas/inventory-manager/internal/application/dto"
	"github.com/jhoicas/inventory-manager/internal/application/usecase"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-manager/pkg/config"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

func main() {
	email := flag.String("email", os.Getenv("SEED_ADMIN_EMAIL"), "email del administrador")
	username := flag.String("username", envOr("SEED_ADMIN_USERNAME", "admin"), "nombre de usuario")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "contraseña (mínimo 8 caracteres)")
	fullName := flag.String("name", "Administrador", "nombre completo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userUC := usecase.NewUserUseCase(postgres.NewUserRepository(pool))
	user, err := userUC.Create(ctx, dto.CreateUserRequest{
		Email:    *email,
		Username: *username,
		Password: *password,
		FullName: *fullName,
		Role:     entity.RoleAdmin,
	})
	switch {
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		log.Info().Str("email", *email).Msg("el administrador ya existe, nada que hacer")
		return
	case err != nil:
		log.Fatal().Err(err).Msg("crear administrador")
	}
	log.Info().Str("id", user.ID).Str("email", user.Email).Msg("administrador creado")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.Queue.EnqueueTimeout())
	assert.Equal(t, "inventory:tasks", cfg.Queue.Name)
}

func TestFromViper_ValoresDesdeEnv(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "9090")
	v.Set("DB_LOCK_TIMEOUT_MS", "1500")
	v.Set("SMTP_USER", "alertas@example.com")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 1500*time.Millisecond, cfg.DB.LockTimeout())
	// From y destinatario caen en SMTP_USER cuando no se configuran
	assert.Equal(t, "alertas@example.com", cfg.SMTP.From)
	assert.Equal(t, "alertas@example.com", cfg.SMTP.AlertRecipient)
}

func TestFromViper_EnteroInvalidoUsaDefault(t *testing.T) {
	v := viper.New()
	v.Set("HTTP_PORT", "no-es-numero")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestFromViper_ProductionSinSecret(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "inv", Password: "p@ss:word", DBName: "inventory_db", SSLMode: "disable"}
	assert.Equal(t, "postgres://inv:p%40ss%3Aword@db:5432/inventory_db?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x:y@z:1/w"
	assert.Equal(t, "postgres://x:y@z:1/w", c.ConnectionString())
}

// Package queue cola de tareas sobre listas de Redis con reintentos diferidos y dead-letter.
//
// Claves usadas (prefijo = nombre de la cola):
//
//	<name>          lista de tareas listas (LPUSH al encolar, BRPOP al consumir)
//	<name>:delayed  sorted set de reintentos, score = momento en que vuelven a estar listas
//	<name>:dead     lista de tareas que agotaron sus intentos o no tienen manejador
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

var _ ports.TaskQueue = (*RedisQueue)(nil)

// Envelope tarea serializada en Redis.
type Envelope struct {
	ID         string          `json:"id"`
	Task       string          `json:"task"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	LastError  string          `json:"last_error,omitempty"`
}

// RedisQueue productor y consumidor de tareas.
type RedisQueue struct {
	client      *redis.Client
	name        string
	maxAttempts int
	pollTimeout time.Duration
	log         *logger.Logger
}

// NewRedisQueue construye la cola. maxAttempts <= 0 usa 5.
func NewRedisQueue(client *redis.Client, name string, maxAttempts int, log *logger.Logger) *RedisQueue {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisQueue{client: client, name: name, maxAttempts: maxAttempts, pollTimeout: 5 * time.Second, log: log}
}

func (q *RedisQueue) delayedKey() string { return q.name + ":delayed" }

// DeadKey lista de tareas descartadas.
func (q *RedisQueue) DeadKey() string { return q.name + ":dead" }

// NewEnvelope serializa payload en un sobre nuevo.
func NewEnvelope(task string, payload any, now time.Time) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar payload de %s: %w", task, err)
	}
	return &Envelope{ID: uuid.New().String(), Task: task, Payload: raw, EnqueuedAt: now.UTC()}, nil
}

// Enqueue añade la tarea al final de la cola.
func (q *RedisQueue) Enqueue(ctx context.Context, task string, payload any) error {
	env, err := NewEnvelope(task, payload, time.Now())
	if err != nil {
		return err
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.name, raw).Err(); err != nil {
		return fmt.Errorf("encolar %s: %w", task, err)
	}
	return nil
}

// Backoff espera antes del reintento n (1, 4, 9... segundos; máximo 5 minutos).
func Backoff(attempt int) time.Duration {
	d := time.Duration(attempt*attempt) * time.Second
	if d > 5*time.Minute || d <= 0 {
		d = 5 * time.Minute
	}
	return d
}

// Consume procesa tareas hasta que ctx se cancele. Cada tarea se ejecuta con handlers[env.Task].
func (q *RedisQueue) Consume(ctx context.Context, handlers map[string]notification.Handler) error {
	q.log.Info().Str("queue", q.name).Int("max_attempts", q.maxAttempts).Msg("worker escuchando")
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := q.promoteDue(ctx, time.Now()); err != nil && ctx.Err() == nil {
			q.log.Warn().Err(err).Msg("no se pudieron promover reintentos")
		}
		res, err := q.client.BRPop(ctx, q.pollTimeout, q.name).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			q.log.Error().Err(err).Msg("error leyendo la cola")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		// res = [clave, valor]
		q.process(ctx, []byte(res[1]), handlers)
	}
}

func (q *RedisQueue) process(ctx context.Context, raw []byte, handlers map[string]notification.Handler) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		q.log.Error().Err(err).Msg("tarea ilegible, se mueve a dead-letter")
		q.pushDead(ctx, raw)
		return
	}
	log := q.log.With().Str("task", env.Task).Str("task_id", env.ID).Int("attempt", env.Attempts+1).Logger()

	h, ok := handlers[env.Task]
	if !ok {
		env.LastError = "sin manejador"
		log.Error().Msg("tarea sin manejador, se mueve a dead-letter")
		q.dead(ctx, &env)
		return
	}
	start := time.Now()
	err := h(ctx, env.Payload)
	if err == nil {
		log.Info().Dur("elapsed", time.Since(start)).Msg("tarea completada")
		return
	}
	env.Attempts++
	env.LastError = err.Error()
	if env.Attempts >= q.maxAttempts {
		log.Error().Err(err).Msg("tarea agotó sus intentos, se mueve a dead-letter")
		q.dead(ctx, &env)
		return
	}
	delay := Backoff(env.Attempts)
	log.Warn().Err(err).Dur("retry_in", delay).Msg("tarea fallida, se reintentará")
	if err := q.retryLater(ctx, &env, time.Now().Add(delay)); err != nil {
		log.Error().Err(err).Msg("no se pudo programar el reintento")
	}
}

func (q *RedisQueue) retryLater(ctx context.Context, env *Envelope, at time.Time) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return q.client.ZAdd(ctx, q.delayedKey(), redis.Z{Score: float64(at.UnixMilli()), Member: raw}).Err()
}

// promoteDue mueve a la cola los reintentos cuyo momento ya llegó.
func (q *RedisQueue) promoteDue(ctx context.Context, now time.Time) error {
	due, err := q.client.ZRangeByScore(ctx, q.delayedKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: 100,
	}).Result()
	if err != nil {
		return err
	}
	for _, member := range due {
		// ZREM decide qué consumidor se queda con el reintento.
		removed, err := q.client.ZRem(ctx, q.delayedKey(), member).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, q.name, member).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (q *RedisQueue) dead(ctx context.Context, env *Envelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		q.log.Error().Err(err).Msg("no se pudo serializar la tarea descartada")
		return
	}
	q.pushDead(ctx, raw)
}

func (q *RedisQueue) pushDead(ctx context.Context, raw []byte) {
	if err := q.client.LPush(context.WithoutCancel(ctx), q.DeadKey(), raw).Err(); err != nil {
		q.log.Error().Err(err).Msg("no se pudo escribir en dead-letter")
	}
}

// DeadLetters últimas tareas descartadas (más recientes primero).
func (q *RedisQueue) DeadLetters(ctx context.Context, limit int64) ([]Envelope, error) {
	if limit <= 0 {
		limit = 50
	}
	raws, err := q.client.LRange(ctx, q.DeadKey(), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("leer dead-letter: %w", err)
	}
	out := make([]Envelope, 0, len(raws))
	for _, raw := range raws {
		var env Envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			continue
		}
		out = append(out, env)
	}
	return out, nil
}

// Len tareas listas pendientes.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.name).Result()
}

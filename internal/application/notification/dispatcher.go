package notification

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

// Dispatcher encola tareas sin bloquear al llamador más allá de timeout.
// Un fallo al encolar se registra y se descarta: nunca se propaga.
type Dispatcher struct {
	queue   ports.TaskQueue
	timeout time.Duration
	log     *logger.Logger
}

// NewDispatcher construye el despachador. queue nil deja el despacho deshabilitado (solo log).
func NewDispatcher(queue ports.TaskQueue, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{queue: queue, timeout: timeout, log: log}
}

// Dispatch intenta encolar task. Devuelve true si quedó encolada.
// El contexto del llamador solo aporta valores: su cancelación no aborta el encolado.
func (d *Dispatcher) Dispatch(ctx context.Context, task string, payload any) bool {
	if d.queue == nil {
		d.log.Debug().Str("task", task).Msg("cola deshabilitada, tarea descartada")
		return false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()
	if err := d.queue.Enqueue(ctx, task, payload); err != nil {
		d.log.Warn().Err(err).Str("task", task).Msg("no se pudo encolar la tarea")
		return false
	}
	d.log.Debug().Str("task", task).Msg("tarea encolada")
	return true
}

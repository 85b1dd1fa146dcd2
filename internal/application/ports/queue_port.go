package ports

import "context"

// TaskQueue puerto de salida hacia la cola de tareas en segundo plano.
// Enqueue no espera la ejecución de la tarea; el consumidor se encarga de los reintentos.
type TaskQueue interface {
	Enqueue(ctx context.Context, task string, payload any) error
}

// Mailer envía correos (usado por el worker).
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

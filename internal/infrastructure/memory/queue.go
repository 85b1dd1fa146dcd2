package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jhoicas/inventory-manager/internal/application/ports"
)

var _ ports.TaskQueue = (*Queue)(nil)

// Task tarea encolada en memoria (payload ya serializado).
type Task struct {
	Name    string
	Payload json.RawMessage
}

// Queue cola en memoria: registra las tareas en orden. Err simula un broker caído.
type Queue struct {
	mu    sync.Mutex
	tasks []Task
	Err   error
}

// NewQueue crea una cola vacía.
func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Enqueue(_ context.Context, task string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	q.tasks = append(q.tasks, Task{Name: task, Payload: raw})
	return nil
}

// Tasks copia de las tareas encoladas.
func (q *Queue) Tasks() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Task(nil), q.tasks...)
}

// Count tareas encoladas con ese nombre.
func (q *Queue) Count(task string) int {
	n := 0
	for _, t := range q.Tasks() {
		if t.Name == task {
			n++
		}
	}
	return n
}

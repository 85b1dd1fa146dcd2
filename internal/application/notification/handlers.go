package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

// Handler procesa el payload JSON de una tarea. Un error hace que la cola reintente.
type Handler func(ctx context.Context, payload []byte) error

// Handlers manejadores que ejecuta el worker.
type Handlers struct {
	items     repository.ItemRepository
	queue     ports.TaskQueue
	mailer    ports.Mailer // nil = solo log
	recipient string
	log       *logger.Logger
	now       func() time.Time
}

// NewHandlers construye los manejadores. Sin mailer o sin destinatario los avisos solo se registran.
func NewHandlers(items repository.ItemRepository, queue ports.TaskQueue, mailer ports.Mailer, recipient string, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{items: items, queue: queue, mailer: mailer, recipient: recipient, log: log, now: time.Now}
}

// Routes tabla nombre de tarea -> manejador.
func (h *Handlers) Routes() map[string]Handler {
	return map[string]Handler{
		TaskLowStockAlert:     h.HandleLowStockAlert,
		TaskOrderNotification: h.HandleOrderNotification,
		TaskCheckLowStock:     h.HandleCheckLowStock,
	}
}

// HandleLowStockAlert avisa por correo que un artículo cruzó su punto de reorden.
// Si al procesarse el artículo ya fue repuesto o eliminado, la alerta se descarta.
func (h *Handlers) HandleLowStockAlert(ctx context.Context, payload []byte) error {
	var alert LowStockAlert
	if err := json.Unmarshal(payload, &alert); err != nil {
		return fmt.Errorf("low_stock_alert: payload inválido: %w", err)
	}
	item, err := h.items.GetByID(ctx, alert.ItemID)
	if err != nil {
		return fmt.Errorf("low_stock_alert: %w", err)
	}
	if item == nil {
		h.log.Info().Str("item_id", alert.ItemID).Msg("alerta descartada: el artículo ya no existe")
		return nil
	}
	if !item.IsLowStock() {
		h.log.Info().Str("sku", item.SKU).Int64("quantity", item.QuantityInStock).Msg("alerta descartada: stock repuesto")
		return nil
	}
	alert.SKU, alert.Name = item.SKU, item.Name
	alert.Quantity, alert.ReorderPoint = item.QuantityInStock, item.ReorderPoint

	subject := fmt.Sprintf("Stock bajo: %s (%s)", alert.Name, alert.SKU)
	body, err := render(lowStockTmpl, alert)
	if err != nil {
		return err
	}
	return h.send(ctx, []string{h.recipient}, subject, body)
}

// HandleOrderNotification avisa de eventos de pedido. Los pedidos de venta despachados
// también se notifican al cliente si tiene email.
func (h *Handlers) HandleOrderNotification(ctx context.Context, payload []byte) error {
	var n OrderNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return fmt.Errorf("order_notification: payload inválido: %w", err)
	}
	var subject string
	switch n.Event {
	case EventOrderCreated:
		subject = fmt.Sprintf("Nuevo pedido %s", n.OrderNumber)
	case EventOrderConfirmed:
		subject = fmt.Sprintf("Pedido %s confirmado", n.OrderNumber)
	case EventOrderReceived:
		subject = fmt.Sprintf("Pedido %s recibido", n.OrderNumber)
	case EventOrderShipped:
		subject = fmt.Sprintf("Pedido %s despachado", n.OrderNumber)
	case EventOrderCancelled:
		subject = fmt.Sprintf("Pedido %s cancelado", n.OrderNumber)
	default:
		h.log.Warn().Str("event", n.Event).Str("order", n.OrderNumber).Msg("evento de pedido desconocido, se ignora")
		return nil
	}
	to := []string{h.recipient}
	if n.Event == EventOrderShipped && n.CustomerEmail != "" {
		to = append(to, n.CustomerEmail)
	}
	body, err := render(orderTmpl, n)
	if err != nil {
		return err
	}
	return h.send(ctx, to, subject, body)
}

// HandleCheckLowStock barrido periódico: encola una alerta por cada artículo en stock bajo.
func (h *Handlers) HandleCheckLowStock(ctx context.Context, payload []byte) error {
	var req CheckLowStock
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("check_low_stock: payload inválido: %w", err)
		}
	}
	if req.Limit <= 0 {
		req.Limit = 500
	}
	list, err := h.items.ListLowStock(ctx, req.Limit)
	if err != nil {
		return fmt.Errorf("check_low_stock: %w", err)
	}
	now := h.now()
	for _, it := range list {
		alert := LowStockAlert{
			ItemID:       it.ID,
			SKU:          it.SKU,
			Name:         it.Name,
			Quantity:     it.QuantityInStock,
			ReorderPoint: it.ReorderPoint,
			DetectedAt:   now,
		}
		if err := h.queue.Enqueue(ctx, TaskLowStockAlert, alert); err != nil {
			return fmt.Errorf("check_low_stock: encolar %s: %w", it.SKU, err)
		}
	}
	h.log.Info().Int("items", len(list)).Msg("barrido de stock bajo completado")
	return nil
}

func (h *Handlers) send(ctx context.Context, to []string, subject, body string) error {
	recipients := to[:0]
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if h.mailer == nil || len(recipients) == 0 {
		h.log.Info().Str("subject", subject).Msg("correo no enviado (SMTP no configurado)")
		return nil
	}
	if err := h.mailer.Send(ctx, recipients, subject, body); err != nil {
		return fmt.Errorf("enviar correo %q: %w", subject, err)
	}
	h.log.Info().Str("subject", subject).Strs("to", recipients).Msg("correo enviado")
	return nil
}

var (
	lowStockTmpl = template.Must(template.New("low_stock").Parse(`<h2>Alerta de stock bajo</h2>
<p>El artículo <strong>{{.Name}}</strong> (SKU {{.SKU}}) quedó en {{.Quantity}} unidades,
en o por debajo de su punto de reorden ({{.ReorderPoint}}).</p>
{{if .ReferenceNumber}}<p>Referencia: {{.ReferenceNumber}}</p>{{end}}
<p>Detectado: {{.DetectedAt.Format "2006-01-02 15:04"}}</p>`))

	orderTmpl = template.Must(template.New("order").Parse(`<h2>Pedido {{.OrderNumber}}</h2>
<p>Tipo: {{.OrderType}}<br>Estado: {{.Status}}<br>Total: {{.TotalAmount.StringFixed 2}}</p>
<p>Fecha: {{.OccurredAt.Format "2006-01-02 15:04"}}</p>`))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("plantilla %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

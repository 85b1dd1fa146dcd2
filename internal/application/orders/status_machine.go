package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventory-manager/internal/application/inventory"
	"github.com/jhoicas/inventory-manager/internal/application/notification"
	"github.com/jhoicas/inventory-manager/internal/application/ports"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/order"
)

// StatusMachine aplica transiciones de estado. Recibir una compra o despachar una venta
// mueve el stock de cada línea dentro de la misma transacción que cambia el estado.
type StatusMachine struct {
	tx         ports.TxRunner
	mutator    *inventory.StockMutator
	evaluator  *inventory.LowStockEvaluator
	dispatcher *notification.Dispatcher
	now        func() time.Time
}

// NewStatusMachine construye la máquina. evaluator y dispatcher pueden ser nil.
func NewStatusMachine(tx ports.TxRunner, mutator *inventory.StockMutator, evaluator *inventory.LowStockEvaluator, dispatcher *notification.Dispatcher) *StatusMachine {
	return &StatusMachine{tx: tx, mutator: mutator, evaluator: evaluator, dispatcher: dispatcher, now: time.Now}
}

// Transition lleva el pedido a target. Si alguna línea falla no se aplica nada y el error es *domain.FulfillmentError;
// los errores transitorios de la BD se devuelven tal cual para que el llamador reintente.
func (s *StatusMachine) Transition(ctx context.Context, orderID, target string, actor entity.Actor) (*entity.Order, error) {
	if !order.ValidStatus(target) {
		return nil, domain.Invalid("status", "estado desconocido")
	}
	if actor.UserID == "" {
		return nil, domain.Invalid("actor", "requerido")
	}
	now := s.now()

	var (
		updated   *entity.Order
		mutations []inventory.Mutation
	)
	err := s.tx.Run(ctx, func(ctx context.Context, repos ports.TxRepos) error {
		mutations = mutations[:0]
		o, err := repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if err := order.ValidateTransition(o.OrderType, o.Status, target); err != nil {
			return err
		}

		if sign := order.StockSign(o.OrderType, target); sign != 0 {
			muts, err := s.fulfil(ctx, repos, o, sign, actor, now)
			if err != nil {
				return err
			}
			mutations = muts
		}

		o.Status = target
		o.StampStatus(now)
		if err := repos.Orders.UpdateStatus(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.evaluator != nil {
		for _, m := range mutations {
			s.evaluator.AfterMutation(ctx, m)
		}
	}
	if ev := statusEvent(target); ev != "" && s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, notification.TaskOrderNotification, orderEvent(updated, ev, now))
	}
	return updated, nil
}

// fulfil aplica sign*cantidad a cada línea en orden ascendente de item id, para que dos
// cumplimientos concurrentes tomen los bloqueos de fila en el mismo orden.
func (s *StatusMachine) fulfil(ctx context.Context, repos ports.TxRepos, o *entity.Order, sign int64, actor entity.Actor, now time.Time) ([]inventory.Mutation, error) {
	lines := append([]entity.OrderItem(nil), o.Items...)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })

	changeType, verb := entity.ChangeTypeSale, "despachado"
	if sign > 0 {
		changeType, verb = entity.ChangeTypePurchase, "recibido"
	}

	muts := make([]inventory.Mutation, 0, len(lines))
	for _, line := range lines {
		in := inventory.AdjustInput{
			ItemID:          line.ItemID,
			Delta:           sign * line.Quantity,
			ChangeType:      changeType,
			Reason:          fmt.Sprintf("Pedido %s %s", o.OrderNumber, verb),
			ReferenceNumber: o.OrderNumber,
			Actor:           actor,
			SkipUntracked:   true,
		}
		if sign > 0 {
			cost := line.UnitPrice
			in.UnitCost = &cost
		}
		m, err := s.mutator.ApplyInTx(ctx, repos, in, now)
		if err != nil {
			if errors.Is(err, domain.ErrTransient) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			fe := &domain.FulfillmentError{OrderNumber: o.OrderNumber, ItemID: line.ItemID, Err: err}
			var ise *domain.InsufficientStockError
			if errors.As(err, &ise) {
				fe.SKU = ise.SKU
			}
			return nil, fe
		}
		muts = append(muts, *m)
	}
	return muts, nil
}

func statusEvent(status string) string {
	switch status {
	case entity.OrderStatusConfirmed:
		return notification.EventOrderConfirmed
	case entity.OrderStatusReceived:
		return notification.EventOrderReceived
	case entity.OrderStatusShipped:
		return notification.EventOrderShipped
	case entity.OrderStatusCancelled:
		return notification.EventOrderCancelled
	}
	return ""
}

func orderEvent(o *entity.Order, event string, at time.Time) notification.OrderNotification {
	return notification.OrderNotification{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		OrderType:     o.OrderType,
		Event:         event,
		Status:        o.Status,
		TotalAmount:   o.TotalAmount,
		CustomerEmail: o.CustomerEmail,
		OccurredAt:    at,
	}
}

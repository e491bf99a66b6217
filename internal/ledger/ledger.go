// Package ledger keeps the append-only list of orders placed by a client.
package ledger

import (
	"context"
	"errors"
	"log"

	"raydrip/internal/apperror"
	"raydrip/internal/models"
	"raydrip/internal/storage"
)

type Ledger struct {
	store storage.Store
	locks storage.ScopeLocks
}

func New(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// Append records order once; an order id already in the ledger is ignored.
func (l *Ledger) Append(ctx context.Context, client string, order models.Order) error {
	unlock := l.locks.Lock(client)
	defer unlock()

	orders, err := l.List(ctx, client)
	if err != nil {
		return err
	}
	for _, o := range orders {
		if o.ID == order.ID {
			return nil
		}
	}
	orders = append(orders, order)
	if err := l.store.Save(ctx, client, storage.KeyOrders, orders, 0); err != nil {
		log.Printf("[LEDGER] [ERROR] append %s failed: %v", order.ID, err)
		return apperror.Internal("could not record order", err)
	}
	return nil
}

// List returns orders in placement order.
func (l *Ledger) List(ctx context.Context, client string) ([]models.Order, error) {
	var orders []models.Order
	err := l.store.Load(ctx, client, storage.KeyOrders, &orders)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.Order{}, nil
	}
	if err != nil {
		return nil, apperror.Internal("could not load orders", err)
	}
	return orders, nil
}

func (l *Ledger) Find(ctx context.Context, client, id string) (*models.Order, error) {
	orders, err := l.List(ctx, client)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, apperror.NotFound("order not found")
}

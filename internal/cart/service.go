package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"raydrip/internal/apperror"
	"raydrip/internal/models"
	"raydrip/internal/storage"
)

// ErrLineNotFound reports a size change for a line the cart does not hold.
var ErrLineNotFound = apperror.NotFound("cart item not found")

// ProductSource resolves catalog products by id.
type ProductSource interface {
	Get(id string) (models.Product, bool)
}

// Service keeps one cart per client in the client-scoped store.
type Service struct {
	store    storage.Store
	products ProductSource
	ttl      time.Duration
	now      func() time.Time
	locks    storage.ScopeLocks
	sfg      singleflight.Group
}

func NewService(store storage.Store, products ProductSource, ttl time.Duration) *Service {
	return &Service{store: store, products: products, ttl: ttl, now: time.Now}
}

// Get returns the client's cart; a missing cart is empty.
func (s *Service) Get(ctx context.Context, client string) (*Cart, error) {
	v, err, _ := s.sfg.Do(client, func() (interface{}, error) {
		return s.load(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	shared := v.(*Cart)
	return &Cart{Items: shared.Snapshot(), UpdatedAt: shared.UpdatedAt}, nil
}

func (s *Service) AddToCart(ctx context.Context, client, productID string, quantity int, size models.Size) (*Cart, error) {
	product, ok := s.products.Get(productID)
	if !ok {
		return nil, apperror.NotFound("product not found")
	}
	if !product.AllowsSize(size) {
		return nil, apperror.Validation(fmt.Sprintf("size %q is not available for %s", size, product.Name))
	}
	return s.mutate(ctx, client, func(c *Cart) error {
		c.Add(product, quantity, size)
		return nil
	})
}

func (s *Service) RemoveFromCart(ctx context.Context, client, productID string, size models.Size) (*Cart, error) {
	return s.mutate(ctx, client, func(c *Cart) error {
		c.Remove(productID, size)
		return nil
	})
}

func (s *Service) UpdateQuantity(ctx context.Context, client, productID string, quantity int, size models.Size) (*Cart, error) {
	return s.mutate(ctx, client, func(c *Cart) error {
		c.UpdateQuantity(productID, quantity, size)
		return nil
	})
}

func (s *Service) UpdateSize(ctx context.Context, client, productID string, newSize, oldSize models.Size) (*Cart, error) {
	return s.mutate(ctx, client, func(c *Cart) error {
		i := c.find(productID, oldSize)
		if i < 0 {
			return ErrLineNotFound
		}
		if !c.Items[i].AllowsSize(newSize) {
			return apperror.Validation(fmt.Sprintf("size %q is not available for %s", newSize, c.Items[i].Name))
		}
		c.UpdateSize(productID, newSize, oldSize)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, client string) error {
	unlock := s.locks.Lock(client)
	defer unlock()

	s.sfg.Forget(client)
	if err := s.store.Delete(ctx, client, storage.KeyCart); err != nil {
		log.Printf("[CART] [ERROR] clear failed: %v", err)
		return apperror.Internal("cart could not be cleared", err)
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, client string, fn func(*Cart) error) (*Cart, error) {
	unlock := s.locks.Lock(client)
	defer unlock()

	c, err := s.load(ctx, client)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()

	s.sfg.Forget(client)
	if err := s.store.Save(ctx, client, storage.KeyCart, c, s.ttl); err != nil {
		log.Printf("[CART] [ERROR] save failed: %v", err)
		return nil, apperror.Internal("cart could not be saved", err)
	}
	return c, nil
}

func (s *Service) load(ctx context.Context, client string) (*Cart, error) {
	var c Cart
	err := s.store.Load(ctx, client, storage.KeyCart, &c)
	if errors.Is(err, storage.ErrNotFound) {
		return &Cart{}, nil
	}
	if err != nil {
		log.Printf("[CART] [ERROR] load failed: %v", err)
		return nil, apperror.Internal("cart could not be loaded", err)
	}
	return &c, nil
}

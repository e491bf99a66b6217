// Package storage keeps per-client records under fixed keys, the server-side
// counterpart of browser local storage. Writes are last-write-wins.
package storage

import (
	"context"
	"errors"
	"time"
)

// Keys under which each client's records live.
const (
	KeyUser            = "raydrip_user"
	KeyAllUsers        = "raydrip_all_users"
	KeyOrders          = "raydrip_orders"
	KeyPendingOrder    = "raydrip_pending_order"
	KeyCart            = "cart"
	KeyOTPChallenge    = "otp_challenge"
	KeyCheckoutSession = "checkout_session"
)

var ErrNotFound = errors.New("storage: key not found")

// Store reads and writes JSON values scoped to one client. A zero ttl keeps
// the value until it is overwritten or deleted.
type Store interface {
	Load(ctx context.Context, scope, key string, dst any) error
	Save(ctx context.Context, scope, key string, src any, ttl time.Duration) error
	Delete(ctx context.Context, scope, key string) error
}

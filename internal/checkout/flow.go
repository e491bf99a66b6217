// Package checkout drives a cart through validation, the hosted payment
// step and order commitment for signed-in and guest customers.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"raydrip/internal/apperror"
	"raydrip/internal/cart"
	"raydrip/internal/events"
	"raydrip/internal/identity"
	"raydrip/internal/models"
	"raydrip/internal/money"
	"raydrip/internal/payment"
	"raydrip/internal/storage"
)

type CartStore interface {
	Get(ctx context.Context, client string) (*cart.Cart, error)
	Clear(ctx context.Context, client string) error
}

type Identity interface {
	Current(ctx context.Context, client string) (*models.User, error)
	AppendOrder(ctx context.Context, client string, order models.Order) (*models.User, error)
	AdoptGuestOrder(ctx context.Context, client string, details models.ShippingDetails, order models.Order) (*models.User, error)
}

type OrderLedger interface {
	Append(ctx context.Context, client string, order models.Order) error
}

// PaymentRecorder keeps the backend copy of a successful payment.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, rec *models.PaymentRecord) error
}

// Session is the persisted progress of one checkout attempt.
type Session struct {
	State     State                  `json:"state"`
	OrderID   string                 `json:"orderId,omitempty"`
	Amount    money.Amount           `json:"amount"`
	Currency  string                 `json:"currency,omitempty"`
	Receipt   string                 `json:"receipt,omitempty"`
	Details   models.ShippingDetails `json:"details"`
	Items     []models.CartItem      `json:"items,omitempty"`
	PaymentID string                 `json:"paymentId,omitempty"`
	Signature string                 `json:"signature,omitempty"`
	Recorded  bool                   `json:"recorded,omitempty"`
	LastError string                 `json:"lastError,omitempty"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func (s *Session) moveTo(next State) error {
	if !s.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.State, next)
	}
	s.State = next
	return nil
}

// Handoff carries what the hosted payment UI needs to open.
type Handoff struct {
	OrderID  string                 `json:"orderId"`
	Amount   money.Amount           `json:"amount"`
	Currency string                 `json:"currency"`
	KeyID    string                 `json:"keyId"`
	Prefill  models.ShippingDetails `json:"prefill"`
}

// Result is the outcome of a completed payment or guest verification.
type Result struct {
	State State        `json:"state"`
	Order models.Order `json:"order"`
	User  *models.User `json:"user,omitempty"`
}

type Config struct {
	Currency        string
	GuestCode       string
	ProcessingDelay time.Duration
}

type Deps struct {
	Store     storage.Store
	Cart      CartStore
	Identity  Identity
	Ledger    OrderLedger
	Gateway   payment.Gateway
	Recorder  PaymentRecorder
	Publisher events.Publisher
}

type Flow struct {
	Deps
	cfg   Config
	now   func() time.Time
	locks storage.ScopeLocks
}

func NewFlow(deps Deps, cfg Config) *Flow {
	if deps.Publisher == nil {
		deps.Publisher = events.LogPublisher{}
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Flow{Deps: deps, cfg: cfg, now: time.Now}
}

// WithClock replaces the time source.
func (f *Flow) WithClock(now func() time.Time) *Flow {
	f.now = now
	return f
}

// Status returns the client's checkout session; none means filling details.
func (f *Flow) Status(ctx context.Context, client string) (*Session, error) {
	return f.load(ctx, client)
}

// Begin validates the details against the current cart and opens a provider
// order for its total.
func (f *Flow) Begin(ctx context.Context, client string, details models.ShippingDetails) (*Handoff, error) {
	unlock := f.locks.Lock(client)
	defer unlock()

	sess, err := f.load(ctx, client)
	if err != nil {
		return nil, err
	}
	if sess.State.PaymentTaken() {
		return nil, apperror.Conflict("a paid order is still being completed")
	}
	if sess.State == StatePaymentFailed || sess.State == StateOrderCommitted {
		sess = &Session{State: StateFillingDetails}
	}

	c, err := f.Cart.Get(ctx, client)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, apperror.Validation("cart is empty")
	}
	if err := ValidateDetails(details); err != nil {
		return nil, err
	}
	details = normalizeDetails(details)

	total := c.TotalPrice()
	receipt := receiptFor(client, f.now())
	order, err := f.Gateway.CreateOrder(ctx, total, f.cfg.Currency, receipt)
	if err != nil {
		log.Printf("[CHECKOUT] [ERROR] provider order failed: %v", err)
		sess.Details = details
		sess.LastError = "payment could not be started"
		if moveErr := sess.moveTo(StatePaymentFailed); moveErr == nil {
			f.save(ctx, client, sess)
		}
		return nil, apperror.Network("payment could not be started, please try again", err)
	}

	next := &Session{
		State:    sess.State,
		OrderID:  order.ID,
		Amount:   total,
		Currency: f.cfg.Currency,
		Receipt:  receipt,
		Details:  details,
		Items:    c.Snapshot(),
	}
	if err := next.moveTo(StateSubmittingPayment); err != nil {
		return nil, apperror.Internal("checkout is in an unexpected state", err)
	}
	if err := f.save(ctx, client, next); err != nil {
		return nil, err
	}

	log.Printf("[CHECKOUT] [INFO] provider order %s opened for %s", order.ID, total)
	return &Handoff{
		OrderID:  order.ID,
		Amount:   total,
		Currency: f.cfg.Currency,
		KeyID:    f.Gateway.KeyID(),
		Prefill:  details,
	}, nil
}

// Complete handles the provider callback. A resubmitted callback for a
// payment that could not be recorded retries the recording.
func (f *Flow) Complete(ctx context.Context, client string, cb payment.Callback) (*Result, error) {
	unlock := f.locks.Lock(client)
	defer unlock()

	sess, err := f.load(ctx, client)
	if err != nil {
		return nil, err
	}

	switch {
	case sess.State == StateSubmittingPayment && sess.OrderID == cb.OrderID:
		if !f.Gateway.VerifySignature(cb.OrderID, cb.PaymentID, cb.Signature) {
			log.Printf("[CHECKOUT] [WARN] signature mismatch for order %s", cb.OrderID)
			sess.LastError = "payment verification failed"
			if err := sess.moveTo(StatePaymentFailed); err == nil {
				f.save(ctx, client, sess)
			}
			return nil, apperror.Auth("payment verification failed")
		}
		sess.PaymentID = cb.PaymentID
		sess.Signature = cb.Signature
		sess.LastError = ""
		if err := sess.moveTo(StatePaymentSucceeded); err != nil {
			return nil, apperror.Internal("checkout is in an unexpected state", err)
		}
		if err := f.save(ctx, client, sess); err != nil {
			return nil, err
		}
	case sess.State == StatePaymentSucceeded && sess.OrderID == cb.OrderID && sess.PaymentID == cb.PaymentID:
	default:
		return nil, apperror.Validation("no matching payment in progress")
	}

	if !sess.Recorded {
		if err := f.Recorder.RecordPayment(ctx, f.paymentRecord(client, sess)); err != nil {
			log.Printf("[CHECKOUT] [ERROR] payment %s not recorded: %v", sess.PaymentID, err)
			sess.LastError = "order could not be saved"
			f.save(ctx, client, sess)
			return nil, apperror.Persistence(persistenceMessage(sess.PaymentID), err)
		}
		sess.Recorded = true
		if err := f.save(ctx, client, sess); err != nil {
			return nil, apperror.Persistence(persistenceMessage(sess.PaymentID), err)
		}
	}

	if err := f.wait(ctx); err != nil {
		return nil, err
	}

	order := f.orderFrom(sess)
	user, err := f.Identity.Current(ctx, client)
	if errors.Is(err, identity.ErrNotSignedIn) {
		return f.holdGuestOrder(ctx, client, sess, order)
	}
	if err != nil {
		return nil, err
	}

	if user, err = f.Identity.AppendOrder(ctx, client, order); err != nil {
		return nil, apperror.Persistence(persistenceMessage(sess.PaymentID), err)
	}
	if err := f.commit(ctx, client, sess, order, user.ID, false); err != nil {
		return nil, err
	}
	return &Result{State: StateOrderCommitted, Order: order, User: user}, nil
}

// VerifyGuest releases a held guest order once the verification code matches.
func (f *Flow) VerifyGuest(ctx context.Context, client, code string) (*Result, error) {
	unlock := f.locks.Lock(client)
	defer unlock()

	sess, err := f.load(ctx, client)
	if err != nil {
		return nil, err
	}
	if sess.State != StateAwaitingVerification {
		return nil, apperror.Validation("no order is awaiting verification")
	}
	if code != f.cfg.GuestCode {
		return nil, apperror.Auth("invalid verification code")
	}

	var order models.Order
	if err := f.Store.Load(ctx, client, storage.KeyPendingOrder, &order); err != nil {
		return nil, apperror.Persistence(persistenceMessage(sess.PaymentID), err)
	}

	user, err := f.Identity.AdoptGuestOrder(ctx, client, order.Shipping, order)
	if err != nil {
		return nil, apperror.Persistence(persistenceMessage(sess.PaymentID), err)
	}
	if err := f.commit(ctx, client, sess, order, user.ID, true); err != nil {
		return nil, err
	}
	if err := f.Store.Delete(ctx, client, storage.KeyPendingOrder); err != nil {
		log.Printf("[CHECKOUT] [WARN] pending order cleanup failed: %v", err)
	}
	return &Result{State: StateOrderCommitted, Order: order, User: user}, nil
}

// Cancel records that the customer closed the payment UI and returns the
// session to the details step. Cart and orders are untouched.
func (f *Flow) Cancel(ctx context.Context, client string) error {
	unlock := f.locks.Lock(client)
	defer unlock()

	sess, err := f.load(ctx, client)
	if err != nil {
		return err
	}
	if sess.State != StateSubmittingPayment {
		return apperror.Validation("no payment in progress")
	}
	if err := sess.moveTo(StatePaymentFailed); err != nil {
		return apperror.Internal("checkout is in an unexpected state", err)
	}
	if err := sess.moveTo(StateFillingDetails); err != nil {
		return apperror.Internal("checkout is in an unexpected state", err)
	}
	sess.OrderID = ""
	sess.LastError = "payment cancelled"
	if err := f.save(ctx, client, sess); err != nil {
		return err
	}
	log.Printf("[CHECKOUT] [INFO] payment cancelled by client")
	return apperror.PaymentCancelled("payment was cancelled")
}

func (f *Flow) holdGuestOrder(ctx context.Context, client string, sess *Session, order models.Order) (*Result, error) {
	if err := f.Store.Save(ctx, client, storage.KeyPendingOrder, order, 0); err != nil {
		return nil, apperror.Persistence(persistenceMessage(sess.PaymentID), err)
	}
	if err := sess.moveTo(StateAwaitingVerification); err != nil {
		return nil, apperror.Internal("checkout is in an unexpected state", err)
	}
	if err := f.save(ctx, client, sess); err != nil {
		return nil, err
	}
	log.Printf("[CHECKOUT] [INFO] guest order %s held for verification", order.ID)
	return &Result{State: StateAwaitingVerification, Order: order}, nil
}

func (f *Flow) commit(ctx context.Context, client string, sess *Session, order models.Order, userID string, guest bool) error {
	if err := f.Ledger.Append(ctx, client, order); err != nil {
		return apperror.Persistence(persistenceMessage(sess.PaymentID), err)
	}
	if err := f.Cart.Clear(ctx, client); err != nil {
		log.Printf("[CHECKOUT] [WARN] cart clear after order %s failed: %v", order.ID, err)
	}
	if err := sess.moveTo(StateOrderCommitted); err != nil {
		return apperror.Internal("checkout is in an unexpected state", err)
	}
	sess.LastError = ""
	if err := f.save(ctx, client, sess); err != nil {
		return err
	}

	event := events.OrderCommitted{
		OrderID:   order.ID,
		PaymentID: order.PaymentID,
		ClientID:  client,
		UserID:    userID,
		Guest:     guest,
		Items:     itemCount(order.Items),
		Total:     order.Total,
		Currency:  order.Currency,
		PlacedAt:  order.PlacedAt,
	}
	if err := f.Publisher.PublishOrderCommitted(ctx, event); err != nil {
		log.Printf("[CHECKOUT] [WARN] order %s event not published: %v", order.ID, err)
	}
	log.Printf("[CHECKOUT] [INFO] order %s committed", order.ID)
	return nil
}

func (f *Flow) wait(ctx context.Context) error {
	if f.cfg.ProcessingDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(f.cfg.ProcessingDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return apperror.Internal("checkout interrupted", ctx.Err())
	}
}

func (f *Flow) orderFrom(sess *Session) models.Order {
	return models.Order{
		ID:        sess.OrderID,
		Items:     sess.Items,
		Shipping:  sess.Details,
		Total:     sess.Amount,
		Currency:  sess.Currency,
		PlacedAt:  f.now(),
		PaymentID: sess.PaymentID,
	}
}

func (f *Flow) paymentRecord(client string, sess *Session) *models.PaymentRecord {
	return &models.PaymentRecord{
		PaymentID: sess.PaymentID,
		OrderID:   sess.OrderID,
		Signature: sess.Signature,
		ClientID:  client,
		Shipping:  sess.Details,
		Items:     models.PaymentItemsFromCart(sess.Items),
		Total:     int64(sess.Amount),
		Currency:  sess.Currency,
		CreatedAt: f.now(),
	}
}

func (f *Flow) load(ctx context.Context, client string) (*Session, error) {
	var sess Session
	err := f.Store.Load(ctx, client, storage.KeyCheckoutSession, &sess)
	if errors.Is(err, storage.ErrNotFound) {
		return &Session{State: StateFillingDetails}, nil
	}
	if err != nil {
		return nil, apperror.Internal("could not load checkout", err)
	}
	return &sess, nil
}

func (f *Flow) save(ctx context.Context, client string, sess *Session) error {
	sess.UpdatedAt = f.now()
	if err := f.Store.Save(ctx, client, storage.KeyCheckoutSession, sess, 0); err != nil {
		log.Printf("[CHECKOUT] [ERROR] session save failed: %v", err)
		return apperror.Internal("could not save checkout", err)
	}
	return nil
}

func persistenceMessage(paymentID string) string {
	return fmt.Sprintf("your payment %s was received but the order could not be saved, please contact support", paymentID)
}

func receiptFor(client string, at time.Time) string {
	prefix := client
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return fmt.Sprintf("rcpt_%s_%d", prefix, at.Unix())
}

func itemCount(items []models.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

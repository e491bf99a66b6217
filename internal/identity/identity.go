// Package identity runs the one-time-code sign-in flow and keeps the
// signed-in user, the user directory and the guest order merge.
package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math"
	"math/big"
	"strings"
	"time"

	"raydrip/internal/apperror"
	"raydrip/internal/contact"
	"raydrip/internal/models"
	"raydrip/internal/storage"
)

type State string

const (
	StateAwaitingIdentifier State = "awaiting-identifier"
	StateAwaitingCode       State = "awaiting-otp-verification"
	StateAwaitingProfile    State = "awaiting-profile-details"
	StateSignedIn           State = "signed-in"
)

const codeDigits = 6

var ErrNotSignedIn = apperror.Auth("not signed in")

// Challenge is the pending one-time code for a client.
type Challenge struct {
	Identifier string    `json:"identifier"`
	Code       string    `json:"code"`
	IssuedAt   time.Time `json:"issuedAt"`
	Verified   bool      `json:"verified"`
}

// CooldownError is wrapped by the validation error returned while a new
// code cannot be requested yet.
type CooldownError struct {
	Remaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("resend available in %ds", e.Remaining)
}

// CodeResult describes an issued code. Code is only for demo echoing.
type CodeResult struct {
	Identifier string `json:"identifier"`
	Code       string `json:"-"`
	ResendIn   int    `json:"resendIn"`
}

// VerifyResult is the outcome of a code check.
type VerifyResult struct {
	State State        `json:"state"`
	User  *models.User `json:"user,omitempty"`
}

type Manager struct {
	store    storage.Store
	sender   CodeSender
	cooldown time.Duration
	now      func() time.Time
	locks    storage.ScopeLocks
}

func NewManager(store storage.Store, sender CodeSender, cooldown time.Duration) *Manager {
	if sender == nil {
		sender = LogSender{}
	}
	return &Manager{store: store, sender: sender, cooldown: cooldown, now: time.Now}
}

// WithClock replaces the time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// RequestCode issues a fresh code for identifier unless the resend cooldown
// of the previous code is still running.
func (m *Manager) RequestCode(ctx context.Context, client, identifier string) (*CodeResult, error) {
	identifier = contact.Normalize(identifier)
	if !contact.IsIdentifier(identifier) {
		return nil, apperror.Validation("enter a valid email or 10-digit mobile number")
	}

	unlock := m.locks.Lock(client)
	defer unlock()

	prev, err := m.loadChallenge(ctx, client)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		if remaining := m.remaining(prev.IssuedAt); remaining > 0 {
			return nil, &apperror.Error{
				Kind:    apperror.KindValidation,
				Message: fmt.Sprintf("please wait %d seconds before requesting a new code", remaining),
				Err:     &CooldownError{Remaining: remaining},
			}
		}
	}

	code, err := generateCode()
	if err != nil {
		return nil, apperror.Internal("could not generate code", err)
	}
	if err := m.sender.Send(ctx, identifier, code); err != nil {
		log.Printf("[OTP] [ERROR] delivery to %s failed: %v", contact.Mask(identifier), err)
		return nil, apperror.Network("could not send the verification code", err)
	}

	ch := Challenge{Identifier: identifier, Code: code, IssuedAt: m.now()}
	if err := m.store.Save(ctx, client, storage.KeyOTPChallenge, ch, 0); err != nil {
		return nil, apperror.Internal("could not store the verification code", err)
	}
	return &CodeResult{Identifier: identifier, Code: code, ResendIn: m.remaining(ch.IssuedAt)}, nil
}

// ResendIn reports the seconds left before another code may be requested.
func (m *Manager) ResendIn(ctx context.Context, client string) (int, error) {
	ch, err := m.loadChallenge(ctx, client)
	if err != nil || ch == nil {
		return 0, err
	}
	return m.remaining(ch.IssuedAt), nil
}

// VerifyCode checks code against the latest challenge. A wrong code keeps
// the challenge so the user can retry.
func (m *Manager) VerifyCode(ctx context.Context, client, code string) (*VerifyResult, error) {
	unlock := m.locks.Lock(client)
	defer unlock()

	ch, err := m.loadChallenge(ctx, client)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, apperror.Validation("request a verification code first")
	}
	if strings.TrimSpace(code) != ch.Code {
		return nil, apperror.Auth("invalid verification code")
	}

	users, err := m.loadDirectory(ctx, client)
	if err != nil {
		return nil, err
	}
	if i := findUser(users, ch.Identifier, ch.Identifier); i >= 0 {
		user := users[i]
		if err := m.saveSession(ctx, client, &user); err != nil {
			return nil, err
		}
		if err := m.store.Delete(ctx, client, storage.KeyOTPChallenge); err != nil {
			log.Printf("[OTP] [WARN] challenge cleanup failed: %v", err)
		}
		log.Printf("[OTP] [INFO] %s signed in", contact.Mask(ch.Identifier))
		return &VerifyResult{State: StateSignedIn, User: &user}, nil
	}

	ch.Verified = true
	if err := m.store.Save(ctx, client, storage.KeyOTPChallenge, ch, 0); err != nil {
		return nil, apperror.Internal("could not store the verification state", err)
	}
	return &VerifyResult{State: StateAwaitingProfile}, nil
}

// CompleteProfile creates the user for a verified identifier. An identifier
// already present in the directory is a conflict.
func (m *Manager) CompleteProfile(ctx context.Context, client, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}

	unlock := m.locks.Lock(client)
	defer unlock()

	ch, err := m.loadChallenge(ctx, client)
	if err != nil {
		return nil, err
	}
	if ch == nil || !ch.Verified {
		return nil, apperror.Validation("verify your code first")
	}

	user := models.User{ID: ch.Identifier, Name: name, Orders: []models.Order{}, CreatedAt: m.now()}
	if contact.IsEmail(ch.Identifier) {
		user.Email = ch.Identifier
	} else {
		user.Phone = ch.Identifier
	}

	users, err := m.loadDirectory(ctx, client)
	if err != nil {
		return nil, err
	}
	if findUser(users, user.Email, user.Phone) >= 0 {
		return nil, apperror.Conflict("an account with this email or phone already exists")
	}
	users = append(users, user)
	if err := m.saveDirectory(ctx, client, users); err != nil {
		return nil, err
	}
	if err := m.saveSession(ctx, client, &user); err != nil {
		return nil, err
	}
	if err := m.store.Delete(ctx, client, storage.KeyOTPChallenge); err != nil {
		log.Printf("[OTP] [WARN] challenge cleanup failed: %v", err)
	}
	log.Printf("[OTP] [INFO] profile created for %s", contact.Mask(user.ID))
	return &user, nil
}

// Current returns the signed-in user or ErrNotSignedIn.
func (m *Manager) Current(ctx context.Context, client string) (*models.User, error) {
	var user models.User
	err := m.store.Load(ctx, client, storage.KeyUser, &user)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, apperror.Internal("could not load session", err)
	}
	return &user, nil
}

// Status reports where the client is in the sign-in flow.
func (m *Manager) Status(ctx context.Context, client string) (State, error) {
	if _, err := m.Current(ctx, client); err == nil {
		return StateSignedIn, nil
	} else if !errors.Is(err, ErrNotSignedIn) {
		return "", err
	}
	ch, err := m.loadChallenge(ctx, client)
	if err != nil {
		return "", err
	}
	switch {
	case ch == nil:
		return StateAwaitingIdentifier, nil
	case ch.Verified:
		return StateAwaitingProfile, nil
	default:
		return StateAwaitingCode, nil
	}
}

func (m *Manager) Logout(ctx context.Context, client string) error {
	unlock := m.locks.Lock(client)
	defer unlock()

	for _, key := range []string{storage.KeyUser, storage.KeyOTPChallenge} {
		if err := m.store.Delete(ctx, client, key); err != nil {
			return apperror.Internal("could not sign out", err)
		}
	}
	return nil
}

// AppendOrder adds order to the signed-in user and its directory entry. An
// order already held by the user is not added again.
func (m *Manager) AppendOrder(ctx context.Context, client string, order models.Order) (*models.User, error) {
	unlock := m.locks.Lock(client)
	defer unlock()

	user, err := m.Current(ctx, client)
	if err != nil {
		return nil, err
	}
	if !hasOrder(user.Orders, order.ID) {
		user.Orders = append(user.Orders, order)
	}

	users, err := m.loadDirectory(ctx, client)
	if err != nil {
		return nil, err
	}
	if i := indexByID(users, user.ID); i >= 0 {
		users[i] = *user
	} else {
		users = append(users, *user)
	}
	if err := m.saveDirectory(ctx, client, users); err != nil {
		return nil, err
	}
	if err := m.saveSession(ctx, client, user); err != nil {
		return nil, err
	}
	return user, nil
}

// AdoptGuestOrder signs in the owner of a verified guest order. An existing
// directory entry with the same email or phone receives the order; otherwise
// a user keyed by the shipping email is created.
func (m *Manager) AdoptGuestOrder(ctx context.Context, client string, details models.ShippingDetails, order models.Order) (*models.User, error) {
	unlock := m.locks.Lock(client)
	defer unlock()

	users, err := m.loadDirectory(ctx, client)
	if err != nil {
		return nil, err
	}

	email := contact.Normalize(details.Email)
	phone := strings.TrimSpace(details.Phone)

	var user models.User
	if i := findUser(users, email, phone); i >= 0 {
		if !hasOrder(users[i].Orders, order.ID) {
			users[i].Orders = append(users[i].Orders, order)
		}
		user = users[i]
	} else {
		user = models.User{
			ID:        email,
			Name:      strings.TrimSpace(details.Name),
			Email:     email,
			Phone:     phone,
			Orders:    []models.Order{order},
			CreatedAt: m.now(),
		}
		users = append(users, user)
	}

	if err := m.saveDirectory(ctx, client, users); err != nil {
		return nil, err
	}
	if err := m.saveSession(ctx, client, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Manager) remaining(issuedAt time.Time) int {
	left := m.cooldown - m.now().Sub(issuedAt)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

func (m *Manager) loadChallenge(ctx context.Context, client string) (*Challenge, error) {
	var ch Challenge
	err := m.store.Load(ctx, client, storage.KeyOTPChallenge, &ch)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("could not load verification state", err)
	}
	return &ch, nil
}

func (m *Manager) loadDirectory(ctx context.Context, client string) ([]models.User, error) {
	var users []models.User
	err := m.store.Load(ctx, client, storage.KeyAllUsers, &users)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal("could not load users", err)
	}
	return users, nil
}

func (m *Manager) saveDirectory(ctx context.Context, client string, users []models.User) error {
	if err := m.store.Save(ctx, client, storage.KeyAllUsers, users, 0); err != nil {
		log.Printf("[OTP] [ERROR] directory save failed: %v", err)
		return apperror.Internal("could not save users", err)
	}
	return nil
}

func (m *Manager) saveSession(ctx context.Context, client string, user *models.User) error {
	if err := m.store.Save(ctx, client, storage.KeyUser, user, 0); err != nil {
		log.Printf("[OTP] [ERROR] session save failed: %v", err)
		return apperror.Internal("could not save session", err)
	}
	return nil
}

// findUser matches a non-empty email or phone against the directory.
func findUser(users []models.User, email, phone string) int {
	for i, u := range users {
		if email != "" && strings.EqualFold(u.Email, email) {
			return i
		}
		if phone != "" && u.Phone == phone {
			return i
		}
	}
	return -1
}

func hasOrder(orders []models.Order, id string) bool {
	for _, o := range orders {
		if o.ID == id {
			return true
		}
	}
	return false
}

func indexByID(users []models.User, id string) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(math.Pow10(codeDigits))))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n.Int64()), nil
}

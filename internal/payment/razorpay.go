package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"raydrip/internal/money"
)

const (
	breakerFailures = 5
	breakerTimeout  = 30 * time.Second
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("payment provider unavailable")

type Razorpay struct {
	keyID     string
	keySecret string
	apiURL    string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*ProviderOrder]
}

type providerError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// ProviderError is a non-2xx answer from the provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%d): %s", e.Status, e.Message)
}

// countsAsSuccess keeps request rejections (4xx) out of the breaker counts;
// only transport failures and 5xx answers trip it.
func countsAsSuccess(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Status < http.StatusInternalServerError
	}
	return err == nil
}

func NewRazorpay(cfg Config) *Razorpay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	r := &Razorpay{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		apiURL:    strings.TrimRight(cfg.APIURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}
	r.breaker = gobreaker.NewCircuitBreaker[*ProviderOrder](gobreaker.Settings{
		Name:    "razorpay",
		Timeout: breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[PAYMENT] [WARN] breaker %s: %s -> %s", name, from, to)
		},
	})
	return r
}

func (r *Razorpay) KeyID() string { return r.keyID }

func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, r.keySecret)
}

func (r *Razorpay) CreateOrder(ctx context.Context, amount money.Amount, currency, receipt string) (*ProviderOrder, error) {
	order, err := r.breaker.Execute(func() (*ProviderOrder, error) {
		return r.createOrder(ctx, amount, currency, receipt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return order, err
}

func (r *Razorpay) createOrder(ctx context.Context, amount money.Amount, currency, receipt string) (*ProviderOrder, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"amount":   int64(amount),
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var perr providerError
		if json.Unmarshal(body, &perr) == nil && perr.Error.Description != "" {
			return nil, &ProviderError{Status: resp.StatusCode, Message: perr.Error.Description}
		}
		return nil, &ProviderError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var order ProviderOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("provider returned an empty order id")
	}
	log.Printf("[PAYMENT] [INFO] provider order %s created for %d %s", order.ID, order.Amount, order.Currency)
	return &order, nil
}

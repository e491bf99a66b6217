package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"raydrip/internal/checkout"
	"raydrip/internal/database"
	"raydrip/internal/middleware"
	"raydrip/internal/models"
	"raydrip/internal/money"
	"raydrip/internal/payment"
)

// PaymentLookup reads recorded payments by provider order id.
type PaymentLookup interface {
	FindByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error)
}

type createRazorOrderRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type savePaymentShipping struct {
	Name    string `json:"name"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" binding:"omitempty,mobile"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode" binding:"omitempty,pincode"`
}

type savePaymentRequest struct {
	payment.Callback
	Shipping savePaymentShipping `json:"shipping"`
	Items    []models.CartItem   `json:"items"`
	Total    int64               `json:"total" binding:"gte=0"`
	Currency string              `json:"currency"`
}

// CreateRazorOrder opens a provider order for an amount in minor units.
func CreateRazorOrder(gateway payment.Gateway, defaultCurrency string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /razor/api/createOrder"
		defer handlePanic(c, route)

		var req createRazorOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		currency := strings.ToUpper(strings.TrimSpace(req.Currency))
		if currency == "" {
			currency = defaultCurrency
		}
		receipt := strings.TrimSpace(req.Receipt)
		if receipt == "" {
			receipt = "rcpt_" + middleware.ClientID(c)
		}

		order, err := gateway.CreateOrder(c.Request.Context(), money.Amount(req.Amount), currency, receipt)
		if err != nil {
			log.Printf("[%s] [ERROR] provider order failed: %v", route, err)
			respondWithError(c, http.StatusBadGateway, route, "payment could not be started, please try again")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orderId":  order.ID,
			"amount":   order.Amount,
			"currency": order.Currency,
			"keyId":    gateway.KeyID(),
		})
	}
}

// SavePayment verifies the provider signature and stores the payment.
func SavePayment(gateway payment.Gateway, recorder checkout.PaymentRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /razor/api/savePayment"
		defer handlePanic(c, route)

		var req savePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
			log.Printf("[%s] [WARN] signature mismatch for order %s", route, req.OrderID)
			respondWithError(c, http.StatusUnauthorized, route, "invalid payment signature")
			return
		}

		rec := &models.PaymentRecord{
			PaymentID: req.PaymentID,
			OrderID:   req.OrderID,
			Signature: req.Signature,
			ClientID:  middleware.ClientID(c),
			Shipping:  models.ShippingDetails(req.Shipping),
			Items:     models.PaymentItemsFromCart(req.Items),
			Total:     req.Total,
			Currency:  strings.ToUpper(strings.TrimSpace(req.Currency)),
			CreatedAt: time.Now().UTC(),
		}
		if err := recorder.RecordPayment(c.Request.Context(), rec); err != nil {
			log.Printf("[%s] [ERROR] payment %s not recorded: %v", route, req.PaymentID, err)
			respondWithError(c, http.StatusInternalServerError, route,
				"your payment "+req.PaymentID+" was received but the order could not be saved, please contact support")
			return
		}

		log.Printf("[%s] payment %s recorded for order %s", route, req.PaymentID, req.OrderID)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

// GetPayment returns the recorded payment for an order placed by this client.
func GetPayment(payments PaymentLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /razor/api/payment/:orderId"
		defer handlePanic(c, route)

		rec, err := payments.FindByOrderID(c.Request.Context(), c.Param("orderId"))
		if errors.Is(err, database.ErrPaymentNotFound) || (err == nil && rec.ClientID != middleware.ClientID(c)) {
			respondWithError(c, http.StatusNotFound, route, "payment not found")
			return
		}
		if err != nil {
			log.Printf("[%s] [ERROR] payment lookup failed: %v", route, err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		total := money.Amount(rec.Total)
		c.JSON(http.StatusOK, gin.H{
			"orderId":      rec.OrderID,
			"paymentId":    rec.PaymentID,
			"total":        rec.Total,
			"totalMajor":   total.Major().StringFixed(2),
			"displayTotal": total.String(),
			"currency":     rec.Currency,
			"items":        rec.Items,
			"createdAt":    rec.CreatedAt,
		})
	}
}

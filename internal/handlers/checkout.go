package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"raydrip/internal/checkout"
	"raydrip/internal/middleware"
	"raydrip/internal/models"
	"raydrip/internal/payment"
)

type verifyGuestRequest struct {
	Code string `json:"code" binding:"required"`
}

// BeginCheckout validates shipping details and opens the provider order.
func BeginCheckout(flow *checkout.Flow) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		var details models.ShippingDetails
		if err := c.ShouldBindJSON(&details); err != nil {
			respondValidationError(c, err)
			return
		}

		handoff, err := flow.Begin(c.Request.Context(), middleware.ClientID(c), details)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orderId":       handoff.OrderID,
			"amount":        handoff.Amount,
			"currency":      handoff.Currency,
			"keyId":         handoff.KeyID,
			"prefill":       handoff.Prefill,
			"displayAmount": handoff.Amount.String(),
		})
	}
}

func CompleteCheckout(flow *checkout.Flow) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/complete"
		defer handlePanic(c, route)

		var cb payment.Callback
		if err := c.ShouldBindJSON(&cb); err != nil {
			respondValidationError(c, err)
			return
		}

		result, err := flow.Complete(c.Request.Context(), middleware.ClientID(c), cb)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		log.Printf("[%s] order %s is %s", route, result.Order.ID, result.State)
		c.JSON(http.StatusOK, checkoutResultBody(result))
	}
}

// VerifyGuestCheckout releases a held guest order.
func VerifyGuestCheckout(flow *checkout.Flow) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/verify"
		defer handlePanic(c, route)

		var req verifyGuestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		result, err := flow.VerifyGuest(c.Request.Context(), middleware.ClientID(c), req.Code)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, checkoutResultBody(result))
	}
}

func CancelCheckout(flow *checkout.Flow) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/cancel"
		defer handlePanic(c, route)

		if err := flow.Cancel(c.Request.Context(), middleware.ClientID(c)); err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": checkout.StateFillingDetails})
	}
}

func GetCheckout(flow *checkout.Flow) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /checkout"
		defer handlePanic(c, route)

		sess, err := flow.Status(c.Request.Context(), middleware.ClientID(c))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"state":     sess.State,
			"orderId":   sess.OrderID,
			"amount":    sess.Amount,
			"currency":  sess.Currency,
			"lastError": sess.LastError,
		})
	}
}

func checkoutResultBody(result *checkout.Result) gin.H {
	body := gin.H{
		"state": result.State,
		"order": orderView{Order: result.Order, DisplayTotal: result.Order.Total.String()},
	}
	if result.User != nil {
		body["user"] = result.User
	}
	return body
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"raydrip/internal/apperror"
	"raydrip/internal/identity"
	"raydrip/internal/middleware"
)

type otpRequest struct {
	Identifier string `json:"identifier" binding:"required,identifier"`
}

type otpVerifyRequest struct {
	Code string `json:"code" binding:"required"`
}

type otpProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// RequestOTP issues a sign-in code. The code itself is only returned when
// demo mode is on.
func RequestOTP(ids *identity.Manager, demoMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/otp/request"
		defer handlePanic(c, route)

		var req otpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		res, err := ids.RequestCode(c.Request.Context(), middleware.ClientID(c), req.Identifier)
		if err != nil {
			var cooldown *identity.CooldownError
			if errors.As(err, &cooldown) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"error":    apperror.Message(err),
					"resendIn": cooldown.Remaining,
				})
				return
			}
			respondAppError(c, route, err)
			return
		}

		body := gin.H{
			"state":      identity.StateAwaitingCode,
			"identifier": res.Identifier,
			"resendIn":   res.ResendIn,
		}
		if demoMode {
			body["code"] = res.Code
		}
		c.JSON(http.StatusOK, body)
	}
}

func VerifyOTP(ids *identity.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/otp/verify"
		defer handlePanic(c, route)

		var req otpVerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		res, err := ids.VerifyCode(c.Request.Context(), middleware.ClientID(c), req.Code)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func CompleteOTPProfile(ids *identity.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/otp/profile"
		defer handlePanic(c, route)

		var req otpProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		user, err := ids.CompleteProfile(c.Request.Context(), middleware.ClientID(c), req.Name)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"state": identity.StateSignedIn, "user": user})
	}
}

// GetSession reports the sign-in state and the user when signed in.
func GetSession(ids *identity.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/session"
		defer handlePanic(c, route)

		ctx := c.Request.Context()
		client := middleware.ClientID(c)

		state, err := ids.Status(ctx, client)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		body := gin.H{"state": state}
		if state == identity.StateSignedIn {
			user, err := ids.Current(ctx, client)
			if err != nil {
				respondAppError(c, route, err)
				return
			}
			body["user"] = user
		}
		if resendIn, err := ids.ResendIn(ctx, client); err == nil && resendIn > 0 {
			body["resendIn"] = resendIn
		}
		c.JSON(http.StatusOK, body)
	}
}

func LogoutOTP(ids *identity.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/logout"
		defer handlePanic(c, route)

		if err := ids.Logout(c.Request.Context(), middleware.ClientID(c)); err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"raydrip/internal/database"
	"raydrip/internal/middleware"
	"raydrip/internal/models"
)

type updateProfileRequest struct {
	Name string `json:"name"`
}

func GetProfile(accounts AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /users/profile"
		defer handlePanic(c, route)

		userID := c.GetString(middleware.UserIDKey)
		if userID == "" {
			log.Println("[AUTH] [ERROR] userId missing in context")
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		account, err := accounts.FindByID(c.Request.Context(), userID)
		if errors.Is(err, database.ErrAccountNotFound) {
			log.Println("[AUTH] [WARN] token for missing account:", c.GetString(middleware.UserEmailKey))
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] get profile failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[AUTH] [INFO] profile read:", c.GetString(middleware.UserEmailKey))
		c.JSON(http.StatusOK, profileBody(account))
	}
}

func UpdateProfile(accounts AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /users/profile"
		defer handlePanic(c, route)

		userID := c.GetString(middleware.UserIDKey)
		if userID == "" {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "name is required")
			return
		}

		account, err := accounts.UpdateName(c.Request.Context(), userID, name)
		if errors.Is(err, database.ErrAccountNotFound) {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] update profile failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[AUTH] [INFO] profile updated:", account.Email)
		c.JSON(http.StatusOK, profileBody(account))
	}
}

func profileBody(account *models.Account) gin.H {
	return gin.H{
		"id":    account.ID.Hex(),
		"email": account.Email,
		"name":  account.Name,
	}
}

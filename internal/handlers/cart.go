package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"raydrip/internal/cart"
	"raydrip/internal/middleware"
	"raydrip/internal/models"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity"`
	Size      string `json:"size" binding:"omitempty,size"`
}

type updateCartItemRequest struct {
	Quantity    *int    `json:"quantity"`
	Size        *string `json:"size" binding:"omitempty,size"`
	CurrentSize string  `json:"currentSize" binding:"omitempty,size"`
}

func GetCart(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		current, err := carts.Get(c.Request.Context(), middleware.ClientID(c))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, toCartView(current))
	}
}

func AddCartItem(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		var req addCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		quantity := 1
		if req.Quantity != nil {
			if *req.Quantity < 1 {
				respondWithError(c, http.StatusBadRequest, route, "quantity must be at least 1")
				return
			}
			quantity = *req.Quantity
		}
		size, _ := models.ParseSize(req.Size)

		updated, err := carts.AddToCart(c.Request.Context(), middleware.ClientID(c), req.ProductID, quantity, size)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		log.Printf("[%s] added %s x%d size=%q", route, req.ProductID, quantity, size)
		c.JSON(http.StatusOK, toCartView(updated))
	}
}

// UpdateCartItem changes the size and/or quantity of a line. A size change
// is applied first; quantity then targets the line under its new size.
func UpdateCartItem(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/items/:productId"
		defer handlePanic(c, route)

		var req updateCartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Quantity == nil && req.Size == nil {
			respondWithError(c, http.StatusBadRequest, route, "quantity or size is required")
			return
		}

		ctx := c.Request.Context()
		client := middleware.ClientID(c)
		productID := c.Param("productId")
		size, _ := models.ParseSize(req.CurrentSize)

		var (
			updated *cart.Cart
			err     error
		)
		if req.Size != nil {
			newSize, _ := models.ParseSize(*req.Size)
			updated, err = carts.UpdateSize(ctx, client, productID, newSize, size)
			if err != nil {
				respondAppError(c, route, err)
				return
			}
			size = newSize
		}
		if req.Quantity != nil {
			updated, err = carts.UpdateQuantity(ctx, client, productID, *req.Quantity, size)
			if err != nil {
				respondAppError(c, route, err)
				return
			}
		}

		c.JSON(http.StatusOK, toCartView(updated))
	}
}

func RemoveCartItem(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:productId"
		defer handlePanic(c, route)

		size, ok := models.ParseSize(c.Query("size"))
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid size")
			return
		}

		updated, err := carts.RemoveFromCart(c.Request.Context(), middleware.ClientID(c), c.Param("productId"), size)
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, toCartView(updated))
	}
}

func ClearCart(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		if err := carts.Clear(c.Request.Context(), middleware.ClientID(c)); err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, toCartView(&cart.Cart{}))
	}
}

package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"raydrip/internal/middleware"
	"raydrip/internal/models"
)

type OrderReader interface {
	List(ctx context.Context, client string) ([]models.Order, error)
	Find(ctx context.Context, client, id string) (*models.Order, error)
}

// GetOrders returns the client's ledger in placement order.
func GetOrders(orders OrderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		list, err := orders.List(c.Request.Context(), middleware.ClientID(c))
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d orders", route, len(list))
		c.JSON(http.StatusOK, gin.H{"orders": toOrderViews(list)})
	}
}

func GetOrder(orders OrderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		order, err := orders.Find(c.Request.Context(), middleware.ClientID(c), c.Param("id"))
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, orderView{Order: *order, DisplayTotal: order.Total.String()})
	}
}

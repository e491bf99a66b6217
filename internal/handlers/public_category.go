package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"raydrip/internal/catalog"
)

func GetCategories(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /categories"
		defer handlePanic(c, route)

		categories := cat.Categories()
		log.Printf("[%s] returning %d categories", route, len(categories))
		c.JSON(http.StatusOK, categories)
	}
}

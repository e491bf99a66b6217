package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"raydrip/internal/catalog"
)

// GetProducts lists catalog products with optional category, subcategory,
// sale and name filters, one page at a time.
func GetProducts(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		log.Printf(
			"[%s] hit page=%s limit=%s category=%s search=%s",
			route,
			c.Query("page"),
			c.Query("limit"),
			c.Query("category"),
			c.Query("search"),
		)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		saleOnly := false
		if raw := strings.TrimSpace(c.Query("sale")); raw != "" {
			saleOnly, err = strconv.ParseBool(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid sale filter")
				return
			}
		}

		result := cat.List(catalog.Filter{
			Category:    c.Query("category"),
			Subcategory: c.Query("subcategory"),
			Search:      c.Query("search"),
			SaleOnly:    saleOnly,
			Page:        page,
			Limit:       limit,
		})

		log.Printf("[%s] returning %d of %d products", route, len(result.Items), result.Total)
		c.JSON(http.StatusOK, gin.H{
			"data": toProductViews(result.Items),
			"pagination": gin.H{
				"page":       result.Page,
				"limit":      result.PageSize,
				"total":      result.Total,
				"totalPages": result.TotalPages,
			},
		})
	}
}

func GetProduct(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		product, ok := cat.Get(c.Param("id"))
		if !ok {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}
		c.JSON(http.StatusOK, toProductView(product))
	}
}

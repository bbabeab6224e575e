package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/response"
	"gorm.io/gorm"
)

// GET /products/:id
func GetProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := productID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		product, err := findProduct(c.Request.Context(), db, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"product": product})
	}
}

package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/response"
	"gorm.io/gorm"
)

// GET /products?page=N
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := response.PageNumber(c)
		tx := db.WithContext(c.Request.Context())

		var total int64
		if err := tx.Model(&models.Product{}).Count(&total).Error; err != nil {
			response.Error(c, apperr.Internal("count products", err))
			return
		}

		var products []models.Product
		err := tx.Preload("User").Preload("Category").
			Order("id").
			Scopes(database.Paginate(page, response.PerPage)).
			Find(&products).Error
		if err != nil {
			response.Error(c, apperr.Internal("list products", err))
			return
		}

		response.JSON(c, http.StatusOK, gin.H{
			"products": response.NewPage(products, page, response.PerPage, total),
		})
	}
}

package productcontroller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/response"
	"gorm.io/gorm"
)

// DELETE /products/:id
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		id, err := productID(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		if err := Delete(c.Request.Context(), db, userID, id); err != nil {
			response.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// Delete soft-deletes the product and drops it from every cart. Order lines
// keep their copies. The image stays on disk for those orders.
func Delete(ctx context.Context, db *gorm.DB, userID, id uint) error {
	product, err := findProduct(ctx, db, id)
	if err != nil {
		return err
	}
	if err := ensureOwner(product, userID); err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.CartItem{}).Error; err != nil {
			return apperr.Internal("detach product from carts", err)
		}
		if err := tx.Delete(&models.Product{}, product.ID).Error; err != nil {
			return apperr.Internal("delete product", err)
		}
		return nil
	})
}

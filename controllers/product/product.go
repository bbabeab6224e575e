package productcontroller

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/response"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImageDir is where product images live inside the content store.
const ImageDir = "products/images"

func findProduct(ctx context.Context, db *gorm.DB, id uint) (models.Product, error) {
	var product models.Product
	err := db.WithContext(ctx).Preload("User").Preload("Category").First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product, apperr.NotFound("Product not found")
	}
	if err != nil {
		return product, apperr.Internal("find product", err)
	}
	return product, nil
}

func productID(c *gin.Context) (uint, error) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return 0, apperr.NotFound("Product not found")
	}
	return id, nil
}

func ensureOwner(product models.Product, userID uint) error {
	if product.UserID != userID {
		return apperr.Forbidden("This action is unauthorized.")
	}
	return nil
}

func parsePrice(raw string) (decimal.Decimal, string) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, "The price must be a number."
	}
	if price.IsNegative() {
		return decimal.Zero, "The price must be at least 0."
	}
	return price.Round(2), ""
}

// availableCategory reports a field message when id is not an available
// category.
func availableCategory(ctx context.Context, db *gorm.DB, id uint) (string, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ? AND is_available = ?", id, true).
		Count(&n).Error
	if err != nil {
		return "", apperr.Internal("check category", err)
	}
	if n == 0 {
		return "The selected category_id is invalid.", nil
	}
	return "", nil
}

func imageMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrImageType):
		return "The img must be a file of type: png, jpg, jpeg."
	case errors.Is(err, storage.ErrImageSize):
		return "The img may not be greater than 2048 kilobytes."
	default:
		return "The img failed to upload."
	}
}

// formImage returns the uploaded img, or nil when the request has none.
func formImage(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("img")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read img: %w", err)
	}
	return file, nil
}

func invalid(fields map[string]string) error {
	return apperr.Validation("The given data was invalid.", fields)
}

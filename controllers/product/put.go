package productcontroller

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/response"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// UpdateInput holds optional fields; nil means "leave as is".
type UpdateInput struct {
	Name        *string `form:"name" binding:"omitempty,max=100"`
	Description *string `form:"description" binding:"omitempty,max=500"`
	Price       *string `form:"price"`
	Stock       *int    `form:"stock" binding:"omitempty,min=0"`
	CategoryID  *uint   `form:"category_id"`
	IsAvailable *bool   `form:"is_available"`
}

// PUT /products/:id (multipart/form-data)
func UpdateProduct(db *gorm.DB, images storage.Images) gin.HandlerFunc {
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

		var input UpdateInput
		if err := c.ShouldBind(&input); err != nil {
			response.Error(c, response.BindError(err))
			return
		}
		img, err := formImage(c)
		if err != nil {
			response.Error(c, apperr.Internal("read upload", err))
			return
		}

		product, err := Update(c.Request.Context(), db, images, userID, id, input, img)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{
			"message": "Product updated",
			"product": product,
		})
	}
}

// Update applies input to a product owned by userID. A replaced image is
// deleted only after the row points at the new one.
func Update(ctx context.Context, db *gorm.DB, images storage.Images, userID, id uint, input UpdateInput, img *multipart.FileHeader) (models.Product, error) {
	product, err := findProduct(ctx, db, id)
	if err != nil {
		return product, err
	}
	if err := ensureOwner(product, userID); err != nil {
		return product, err
	}

	updates := map[string]any{}
	fields := map[string]string{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if utf8.RuneCountInString(name) < 3 {
			fields["name"] = "The name must be at least 3 characters."
		}
		updates["name"] = name
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if utf8.RuneCountInString(desc) < 10 {
			fields["description"] = "The description must be at least 10 characters."
		}
		updates["description"] = desc
	}
	if input.Price != nil {
		price, msg := parsePrice(*input.Price)
		if msg != "" {
			fields["price"] = msg
		}
		updates["price"] = price
	}
	if input.Stock != nil {
		updates["stock"] = *input.Stock
	}
	if input.IsAvailable != nil {
		updates["is_available"] = *input.IsAvailable
	}
	if input.CategoryID != nil {
		msg, err := availableCategory(ctx, db, *input.CategoryID)
		if err != nil {
			return product, err
		}
		if msg != "" {
			fields["category_id"] = msg
		}
		updates["category_id"] = *input.CategoryID
	}
	if img != nil {
		if err := storage.ValidateImage(img); err != nil {
			fields["img"] = imageMessage(err)
		}
	}
	if len(fields) > 0 {
		return product, invalid(fields)
	}

	oldImg := product.Img
	var newImg string
	if img != nil {
		newImg, err = images.Save(img, ImageDir)
		if err != nil {
			return product, apperr.Internal("save image", err)
		}
		updates["img"] = newImg
	}

	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(&models.Product{ID: product.ID}).Updates(updates).Error; err != nil {
			if newImg != "" {
				_ = images.Delete(newImg)
			}
			return product, apperr.Internal("update product", err)
		}
	}
	if newImg != "" {
		if err := images.Delete(oldImg); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("img", oldImg).Msg("old product image not removed")
		}
	}
	return findProduct(ctx, db, product.ID)
}

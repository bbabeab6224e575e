package productcontroller

import (
	"context"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/response"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type CreateInput struct {
	Name        string `form:"name" binding:"required,min=3,max=100"`
	Description string `form:"description" binding:"required,min=10"`
	Price       string `form:"price" binding:"required"`
	Stock       *int   `form:"stock" binding:"required,min=0"`
	CategoryID  uint   `form:"category_id" binding:"required"`
}

// POST /products (multipart/form-data)
func CreateProduct(db *gorm.DB, images storage.Images) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}

		var input CreateInput
		if err := c.ShouldBind(&input); err != nil {
			response.Error(c, response.BindError(err))
			return
		}
		img, err := formImage(c)
		if err != nil {
			response.Error(c, apperr.Internal("read upload", err))
			return
		}

		product, err := Create(c.Request.Context(), db, images, userID, input, img)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusCreated, gin.H{
			"message": "Product added",
			"product": product,
		})
	}
}

// Create stores the image, then the row. The image is removed again if the
// row cannot be written.
func Create(ctx context.Context, db *gorm.DB, images storage.Images, userID uint, input CreateInput, img *multipart.FileHeader) (models.Product, error) {
	fields := map[string]string{}

	price, msg := parsePrice(input.Price)
	if msg != "" {
		fields["price"] = msg
	}
	if img == nil {
		fields["img"] = "The img field is required."
	} else if err := storage.ValidateImage(img); err != nil {
		fields["img"] = imageMessage(err)
	}
	msg, err := availableCategory(ctx, db, input.CategoryID)
	if err != nil {
		return models.Product{}, err
	}
	if msg != "" {
		fields["category_id"] = msg
	}
	if len(fields) > 0 {
		return models.Product{}, invalid(fields)
	}

	path, err := images.Save(img, ImageDir)
	if err != nil {
		return models.Product{}, apperr.Internal("save image", err)
	}

	product := models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       price,
		Stock:       *input.Stock,
		IsAvailable: true,
		Img:         path,
		CategoryID:  input.CategoryID,
		UserID:      userID,
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		if derr := images.Delete(path); derr != nil {
			zerolog.Ctx(ctx).Warn().Err(derr).Str("img", path).Msg("orphaned product image")
		}
		return models.Product{}, apperr.Internal("create product", err)
	}
	return findProduct(ctx, db, product.ID)
}

package categorycontroller

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/response"
	"gorm.io/gorm"
)

type CreateInput struct {
	Name string `json:"name" form:"name" binding:"required,min=3,max=100"`
}

type UpdateInput struct {
	Name        *string `json:"name" form:"name" binding:"omitempty,min=3,max=100"`
	IsAvailable *bool   `json:"is_available" form:"is_available"`
}

// GET /categories
func Index(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var available, unavailable []models.Category
		tx := db.WithContext(c.Request.Context())
		if err := tx.Where("is_available = ?", true).Order("id").Find(&available).Error; err != nil {
			response.Error(c, apperr.Internal("list categories", err))
			return
		}
		if err := tx.Where("is_available = ?", false).Order("id").Find(&unavailable).Error; err != nil {
			response.Error(c, apperr.Internal("list categories", err))
			return
		}
		response.JSON(c, http.StatusOK, gin.H{
			"categoriesAvailable":   nonNil(available),
			"categoriesUnavailable": nonNil(unavailable),
		})
	}
}

// POST /categories
func Store(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateInput
		if err := c.ShouldBind(&input); err != nil {
			response.Error(c, response.BindError(err))
			return
		}

		ctx := c.Request.Context()
		name := strings.TrimSpace(input.Name)
		if err := ensureUniqueName(ctx, db, name, 0); err != nil {
			response.Error(c, err)
			return
		}

		category := models.Category{Name: name, IsAvailable: true}
		if err := db.WithContext(ctx).Create(&category).Error; err != nil {
			response.Error(c, createError(err))
			return
		}
		response.JSON(c, http.StatusCreated, gin.H{
			"message":  "Category created successfully",
			"category": category,
		})
	}
}

// GET /categories/:id
func Show(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := find(c, db)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"category": category})
	}
}

// PUT /categories/:id
func Update(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateInput
		if err := c.ShouldBind(&input); err != nil {
			response.Error(c, response.BindError(err))
			return
		}

		category, err := find(c, db)
		if err != nil {
			response.Error(c, err)
			return
		}

		ctx := c.Request.Context()
		updates := map[string]any{}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if err := ensureUniqueName(ctx, db, name, category.ID); err != nil {
				response.Error(c, err)
				return
			}
			updates["name"] = name
		}
		if input.IsAvailable != nil {
			updates["is_available"] = *input.IsAvailable
		}

		if len(updates) > 0 {
			if err := db.WithContext(ctx).Model(&category).Updates(updates).Error; err != nil {
				response.Error(c, createError(err))
				return
			}
			if err := db.WithContext(ctx).First(&category, category.ID).Error; err != nil {
				response.Error(c, apperr.Internal("reload category", err))
				return
			}
		}
		response.JSON(c, http.StatusOK, gin.H{
			"message":  "Category updated successfully",
			"category": category,
		})
	}
}

// DELETE /categories/:id only marks the category unavailable. Products
// keep pointing at it.
func Destroy(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := find(c, db)
		if err != nil {
			response.Error(c, err)
			return
		}
		if err := db.WithContext(c.Request.Context()).Model(&category).Update("is_available", false).Error; err != nil {
			response.Error(c, apperr.Internal("disable category", err))
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}

func find(c *gin.Context, db *gorm.DB) (models.Category, error) {
	var category models.Category
	id, ok := response.ParamID(c, "id")
	if !ok {
		return category, notFound()
	}
	err := db.WithContext(c.Request.Context()).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return category, notFound()
	}
	if err != nil {
		return category, apperr.Internal("find category", err)
	}
	return category, nil
}

func ensureUniqueName(ctx context.Context, db *gorm.DB, name string, exceptID uint) error {
	var n int64
	q := db.WithContext(ctx).Model(&models.Category{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return apperr.Internal("check category name", err)
	}
	if n > 0 {
		return nameTaken()
	}
	return nil
}

func createError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nameTaken()
	}
	return apperr.Internal("save category", err)
}

func nameTaken() error {
	return apperr.Field("name", "The name has already been taken.")
}

func notFound() error {
	return apperr.NotFound("Category not found")
}

func nonNil(cs []models.Category) []models.Category {
	if cs == nil {
		return []models.Category{}
	}
	return cs
}

package userControllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/response"
	"gorm.io/gorm"
)

type UpdateUserInput struct {
	Name *string `json:"name" form:"name" binding:"omitempty,min=1,max=255"`
}

// GET /user
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		user, err := Find(c.Request.Context(), db, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"user": user.Public()})
	}
}

// PUT /user
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}

		var input UpdateUserInput
		if err := c.ShouldBind(&input); err != nil {
			response.Error(c, response.BindError(err))
			return
		}

		user, err := Update(c.Request.Context(), db, userID, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{
			"message": "User updated",
			"user":    user.Public(),
		})
	}
}

// -------- Core Logic --------

func Find(ctx context.Context, db *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	err := db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, apperr.NotFound("User not found")
	}
	if err != nil {
		return user, apperr.Internal("load user", err)
	}
	return user, nil
}

func Update(ctx context.Context, db *gorm.DB, userID uint, input UpdateUserInput) (models.User, error) {
	user, err := Find(ctx, db, userID)
	if err != nil {
		return user, err
	}
	if input.Name == nil {
		return user, nil
	}

	name := strings.TrimSpace(*input.Name)
	if name == "" {
		return user, apperr.Field("name", "The name field is required.")
	}
	if err := db.WithContext(ctx).Model(&user).Update("name", name).Error; err != nil {
		return user, apperr.Internal("update user", err)
	}
	user.Name = name
	return user, nil
}

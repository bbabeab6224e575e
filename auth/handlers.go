package auth

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

type RegisterInput struct {
	Name                 string `json:"name" form:"name" binding:"required,max=255"`
	Email                string `json:"email" form:"email" binding:"required,email,max=255"`
	Password             string `json:"password" form:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation" binding:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// POST /register
func Register(db *gorm.DB, tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBind(&input); err != nil {
			response.Error(c, response.BindError(err))
			return
		}

		user, token, err := RegisterUser(c.Request.Context(), db, tokens, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusCreated, tokenBody(user, token))
	}
}

// POST /login
func Login(db *gorm.DB, tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBind(&input); err != nil {
			response.Error(c, response.BindError(err))
			return
		}

		user, token, err := LoginUser(c.Request.Context(), db, tokens, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, tokenBody(user, token))
	}
}

// POST /logout revokes every token of the caller, not only the one presented.
func Logout(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		if err := tokens.RevokeAll(c.Request.Context(), userID); err != nil {
			response.Error(c, apperr.Internal("logout", err))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RegisterUser creates the account and its first token atomically.
func RegisterUser(ctx context.Context, db *gorm.DB, tokens *Tokens, input RegisterInput) (models.User, string, error) {
	email := normalizeEmail(input.Email)
	hash, err := HashPassword(input.Password)
	if err != nil {
		return models.User{}, "", apperr.Internal("hash password", err)
	}

	user := models.User{Name: strings.TrimSpace(input.Name), Email: email, Password: hash}
	var token string
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
			return apperr.Internal("check email", err)
		}
		if taken > 0 {
			return emailTaken()
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return emailTaken()
			}
			return apperr.Internal("create user", err)
		}

		t, err := tokens.WithDB(tx).Issue(ctx, user.ID)
		if err != nil {
			return apperr.Internal("issue token", err)
		}
		token = t
		return nil
	})
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

func LoginUser(ctx context.Context, db *gorm.DB, tokens *Tokens, input LoginInput) (models.User, string, error) {
	var user models.User
	err := db.WithContext(ctx).Where("email = ?", normalizeEmail(input.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		burnPasswordCheck(input.Password)
		return models.User{}, "", invalidCredentials()
	}
	if err != nil {
		return models.User{}, "", apperr.Internal("find user", err)
	}
	if !CheckPassword(user.Password, input.Password) {
		return models.User{}, "", invalidCredentials()
	}

	token, err := tokens.Issue(ctx, user.ID)
	if err != nil {
		return models.User{}, "", apperr.Internal("issue token", err)
	}
	return user, token, nil
}

func tokenBody(user models.User, token string) gin.H {
	return gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"user":         user.Public(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailTaken() error {
	return apperr.Field("email", "The email has already been taken.")
}

func invalidCredentials() error {
	return apperr.Unauthorized("Invalid credentials")
}

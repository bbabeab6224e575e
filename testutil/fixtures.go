package testutil

import (
	"testing"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain-text password of every user made by CreateUser.
const Password = "password123"

func CreateUser(t testing.TB, db *gorm.DB, email string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	u := models.User{Name: "Test User", Email: email, Password: string(hash)}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func CreateCategory(t testing.TB, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name, IsAvailable: true}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// CreateProduct adds an available product owned by owner.
func CreateProduct(t testing.TB, db *gorm.DB, owner models.User, cat models.Category, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:        name,
		Description: "A product used in tests.",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		IsAvailable: true,
		Img:         "products/images/" + name + ".png",
		CategoryID:  cat.ID,
		UserID:      owner.ID,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

// AddToCart writes a cart line directly, creating the cart if needed.
func AddToCart(t testing.TB, db *gorm.DB, user models.User, p models.Product, qty int) models.Cart {
	t.Helper()
	cart := models.Cart{UserID: user.ID}
	require.NoError(t, db.Where(models.Cart{UserID: user.ID}).FirstOrCreate(&cart).Error)
	require.NoError(t, db.Create(&models.CartItem{
		CartID:    cart.ID,
		ProductID: p.ID,
		Quantity:  qty,
		Price:     p.Price,
	}).Error)
	return cart
}

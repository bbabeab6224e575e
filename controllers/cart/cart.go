package cartControllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/response"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartItemInput struct {
	Quantity *int `json:"quantity" form:"quantity" binding:"required,min=1"`
}

type LineView struct {
	Product  models.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	ID       uint            `json:"id"`
	Products []LineView      `json:"products"`
	Total    decimal.Decimal `json:"total"`
}

// GET /cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}

		view, found, err := Load(c.Request.Context(), db, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if !found {
			response.JSON(c, http.StatusOK, gin.H{"message": "Cart void", "products": []LineView{}})
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"cart": view})
	}
}

// POST /cart/add/:productId
func AddProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		productID, ok := response.ParamID(c, "productId")
		if !ok {
			response.Error(c, apperr.NotFound("Product not found"))
			return
		}

		var input CartItemInput
		if err := c.ShouldBind(&input); err != nil {
			response.Error(c, response.BindError(err))
			return
		}

		ctx := c.Request.Context()
		if err := Add(ctx, db, userID, productID, *input.Quantity); err != nil {
			response.Error(c, err)
			return
		}
		view, _, err := Load(ctx, db, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusCreated, gin.H{"message": "Product added to cart", "cart": view})
	}
}

// DELETE /cart/remove/:productId
func RemoveProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		productID, ok := response.ParamID(c, "productId")
		if ok {
			if err := Remove(c.Request.Context(), db, userID, productID); err != nil {
				response.Error(c, err)
				return
			}
		}
		response.JSON(c, http.StatusOK, gin.H{"message": "Product removed from cart"})
	}
}

// DELETE /cart/clear
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		if err := Clear(c.Request.Context(), db, userID); err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// Load builds the caller's cart. found is false when no cart row exists yet.
func Load(ctx context.Context, db *gorm.DB, userID uint) (view CartView, found bool, err error) {
	var cart models.Cart
	err = db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Items.Product.Category").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CartView{}, false, nil
	}
	if err != nil {
		return CartView{}, false, apperr.Internal("load cart", err)
	}

	view = CartView{ID: cart.ID, Products: make([]LineView, 0, len(cart.Items)), Total: decimal.Zero}
	for _, item := range cart.Items {
		view.Products = append(view.Products, LineView{
			Product:  item.Product,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal(),
		})
		view.Total = view.Total.Add(item.Subtotal())
	}
	return view, true, nil
}

// Add puts quantity of the product in the caller's cart, creating the cart
// on first use. An existing line is overwritten with the new quantity and
// the product's current price.
func Add(ctx context.Context, db *gorm.DB, userID, productID uint, quantity int) error {
	var product models.Product
	err := db.WithContext(ctx).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Product not found")
	}
	if err != nil {
		return apperr.Internal("find product", err)
	}
	if !product.IsAvailable {
		return apperr.Conflict("Product is not available")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := firstOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		line := models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.Price,
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "price", "updated_at"}),
		}).Create(&line).Error
		if err != nil {
			return apperr.Internal("save cart line", err)
		}
		return nil
	})
}

func Remove(ctx context.Context, db *gorm.DB, userID, productID uint) error {
	err := db.WithContext(ctx).
		Where("product_id = ? AND cart_id IN (?)", productID,
			db.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return apperr.Internal("remove cart line", err)
	}
	return nil
}

// Clear empties the cart and keeps the cart row.
func Clear(ctx context.Context, db *gorm.DB, userID uint) error {
	err := db.WithContext(ctx).
		Where("cart_id IN (?)", db.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return apperr.Internal("clear cart", err)
	}
	return nil
}

func firstOrCreateCart(tx *gorm.DB, userID uint) (models.Cart, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Cart{UserID: userID}).Error; err != nil {
		return models.Cart{}, apperr.Internal("create cart", err)
	}
	var cart models.Cart
	if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return models.Cart{}, apperr.Internal("find cart", err)
	}
	return cart, nil
}

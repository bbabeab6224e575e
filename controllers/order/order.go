package orderControllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/response"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// -------- Helpers --------

func cartVoid() error { return apperr.Conflict("Cart void") }

// notOwned hides whether the order exists at all.
func notOwned() error { return apperr.Forbidden("Unauthorized") }

func findOwned(tx *gorm.DB, userID, orderID uint) (models.Order, error) {
	var order models.Order
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, notOwned()
	}
	if err != nil {
		return order, apperr.Internal("find order", err)
	}
	return order, nil
}

// -------- Core Logic --------

// PlaceOrder turns the user's cart into a Pending order. Prices come from
// the cart lines, stock is decremented per line, and the cart is emptied.
// Any failure leaves the database as it was.
func PlaceOrder(ctx context.Context, db *gorm.DB, userID uint) (models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		// Lines in product_id order so concurrent checkouts lock product
		// rows in the same sequence.
		err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_id") }).
			Where("user_id = ?", userID).
			First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cartVoid()
		}
		if err != nil {
			return apperr.Internal("load cart", err)
		}
		if len(cart.Items) == 0 {
			return cartVoid()
		}

		ids := make([]uint, 0, len(cart.Items))
		for _, item := range cart.Items {
			ids = append(ids, item.ProductID)
		}
		var products []models.Product
		if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
			return apperr.Internal("load products", err)
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			product, ok := byID[item.ProductID]
			if !ok || !product.IsAvailable {
				return apperr.Conflict("A product in the cart is no longer available")
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return apperr.Internal("decrement stock", res.Error)
			}
			if res.RowsAffected == 0 {
				return apperr.Conflict("insufficient stock for product: " + product.Name)
			}

			total = total.Add(item.Subtotal())
			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Price:       item.Price,
			})
		}

		order = models.Order{
			UserID:     userID,
			TotalPrice: total,
			Status:     models.OrderStatusPending,
			Items:      items,
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Internal("create order", err)
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return apperr.Internal("clear cart", err)
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// CancelOrder moves a Pending order to Cancelled and puts its quantities
// back in stock. The status guard makes a second cancel a no-op failure.
func CancelOrder(ctx context.Context, db *gorm.DB, userID, orderID uint) (models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = findOwned(tx, userID, orderID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return apperr.Internal("cancel order", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("Only pending orders can be cancelled")
		}

		for _, item := range order.Items {
			err := tx.Unscoped().Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return apperr.Internal("restock product", err)
			}
		}

		order, err = findOwned(tx, userID, orderID)
		return err
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// -------- Handlers --------

// POST /checkout
func PlaceOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		order, err := PlaceOrder(c.Request.Context(), db, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusCreated, gin.H{"message": "Order created", "order": order})
	}
}

// GET /orders?page=N, newest first.
func GetOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		page := response.PageNumber(c)
		tx := db.WithContext(c.Request.Context())

		var total int64
		if err := tx.Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
			response.Error(c, apperr.Internal("count orders", err))
			return
		}

		var orders []models.Order
		err = tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
			Where("user_id = ?", userID).
			Order("created_at DESC").Order("id DESC").
			Scopes(database.Paginate(page, response.PerPage)).
			Find(&orders).Error
		if err != nil {
			response.Error(c, apperr.Internal("list orders", err))
			return
		}

		response.JSON(c, http.StatusOK, gin.H{
			"orders": response.NewPage(orders, page, response.PerPage, total),
		})
	}
}

// GET /orders/:id
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		id, ok := response.ParamID(c, "id")
		if !ok {
			response.Error(c, notOwned())
			return
		}
		order, err := findOwned(db.WithContext(c.Request.Context()), userID, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"order": order})
	}
}

// POST /orders/:id/cancel
func CancelOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.CurrentUser(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		id, ok := response.ParamID(c, "id")
		if !ok {
			response.Error(c, notOwned())
			return
		}
		order, err := CancelOrder(c.Request.Context(), db, userID, id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
	}
}

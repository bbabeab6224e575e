package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"gorm.io/gorm"
)

func SetupOrderRoutes(api *gin.RouterGroup, db *gorm.DB) {
	// Turn the cart into an order
	api.POST("/checkout", orderControllers.PlaceOrderHandler(db))

	orders := api.Group("/orders")
	{
		orders.GET("", orderControllers.GetOrdersHandler(db))
		orders.GET("/:id", orderControllers.GetOrderHandler(db))
		orders.POST("/:id/cancel", orderControllers.CancelOrderHandler(db))
	}
}

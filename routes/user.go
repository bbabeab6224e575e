package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	categorycontroller "github.com/junaidrashid-git/storefront-api/controllers/category"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
)

// SetupUserRoutes registers the profile, catalog and cart endpoints. The group must
// already carry the auth middleware.
func SetupUserRoutes(api *gin.RouterGroup, d Deps) {
	// ──────────────── Profile ────────────────
	api.GET("/user", userControllers.GetUser(d.DB))
	api.PUT("/user", userControllers.UpdateUser(d.DB))

	// ──────────────── Categories ────────────────
	categories := api.Group("/categories")
	{
		categories.GET("", categorycontroller.Index(d.DB))
		categories.POST("", categorycontroller.Store(d.DB))
		categories.GET("/:id", categorycontroller.Show(d.DB))
		categories.PUT("/:id", categorycontroller.Update(d.DB))
		categories.DELETE("/:id", categorycontroller.Destroy(d.DB))
	}

	// ──────────────── Products ────────────────
	products := api.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.DB))
		products.POST("", productcontroller.CreateProduct(d.DB, d.Images))
		products.GET("/export", productcontroller.ExportProductsToExcel(d.DB))
		products.GET("/:id", productcontroller.GetProduct(d.DB))
		products.PUT("/:id", productcontroller.UpdateProduct(d.DB, d.Images))
		products.DELETE("/:id", productcontroller.DeleteProduct(d.DB))
	}

	// ──────────────── Shopping Cart ────────────────
	cart := api.Group("/cart")
	{
		cart.GET("", cartControllers.GetCart(d.DB))
		cart.POST("/add/:productId", cartControllers.AddProduct(d.DB))
		cart.DELETE("/remove/:productId", cartControllers.RemoveProduct(d.DB))
		cart.DELETE("/clear", cartControllers.ClearCart(d.DB))
	}
}

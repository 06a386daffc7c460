package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/empowerup/empowerup_backend/controllers"
	"github.com/empowerup/empowerup_backend/middleware"
)

// RegisterProductRoutes sets up the public catalog and the admin seed route
func RegisterProductRoutes(e *echo.Echo, db *mongo.Client, productController *controllers.ProductController) {
	// Catalog browsing is public
	e.GET("/api/products", productController.GetProducts)
	e.GET("/api/products/:id", productController.GetProduct)
	e.GET("/api/packages", productController.GetPackages)

	// Seeding replaces the whole catalog, admin only
	seed := e.Group("/api/products")
	seed.Use(middleware.JWTMiddleware(), middleware.AdminAuth(db))
	seed.POST("/seed", productController.SeedProducts)
}

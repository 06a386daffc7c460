package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/empowerup/empowerup_backend/controllers"
)

// RegisterAuthRoutes sets up public registration and login routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	auth := e.Group("/api/auth")
	auth.POST("/login", authController.Login)

	// Registration lives under /api/users for compatibility with the web app
	e.POST("/api/users/register", authController.Register)
}

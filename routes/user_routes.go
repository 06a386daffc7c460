package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/empowerup/empowerup_backend/controllers"
	"github.com/empowerup/empowerup_backend/middleware"
	"github.com/empowerup/empowerup_backend/models"
	"github.com/empowerup/empowerup_backend/websocket"
)

// RegisterUserRoutes sets up all user-facing protected routes
func RegisterUserRoutes(e *echo.Echo, userController *controllers.UserController, transactionController *controllers.TransactionController, withdrawalController *controllers.WithdrawalController, referralController *controllers.ReferralController, hub *websocket.Hub) {
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	// Profile
	r.GET("/users/:id", userController.GetUser)
	r.PUT("/users/:id", userController.UpdateUser)

	// Purchases
	r.POST("/users/purchase-package", userController.PurchasePackage)
	r.POST("/users/purchase-product", userController.PurchaseProduct)
	r.GET("/transactions", transactionController.GetUserTransactions)

	// Commission ledger
	r.GET("/commissions", userController.GetUserCommissions)
	r.GET("/commissions/summary", userController.GetUserCommissionSummary)

	// Withdrawals
	r.POST("/withdrawals", withdrawalController.RequestWithdrawal)
	r.GET("/withdrawals", withdrawalController.GetUserWithdrawals)

	// Referrals
	r.GET("/users/referral-data", referralController.GetReferralData)
	r.GET("/users/referral-qr", referralController.GetReferralQR)
	r.GET("/users/team", referralController.GetTeam)

	// WebSocket endpoint, authenticated through the JWT group
	r.GET("/ws", func(c echo.Context) error {
		idHex, err := middleware.ExtractUserID(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid token",
			})
		}
		userID, err := primitive.ObjectIDFromHex(idHex)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid token",
			})
		}
		role, _ := c.Get("role").(string)
		return websocket.HandleWebSocket(c, hub, userID, role == "admin")
	})
}

package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/empowerup/empowerup_backend/controllers"
	"github.com/empowerup/empowerup_backend/middleware"
)

// RegisterAdminRoutes sets up the admin surface. Registration and login are
// public; everything else requires an active admin account.
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Client, adminController *controllers.AdminController, userController *controllers.UserController, withdrawalController *controllers.WithdrawalController, transactionController *controllers.TransactionController) {
	e.POST("/api/admin/register", adminController.Register)
	e.POST("/api/admin/login", adminController.Login)

	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware(), middleware.AdminAuth(db))

	// Account
	admin.GET("/profile", adminController.GetProfile)
	admin.PUT("/profile", adminController.UpdateProfile)
	admin.POST("/change-password", adminController.ChangePassword)
	admin.GET("/admins", adminController.GetAllAdmins)

	// User management
	admin.GET("/users", userController.GetAllUsers)
	admin.DELETE("/users/:id", userController.DeleteUser)
	admin.POST("/users/add-points", userController.AddPoints)
	admin.PUT("/users/:id/make-admin", userController.MakeAdmin)

	// Withdrawal decisions
	admin.GET("/withdrawals", withdrawalController.GetAllWithdrawals)
	admin.GET("/withdrawals/stats", withdrawalController.GetWithdrawalStats)
	admin.GET("/withdrawals/recent", withdrawalController.GetRecentWithdrawals)
	admin.GET("/withdrawals/:id", withdrawalController.GetWithdrawal)
	admin.PUT("/withdrawals/:id/status", withdrawalController.UpdateWithdrawalStatus)

	// Ledger
	admin.PUT("/commissions/:id/cancel", adminController.CancelCommission)

	// Sales
	admin.GET("/transactions", transactionController.GetAllTransactions)
	admin.GET("/transactions/stats", transactionController.GetTransactionStats)
	admin.GET("/transactions/:id", transactionController.GetTransaction)
}

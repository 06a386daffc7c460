package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/empowerup/empowerup_backend/controllers"
	"github.com/empowerup/empowerup_backend/services"
	"github.com/empowerup/empowerup_backend/websocket"
)

// SetupRoutes wires services and controllers and registers all route groups
func SetupRoutes(e *echo.Echo, db *mongo.Client, redisClient *redis.Client, hub *websocket.Hub) {
	commissionService := services.NewCommissionService(db, redisClient)
	withdrawalService := services.NewWithdrawalService(db, commissionService)
	pointsService := services.NewPointsService(db)
	emailService := services.NewEmailService()

	authController := controllers.NewAuthController(db, commissionService, pointsService, emailService)
	userController := controllers.NewUserController(db, commissionService, pointsService, hub)
	withdrawalController := controllers.NewWithdrawalController(db, withdrawalService, emailService, hub)
	transactionController := controllers.NewTransactionController(db)
	productController := controllers.NewProductController(db)
	adminController := controllers.NewAdminController(db, commissionService)
	referralController := controllers.NewReferralController(db)

	RegisterAuthRoutes(e, authController)
	RegisterUserRoutes(e, userController, transactionController, withdrawalController, referralController, hub)
	RegisterProductRoutes(e, db, productController)
	RegisterAdminRoutes(e, db, adminController, userController, withdrawalController, transactionController)
}

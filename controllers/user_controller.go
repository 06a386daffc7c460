// controllers/user_controller.go
package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/empowerup/empowerup_backend/config"
	"github.com/empowerup/empowerup_backend/middleware"
	"github.com/empowerup/empowerup_backend/models"
	"github.com/empowerup/empowerup_backend/services"
	ws "github.com/empowerup/empowerup_backend/websocket"
)

// UserController handles user management and purchases
type UserController struct {
	DB                *mongo.Client
	commissionService *services.CommissionService
	pointsService     *services.PointsService
	hub               *ws.Hub
}

func NewUserController(db *mongo.Client, commissionService *services.CommissionService, pointsService *services.PointsService, hub *ws.Hub) *UserController {
	return &UserController{
		DB:                db,
		commissionService: commissionService,
		pointsService:     pointsService,
		hub:               hub,
	}
}

// GetAllUsers returns every user, admin only
func (uc *UserController) GetAllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := config.GetCollection(uc.DB, "users")
	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch users",
		})
	}
	defer cursor.Close(ctx)

	results := []models.User{}
	if err := cursor.All(ctx, &results); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode users",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Users retrieved successfully",
		Data:    results,
	})
}

// GetUser returns one user by id
func (uc *UserController) GetUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	users := config.GetCollection(uc.DB, "users")
	var user models.User
	err = users.FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"password": 0})).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch user",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User retrieved successfully",
		Data:    user,
	})
}

// UpdateUser updates editable profile fields
func (uc *UserController) UpdateUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Email != "" {
		update["email"] = req.Email
	}
	if req.Phone != "" {
		update["phone"] = req.Phone
	}
	if req.Designation != "" {
		update["designation"] = req.Designation
	}
	if req.Points != nil {
		update["points"] = *req.Points
	}

	users := config.GetCollection(uc.DB, "users")
	result, err := users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": update})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update user",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User updated successfully",
	})
}

// DeleteUser removes a user account, admin only
func (uc *UserController) DeleteUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	users := config.GetCollection(uc.DB, "users")
	result, err := users.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete user",
		})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User deleted successfully",
	})
}

// AddPoints credits points to a user, admin only
func (uc *UserController) AddPoints(c echo.Context) error {
	var req models.AddPointsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	user, err := uc.pointsService.AddPoints(userID, req.Points)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "User not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to add points",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Points added successfully",
		Data:    user,
	})
}

// MakeAdmin promotes a user to the admin role, admin only
func (uc *UserController) MakeAdmin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	users := config.GetCollection(uc.DB, "users")
	result, err := users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"role": "admin", "updatedAt": time.Now()}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update role",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User promoted to admin",
	})
}

// PurchasePackage buys an enrollment package for the authenticated user
func (uc *UserController) PurchasePackage(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := authenticatedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req struct {
		PackageID string `json:"packageId" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	pkg := models.FindPackage(req.PackageID)
	if pkg == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Package not found",
		})
	}

	users := config.GetCollection(uc.DB, "users")
	var user models.User
	if err := users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	uc.pointsService.DistributePoints(&user, pkg.Points, pkg.UplinerPoints, pkg.TeamLeaderPoints)
	if _, err := users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"packageId": pkg.ID, "updatedAt": time.Now()},
		"$max": bson.M{"discountPercentage": pkg.PurchaserDiscount},
	}); err != nil {
		log.Printf("Failed to update package for user %s: %v", user.ID.Hex(), err)
	}

	commission := uc.recordCommission(user.ID, pkg.ID, pkg.Name, pkg.Price, 1, models.TransactionTypePackagePurchase)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Package purchased successfully",
		Data: map[string]interface{}{
			"commission": commission,
		},
	})
}

// PurchaseProduct buys a catalog product for the authenticated user. The
// user's earned discount applies to the unit price.
func (uc *UserController) PurchaseProduct(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := authenticatedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req struct {
		ProductID string `json:"productId" validate:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	products := config.GetCollection(uc.DB, "products")
	var product models.Product
	if err := products.FindOne(ctx, bson.M{"id": req.ProductID}).Decode(&product); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Product not found",
		})
	}

	users := config.GetCollection(uc.DB, "users")
	var user models.User
	if err := users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	price := product.Price
	if user.DiscountPercentage > 0 {
		price = services.Round2(price * (100 - user.DiscountPercentage) / 100)
	}

	if product.Points > 0 {
		uc.pointsService.DistributePoints(&user, product.Points*float64(req.Quantity), 0, 0)
	}

	commission := uc.recordCommission(user.ID, product.SKU, product.Name, price, req.Quantity, models.TransactionTypeProductPurchase)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product purchased successfully",
		Data: map[string]interface{}{
			"commission": commission,
		},
	})
}

// commissionOutcome reports commission crediting separately from the
// purchase that triggered it, so callers can see both results. A failed
// credit never turns the purchase response into an error.
type commissionOutcome struct {
	Success     bool                      `json:"success"`
	Transaction *models.Transaction       `json:"transaction,omitempty"`
	Commissions []models.Commission       `json:"commissions,omitempty"`
	Details     *models.CommissionDetails `json:"details,omitempty"`
}

func (uc *UserController) recordCommission(userID primitive.ObjectID, productID, productName string, price float64, quantity int, transactionType string) commissionOutcome {
	transaction, entries, details, err := uc.commissionService.ProcessCommission(
		userID, productID, productName, price, quantity, transactionType)
	if err != nil {
		log.Printf("Failed to process commission for user %s: %v", userID.Hex(), err)
		return commissionOutcome{}
	}
	uc.notifyCommissions(transaction)
	return commissionOutcome{
		Success:     true,
		Transaction: transaction,
		Commissions: entries,
		Details:     details,
	}
}

func (uc *UserController) notifyCommissions(transaction *models.Transaction) {
	if transaction.ReferringUplinerID != nil {
		if err := uc.hub.NotifyCommissionEarned(*transaction.ReferringUplinerID, transaction); err != nil {
			log.Printf("Could not notify upliner: %v", err)
		}
	}
	if transaction.TeamLeadID != nil {
		if err := uc.hub.NotifyCommissionEarned(*transaction.TeamLeadID, transaction); err != nil {
			log.Printf("Could not notify team lead: %v", err)
		}
	}
}

// GetUserCommissions returns the authenticated user's ledger entries
func (uc *UserController) GetUserCommissions(c echo.Context) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	query := services.CommissionQuery{
		Status: c.QueryParam("status"),
		Type:   c.QueryParam("type"),
	}
	if startStr := c.QueryParam("startDate"); startStr != "" {
		if start, err := time.Parse("2006-01-02", startStr); err == nil {
			query.StartDate = &start
		}
	}
	if endStr := c.QueryParam("endDate"); endStr != "" {
		if end, err := time.Parse("2006-01-02", endStr); err == nil {
			query.EndDate = &end
		}
	}
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if page, err := strconv.ParseInt(pageStr, 10, 64); err == nil {
			query.Page = page
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if limit, err := strconv.ParseInt(limitStr, 10, 64); err == nil {
			query.Limit = limit
		}
	}

	commissions, err := uc.commissionService.GetUserCommissions(userID, query)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: validationErr.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch commissions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commissions retrieved successfully",
		Data:    commissions,
	})
}

// GetUserCommissionSummary returns the authenticated user's balance summary
func (uc *UserController) GetUserCommissionSummary(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	summary, err := uc.commissionService.GetUserCommissionSummary(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch commission summary",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission summary retrieved successfully",
		Data:    summary,
	})
}

// authenticatedUserID reads the JWT user id from the context as an ObjectID
func authenticatedUserID(c echo.Context) (primitive.ObjectID, error) {
	idHex, err := middleware.ExtractUserID(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(idHex)
}

// controllers/admin_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"os"
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
	"github.com/empowerup/empowerup_backend/utils"
)

// AdminController handles admin accounts and admin-only ledger actions
type AdminController struct {
	DB                *mongo.Client
	commissionService *services.CommissionService
}

func NewAdminController(db *mongo.Client, commissionService *services.CommissionService) *AdminController {
	return &AdminController{DB: db, commissionService: commissionService}
}

// Register creates a new admin account. The request must carry the setup
// key from the environment, so only operators can mint admins.
func (ac *AdminController) Register(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.AdminRegisterRequest
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

	setupKey := os.Getenv("ADMIN_SETUP_KEY")
	if setupKey == "" || req.SetupKey != setupKey {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Invalid setup key",
		})
	}

	admins := config.GetCollection(ac.DB, "admins")
	count, err := admins.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing admins",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Email is already registered",
		})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	now := time.Now()
	admin := models.Admin{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  hashedPassword,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := admins.InsertOne(ctx, admin); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create admin",
		})
	}

	admin.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Admin registered successfully",
		Data:    admin,
	})
}

// Login authenticates an admin and returns a JWT with the admin role
func (ac *AdminController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.AdminLoginRequest
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

	admins := config.GetCollection(ac.DB, "admins")
	var admin models.Admin
	err := admins.FindOne(ctx, bson.M{"email": req.Email}).Decode(&admin)
	if err != nil || !utils.CheckPassword(admin.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}
	if !admin.IsActive {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Admin account is deactivated",
		})
	}

	now := time.Now()
	admins.UpdateOne(ctx, bson.M{"_id": admin.ID},
		bson.M{"$set": bson.M{"lastLogin": now, "updatedAt": now}})

	token, err := middleware.GenerateJWT(admin.ID.Hex(), admin.Email, "admin")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	admin.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token": token,
			"admin": admin,
		},
	})
}

// GetProfile returns the authenticated admin's profile
func (ac *AdminController) GetProfile(c echo.Context) error {
	admin, ok := c.Get("admin").(*models.Admin)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Admin authentication required",
		})
	}

	admin.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    admin,
	})
}

// UpdateProfile updates the authenticated admin's name and email
func (ac *AdminController) UpdateProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, ok := c.Get("admin").(*models.Admin)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Admin authentication required",
		})
	}

	var req struct {
		Name  string `json:"name,omitempty"`
		Email string `json:"email,omitempty" validate:"omitempty,email"`
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

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.Email != "" {
		update["email"] = req.Email
	}

	admins := config.GetCollection(ac.DB, "admins")
	if _, err := admins.UpdateOne(ctx, bson.M{"_id": admin.ID}, bson.M{"$set": update}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update profile",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile updated successfully",
	})
}

// ChangePassword rotates the authenticated admin's password
func (ac *AdminController) ChangePassword(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin, ok := c.Get("admin").(*models.Admin)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Admin authentication required",
		})
	}

	var req models.ChangePasswordRequest
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

	if !utils.CheckPassword(admin.Password, req.CurrentPassword) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Current password is incorrect",
		})
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	admins := config.GetCollection(ac.DB, "admins")
	if _, err := admins.UpdateOne(ctx, bson.M{"_id": admin.ID},
		bson.M{"$set": bson.M{"password": hashedPassword, "updatedAt": time.Now()}}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to change password",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password changed successfully",
	})
}

// GetAllAdmins lists admin accounts
func (ac *AdminController) GetAllAdmins(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admins := config.GetCollection(ac.DB, "admins")
	cursor, err := admins.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"password": 0}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch admins",
		})
	}
	defer cursor.Close(ctx)

	results := []models.Admin{}
	if err := cursor.All(ctx, &results); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode admins",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Admins retrieved successfully",
		Data:    results,
	})
}

// CancelCommission writes off a single ledger entry, admin only
func (ac *AdminController) CancelCommission(c echo.Context) error {
	commissionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid commission ID",
		})
	}

	commission, err := ac.commissionService.CancelCommission(commissionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCommissionNotFound):
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Commission not found",
			})
		case errors.Is(err, services.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: err.Error(),
			})
		case errors.Is(err, services.ErrReservationConflict):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Commission is being updated, please try again",
			})
		default:
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to cancel commission",
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission cancelled",
		Data:    commission,
	})
}

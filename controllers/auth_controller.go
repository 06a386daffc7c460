// controllers/auth_controller.go
package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/empowerup/empowerup_backend/config"
	"github.com/empowerup/empowerup_backend/middleware"
	"github.com/empowerup/empowerup_backend/models"
	"github.com/empowerup/empowerup_backend/repositories"
	"github.com/empowerup/empowerup_backend/services"
	"github.com/empowerup/empowerup_backend/utils"
)

// AuthController handles user registration and login
type AuthController struct {
	DB                *mongo.Client
	userRepo          *repositories.UserRepository
	commissionService *services.CommissionService
	pointsService     *services.PointsService
	emailService      *services.EmailService
}

func NewAuthController(db *mongo.Client, commissionService *services.CommissionService, pointsService *services.PointsService, emailService *services.EmailService) *AuthController {
	return &AuthController{
		DB:                db,
		userRepo:          repositories.NewUserRepository(db),
		commissionService: commissionService,
		pointsService:     pointsService,
		emailService:      emailService,
	}
}

// resolveUpline accepts either an ObjectID hex or a short referral code and
// returns the matching user, or nil when the reference does not resolve.
func (ac *AuthController) resolveUpline(ref string) *models.User {
	if ref == "" {
		return nil
	}

	if objID, err := primitive.ObjectIDFromHex(ref); err == nil {
		if upline, err := ac.userRepo.FindByID(objID); err == nil {
			return upline
		}
	}
	if upline, err := ac.userRepo.FindByReferralCode(ref); err == nil {
		return upline
	}
	return nil
}

// Register creates a new user account. If a package id is supplied the
// enrollment purchase is recorded immediately, crediting the upline chain.
func (ac *AuthController) Register(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.RegisterRequest
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
	if req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Passwords do not match",
		})
	}

	users := config.GetCollection(ac.DB, "users")

	count, err := users.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing users",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Email is already registered",
		})
	}

	var pkg *models.Package
	if req.PackageID != "" {
		pkg = models.FindPackage(req.PackageID)
		if pkg == nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown package",
			})
		}
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	upline := ac.resolveUpline(req.UplineID)

	referralCode, err := ac.uniqueReferralCode(ctx, users)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate referral code",
		})
	}

	now := time.Now()
	designation, _ := services.CalculateDesignation(0)
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		Password:     hashedPassword,
		Phone:        req.Phone,
		DateOfBirth:  req.DateOfBirth,
		Country:      req.Country,
		Province:     req.Province,
		CinicNumber:  req.CinicNumber,
		ReferralCode: referralCode,
		Role:         "user",
		Designation:  designation,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if upline != nil {
		user.UplineID = &upline.ID
		user.UplineName = upline.Name
	}

	if _, err := users.InsertOne(ctx, user); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create user",
		})
	}

	if pkg != nil {
		ac.completePackagePurchase(&user, pkg, models.TransactionTypeRegistrationWithPackage)
		user.PackageID = pkg.ID
	}

	go ac.emailService.SendWelcomeEmail(&user)

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "User registered successfully",
		Data:    models.LoginResponse{Token: token, User: user},
	})
}

// completePackagePurchase records a package purchase for a user and awards
// points and the purchaser discount. The points and package assignment land
// regardless of commission processing; a failed credit is logged, not
// surfaced, so signup and checkout never fail because of a broken chain.
func (ac *AuthController) completePackagePurchase(user *models.User, pkg *models.Package, transactionType string) {
	ac.pointsService.DistributePoints(user, pkg.Points, pkg.UplinerPoints, pkg.TeamLeaderPoints)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	users := config.GetCollection(ac.DB, "users")
	_, err := users.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"packageId": pkg.ID, "updatedAt": time.Now()},
		"$max": bson.M{"discountPercentage": pkg.PurchaserDiscount},
	})
	if err != nil {
		log.Printf("Failed to update package for user %s: %v", user.ID.Hex(), err)
	}

	if _, _, _, err := ac.commissionService.ProcessCommission(user.ID, pkg.ID, pkg.Name, pkg.Price, 1, transactionType); err != nil {
		log.Printf("Failed to process commission for package %s: %v", pkg.ID, err)
	}
}

func (ac *AuthController) uniqueReferralCode(ctx context.Context, users *mongo.Collection) (string, error) {
	for i := 0; i < 5; i++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return "", err
		}
		count, err := users.CountDocuments(ctx, bson.M{"referralCode": code})
		if err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique referral code")
}

// Login authenticates a user and returns a JWT
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
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

	user, err := ac.userRepo.FindByEmail(req.Email)
	if err != nil || !utils.CheckPassword(user.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    models.LoginResponse{Token: token, User: *user},
	})
}

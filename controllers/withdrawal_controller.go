// controllers/withdrawal_controller.go
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

	"github.com/empowerup/empowerup_backend/config"
	"github.com/empowerup/empowerup_backend/models"
	"github.com/empowerup/empowerup_backend/services"
	ws "github.com/empowerup/empowerup_backend/websocket"
)

// WithdrawalController handles cash-out requests and admin decisions
type WithdrawalController struct {
	DB                *mongo.Client
	withdrawalService *services.WithdrawalService
	emailService      *services.EmailService
	hub               *ws.Hub
}

func NewWithdrawalController(db *mongo.Client, withdrawalService *services.WithdrawalService, emailService *services.EmailService, hub *ws.Hub) *WithdrawalController {
	return &WithdrawalController{
		DB:                db,
		withdrawalService: withdrawalService,
		emailService:      emailService,
		hub:               hub,
	}
}

// RequestWithdrawal files a withdrawal for the authenticated user
func (wc *WithdrawalController) RequestWithdrawal(c echo.Context) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.WithdrawalRequest
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

	withdrawal, err := wc.withdrawalService.CreateWithdrawal(userID, &req)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: validationErr.Error(),
			})
		case errors.Is(err, services.ErrInsufficientBalance):
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Insufficient available balance",
			})
		case errors.Is(err, services.ErrReservationConflict):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Balance is being updated, please try again",
			})
		default:
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to create withdrawal request",
			})
		}
	}

	wc.hub.NotifyWithdrawalRequest(withdrawal)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Withdrawal request submitted",
		Data:    withdrawal,
	})
}

// GetUserWithdrawals lists the authenticated user's withdrawal history
func (wc *WithdrawalController) GetUserWithdrawals(c echo.Context) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	withdrawals, err := wc.withdrawalService.GetUserWithdrawals(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch withdrawals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawals retrieved successfully",
		Data:    withdrawals,
	})
}

// GetAllWithdrawals lists every withdrawal, admin only
func (wc *WithdrawalController) GetAllWithdrawals(c echo.Context) error {
	withdrawals, err := wc.withdrawalService.GetAllWithdrawals(c.QueryParam("status"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch withdrawals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawals retrieved successfully",
		Data:    withdrawals,
	})
}

// GetWithdrawal returns one withdrawal by id, admin only
func (wc *WithdrawalController) GetWithdrawal(c echo.Context) error {
	withdrawalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid withdrawal ID",
		})
	}

	withdrawal, err := wc.withdrawalService.GetWithdrawalByID(withdrawalID)
	if err != nil {
		if errors.Is(err, services.ErrWithdrawalNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Withdrawal not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch withdrawal",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal retrieved successfully",
		Data:    withdrawal,
	})
}

// UpdateWithdrawalStatus applies the admin decision, approve or reject
func (wc *WithdrawalController) UpdateWithdrawalStatus(c echo.Context) error {
	withdrawalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid withdrawal ID",
		})
	}

	admin, ok := c.Get("admin").(*models.Admin)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Admin authentication required",
		})
	}

	var req models.UpdateWithdrawalStatusRequest
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

	withdrawal, err := wc.withdrawalService.UpdateWithdrawalStatus(withdrawalID, admin.ID, &req)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: validationErr.Error(),
			})
		case errors.Is(err, services.ErrWithdrawalNotFound):
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Withdrawal not found",
			})
		case errors.Is(err, services.ErrWithdrawalProcessed):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Withdrawal has already been processed",
			})
		default:
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to update withdrawal",
			})
		}
	}

	wc.notifyDecision(withdrawal)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal " + withdrawal.Status,
		Data:    withdrawal,
	})
}

// notifyDecision pushes the decision over websocket and email, best effort
func (wc *WithdrawalController) notifyDecision(withdrawal *models.Withdrawal) {
	if err := wc.hub.NotifyWithdrawalDecision(withdrawal.UserID, withdrawal); err != nil {
		log.Printf("Could not notify user %s over websocket: %v", withdrawal.UserID.Hex(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	users := config.GetCollection(wc.DB, "users")
	var user models.User
	if err := users.FindOne(ctx, bson.M{"_id": withdrawal.UserID}).Decode(&user); err != nil {
		log.Printf("Could not load user %s for decision email: %v", withdrawal.UserID.Hex(), err)
		return
	}
	go wc.emailService.SendWithdrawalDecisionEmail(&user, withdrawal)
}

// GetWithdrawalStats returns the admin dashboard aggregate
func (wc *WithdrawalController) GetWithdrawalStats(c echo.Context) error {
	stats, err := wc.withdrawalService.GetWithdrawalStats()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch withdrawal stats",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawal stats retrieved successfully",
		Data:    stats,
	})
}

// GetRecentWithdrawals returns the latest requests for the admin dashboard
func (wc *WithdrawalController) GetRecentWithdrawals(c echo.Context) error {
	limit := int64(10)
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.ParseInt(limitStr, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	withdrawals, err := wc.withdrawalService.GetRecentWithdrawals(limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch recent withdrawals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Recent withdrawals retrieved successfully",
		Data:    withdrawals,
	})
}

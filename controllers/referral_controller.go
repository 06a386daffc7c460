// controllers/referral_controller.go
package controllers

import (
	"bytes"
	"image/png"
	"net/http"
	"os"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/empowerup/empowerup_backend/models"
	"github.com/empowerup/empowerup_backend/repositories"
)

// ReferralController serves referral info, the downline team view and
// shareable QR codes
type ReferralController struct {
	DB       *mongo.Client
	userRepo *repositories.UserRepository
}

func NewReferralController(db *mongo.Client) *ReferralController {
	return &ReferralController{
		DB:       db,
		userRepo: repositories.NewUserRepository(db),
	}
}

func referralLink(code string) string {
	baseURL := os.Getenv("FRONTEND_URL")
	if baseURL == "" {
		baseURL = "https://empowerup.pk"
	}
	return baseURL + "/register?ref=" + code
}

// GetReferralData returns the authenticated user's referral code, link and
// direct referral count
func (rc *ReferralController) GetReferralData(c echo.Context) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	user, err := rc.userRepo.FindByID(userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	count, err := rc.userRepo.CountDownline(user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to count referrals",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral data retrieved successfully",
		Data: models.ReferralData{
			ReferralCode:  user.ReferralCode,
			ReferralCount: int(count),
			Points:        user.Points,
			ReferralLink:  referralLink(user.ReferralCode),
		},
	})
}

// GetTeam lists the users directly referred by the authenticated user
func (rc *ReferralController) GetTeam(c echo.Context) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	team, err := rc.userRepo.FindDownline(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch team",
		})
	}

	for i := range team {
		team[i].Password = ""
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Team retrieved successfully",
		Data:    team,
	})
}

// GetReferralQR renders the user's referral link as a PNG QR code
func (rc *ReferralController) GetReferralQR(c echo.Context) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	user, err := rc.userRepo.FindByID(userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	qrCode, err := qr.Encode(referralLink(user.ReferralCode), qr.M, qr.Auto)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code: " + err.Error(),
		})
	}

	qrCode, err = barcode.Scale(qrCode, 200, 200)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to scale QR code: " + err.Error(),
		})
	}

	buffer := new(bytes.Buffer)
	if err := png.Encode(buffer, qrCode); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to encode QR code: " + err.Error(),
		})
	}

	return c.Blob(http.StatusOK, "image/png", buffer.Bytes())
}

// middleware/admin_middleware.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/empowerup/empowerup_backend/config"
	"github.com/empowerup/empowerup_backend/models"
)

// AdminAuth ensures the authenticated token belongs to an active admin
// account. It runs after JWTMiddleware and attaches the admin document to
// the context under "admin".
func AdminAuth(db *mongo.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if role != "admin" {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Access denied. Admin privileges required.",
				})
			}

			adminID, err := ExtractUserID(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Access denied. Invalid token.",
				})
			}

			objID, err := primitive.ObjectIDFromHex(adminID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Access denied. Invalid admin ID.",
				})
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			var admin models.Admin
			err = config.GetCollection(db, "admins").FindOne(ctx, bson.M{"_id": objID}).Decode(&admin)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Access denied. Admin not found.",
				})
			}

			if !admin.IsActive {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Access denied. Account is deactivated.",
				})
			}

			c.Set("admin", &admin)
			return next(c)
		}
	}
}

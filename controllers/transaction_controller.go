// controllers/transaction_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/empowerup/empowerup_backend/config"
	"github.com/empowerup/empowerup_backend/models"
)

// TransactionController serves purchase history and sales stats
type TransactionController struct {
	DB *mongo.Client
}

func NewTransactionController(db *mongo.Client) *TransactionController {
	return &TransactionController{DB: db}
}

// GetUserTransactions returns the authenticated user's purchase history
func (tc *TransactionController) GetUserTransactions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := authenticatedUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	transactions := config.GetCollection(tc.DB, "transactions")
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := transactions.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch transactions",
		})
	}
	defer cursor.Close(ctx)

	results := []models.Transaction{}
	if err := cursor.All(ctx, &results); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode transactions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transactions retrieved successfully",
		Data:    results,
	})
}

// GetAllTransactions lists every transaction, admin only
func (tc *TransactionController) GetAllTransactions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if txType := c.QueryParam("type"); txType != "" {
		filter["transactionType"] = txType
	}

	transactions := config.GetCollection(tc.DB, "transactions")
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := transactions.Find(ctx, filter, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch transactions",
		})
	}
	defer cursor.Close(ctx)

	results := []models.Transaction{}
	if err := cursor.All(ctx, &results); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode transactions",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transactions retrieved successfully",
		Data:    results,
	})
}

// GetTransaction returns one transaction by id
func (tc *TransactionController) GetTransaction(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	transactionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid transaction ID",
		})
	}

	transactions := config.GetCollection(tc.DB, "transactions")
	var transaction models.Transaction
	if err := transactions.FindOne(ctx, bson.M{"_id": transactionID}).Decode(&transaction); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Transaction not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch transaction",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transaction retrieved successfully",
		Data:    transaction,
	})
}

// GetTransactionStats aggregates sales totals for the admin dashboard
func (tc *TransactionController) GetTransactionStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	transactions := config.GetCollection(tc.DB, "transactions")
	stats := models.TransactionStats{
		MonthlySales: []models.MonthlySalesBucket{},
		SalesByType:  []models.SalesTypeBucket{},
	}

	totalsPipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": "completed"}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$totalAmount"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := transactions.Aggregate(ctx, totalsPipeline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to aggregate sales",
		})
	}
	var totals []struct {
		Total float64 `bson:"total"`
		Count int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode sales totals",
		})
	}
	if len(totals) > 0 {
		stats.TotalSales = totals[0].Total
		stats.TotalTransactions = totals[0].Count
	}

	monthlyPipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": "completed"}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$createdAt"},
				"month": bson.M{"$month": "$createdAt"},
			},
			"total": bson.M{"$sum": "$totalAmount"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}
	cursor, err = transactions.Aggregate(ctx, monthlyPipeline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to aggregate monthly sales",
		})
	}
	var monthly []struct {
		ID struct {
			Year  int `bson:"year"`
			Month int `bson:"month"`
		} `bson:"_id"`
		Total float64 `bson:"total"`
		Count int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &monthly); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode monthly sales",
		})
	}
	for _, m := range monthly {
		stats.MonthlySales = append(stats.MonthlySales, models.MonthlySalesBucket{
			Year:  m.ID.Year,
			Month: m.ID.Month,
			Total: m.Total,
			Count: m.Count,
		})
	}

	typePipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": "completed"}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$transactionType",
			"total": bson.M{"$sum": "$totalAmount"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err = transactions.Aggregate(ctx, typePipeline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to aggregate sales by type",
		})
	}
	if err := cursor.All(ctx, &stats.SalesByType); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode sales by type",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Transaction stats retrieved successfully",
		Data:    stats,
	})
}

// controllers/product_controller.go
package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/empowerup/empowerup_backend/config"
	"github.com/empowerup/empowerup_backend/models"
)

// ProductController serves the storefront catalog
type ProductController struct {
	DB *mongo.Client
}

func NewProductController(db *mongo.Client) *ProductController {
	return &ProductController{DB: db}
}

// seedCatalog is the static storefront catalog loaded by SeedProducts.
var seedCatalog = []models.Product{
	{SKU: "1", Name: "Charcol Face Wash", Price: 1550, Discount: "23% OFF", Rating: 4.8, Reviews: 124, Category: "Skincare", Points: 1.5},
	{SKU: "2", Name: "Brightening Clay Mask", Price: 500, Discount: "25% OFF", Rating: 4.9, Reviews: 89, Category: "Masks", Points: 0.5},
	{SKU: "3", Name: "Lightening Face Scrub", Price: 1050, Discount: "30% OFF", Rating: 4.7, Reviews: 67, Points: 1},
	{SKU: "4", Name: "24K Gold Face Scrub", Price: 1450, Discount: "24% OFF", Rating: 4.8, Reviews: 156, Category: "Anti-Aging", Points: 1.5},
	{SKU: "5", Name: "Bright Beauty Face Wash", Price: 1400, Discount: "24% OFF", Rating: 4.6, Reviews: 203, Category: "Cleansers", Points: 1.5},
	{SKU: "6", Name: "Whitening Delight Soap", Price: 3500, Discount: "24% OFF", Rating: 4.9, Reviews: 98, Category: "Soaps", Points: 3},
	{SKU: "7", Name: "Refreshing Scrub Soap", Price: 1050, Discount: "24% OFF", Rating: 4.9, Reviews: 98, Category: "Soaps", Points: 1},
	{SKU: "8", Name: "Shine & Strong Shampoo", Price: 1750, Discount: "24% OFF", Rating: 4.9, Reviews: 98, Category: "Hair", Points: 1.5},
}

// SeedProducts replaces the stored catalog with the static one, admin only
func (pc *ProductController) SeedProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products := config.GetCollection(pc.DB, "products")
	if _, err := products.DeleteMany(ctx, bson.M{}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to clear product catalog",
		})
	}

	docs := make([]interface{}, len(seedCatalog))
	for i, p := range seedCatalog {
		docs[i] = p
	}
	if _, err := products.InsertMany(ctx, docs); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to seed products",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Products seeded successfully",
	})
}

// GetProducts lists the catalog
func (pc *ProductController) GetProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if category := c.QueryParam("category"); category != "" {
		filter["category"] = category
	}

	products := config.GetCollection(pc.DB, "products")
	cursor, err := products.Find(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch products",
		})
	}
	defer cursor.Close(ctx)

	results := []models.Product{}
	if err := cursor.All(ctx, &results); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode products",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Products retrieved successfully",
		Data:    results,
	})
}

// GetProduct returns one product by its catalog id
func (pc *ProductController) GetProduct(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	products := config.GetCollection(pc.DB, "products")
	var product models.Product
	if err := products.FindOne(ctx, bson.M{"id": c.Param("id")}).Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Product not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch product",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product retrieved successfully",
		Data:    product,
	})
}

// GetPackages lists the static enrollment packages
func (pc *ProductController) GetPackages(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Packages retrieved successfully",
		Data:    models.Packages,
	})
}

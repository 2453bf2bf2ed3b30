package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Kariqs/amexan-portal/services"
	"github.com/Kariqs/amexan-portal/submission"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Common error response helper
func respondWithError(ctx *gin.Context, statusCode int, message string, err error) {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	ctx.JSON(statusCode, gin.H{
		"message": message,
		"error":   errMsg,
	})
}

// ProductRepository is the product storage the product handlers read from
// and write to.
type ProductRepository interface {
	List(ctx context.Context, page, limit int, search string) (*services.ProductPage, error)
	Get(ctx context.Context, id string) (*submission.Product, error)
	Create(ctx context.Context, payload submission.Payload) (*submission.Product, error)
	Update(ctx context.Context, id string, payload submission.Payload) (*submission.Product, error)
}

type ProductController struct {
	products ProductRepository
	logger   *zap.Logger
}

func NewProductController(products ProductRepository, logger *zap.Logger) *ProductController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductController{products: products, logger: logger.Named("products")}
}

// Product handlers
func (c *ProductController) CreateProduct(ctx *gin.Context) {
	payload, ok := bindPayload(ctx)
	if !ok {
		return
	}

	product, err := c.products.Create(ctx.Request.Context(), payload)
	if err != nil {
		c.logger.Error("Failed to create product", zap.Error(err))
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create product", err)
		return
	}

	c.logger.Info("Product created", zap.String("product_id", product.ID))
	ctx.JSON(http.StatusCreated, product)
}

func (c *ProductController) UpdateProduct(ctx *gin.Context) {
	payload, ok := bindPayload(ctx)
	if !ok {
		return
	}

	product, err := c.products.Update(ctx.Request.Context(), ctx.Param("id"), payload)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
			return
		}
		c.logger.Error("Failed to update product", zap.String("product_id", ctx.Param("id")), zap.Error(err))
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update product", err)
		return
	}

	c.logger.Info("Product updated", zap.String("product_id", product.ID))
	ctx.JSON(http.StatusOK, product)
}

func (c *ProductController) GetProducts(ctx *gin.Context) {
	// Add pagination
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "4"))

	result, err := c.products.List(ctx.Request.Context(), page, limit, ctx.Query("search"))
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch products", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"products": result.Products,
		"metadata": gin.H{
			"total": result.Total,
			"page":  result.Page,
			"limit": result.Limit,
		},
	})
}

func (c *ProductController) GetProduct(ctx *gin.Context) {
	product, err := c.products.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		} else {
			respondWithError(ctx, http.StatusInternalServerError, "Unable to retrieve product", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// bindPayload reads a product body. The discount percent is always derived
// from the two prices.
func bindPayload(ctx *gin.Context) (submission.Payload, bool) {
	var payload submission.Payload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return payload, false
	}
	if strings.TrimSpace(payload.Name) == "" {
		respondWithError(ctx, http.StatusBadRequest, "Product name is required", nil)
		return payload, false
	}
	if len(payload.Images) > submission.MaxImages {
		respondWithError(ctx, http.StatusBadRequest, "Too many images", submission.ErrTooManyImages)
		return payload, false
	}
	payload.DiscountPercent = submission.DiscountPercent(payload.OriginalPrice, payload.DiscountPrice)
	return payload, true
}

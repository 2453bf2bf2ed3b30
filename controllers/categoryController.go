package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Kariqs/amexan-portal/services"
	"github.com/Kariqs/amexan-portal/submission"
	"github.com/gin-gonic/gin"
)

type CategoryWriter interface {
	Create(ctx context.Context, name string, subcategories []string) (*submission.Category, error)
}

type CategoryController struct {
	catalog submission.Catalog
	writer  CategoryWriter
}

// NewCategoryController serves categories from catalog. writer may be nil
// when categories are managed elsewhere.
func NewCategoryController(catalog submission.Catalog, writer CategoryWriter) *CategoryController {
	return &CategoryController{catalog: catalog, writer: writer}
}

func (c *CategoryController) GetCategories(ctx *gin.Context) {
	categories, err := c.catalog.List(ctx.Request.Context())
	if err != nil {
		respondWithError(ctx, http.StatusBadGateway, "Unable to fetch categories", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"categories": categories})
}

type createCategoryRequest struct {
	Name          string   `json:"name" binding:"required"`
	Subcategories []string `json:"subcategories" binding:"dive,required"`
}

func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	if c.writer == nil {
		respondWithError(ctx, http.StatusNotImplemented, "Categories are read only", nil)
		return
	}

	var req createCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	category, err := c.writer.Create(ctx.Request.Context(), req.Name, req.Subcategories)
	if err != nil {
		if errors.Is(err, services.ErrCategoryExists) {
			respondWithError(ctx, http.StatusConflict, "Category already exists", nil)
			return
		}
		respondWithError(ctx, http.StatusInternalServerError, "Failed to create category", err)
		return
	}
	ctx.JSON(http.StatusCreated, category)
}

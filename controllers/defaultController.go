package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Amexan supplier portal ❤️. Use these endpoints to list products with their images.

The following are the endpoints for this API:

PRODUCT
- GET "/product" - Get all products
- GET "/product/:id" - Get product by ID
- POST "/product" - Create new product (admin)
- PUT "/product/:id" - Update product (admin)

CATEGORY
- GET "/categories" - Get categories with their subcategories
- POST "/categories" - Create category (admin)

UPLOAD
- POST "/upload" - Store a single image, returns its location

DRAFTS
- POST "/drafts" - Start a new product draft
- POST "/drafts/edit/:productId" - Start a draft editing a product
- GET "/drafts/:id" - Get draft state and upload notices
- PATCH "/drafts/:id" - Update draft fields
- PUT "/drafts/:id/category" - Select category
- PUT "/drafts/:id/subcategory" - Select subcategory
- POST "/drafts/:id/images" - Add up to 5 images
- DELETE "/drafts/:id/images/:localId" - Remove an image
- GET "/drafts/:id/previews/:handle" - Get an image preview
- POST "/drafts/:id/submit" - Submit the draft
- DELETE "/drafts/:id" - Discard the draft`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

package routes

import (
	"github.com/Kariqs/amexan-portal/controllers"
	"github.com/gin-gonic/gin"
)

func DraftRoutes(server *gin.Engine, c *controllers.DraftController, auth ...gin.HandlerFunc) {
	drafts := server.Group("/drafts", auth...)
	{
		drafts.POST("", c.OpenDraft)
		drafts.POST("/edit/:productId", c.EditProduct)
		drafts.GET("/:id", c.GetDraft)
		drafts.PATCH("/:id", c.UpdateFields)
		drafts.DELETE("/:id", c.DiscardDraft)
		drafts.PUT("/:id/category", c.SelectCategory)
		drafts.PUT("/:id/subcategory", c.SelectSubcategory)
		drafts.POST("/:id/images", c.AddImages)
		drafts.DELETE("/:id/images/:localId", c.RemoveImage)
		drafts.GET("/:id/previews/:handle", c.GetPreview)
		drafts.POST("/:id/submit", c.SubmitDraft)
	}
}

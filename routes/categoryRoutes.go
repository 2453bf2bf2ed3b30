package routes

import (
	"github.com/Kariqs/amexan-portal/controllers"
	"github.com/gin-gonic/gin"
)

func CategoryRoutes(server *gin.Engine, c *controllers.CategoryController, admin ...gin.HandlerFunc) {
	server.GET("/categories", c.GetCategories)
	server.POST("/categories", append(admin, c.CreateCategory)...)
}

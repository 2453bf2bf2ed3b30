package routes

import (
	"github.com/Kariqs/amexan-portal/controllers"
	"github.com/gin-gonic/gin"
)

func ProductRoutes(server *gin.Engine, c *controllers.ProductController, admin ...gin.HandlerFunc) {
	server.GET("/product", c.GetProducts)
	server.GET("/product/:id", c.GetProduct)

	protected := server.Group("/product", admin...)
	{
		protected.POST("", c.CreateProduct)
		protected.PUT("/:id", c.UpdateProduct)
	}
}

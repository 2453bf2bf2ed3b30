package routes

import (
	"github.com/Kariqs/amexan-portal/controllers"
	"github.com/gin-gonic/gin"
)

func UploadRoutes(server *gin.Engine, c *controllers.UploadController, auth ...gin.HandlerFunc) {
	server.POST("/upload", append(auth, c.UploadImage)...)
}

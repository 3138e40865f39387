package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/yigit/diploma-registry/docs" // registers the OpenAPI document
)

// SetupSwagger serves the Swagger UI and doc.json under /api/docs
func SetupSwagger(router *gin.Engine) {
	router.GET("/api/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.URL("/api/docs/doc.json"),
		ginSwagger.DefaultModelsExpandDepth(1),
	))
}

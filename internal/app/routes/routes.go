package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/diploma-registry/internal/app/controllers"
	"github.com/yigit/diploma-registry/internal/middleware"
)

// SetupRouter configures all application routes under /api
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	diplomaController *controllers.DiplomaController,
	inviteController *controllers.InviteController,
	catalogController *controllers.CatalogController,
	healthController *controllers.HealthController,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *middleware.RateLimiter,
) {
	api := router.Group("/api")

	api.GET("/health", healthController.Health)

	// --- Public auth routes ---
	api.POST("/login", authLimiter.Middleware(), authController.Login)
	api.POST("/register", authLimiter.Middleware(), authController.Register)
	api.GET("/me", authMiddleware.JWTAuth(), authController.Me)

	catalog := api.Group("/catalog")
	{
		catalog.GET("", catalogController.GetCatalog)
		catalog.GET("/list", catalogController.ListCatalog)
	}

	diplomas := api.Group("/diplomas")
	{
		diplomas.GET("", diplomaController.ListDiplomas)
		diplomas.GET("/filters", diplomaController.GetFilters)
		diplomas.GET("/faculties", diplomaController.GetFacultyOverview)
		diplomas.GET("/:id", diplomaController.GetDiploma)
		diplomas.GET("/:id/file", diplomaController.GetDiplomaFile)

		admin := diplomas.Group("")
		admin.Use(authMiddleware.JWTAuth(), authMiddleware.AdminRequired())
		{
			admin.POST("", diplomaController.CreateDiploma)
			admin.PATCH("/:id", diplomaController.UpdateDiploma)
			admin.DELETE("/:id", diplomaController.DeleteDiploma)
		}
	}

	invites := api.Group("/invites")
	invites.Use(authMiddleware.JWTAuth(), authMiddleware.AdminRequired())
	{
		invites.GET("", inviteController.ListInvites)
		invites.POST("", inviteController.CreateInvite)
		invites.DELETE("/:key", inviteController.DeleteInvite)
		invites.POST("/:key/revoke", inviteController.RevokeInvite)
	}
}

package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jkusa/portal/internal/app/controllers"
	"github.com/jkusa/portal/internal/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RateLimits holds the per-route limiter settings applied at the router
type RateLimits struct {
	Store       middleware.RateStore
	Requests    int
	Window      time.Duration
	EmailAction int
	EmailWindow time.Duration
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	catalogController *controllers.CatalogController,
	authMiddleware *middleware.AuthMiddleware,
	limits RateLimits,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")

	// Catalog routes feed the registration form, no auth required
	colleges := v1.Group("/colleges")
	{
		colleges.GET("", catalogController.ListColleges)
		colleges.GET("/:id/schools", catalogController.ListSchools)
	}

	generalLimit := middleware.RateLimit(limits.Store, limits.Requests, limits.Window)
	emailLimit := middleware.RateLimit(limits.Store, limits.EmailAction, limits.EmailWindow)

	auth := v1.Group("/students/auth")
	auth.Use(generalLimit)
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/verify", authController.VerifyEmail)
		auth.GET("/verify", authController.VerifyEmail)
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/logout", authController.Logout)
		auth.POST("/password-reset/confirm", authController.ConfirmPasswordReset)
	}

	// Resends and reset requests get the stricter email-action limit on top
	authEmail := v1.Group("/students/auth")
	authEmail.Use(generalLimit, emailLimit)
	{
		authEmail.POST("/resend-verification", authController.ResendVerification)
		authEmail.POST("/password-reset", authController.RequestPasswordReset)
	}

	authenticated := v1.Group("/students/auth")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/me", authController.Me)
		authenticated.PUT("/password", authController.ChangePassword)
	}
}

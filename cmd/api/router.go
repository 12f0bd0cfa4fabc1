package api

import (
	"net/http"

	"jobtrail-backend/internal/auth/delivery"
	authUsecase "jobtrail-backend/internal/auth/usecase"
	emailDelivery "jobtrail-backend/internal/email/delivery"
	emailUsecase "jobtrail-backend/internal/email/usecase"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, emailUsecase emailUsecase.EmailUsecase) {
	authHandler := delivery.NewAuthHandler(authUsecase)
	emailHandler := emailDelivery.NewEmailHandler(emailUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
		}

		// Mailbox routes (protected)
		mailbox := api.Group("/mailbox")
		mailbox.Use(delivery.AuthMiddleware(authUsecase))
		{
			mailbox.POST("", emailHandler.RegisterMailbox)
			mailbox.GET("", emailHandler.GetMailbox)
			mailbox.POST("/forwarding/google", emailHandler.GrantForwarding)
		}

		// Email routes (protected)
		emails := api.Group("/emails")
		emails.Use(delivery.AuthMiddleware(authUsecase))
		{
			emails.POST("/fetch", emailHandler.TriggerFetch)
			emails.GET("", emailHandler.ListRecords)
			emails.GET("/export", emailHandler.ExportCSV)
		}

		// Job routes (protected)
		jobs := api.Group("/jobs")
		jobs.Use(delivery.AuthMiddleware(authUsecase))
		{
			jobs.GET("/:id", emailHandler.PollJob)
		}
	}
}

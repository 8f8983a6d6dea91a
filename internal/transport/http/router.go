package http

import (
	"cancellation-service/internal/auth"

	"github.com/gin-contrib/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

func Router(h *Handler, authClient *auth.Client, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	authorized := r.Group("/", AuthRequired(authClient, log))
	{
		authorized.POST("/orders/:orderId/cancel", h.CancelOrder)
		authorized.GET("/orders/:orderId/cancel", h.GetHistory)
		authorized.GET("/refunds/:refundId", h.GetRefund)
		authorized.POST("/refunds/:refundId", h.RetryRefund)
		authorized.POST("/cancellations/:cancellationId/approve", h.ApproveCancellation)
		authorized.POST("/cancellations/:cancellationId/reject", h.RejectCancellation)
	}

	return r
}

package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/middleware"
)

// Handlers groups everything SetupRoutes mounts
type Handlers struct {
	Messages     *handler.MessageHandler
	Transactions *handler.TransactionHandler
	Categories   *handler.CategoryHandler
	Health       *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers) {
	router.GET("/health", h.Health.Check)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/notifications", h.Messages.SubmitNotification)
		v1.POST("/messages/parse", h.Messages.ParseMessage)
		v1.POST("/messages/ingest", h.Messages.IngestMessage)

		v1.GET("/transactions/reference/:ref", h.Transactions.GetByReference)
		v1.PUT("/transactions/:id/category", h.Transactions.UpdateCategory)
		v1.POST("/transactions/recategorize", h.Transactions.Recategorize)

		v1.GET("/categories", h.Categories.List)
		v1.POST("/categories", h.Categories.Create)
		v1.PATCH("/categories/:id/active", h.Categories.SetActive)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider) {
	// order matters: the request id must exist before anything logs
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.ErrorHandler(logger))
}

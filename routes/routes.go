package routes

import (
	"github.com/gin-gonic/gin"

	"resto-pos/controllers"
	"resto-pos/middleware"
	"resto-pos/repositories"
)

func SetupRoutes(router *gin.Engine, repo *repositories.OrderRepository, hub *controllers.EventHub) {
	authCtrl := controllers.NewAuthController()
	orderCtrl := controllers.NewOrderController(repo, hub)
	eventCtrl := controllers.NewEventController(hub)

	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.POST("/auth/login", authCtrl.Login)

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/orders", orderCtrl.GetAllOrders)
		auth.GET("/orders/code/:code", orderCtrl.GetOrderByCode)
		auth.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)
		auth.POST("/orders", orderCtrl.CreateOrder)
		auth.GET("/events", eventCtrl.Stream)
	}
}

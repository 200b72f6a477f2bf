package api

import "github.com/gin-gonic/gin"

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/metrics", handler.GetMetrics)
		api.GET("/houses", handler.GetHouses)
		api.GET("/consumers", handler.GetConsumers)
		api.GET("/sales", handler.GetSales)
		api.GET("/stats", handler.GetDatasetStats)
		api.POST("/simulate", handler.Simulate)
	}
}

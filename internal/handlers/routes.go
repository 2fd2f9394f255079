package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the task and link API under /api/v1.
func RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1")

	taskRoutes := api.Group("/tasks")
	{
		taskRoutes.GET("", ListTasks)
		taskRoutes.GET("/pending", ListPendingTasks)
		taskRoutes.GET("/stats", GetTaskStats)
		taskRoutes.GET("/:id", GetTask)
		taskRoutes.PUT("/:id/status", UpdateTaskStatus)
		taskRoutes.POST("/:id/approve", ApproveTask)
		taskRoutes.POST("/:id/reject", RejectTask)
		taskRoutes.POST("/:id/posted", MarkTaskPosted)
	}

	campaignRoutes := api.Group("/campaigns")
	{
		campaignRoutes.GET("/:id/stats", GetCampaignStats)
		campaignRoutes.GET("/:id/links", ListCampaignLinks)
	}

	api.POST("/links/clicks", RecordLinkClick)
}

package notification

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("/me", h.ListMine)
		notifications.POST("/:id/read", h.MarkRead)
	}
}
